// Package slottext はレッスン枠を表す日時文字列の正規化・構造化を担う。
//
// 枠の正準形は「M月D日(曜) HH:MM-HH:MM」（時刻が無い場合は日付部のみ）。
// ストレージ上の枠 ID はこの文字列そのものであり、等価判定は正規化後の
// 完全一致で行う。内部処理では一度だけ構造化（SlotTime）し、以降の
// 連続判定・並び替えは文字列ではなく数値で行う。
package slottext

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultLessonMinutes 終了時刻が省略された時に補う 1 コマの長さ（分）
const DefaultLessonMinutes = 50

var (
	// 月と日：M ＋ (/, -, 月, .) ＋ D
	dateRe = regexp.MustCompile(`(\d{1,2})[/\-月.](\d{1,2})`)
	// HH:MM-HH:MM 形式の時間帯（区切りは - ~ 〜 を許容）
	timeRangeRe = regexp.MustCompile(`(\d{1,2}):(\d{2})\s*[-~〜]\s*(\d{1,2}):(\d{2})`)
	// 開始時刻のみ
	timeRe = regexp.MustCompile(`(\d{1,2}):(\d{2})`)
)

var weekdayKanji = [7]string{"日", "月", "火", "水", "木", "金", "土"}

// SlotTime 枠文字列を一度だけ解析した構造化表現
type SlotTime struct {
	Month   int
	Day     int
	Weekday time.Weekday
	HasTime bool
	Start   int // 0時からの経過分
	End     int
}

// DateLabel 日付部の正準表記（例: 9月11日(木)）
func (st SlotTime) DateLabel() string {
	return fmt.Sprintf("%d月%d日(%s)", st.Month, st.Day, weekdayKanji[st.Weekday])
}

// Label 正準形の枠文字列
func (st SlotTime) Label() string {
	if !st.HasTime {
		return st.DateLabel()
	}
	return fmt.Sprintf("%s %s-%s", st.DateLabel(), clock(st.Start), clock(st.End))
}

// StartClock 開始時刻の HH:MM 表記
func (st SlotTime) StartClock() string { return clock(st.Start) }

// EndClock 終了時刻の HH:MM 表記
func (st SlotTime) EndClock() string { return clock(st.End) }

func clock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Normalizer 日時文字列の正規化器
//
// Year は曜日の解決に使う基準年。レッスン枠は年を持たないため、
// 運用上の基準年（通常は今年度）を外から与える。
type Normalizer struct {
	Year          int
	LessonMinutes int
}

// NewNormalizer Normalizer を生成する。year=0 は現在年、lessonMinutes=0 は既定の 50 分
func NewNormalizer(year, lessonMinutes int) *Normalizer {
	if year == 0 {
		year = time.Now().Year()
	}
	if lessonMinutes <= 0 {
		lessonMinutes = DefaultLessonMinutes
	}
	return &Normalizer{Year: year, LessonMinutes: lessonMinutes}
}

// Parse 枠文字列を構造化する。日付が取れない・実在しない日付の場合は ok=false
func (n *Normalizer) Parse(s string) (SlotTime, bool) {
	folded := foldWidth(s)

	dm := dateRe.FindStringSubmatch(folded)
	if dm == nil {
		return SlotTime{}, false
	}
	month, _ := strconv.Atoi(dm[1])
	day, _ := strconv.Atoi(dm[2])

	// 1〜3月は年度の後半なので翌年の日付として解決する
	year := n.Year
	if month >= 1 && month <= 3 {
		year++
	}

	// time.Date は範囲外の月日を繰り上げて別の日付にするため、
	// 往復が一致しない入力は実在しない日付として弾く
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Year() != year || int(d.Month()) != month || d.Day() != day {
		return SlotTime{}, false
	}

	st := SlotTime{Month: month, Day: day, Weekday: d.Weekday()}

	if tm := timeRangeRe.FindStringSubmatch(folded); tm != nil {
		sh, _ := strconv.Atoi(tm[1])
		sm, _ := strconv.Atoi(tm[2])
		eh, _ := strconv.Atoi(tm[3])
		em, _ := strconv.Atoi(tm[4])
		st.HasTime = true
		st.Start = sh*60 + sm
		st.End = eh*60 + em
	} else if tm := timeRe.FindStringSubmatch(folded); tm != nil {
		sh, _ := strconv.Atoi(tm[1])
		sm, _ := strconv.Atoi(tm[2])
		st.HasTime = true
		st.Start = sh*60 + sm
		st.End = st.Start + n.LessonMinutes
	}

	return st, true
}

// Normalize 枠文字列を正準形に変換する。解析できない入力はそのまま返す。
// 冪等：正準形を入力すると同じ文字列が返る。
func (n *Normalizer) Normalize(s string) string {
	st, ok := n.Parse(s)
	if !ok {
		return s
	}
	return st.Label()
}

// foldWidth 全角の数字・記号を半角に揃える
func foldWidth(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= '０' && r <= '９':
			return r - '０' + '0'
		case r == '：':
			return ':'
		case r == '／':
			return '/'
		case r == '．':
			return '.'
		case r == '－':
			return '-'
		case r == '～':
			return '〜'
		case r == '　':
			return ' '
		}
		return r
	}, s)
}
