package slottext

import (
	"sort"
	"strconv"
)

// maxSortKey 解析できない枠を末尾に送るための番兵キー
const maxSortKey = int64(1) << 62

// SortKey 枠文字列から時系列キーを取り出す。
// 4〜12月を年度の前半、1〜3月を後半として扱う（年跨ぎの固定ヒューリス
// ティック）。解析できない文字列は最大キーとなり常に末尾へ並ぶ。
func SortKey(s string) int64 {
	folded := foldWidth(s)

	dm := dateRe.FindStringSubmatch(folded)
	if dm == nil {
		return maxSortKey
	}
	month, _ := strconv.Atoi(dm[1])
	day, _ := strconv.Atoi(dm[2])
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return maxSortKey
	}

	// 1〜3月は 13〜15 に写して 4〜12月の後ろへ
	segMonth := month
	if month <= 3 {
		segMonth += 12
	}

	hour, minute := 0, 0
	if tm := timeRe.FindStringSubmatch(folded); tm != nil {
		hour, _ = strconv.Atoi(tm[1])
		minute, _ = strconv.Atoi(tm[2])
	}

	return int64(segMonth)*1_000_000 + int64(day)*10_000 + int64(hour)*100 + int64(minute)
}

// SortLabels 枠文字列を時系列順（解析不能は末尾）に安定ソートする
func SortLabels(labels []string) {
	sort.SliceStable(labels, func(i, j int) bool {
		return SortKey(labels[i]) < SortKey(labels[j])
	})
}
