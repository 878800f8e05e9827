package slottext

import "strconv"

// Semester 年度内の学期区分。公平性の集計単位
type Semester string

const (
	// SemesterFirstHalf 前期（4〜8月）
	SemesterFirstHalf Semester = "first_half"
	// SemesterSecondHalf 後期（9〜12月・1〜3月）
	SemesterSecondHalf Semester = "second_half"
	// SemesterUnknown 月が特定できない枠
	SemesterUnknown Semester = "unknown"
)

// Label 表示名
func (s Semester) Label() string {
	switch s {
	case SemesterFirstHalf:
		return "前期"
	case SemesterSecondHalf:
		return "後期"
	}
	return "不明"
}

// SemesterOf 枠文字列の月から学期を判定する
func SemesterOf(s string) Semester {
	dm := dateRe.FindStringSubmatch(foldWidth(s))
	if dm == nil {
		return SemesterUnknown
	}
	month, _ := strconv.Atoi(dm[1])
	return SemesterOfMonth(month)
}

// SemesterOfMonth 月から学期を判定する
func SemesterOfMonth(month int) Semester {
	switch {
	case month >= 4 && month <= 8:
		return SemesterFirstHalf
	case (month >= 9 && month <= 12) || (month >= 1 && month <= 3):
		return SemesterSecondHalf
	}
	return SemesterUnknown
}
