package slottext

import "fmt"

// DaySummary 1 日分の枠を連続帯にまとめた要約
type DaySummary struct {
	Date   string   `json:"date"`   // 例: 9月11日(木)
	Ranges []string `json:"ranges"` // 例: 10:00〜11:40（2枠）
}

// GroupSameDay 時系列順に並んだ同一日の枠を連続帯ごとにまとめる。
// 前の枠の終了時刻と次の枠の開始時刻が一致する限り 1 本の帯として繋ぎ、
// 隙間があれば帯を区切る。
func GroupSameDay(slots []SlotTime) []string {
	var ranges []string
	i := 0
	for i < len(slots) {
		if !slots[i].HasTime {
			ranges = append(ranges, slots[i].DateLabel())
			i++
			continue
		}
		start := slots[i].Start
		end := slots[i].End
		count := 1
		for i+count < len(slots) && slots[i+count].HasTime && slots[i+count].Start == end {
			end = slots[i+count].End
			count++
		}
		ranges = append(ranges, fmt.Sprintf("%s〜%s（%d枠）", clock(start), clock(end), count))
		i += count
	}
	return ranges
}

// SummarizeByDay 時系列順の枠リストを日付ごとの要約に変換する
func SummarizeByDay(slots []SlotTime) []DaySummary {
	var summaries []DaySummary
	i := 0
	for i < len(slots) {
		j := i
		for j < len(slots) && slots[j].Month == slots[i].Month && slots[j].Day == slots[i].Day {
			j++
		}
		summaries = append(summaries, DaySummary{
			Date:   slots[i].DateLabel(),
			Ranges: GroupSameDay(slots[i:j]),
		})
		i = j
	}
	return summaries
}
