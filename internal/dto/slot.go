package dto

// ── 枠モジュール DTO ──

// ReplaceSlotsRequest 枠の全置換リクエスト
// ラベルは未正規化でもよい。Service 層が正規化・重複除去・並び替えを行う。
type ReplaceSlotsRequest struct {
	Labels []string `json:"labels" binding:"required"`
}

// BulkGenerateSlotsRequest 連続枠の一括生成リクエスト
type BulkGenerateSlotsRequest struct {
	Date       string   `json:"date"        binding:"required"`       // 例: "10/4" または "10月4日"
	StartTimes []string `json:"start_times" binding:"required,min=1"` // 例: ["10:00", "11:00"]
}

// SlotListResponse 枠一覧レスポンス
type SlotListResponse struct {
	Labels []string `json:"labels"` // 時系列順の正準ラベル
}

// SlotSummaryResponse 日別の連続帯要約レスポンス
type SlotSummaryResponse struct {
	Days []DaySummaryResponse `json:"days"`
}

// DaySummaryResponse 1 日分の要約
type DaySummaryResponse struct {
	Date   string   `json:"date"`
	Ranges []string `json:"ranges"`
}
