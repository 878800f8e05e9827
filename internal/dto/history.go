package dto

// ── 履歴モジュール DTO ──

// HistoryEntryResponse 履歴 1 件
type HistoryEntryResponse struct {
	SlotLabel   string `json:"slot_label"`
	StudentName string `json:"student_name"`
	Semester    string `json:"semester"`
	CreatedAt   string `json:"created_at"`
}

// HistoryListResponse 履歴一覧
type HistoryListResponse struct {
	Entries []HistoryEntryResponse `json:"entries"`
	Total   int                    `json:"total"`
}
