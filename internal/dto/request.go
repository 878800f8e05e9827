package dto

// ── 希望モジュール DTO ──

// UpsertWishlistRequest 希望の提出（再提出は全置換）
type UpsertWishlistRequest struct {
	Wishes []string `json:"wishes" binding:"required"`
}

// WishlistResponse 受講者 1 人分の希望レスポンス
type WishlistResponse struct {
	StudentName string   `json:"student_name"`
	Wishes      []string `json:"wishes"`
	UpdatedAt   string   `json:"updated_at"`
}

// BoardEntry 回答状況ボードの 1 行
type BoardEntry struct {
	StudentName string `json:"student_name"`
	WishCount   int    `json:"wish_count"`
	Submitted   bool   `json:"submitted"`
}

// BoardResponse 回答状況ボード
type BoardResponse struct {
	Entries []BoardEntry `json:"entries"`
}
