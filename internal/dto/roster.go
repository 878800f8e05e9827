package dto

// ── 名簿モジュール DTO ──

// ReplaceRosterRequest 名簿の全置換リクエスト
type ReplaceRosterRequest struct {
	Names []string `json:"names" binding:"required"`
}

// RosterResponse 名簿レスポンス
type RosterResponse struct {
	Names []string `json:"names"`
}
