package dto

// ── 割当モジュール DTO ──

// RunAllocationRequest 割当ランの実行リクエスト
type RunAllocationRequest struct {
	Seed *int64 `json:"seed"` // テスト・再現用。省略時は設定値または時刻シード
}

// AllocationItemResponse 枠 1 つ分の割当結果
type AllocationItemResponse struct {
	SlotLabel   string  `json:"slot_label"`
	StudentName *string `json:"student_name"` // null = 空き（条件不一致）
	Assigned    bool    `json:"assigned"`
}

// StudentCountResponse 受講者ごとの決定数
type StudentCountResponse struct {
	StudentName string `json:"student_name"`
	Count       int    `json:"count"`
}

// AllocationRunResponse 割当ランのレスポンス
type AllocationRunResponse struct {
	RunID         string                   `json:"run_id"`
	Status        string                   `json:"status"`
	SnapshotToken string                   `json:"snapshot_token"`
	Seed          int64                    `json:"seed"`
	Items         []AllocationItemResponse `json:"items"`
	Counts        []StudentCountResponse   `json:"counts"`
	CreatedAt     string                   `json:"created_at"`
	ConfirmedAt   *string                  `json:"confirmed_at,omitempty"`
}

// ConfirmAllocationRequest 割当ランの確定リクエスト
type ConfirmAllocationRequest struct {
	SnapshotToken string `json:"snapshot_token" binding:"required,uuid"`
}
