package model

import "time"

// 割当ランの状態
const (
	RunStatusDraft     = "draft"     // プレビュー（未確定）
	RunStatusConfirmed = "confirmed" // 履歴へ反映済み
	RunStatusDiscarded = "discarded" // 破棄
)

// AllocationRun 割当エンジン 1 回分の実行結果 — allocation_runs テーブル
//
// プレビューは暗黙の共有状態ではなく、スナップショットトークンと
// 入力フィンガープリントを持つ明示的な値として永続化する。確定時に
// フィンガープリントを照合し、元データが変わっていれば確定を拒否する。
type AllocationRun struct {
	RunID         string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"run_id"`
	Status        string     `gorm:"type:varchar(20);not null;default:'draft'"      json:"status"`
	SnapshotToken string     `gorm:"type:uuid;not null"                             json:"snapshot_token"`
	Fingerprint   string     `gorm:"type:varchar(64);not null"                      json:"fingerprint"` // 入力データの sha-256
	Seed          int64      `gorm:"not null;default:0"                             json:"seed"`
	ConfirmedAt   *time.Time `json:"confirmed_at,omitempty"`
	BaseModel

	// 関連
	Items []AllocationItem `gorm:"foreignKey:RunID;references:RunID" json:"items,omitempty"`
}

// TableName テーブル名を指定
func (AllocationRun) TableName() string { return "allocation_runs" }

// AllocationItem 枠 1 つ分の割当結果 — allocation_items テーブル
//
// 有効な全枠が必ず 1 行ずつ現れる。StudentName が nil の行は
// 「空き（条件不一致）」を表す明示的な未割当マーカー。
type AllocationItem struct {
	ItemID      string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"item_id"`
	RunID       string    `gorm:"type:uuid;not null;index"                       json:"run_id"`
	Position    int       `gorm:"not null"                                       json:"position"` // 時系列順の並び
	SlotLabel   string    `gorm:"type:varchar(100);not null"                     json:"slot_label"`
	StudentName *string   `gorm:"type:varchar(100)"                              json:"student_name,omitempty"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName テーブル名を指定
func (AllocationItem) TableName() string { return "allocation_items" }

// Assigned 割当済みかどうか
func (i *AllocationItem) Assigned() bool {
	return i.StudentName != nil && *i.StudentName != ""
}
