package model

import "time"

// HistoryEntry 確定済みレッスンの履歴 — history_entries テーブル
//
// 確定操作でのみ追記され、以後書き換えない（追記専用）。
// 学期別の受講回数集計が割当エンジンの公平性ヒューリスティックに使われる。
type HistoryEntry struct {
	HistoryEntryID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"history_entry_id"`
	SlotLabel      string    `gorm:"type:varchar(100);not null"                     json:"slot_label"`
	StudentName    string    `gorm:"type:varchar(100);not null;index:idx_history_entries_student_semester" json:"student_name"`
	Semester       string    `gorm:"type:varchar(20);not null;index:idx_history_entries_student_semester"  json:"semester"` // first_half | second_half | unknown
	CreatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName テーブル名を指定
func (HistoryEntry) TableName() string { return "history_entries" }
