package model

// Slot レッスン候補枠 — slots テーブル
//
// Label は正規化済みの枠文字列（例: 9月11日(木) 10:00-10:50）で、
// 外部ストア・希望・履歴すべてがこの文字列で枠を参照する。
// 枠は書き換えず、正規化は常に置き換えで行う。
type Slot struct {
	SlotID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"slot_id"`
	Label  string `gorm:"type:varchar(100);not null;uniqueIndex"         json:"label"`
	BaseModel
}

// TableName テーブル名を指定
func (Slot) TableName() string { return "slots" }
