package model

// Student 名簿上の受講者 — students テーブル
//
// 受講者は氏名のみで識別する。希望・履歴は氏名文字列で紐づく。
type Student struct {
	StudentID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"student_id"`
	Name      string `gorm:"type:varchar(100);not null;uniqueIndex"         json:"name"`
	BaseModel
}

// TableName テーブル名を指定
func (Student) TableName() string { return "students" }
