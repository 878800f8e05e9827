package model

import "strings"

// LessonRequest 受講者 1 人分の希望 — lesson_requests テーブル
//
// Wishes は枠文字列をカンマ連結した希望リスト。再提出時はマージではなく
// 全置換する。
type LessonRequest struct {
	RequestID   string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"request_id"`
	StudentName string `gorm:"type:varchar(100);not null;uniqueIndex"         json:"student_name"`
	Wishes      string `gorm:"type:text;not null;default:''"                  json:"wishes"`
	BaseModel
}

// TableName テーブル名を指定
func (LessonRequest) TableName() string { return "lesson_requests" }

// WishList カンマ連結の希望を枠文字列スライスに展開する
func (r *LessonRequest) WishList() []string {
	if r.Wishes == "" {
		return nil
	}
	parts := strings.Split(r.Wishes, ",")
	wishes := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			wishes = append(wishes, p)
		}
	}
	return wishes
}

// SetWishList 枠文字列スライスをカンマ連結で格納する
func (r *LessonRequest) SetWishList(wishes []string) {
	r.Wishes = strings.Join(wishes, ",")
}
