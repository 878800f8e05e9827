package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/taitaima2ma2-pixel/lesson-app/internal/model"
)

// HistoryRepository 履歴ストアのデータアクセスインターフェース
//
// 追記専用。既存行の更新・部分削除は提供しない。Clear は管理者が明示的に
// 全履歴をリセットするための別系統の操作。
type HistoryRepository interface {
	ListAll(ctx context.Context) ([]model.HistoryEntry, error)
	BulkAppend(ctx context.Context, entries []model.HistoryEntry) error
	Clear(ctx context.Context) error
	// CountByStudentAndSemester 学期ごとの受講回数を氏名→回数で返す
	CountByStudentAndSemester(ctx context.Context, semester string) (map[string]int, error)
}

type historyRepo struct {
	db *gorm.DB
}

// NewHistoryRepo HistoryRepository を生成する
func NewHistoryRepo(db *gorm.DB) HistoryRepository {
	return &historyRepo{db: db}
}

func (r *historyRepo) ListAll(ctx context.Context) ([]model.HistoryEntry, error) {
	var entries []model.HistoryEntry
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&entries).Error
	return entries, err
}

func (r *historyRepo) BulkAppend(ctx context.Context, entries []model.HistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&entries).Error
}

func (r *historyRepo) Clear(ctx context.Context) error {
	return r.db.WithContext(ctx).Where("1 = 1").Delete(&model.HistoryEntry{}).Error
}

func (r *historyRepo) CountByStudentAndSemester(ctx context.Context, semester string) (map[string]int, error) {
	type row struct {
		StudentName string
		Count       int
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&model.HistoryEntry{}).
		Select("student_name, COUNT(*) AS count").
		Where("semester = ?", semester).
		Group("student_name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(rows))
	for _, rw := range rows {
		counts[rw.StudentName] = rw.Count
	}
	return counts, nil
}
