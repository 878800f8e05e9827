package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/taitaima2ma2-pixel/lesson-app/internal/model"
)

// StudentRepository 名簿ストアのデータアクセスインターフェース
type StudentRepository interface {
	ListAll(ctx context.Context) ([]model.Student, error)
	ReplaceAll(ctx context.Context, names []string) error
}

type studentRepo struct {
	db *gorm.DB
}

// NewStudentRepo StudentRepository を生成する
func NewStudentRepo(db *gorm.DB) StudentRepository {
	return &studentRepo{db: db}
}

func (r *studentRepo) ListAll(ctx context.Context) ([]model.Student, error) {
	var students []model.Student
	err := r.db.WithContext(ctx).Order("name ASC").Find(&students).Error
	return students, err
}

func (r *studentRepo) ReplaceAll(ctx context.Context, names []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&model.Student{}).Error; err != nil {
			return err
		}
		if len(names) == 0 {
			return nil
		}
		students := make([]model.Student, 0, len(names))
		for _, n := range names {
			students = append(students, model.Student{Name: n})
		}
		return tx.Create(&students).Error
	})
}
