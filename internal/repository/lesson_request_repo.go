package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/taitaima2ma2-pixel/lesson-app/internal/model"
)

// LessonRequestRepository 希望ストアのデータアクセスインターフェース
type LessonRequestRepository interface {
	ListAll(ctx context.Context) ([]model.LessonRequest, error)
	GetByStudentName(ctx context.Context, name string) (*model.LessonRequest, error)
	// Upsert 氏名をキーに希望を全置換する
	Upsert(ctx context.Context, req *model.LessonRequest) error
	DeleteByStudentName(ctx context.Context, name string) error
}

type lessonRequestRepo struct {
	db *gorm.DB
}

// NewLessonRequestRepo LessonRequestRepository を生成する
func NewLessonRequestRepo(db *gorm.DB) LessonRequestRepository {
	return &lessonRequestRepo{db: db}
}

func (r *lessonRequestRepo) ListAll(ctx context.Context) ([]model.LessonRequest, error) {
	var reqs []model.LessonRequest
	err := r.db.WithContext(ctx).Order("student_name ASC").Find(&reqs).Error
	return reqs, err
}

func (r *lessonRequestRepo) GetByStudentName(ctx context.Context, name string) (*model.LessonRequest, error) {
	var req model.LessonRequest
	err := r.db.WithContext(ctx).Where("student_name = ?", name).First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *lessonRequestRepo) Upsert(ctx context.Context, req *model.LessonRequest) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_name"}},
			DoUpdates: clause.AssignmentColumns([]string{"wishes", "updated_at"}),
		}).
		Create(req).Error
}

func (r *lessonRequestRepo) DeleteByStudentName(ctx context.Context, name string) error {
	return r.db.WithContext(ctx).
		Where("student_name = ?", name).
		Delete(&model.LessonRequest{}).Error
}
