package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/taitaima2ma2-pixel/lesson-app/internal/model"
	pkgerrors "github.com/taitaima2ma2-pixel/lesson-app/pkg/errors"
)

// AllocationRunRepository 割当ランのデータアクセスインターフェース
type AllocationRunRepository interface {
	// Create ランと明細をまとめて保存する
	Create(ctx context.Context, run *model.AllocationRun) error
	GetByID(ctx context.Context, id string) (*model.AllocationRun, error)
	GetLatest(ctx context.Context) (*model.AllocationRun, error)
	// TransitionStatus fromStatus からの状態遷移を行う。既に別の操作で
	// 遷移済みの場合は pkg/errors.ErrStatusConflict を返す
	TransitionStatus(ctx context.Context, run *model.AllocationRun, fromStatus string) error
}

type allocationRunRepo struct {
	db *gorm.DB
}

// NewAllocationRunRepo AllocationRunRepository を生成する
func NewAllocationRunRepo(db *gorm.DB) AllocationRunRepository {
	return &allocationRunRepo{db: db}
}

func (r *allocationRunRepo) Create(ctx context.Context, run *model.AllocationRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *allocationRunRepo) GetByID(ctx context.Context, id string) (*model.AllocationRun, error) {
	var run model.AllocationRun
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("run_id = ?", id).
		First(&run).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *allocationRunRepo) GetLatest(ctx context.Context) (*model.AllocationRun, error) {
	var run model.AllocationRun
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Order("created_at DESC").
		First(&run).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *allocationRunRepo) TransitionStatus(ctx context.Context, run *model.AllocationRun, fromStatus string) error {
	result := r.db.WithContext(ctx).
		Model(&model.AllocationRun{}).
		Where("run_id = ? AND status = ?", run.RunID, fromStatus).
		Updates(map[string]interface{}{
			"status":       run.Status,
			"confirmed_at": run.ConfirmedAt,
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrStatusConflict
	}
	return nil
}
