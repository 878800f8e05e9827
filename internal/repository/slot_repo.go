package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/taitaima2ma2-pixel/lesson-app/internal/model"
)

// SlotRepository 枠ストアのデータアクセスインターフェース
type SlotRepository interface {
	ListAll(ctx context.Context) ([]model.Slot, error)
	// ReplaceAll 全枠を渡されたラベル集合で置き換える（正規化・重複除去・
	// 並び替えは Service 層で済ませてから呼ぶ）
	ReplaceAll(ctx context.Context, labels []string) error
}

type slotRepo struct {
	db *gorm.DB
}

// NewSlotRepo SlotRepository を生成する
func NewSlotRepo(db *gorm.DB) SlotRepository {
	return &slotRepo{db: db}
}

func (r *slotRepo) ListAll(ctx context.Context) ([]model.Slot, error) {
	var slots []model.Slot
	err := r.db.WithContext(ctx).Find(&slots).Error
	return slots, err
}

func (r *slotRepo) ReplaceAll(ctx context.Context, labels []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&model.Slot{}).Error; err != nil {
			return err
		}
		if len(labels) == 0 {
			return nil
		}
		slots := make([]model.Slot, 0, len(labels))
		for _, l := range labels {
			slots = append(slots, model.Slot{Label: l})
		}
		return tx.Create(&slots).Error
	})
}
