package service

import (
	"go.uber.org/zap"

	"github.com/taitaima2ma2-pixel/lesson-app/config"
	"github.com/taitaima2ma2-pixel/lesson-app/internal/repository"
	"github.com/taitaima2ma2-pixel/lesson-app/internal/slottext"
	"github.com/taitaima2ma2-pixel/lesson-app/pkg/redis"
)

// Service 全 Service の集約
type Service struct {
	Slot       SlotService
	Roster     RosterService
	Request    RequestService
	Allocation AllocationService
	Export     ExportService
}

// NewService Service 集約を生成する
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	rdb *redis.Client,
	logger *zap.Logger,
) *Service {
	norm := slottext.NewNormalizer(cfg.Scheduling.ReferenceYear, cfg.Scheduling.LessonMinutes)

	return &Service{
		Slot:       NewSlotService(repo, norm, logger),
		Roster:     NewRosterService(repo, logger),
		Request:    NewRequestService(repo, norm, rdb, logger),
		Allocation: NewAllocationService(repo, &cfg.Scheduling, norm, logger),
		Export:     NewExportService(repo, &cfg.Scheduling, norm, logger),
	}
}
