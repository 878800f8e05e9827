package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/taitaima2ma2-pixel/lesson-app/internal/dto"
	"github.com/taitaima2ma2-pixel/lesson-app/internal/repository"
)

// RosterService 名簿管理の業務インターフェース
type RosterService interface {
	List(ctx context.Context) (*dto.RosterResponse, error)
	// Replace 名簿を全置換する（空白除去・重複除去）
	Replace(ctx context.Context, req *dto.ReplaceRosterRequest) (*dto.RosterResponse, error)
}

type rosterService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewRosterService RosterService を生成する
func NewRosterService(repo *repository.Repository, logger *zap.Logger) RosterService {
	return &rosterService{repo: repo, logger: logger}
}

func (s *rosterService) List(ctx context.Context) (*dto.RosterResponse, error) {
	students, err := s.repo.Student.ListAll(ctx)
	if err != nil {
		s.logger.Error("名簿の取得に失敗", zap.Error(err))
		return nil, err
	}
	names := make([]string, 0, len(students))
	for _, st := range students {
		names = append(names, st.Name)
	}
	return &dto.RosterResponse{Names: names}, nil
}

func (s *rosterService) Replace(ctx context.Context, req *dto.ReplaceRosterRequest) (*dto.RosterResponse, error) {
	seen := make(map[string]bool, len(req.Names))
	names := make([]string, 0, len(req.Names))
	for _, n := range req.Names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		names = append(names, n)
	}

	if err := s.repo.Student.ReplaceAll(ctx, names); err != nil {
		s.logger.Error("名簿の書き戻しに失敗", zap.Error(err))
		return nil, err
	}

	s.logger.Info("名簿を置き換えました", zap.Int("count", len(names)))
	return &dto.RosterResponse{Names: names}, nil
}
