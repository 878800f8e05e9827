package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/taitaima2ma2-pixel/lesson-app/internal/dto"
	"github.com/taitaima2ma2-pixel/lesson-app/internal/repository"
	"github.com/taitaima2ma2-pixel/lesson-app/internal/slottext"
)

// ── 枠モジュール業務エラー ──

var (
	ErrSlotDateInvalid = errors.New("枠の日付を解釈できません")
)

// SlotService 枠管理の業務インターフェース
type SlotService interface {
	// List 有効な枠を時系列順で返す
	List(ctx context.Context) (*dto.SlotListResponse, error)
	// Replace 枠集合を全置換する（正規化・重複除去・並び替えの上で書き戻す）
	Replace(ctx context.Context, req *dto.ReplaceSlotsRequest) (*dto.SlotListResponse, error)
	// BulkGenerate 1 日分の連続枠を一括生成して既存集合に加える
	BulkGenerate(ctx context.Context, req *dto.BulkGenerateSlotsRequest) (*dto.SlotListResponse, error)
	// DaySummary 日別に連続帯へまとめた要約を返す
	DaySummary(ctx context.Context) (*dto.SlotSummaryResponse, error)
}

type slotService struct {
	repo   *repository.Repository
	norm   *slottext.Normalizer
	logger *zap.Logger
}

// NewSlotService SlotService を生成する
func NewSlotService(repo *repository.Repository, norm *slottext.Normalizer, logger *zap.Logger) SlotService {
	return &slotService{repo: repo, norm: norm, logger: logger}
}

func (s *slotService) List(ctx context.Context) (*dto.SlotListResponse, error) {
	labels, err := s.activeLabels(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.SlotListResponse{Labels: labels}, nil
}

func (s *slotService) Replace(ctx context.Context, req *dto.ReplaceSlotsRequest) (*dto.SlotListResponse, error) {
	labels := s.canonicalize(req.Labels)

	if err := s.repo.Slot.ReplaceAll(ctx, labels); err != nil {
		s.logger.Error("枠の書き戻しに失敗", zap.Error(err))
		return nil, err
	}

	s.logger.Info("枠を置き換えました", zap.Int("count", len(labels)))
	return &dto.SlotListResponse{Labels: labels}, nil
}

func (s *slotService) BulkGenerate(ctx context.Context, req *dto.BulkGenerateSlotsRequest) (*dto.SlotListResponse, error) {
	// 日付部が解釈できることを先に確かめる
	if _, ok := s.norm.Parse(req.Date); !ok {
		return nil, ErrSlotDateInvalid
	}

	existing, err := s.activeLabels(ctx)
	if err != nil {
		return nil, err
	}

	generated := make([]string, 0, len(req.StartTimes))
	for _, start := range req.StartTimes {
		generated = append(generated, req.Date+" "+start)
	}

	labels := s.canonicalize(append(existing, generated...))

	if err := s.repo.Slot.ReplaceAll(ctx, labels); err != nil {
		s.logger.Error("生成枠の書き戻しに失敗", zap.Error(err))
		return nil, err
	}

	s.logger.Info("枠を一括生成しました",
		zap.String("date", req.Date),
		zap.Int("generated", len(generated)),
		zap.Int("total", len(labels)),
	)
	return &dto.SlotListResponse{Labels: labels}, nil
}

func (s *slotService) DaySummary(ctx context.Context) (*dto.SlotSummaryResponse, error) {
	labels, err := s.activeLabels(ctx)
	if err != nil {
		return nil, err
	}

	var parsed []slottext.SlotTime
	for _, l := range labels {
		if st, ok := s.norm.Parse(l); ok {
			parsed = append(parsed, st)
		}
	}

	resp := &dto.SlotSummaryResponse{Days: []dto.DaySummaryResponse{}}
	for _, day := range slottext.SummarizeByDay(parsed) {
		resp.Days = append(resp.Days, dto.DaySummaryResponse{
			Date:   day.Date,
			Ranges: day.Ranges,
		})
	}
	return resp, nil
}

// activeLabels 現在の枠ラベルを時系列順で返す
func (s *slotService) activeLabels(ctx context.Context) ([]string, error) {
	slots, err := s.repo.Slot.ListAll(ctx)
	if err != nil {
		s.logger.Error("枠の取得に失敗", zap.Error(err))
		return nil, err
	}
	labels := make([]string, 0, len(slots))
	for _, sl := range slots {
		labels = append(labels, sl.Label)
	}
	slottext.SortLabels(labels)
	return labels, nil
}

// canonicalize 正規化→重複除去→時系列ソート
func (s *slotService) canonicalize(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	labels := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		l = s.norm.Normalize(l)
		if seen[l] {
			continue
		}
		seen[l] = true
		labels = append(labels, l)
	}
	slottext.SortLabels(labels)
	return labels
}
