package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/taitaima2ma2-pixel/lesson-app/internal/dto"
	"github.com/taitaima2ma2-pixel/lesson-app/internal/model"
	"github.com/taitaima2ma2-pixel/lesson-app/internal/repository"
	"github.com/taitaima2ma2-pixel/lesson-app/internal/slottext"
	"github.com/taitaima2ma2-pixel/lesson-app/pkg/redis"
)

// ── 希望モジュール業務エラー ──

var (
	ErrStudentNotInRoster = errors.New("名簿に存在しない受講者です")
	ErrWishlistNotFound   = errors.New("希望が提出されていません")
)

// 回答状況ボードのキャッシュ
const (
	boardCacheKey = "lesson:board"
	boardCacheTTL = 30 * time.Second
)

// RequestService 希望提出の業務インターフェース
type RequestService interface {
	// Upsert 希望を提出する。再提出は全置換
	Upsert(ctx context.Context, studentName string, req *dto.UpsertWishlistRequest) (*dto.WishlistResponse, error)
	// Get 受講者 1 人分の希望を返す
	Get(ctx context.Context, studentName string) (*dto.WishlistResponse, error)
	// Board 名簿全員の回答状況ボードを返す
	Board(ctx context.Context) (*dto.BoardResponse, error)
}

type requestService struct {
	repo   *repository.Repository
	norm   *slottext.Normalizer
	rdb    *redis.Client // nil 可（キャッシュなしで動く）
	logger *zap.Logger
}

// NewRequestService RequestService を生成する
func NewRequestService(repo *repository.Repository, norm *slottext.Normalizer, rdb *redis.Client, logger *zap.Logger) RequestService {
	return &requestService{repo: repo, norm: norm, rdb: rdb, logger: logger}
}

func (s *requestService) Upsert(ctx context.Context, studentName string, req *dto.UpsertWishlistRequest) (*dto.WishlistResponse, error) {
	// 名簿照合
	students, err := s.repo.Student.ListAll(ctx)
	if err != nil {
		s.logger.Error("名簿の取得に失敗", zap.Error(err))
		return nil, err
	}
	inRoster := false
	for _, st := range students {
		if st.Name == studentName {
			inRoster = true
			break
		}
	}
	if !inRoster {
		return nil, ErrStudentNotInRoster
	}

	// 有効枠の集合
	slots, err := s.repo.Slot.ListAll(ctx)
	if err != nil {
		s.logger.Error("枠の取得に失敗", zap.Error(err))
		return nil, err
	}
	active := make(map[string]bool, len(slots))
	for _, sl := range slots {
		active[sl.Label] = true
	}

	// 正規化し、削除済み・編集済みの枠への参照は黙って落とす
	seen := make(map[string]bool, len(req.Wishes))
	wishes := make([]string, 0, len(req.Wishes))
	for _, w := range req.Wishes {
		w = s.norm.Normalize(w)
		if !active[w] || seen[w] {
			continue
		}
		seen[w] = true
		wishes = append(wishes, w)
	}
	slottext.SortLabels(wishes)

	record := &model.LessonRequest{StudentName: studentName}
	record.SetWishList(wishes)
	if err := s.repo.LessonRequest.Upsert(ctx, record); err != nil {
		s.logger.Error("希望の保存に失敗", zap.String("student", studentName), zap.Error(err))
		return nil, err
	}

	if s.rdb != nil {
		s.rdb.Invalidate(ctx, boardCacheKey)
	}

	s.logger.Info("希望を保存しました",
		zap.String("student", studentName),
		zap.Int("wishes", len(wishes)),
	)
	return &dto.WishlistResponse{
		StudentName: studentName,
		Wishes:      wishes,
		UpdatedAt:   time.Now().Format(time.RFC3339),
	}, nil
}

func (s *requestService) Get(ctx context.Context, studentName string) (*dto.WishlistResponse, error) {
	record, err := s.repo.LessonRequest.GetByStudentName(ctx, studentName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWishlistNotFound
		}
		s.logger.Error("希望の取得に失敗", zap.String("student", studentName), zap.Error(err))
		return nil, err
	}

	return &dto.WishlistResponse{
		StudentName: record.StudentName,
		Wishes:      record.WishList(),
		UpdatedAt:   record.UpdatedAt.Format(time.RFC3339),
	}, nil
}

func (s *requestService) Board(ctx context.Context) (*dto.BoardResponse, error) {
	if s.rdb != nil {
		if cached, ok := s.rdb.GetJSON(ctx, boardCacheKey); ok {
			var resp dto.BoardResponse
			if err := json.Unmarshal([]byte(cached), &resp); err == nil {
				return &resp, nil
			}
		}
	}

	students, err := s.repo.Student.ListAll(ctx)
	if err != nil {
		s.logger.Error("名簿の取得に失敗", zap.Error(err))
		return nil, err
	}
	requests, err := s.repo.LessonRequest.ListAll(ctx)
	if err != nil {
		s.logger.Error("希望の取得に失敗", zap.Error(err))
		return nil, err
	}

	wishCounts := make(map[string]int, len(requests))
	for i := range requests {
		wishCounts[requests[i].StudentName] = len(requests[i].WishList())
	}

	resp := &dto.BoardResponse{Entries: make([]dto.BoardEntry, 0, len(students))}
	for _, st := range students {
		count, submitted := wishCounts[st.Name]
		resp.Entries = append(resp.Entries, dto.BoardEntry{
			StudentName: st.Name,
			WishCount:   count,
			Submitted:   submitted,
		})
	}

	if s.rdb != nil {
		if raw, err := json.Marshal(resp); err == nil {
			s.rdb.SetJSON(ctx, boardCacheKey, string(raw), boardCacheTTL)
		}
	}

	return resp, nil
}
