package service

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/taitaima2ma2-pixel/lesson-app/internal/dto"
	"github.com/taitaima2ma2-pixel/lesson-app/internal/slottext"
)

func setupRequestService(repos *testRepos) RequestService {
	cfg := testSchedulingConfig()
	norm := slottext.NewNormalizer(cfg.ReferenceYear, cfg.LessonMinutes)
	return NewRequestService(repos.aggregate(), norm, nil, zap.NewNop())
}

func TestRequestService_Upsert_NormalizesAndFilters(t *testing.T) {
	repos := newTestRepos()
	repos.slot.labels = []string{
		"9月11日(木) 10:00-10:50",
		"10月4日(土) 13:00-13:50",
	}
	repos.student.names = []string{"佐藤"}
	svc := setupRequestService(repos)

	req := &dto.UpsertWishlistRequest{Wishes: []string{
		"10/4 13:00-13:50",        // 正規化されて有効枠に一致
		"9月11日(木) 10:00-10:50",    // そのまま有効
		"12月1日(月) 10:00-10:50",    // 存在しない枠 → 黙って落とす
		"10月4日(土) 13:00-13:50",    // 重複
	}}
	result, err := svc.Upsert(context.Background(), "佐藤", req)
	if err != nil {
		t.Fatalf("Upsert は成功すべき: %v", err)
	}

	want := []string{"9月11日(木) 10:00-10:50", "10月4日(土) 13:00-13:50"}
	if !reflect.DeepEqual(result.Wishes, want) {
		t.Errorf("期待 %v, 実際 %v", want, result.Wishes)
	}

	stored := repos.request.requests["佐藤"]
	if stored == nil || !reflect.DeepEqual(stored.WishList(), want) {
		t.Errorf("ストアにも正準形が残るべき: %+v", stored)
	}
}

func TestRequestService_Upsert_ReplacesNotMerges(t *testing.T) {
	repos := newTestRepos()
	repos.slot.labels = []string{
		"9月11日(木) 10:00-10:50",
		"10月4日(土) 13:00-13:50",
	}
	repos.student.names = []string{"佐藤"}
	repos.request.put("佐藤", "9月11日(木) 10:00-10:50")
	svc := setupRequestService(repos)

	req := &dto.UpsertWishlistRequest{Wishes: []string{"10月4日(土) 13:00-13:50"}}
	result, err := svc.Upsert(context.Background(), "佐藤", req)
	if err != nil {
		t.Fatalf("Upsert は成功すべき: %v", err)
	}
	// 再提出は全置換。旧希望が残ってはならない
	want := []string{"10月4日(土) 13:00-13:50"}
	if !reflect.DeepEqual(result.Wishes, want) {
		t.Errorf("期待 %v, 実際 %v", want, result.Wishes)
	}
}

func TestRequestService_Upsert_NotInRoster(t *testing.T) {
	repos := newTestRepos()
	repos.slot.labels = []string{"9月11日(木) 10:00-10:50"}
	repos.student.names = []string{"佐藤"}
	svc := setupRequestService(repos)

	req := &dto.UpsertWishlistRequest{Wishes: []string{"9月11日(木) 10:00-10:50"}}
	_, err := svc.Upsert(context.Background(), "名簿外", req)
	if !errors.Is(err, ErrStudentNotInRoster) {
		t.Errorf("ErrStudentNotInRoster を期待したが: %v", err)
	}
}

func TestRequestService_Upsert_EmptyWishesAllowed(t *testing.T) {
	repos := newTestRepos()
	repos.slot.labels = []string{"9月11日(木) 10:00-10:50"}
	repos.student.names = []string{"佐藤"}
	repos.request.put("佐藤", "9月11日(木) 10:00-10:50")
	svc := setupRequestService(repos)

	// 全解除（希望ゼロでの再提出）も受け付ける
	result, err := svc.Upsert(context.Background(), "佐藤", &dto.UpsertWishlistRequest{Wishes: []string{}})
	if err != nil {
		t.Fatalf("希望ゼロの再提出も成功すべき: %v", err)
	}
	if len(result.Wishes) != 0 {
		t.Errorf("希望は空になるべき: %v", result.Wishes)
	}
}

func TestRequestService_Get_NotFound(t *testing.T) {
	repos := newTestRepos()
	svc := setupRequestService(repos)

	_, err := svc.Get(context.Background(), "佐藤")
	if !errors.Is(err, ErrWishlistNotFound) {
		t.Errorf("ErrWishlistNotFound を期待したが: %v", err)
	}
}

func TestRequestService_Board(t *testing.T) {
	repos := newTestRepos()
	repos.slot.labels = []string{"9月11日(木) 10:00-10:50"}
	repos.student.names = []string{"佐藤", "鈴木"}
	repos.request.put("佐藤", "9月11日(木) 10:00-10:50")
	svc := setupRequestService(repos)

	board, err := svc.Board(context.Background())
	if err != nil {
		t.Fatalf("Board は成功すべき: %v", err)
	}
	if len(board.Entries) != 2 {
		t.Fatalf("名簿全員が載るべき: %d", len(board.Entries))
	}

	byName := make(map[string]dto.BoardEntry)
	for _, e := range board.Entries {
		byName[e.StudentName] = e
	}
	if e := byName["佐藤"]; !e.Submitted || e.WishCount != 1 {
		t.Errorf("佐藤: %+v", e)
	}
	if e := byName["鈴木"]; e.Submitted || e.WishCount != 0 {
		t.Errorf("未提出の鈴木: %+v", e)
	}
}

func TestRequestService_Board_StoreFailure(t *testing.T) {
	repos := newTestRepos()
	repos.student.failed = true
	svc := setupRequestService(repos)

	_, err := svc.Board(context.Background())
	if !errors.Is(err, errStoreDown) {
		t.Errorf("ストア障害はそのまま返すべき: %v", err)
	}
}
