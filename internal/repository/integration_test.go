//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/taitaima2ma2-pixel/lesson-app/internal/model"
	"github.com/taitaima2ma2-pixel/lesson-app/internal/repository"
	pkgerrors "github.com/taitaima2ma2-pixel/lesson-app/pkg/errors"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=lesson password=lesson_password dbname=lesson_test sslmode=disable TimeZone=Asia/Tokyo"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "テスト用データベースに接続できません: %v\n", err)
		os.Exit(1)
	}

	err = testDB.AutoMigrate(
		&model.Slot{},
		&model.Student{},
		&model.LessonRequest{},
		&model.HistoryEntry{},
		&model.AllocationRun{},
		&model.AllocationItem{},
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "AutoMigrate に失敗: %v\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

// cleanupAll 全テーブルを空にする
func cleanupAll(t *testing.T) {
	t.Helper()
	for _, m := range []interface{}{
		&model.AllocationItem{}, &model.AllocationRun{},
		&model.HistoryEntry{}, &model.LessonRequest{},
		&model.Student{}, &model.Slot{},
	} {
		if err := testDB.Where("1 = 1").Delete(m).Error; err != nil {
			t.Fatalf("クリーンアップに失敗: %v", err)
		}
	}
}

// ═══════════════════════════════════════════════════════════
// Slot / Student
// ═══════════════════════════════════════════════════════════

func TestSlotRepo_ReplaceAll(t *testing.T) {
	cleanupAll(t)
	ctx := context.Background()
	repo := repository.NewSlotRepo(testDB)

	if err := repo.ReplaceAll(ctx, []string{"9月11日(木) 10:00-10:50", "10月4日(土) 13:00-13:50"}); err != nil {
		t.Fatalf("ReplaceAll に失敗: %v", err)
	}
	slots, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll に失敗: %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("枠数 = %d, 期待 2", len(slots))
	}

	// 置換は全入れ替え
	if err := repo.ReplaceAll(ctx, []string{"10月5日(日) 09:00-09:50"}); err != nil {
		t.Fatalf("再置換に失敗: %v", err)
	}
	slots, _ = repo.ListAll(ctx)
	if len(slots) != 1 || slots[0].Label != "10月5日(日) 09:00-09:50" {
		t.Errorf("置換後の枠: %+v", slots)
	}

	// 空集合での置換は全消去
	if err := repo.ReplaceAll(ctx, nil); err != nil {
		t.Fatalf("空置換に失敗: %v", err)
	}
	slots, _ = repo.ListAll(ctx)
	if len(slots) != 0 {
		t.Errorf("全消去後も枠が残っている: %d", len(slots))
	}
}

func TestStudentRepo_ListAllOrdered(t *testing.T) {
	cleanupAll(t)
	ctx := context.Background()
	repo := repository.NewStudentRepo(testDB)

	if err := repo.ReplaceAll(ctx, []string{"鈴木", "佐藤"}); err != nil {
		t.Fatalf("ReplaceAll に失敗: %v", err)
	}
	students, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll に失敗: %v", err)
	}
	if len(students) != 2 {
		t.Fatalf("名簿数 = %d", len(students))
	}
}

// ═══════════════════════════════════════════════════════════
// LessonRequest
// ═══════════════════════════════════════════════════════════

func TestLessonRequestRepo_UpsertReplaces(t *testing.T) {
	cleanupAll(t)
	ctx := context.Background()
	repo := repository.NewLessonRequestRepo(testDB)

	first := &model.LessonRequest{StudentName: "佐藤"}
	first.SetWishList([]string{"9月11日(木) 10:00-10:50"})
	if err := repo.Upsert(ctx, first); err != nil {
		t.Fatalf("初回 Upsert に失敗: %v", err)
	}

	second := &model.LessonRequest{StudentName: "佐藤"}
	second.SetWishList([]string{"10月4日(土) 13:00-13:50"})
	if err := repo.Upsert(ctx, second); err != nil {
		t.Fatalf("再提出 Upsert に失敗: %v", err)
	}

	got, err := repo.GetByStudentName(ctx, "佐藤")
	if err != nil {
		t.Fatalf("GetByStudentName に失敗: %v", err)
	}
	wishes := got.WishList()
	if len(wishes) != 1 || wishes[0] != "10月4日(土) 13:00-13:50" {
		t.Errorf("再提出は全置換のはず: %v", wishes)
	}

	// 1 人 1 行を維持
	all, _ := repo.ListAll(ctx)
	if len(all) != 1 {
		t.Errorf("希望行数 = %d, 期待 1", len(all))
	}
}

// ═══════════════════════════════════════════════════════════
// History
// ═══════════════════════════════════════════════════════════

func TestHistoryRepo_CountByStudentAndSemester(t *testing.T) {
	cleanupAll(t)
	ctx := context.Background()
	repo := repository.NewHistoryRepo(testDB)

	entries := []model.HistoryEntry{
		{SlotLabel: "5月1日(木) 10:00-10:50", StudentName: "佐藤", Semester: "first_half"},
		{SlotLabel: "6月5日(木) 10:00-10:50", StudentName: "佐藤", Semester: "first_half"},
		{SlotLabel: "10月4日(土) 13:00-13:50", StudentName: "佐藤", Semester: "second_half"},
		{SlotLabel: "5月1日(木) 11:00-11:50", StudentName: "鈴木", Semester: "first_half"},
	}
	if err := repo.BulkAppend(ctx, entries); err != nil {
		t.Fatalf("BulkAppend に失敗: %v", err)
	}

	counts, err := repo.CountByStudentAndSemester(ctx, "first_half")
	if err != nil {
		t.Fatalf("集計に失敗: %v", err)
	}
	if counts["佐藤"] != 2 || counts["鈴木"] != 1 {
		t.Errorf("前期の集計: %v", counts)
	}

	counts, _ = repo.CountByStudentAndSemester(ctx, "second_half")
	if counts["佐藤"] != 1 {
		t.Errorf("後期の集計: %v", counts)
	}

	if err := repo.Clear(ctx); err != nil {
		t.Fatalf("Clear に失敗: %v", err)
	}
	all, _ := repo.ListAll(ctx)
	if len(all) != 0 {
		t.Errorf("Clear 後も履歴が残っている: %d", len(all))
	}
}

// ═══════════════════════════════════════════════════════════
// AllocationRun
// ═══════════════════════════════════════════════════════════

func TestAllocationRunRepo_CreateAndGet(t *testing.T) {
	cleanupAll(t)
	ctx := context.Background()
	repo := repository.NewAllocationRunRepo(testDB)

	name := "佐藤"
	run := &model.AllocationRun{
		Status:        model.RunStatusDraft,
		SnapshotToken: "11111111-1111-1111-1111-111111111111",
		Fingerprint:   "fp",
		Seed:          42,
		Items: []model.AllocationItem{
			{Position: 1, SlotLabel: "10月4日(土) 13:00-13:50"},
			{Position: 0, SlotLabel: "9月11日(木) 10:00-10:50", StudentName: &name},
		},
	}
	if err := repo.Create(ctx, run); err != nil {
		t.Fatalf("Create に失敗: %v", err)
	}

	got, err := repo.GetByID(ctx, run.RunID)
	if err != nil {
		t.Fatalf("GetByID に失敗: %v", err)
	}
	// 明細は position 順で返る
	if len(got.Items) != 2 || got.Items[0].Position != 0 || got.Items[1].Position != 1 {
		t.Errorf("明細の並び: %+v", got.Items)
	}

	latest, err := repo.GetLatest(ctx)
	if err != nil {
		t.Fatalf("GetLatest に失敗: %v", err)
	}
	if latest.RunID != run.RunID {
		t.Errorf("GetLatest = %s, 期待 %s", latest.RunID, run.RunID)
	}
}

func TestAllocationRunRepo_TransitionStatusGuards(t *testing.T) {
	cleanupAll(t)
	ctx := context.Background()
	repo := repository.NewAllocationRunRepo(testDB)

	run := &model.AllocationRun{
		Status:        model.RunStatusDraft,
		SnapshotToken: "22222222-2222-2222-2222-222222222222",
		Fingerprint:   "fp",
	}
	if err := repo.Create(ctx, run); err != nil {
		t.Fatalf("Create に失敗: %v", err)
	}

	run.Status = model.RunStatusConfirmed
	if err := repo.TransitionStatus(ctx, run, model.RunStatusDraft); err != nil {
		t.Fatalf("draft → confirmed は成功すべき: %v", err)
	}

	// 2 回目は既に confirmed なので競合
	run.Status = model.RunStatusDiscarded
	err := repo.TransitionStatus(ctx, run, model.RunStatusDraft)
	if !errors.Is(err, pkgerrors.ErrStatusConflict) {
		t.Errorf("ErrStatusConflict を期待したが: %v", err)
	}
}
