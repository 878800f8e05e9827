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

func setupSlotService(repos *testRepos) SlotService {
	cfg := testSchedulingConfig()
	norm := slottext.NewNormalizer(cfg.ReferenceYear, cfg.LessonMinutes)
	return NewSlotService(repos.aggregate(), norm, zap.NewNop())
}

func TestSlotService_Replace_NormalizesAndSorts(t *testing.T) {
	repos := newTestRepos()
	svc := setupSlotService(repos)

	// 区切りゆれ・全角・重複・空要素の混在入力
	req := &dto.ReplaceSlotsRequest{Labels: []string{
		"10/4 13:00-13:50",
		"9/11 10:00",
		"  ",
		"9月11日(木) 10:00-10:50", // 2 行目の正規化結果と同じ
		"１０／５ ０９：００－０９：５０",
	}}

	result, err := svc.Replace(context.Background(), req)
	if err != nil {
		t.Fatalf("Replace は成功すべき: %v", err)
	}

	want := []string{
		"9月11日(木) 10:00-10:50",
		"10月4日(土) 13:00-13:50",
		"10月5日(日) 09:00-09:50",
	}
	if !reflect.DeepEqual(result.Labels, want) {
		t.Errorf("正規化・重複除去・時系列ソート:\n期待 %v\n実際 %v", want, result.Labels)
	}
	if !reflect.DeepEqual(repos.slot.labels, want) {
		t.Errorf("ストアにも正準形が書かれるべき: %v", repos.slot.labels)
	}
}

func TestSlotService_Replace_KeepsUnparseableVerbatim(t *testing.T) {
	repos := newTestRepos()
	svc := setupSlotService(repos)

	req := &dto.ReplaceSlotsRequest{Labels: []string{
		"9/11 10:00",
		"場所未定の補講", // 日付なし → そのまま保持
	}}

	result, err := svc.Replace(context.Background(), req)
	if err != nil {
		t.Fatalf("Replace は成功すべき: %v", err)
	}
	// 解釈不能なラベルは末尾に回る
	want := []string{"9月11日(木) 10:00-10:50", "場所未定の補講"}
	if !reflect.DeepEqual(result.Labels, want) {
		t.Errorf("期待 %v, 実際 %v", want, result.Labels)
	}
}

func TestSlotService_Replace_Empty(t *testing.T) {
	repos := newTestRepos()
	repos.slot.labels = []string{"9月11日(木) 10:00-10:50"}
	svc := setupSlotService(repos)

	result, err := svc.Replace(context.Background(), &dto.ReplaceSlotsRequest{Labels: []string{}})
	if err != nil {
		t.Fatalf("空集合への置換も成功すべき: %v", err)
	}
	if len(result.Labels) != 0 || len(repos.slot.labels) != 0 {
		t.Errorf("全消去されるべき: %v", repos.slot.labels)
	}
}

func TestSlotService_BulkGenerate(t *testing.T) {
	repos := newTestRepos()
	repos.slot.labels = []string{"9月11日(木) 10:00-10:50"}
	svc := setupSlotService(repos)

	req := &dto.BulkGenerateSlotsRequest{
		Date:       "10/4",
		StartTimes: []string{"13:00", "14:00"},
	}
	result, err := svc.BulkGenerate(context.Background(), req)
	if err != nil {
		t.Fatalf("BulkGenerate は成功すべき: %v", err)
	}

	want := []string{
		"9月11日(木) 10:00-10:50",
		"10月4日(土) 13:00-13:50",
		"10月4日(土) 14:00-14:50",
	}
	if !reflect.DeepEqual(result.Labels, want) {
		t.Errorf("既存と生成分のマージ:\n期待 %v\n実際 %v", want, result.Labels)
	}
}

func TestSlotService_BulkGenerate_BadDate(t *testing.T) {
	repos := newTestRepos()
	svc := setupSlotService(repos)

	req := &dto.BulkGenerateSlotsRequest{Date: "2/30", StartTimes: []string{"10:00"}}
	_, err := svc.BulkGenerate(context.Background(), req)
	if !errors.Is(err, ErrSlotDateInvalid) {
		t.Errorf("存在しない日付は ErrSlotDateInvalid: %v", err)
	}
}

func TestSlotService_DaySummary(t *testing.T) {
	repos := newTestRepos()
	repos.slot.labels = []string{
		"9月11日(木) 10:00-10:50",
		"9月11日(木) 10:50-11:40",
		"9月11日(木) 13:00-13:50",
		"10月4日(土) 09:00-09:50",
	}
	svc := setupSlotService(repos)

	result, err := svc.DaySummary(context.Background())
	if err != nil {
		t.Fatalf("DaySummary は成功すべき: %v", err)
	}

	if len(result.Days) != 2 {
		t.Fatalf("2 日分の要約のはず: %d", len(result.Days))
	}
	first := result.Days[0]
	if first.Date != "9月11日(木)" {
		t.Errorf("1 日目: %s", first.Date)
	}
	// 連続する 2 枠は 1 本の帯にまとまり、離れた枠は別の帯
	want := []string{"10:00〜11:40（2枠）", "13:00〜13:50（1枠）"}
	if !reflect.DeepEqual(first.Ranges, want) {
		t.Errorf("帯のまとめ方:\n期待 %v\n実際 %v", want, first.Ranges)
	}
}

func TestSlotService_List_StoreFailure(t *testing.T) {
	repos := newTestRepos()
	repos.slot.failed = true
	svc := setupSlotService(repos)

	_, err := svc.List(context.Background())
	if !errors.Is(err, errStoreDown) {
		t.Errorf("ストア障害はそのまま返すべき: %v", err)
	}
}
