package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/taitaima2ma2-pixel/lesson-app/internal/model"
	"github.com/taitaima2ma2-pixel/lesson-app/internal/repository"
	pkgerrors "github.com/taitaima2ma2-pixel/lesson-app/pkg/errors"
)

// errStoreDown ストア障害をシミュレートするためのエラー
var errStoreDown = errors.New("store down")

// ── Mock SlotRepository ──

type mockSlotRepo struct {
	labels []string
	failed bool // true なら全操作がエラーを返す
}

func newMockSlotRepo(labels ...string) *mockSlotRepo {
	return &mockSlotRepo{labels: labels}
}

func (m *mockSlotRepo) ListAll(_ context.Context) ([]model.Slot, error) {
	if m.failed {
		return nil, errStoreDown
	}
	slots := make([]model.Slot, 0, len(m.labels))
	for i, l := range m.labels {
		slots = append(slots, model.Slot{SlotID: fmt.Sprintf("slot-%d", i), Label: l})
	}
	return slots, nil
}

func (m *mockSlotRepo) ReplaceAll(_ context.Context, labels []string) error {
	if m.failed {
		return errStoreDown
	}
	m.labels = append([]string(nil), labels...)
	return nil
}

// ── Mock StudentRepository ──

type mockStudentRepo struct {
	names  []string
	failed bool
}

func newMockStudentRepo(names ...string) *mockStudentRepo {
	return &mockStudentRepo{names: names}
}

func (m *mockStudentRepo) ListAll(_ context.Context) ([]model.Student, error) {
	if m.failed {
		return nil, errStoreDown
	}
	students := make([]model.Student, 0, len(m.names))
	for i, n := range m.names {
		students = append(students, model.Student{StudentID: fmt.Sprintf("st-%d", i), Name: n})
	}
	return students, nil
}

func (m *mockStudentRepo) ReplaceAll(_ context.Context, names []string) error {
	if m.failed {
		return errStoreDown
	}
	m.names = append([]string(nil), names...)
	return nil
}

// ── Mock LessonRequestRepository ──

type mockLessonRequestRepo struct {
	requests map[string]*model.LessonRequest
	failed   bool
}

func newMockLessonRequestRepo() *mockLessonRequestRepo {
	return &mockLessonRequestRepo{requests: make(map[string]*model.LessonRequest)}
}

// put テストデータ投入用
func (m *mockLessonRequestRepo) put(name string, wishes ...string) {
	req := &model.LessonRequest{
		RequestID:   "req-" + name,
		StudentName: name,
	}
	req.SetWishList(wishes)
	m.requests[name] = req
}

func (m *mockLessonRequestRepo) ListAll(_ context.Context) ([]model.LessonRequest, error) {
	if m.failed {
		return nil, errStoreDown
	}
	var result []model.LessonRequest
	for _, r := range m.requests {
		result = append(result, *r)
	}
	return result, nil
}

func (m *mockLessonRequestRepo) GetByStudentName(_ context.Context, name string) (*model.LessonRequest, error) {
	if m.failed {
		return nil, errStoreDown
	}
	if r, ok := m.requests[name]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockLessonRequestRepo) Upsert(_ context.Context, req *model.LessonRequest) error {
	if m.failed {
		return errStoreDown
	}
	req.UpdatedAt = time.Now()
	m.requests[req.StudentName] = req
	return nil
}

func (m *mockLessonRequestRepo) DeleteByStudentName(_ context.Context, name string) error {
	if m.failed {
		return errStoreDown
	}
	delete(m.requests, name)
	return nil
}

// ── Mock HistoryRepository ──

type mockHistoryRepo struct {
	entries []model.HistoryEntry
	failed  bool
}

func newMockHistoryRepo() *mockHistoryRepo {
	return &mockHistoryRepo{}
}

func (m *mockHistoryRepo) ListAll(_ context.Context) ([]model.HistoryEntry, error) {
	if m.failed {
		return nil, errStoreDown
	}
	return append([]model.HistoryEntry(nil), m.entries...), nil
}

func (m *mockHistoryRepo) BulkAppend(_ context.Context, entries []model.HistoryEntry) error {
	if m.failed {
		return errStoreDown
	}
	now := time.Now()
	for i := range entries {
		if entries[i].HistoryEntryID == "" {
			entries[i].HistoryEntryID = fmt.Sprintf("hist-%d", len(m.entries)+i)
		}
		if entries[i].CreatedAt.IsZero() {
			entries[i].CreatedAt = now
		}
	}
	m.entries = append(m.entries, entries...)
	return nil
}

func (m *mockHistoryRepo) Clear(_ context.Context) error {
	if m.failed {
		return errStoreDown
	}
	m.entries = nil
	return nil
}

func (m *mockHistoryRepo) CountByStudentAndSemester(_ context.Context, semester string) (map[string]int, error) {
	if m.failed {
		return nil, errStoreDown
	}
	counts := make(map[string]int)
	for _, e := range m.entries {
		if e.Semester == semester {
			counts[e.StudentName]++
		}
	}
	return counts, nil
}

// ── Mock AllocationRunRepository ──

type mockAllocationRunRepo struct {
	runs   map[string]*model.AllocationRun
	order  []string // 作成順
	failed bool
}

func newMockAllocationRunRepo() *mockAllocationRunRepo {
	return &mockAllocationRunRepo{runs: make(map[string]*model.AllocationRun)}
}

func (m *mockAllocationRunRepo) Create(_ context.Context, run *model.AllocationRun) error {
	if m.failed {
		return errStoreDown
	}
	if run.RunID == "" {
		run.RunID = fmt.Sprintf("run-%d", len(m.order)+1)
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	for i := range run.Items {
		if run.Items[i].ItemID == "" {
			run.Items[i].ItemID = fmt.Sprintf("%s-item-%d", run.RunID, i)
		}
		run.Items[i].RunID = run.RunID
	}
	m.runs[run.RunID] = run
	m.order = append(m.order, run.RunID)
	return nil
}

// copyRun は格納中のランの複製を返す。本物のリポジトリは First で
// 新しい構造体に読み込むため、呼び出し側の変更が格納値へ波及しない。
// モックも同じ分離を保つ。
func copyRun(r *model.AllocationRun) *model.AllocationRun {
	cp := *r
	cp.Items = append([]model.AllocationItem(nil), r.Items...)
	return &cp
}

func (m *mockAllocationRunRepo) GetByID(_ context.Context, id string) (*model.AllocationRun, error) {
	if m.failed {
		return nil, errStoreDown
	}
	if r, ok := m.runs[id]; ok {
		return copyRun(r), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAllocationRunRepo) GetLatest(_ context.Context) (*model.AllocationRun, error) {
	if m.failed {
		return nil, errStoreDown
	}
	if len(m.order) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return copyRun(m.runs[m.order[len(m.order)-1]]), nil
}

func (m *mockAllocationRunRepo) TransitionStatus(_ context.Context, run *model.AllocationRun, fromStatus string) error {
	if m.failed {
		return errStoreDown
	}
	stored, ok := m.runs[run.RunID]
	if !ok || stored.Status != fromStatus {
		return pkgerrors.ErrStatusConflict
	}
	stored.Status = run.Status
	stored.ConfirmedAt = run.ConfirmedAt
	return nil
}

// ── テスト用 Repository 集約 ──

type testRepos struct {
	slot    *mockSlotRepo
	student *mockStudentRepo
	request *mockLessonRequestRepo
	history *mockHistoryRepo
	run     *mockAllocationRunRepo
}

func newTestRepos() *testRepos {
	return &testRepos{
		slot:    newMockSlotRepo(),
		student: newMockStudentRepo(),
		request: newMockLessonRequestRepo(),
		history: newMockHistoryRepo(),
		run:     newMockAllocationRunRepo(),
	}
}

func (t *testRepos) aggregate() *repository.Repository {
	return &repository.Repository{
		Slot:          t.slot,
		Student:       t.student,
		LessonRequest: t.request,
		History:       t.history,
		AllocationRun: t.run,
	}
}
