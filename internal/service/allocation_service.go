package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/taitaima2ma2-pixel/lesson-app/config"
	"github.com/taitaima2ma2-pixel/lesson-app/internal/dto"
	"github.com/taitaima2ma2-pixel/lesson-app/internal/model"
	"github.com/taitaima2ma2-pixel/lesson-app/internal/repository"
	"github.com/taitaima2ma2-pixel/lesson-app/internal/slottext"
	pkgerrors "github.com/taitaima2ma2-pixel/lesson-app/pkg/errors"
)

// ── 割当モジュール業務エラー ──

var (
	ErrNoActiveSlots    = errors.New("候補枠が登録されていません")
	ErrNoRequests       = errors.New("希望が1件も提出されていません")
	ErrEmptyRoster      = errors.New("名簿が空です")
	ErrRunNotFound      = errors.New("割当ランが存在しません")
	ErrRunNotDraft      = errors.New("プレビュー状態のランではありません")
	ErrSnapshotMismatch = errors.New("スナップショットトークンが一致しません")
	ErrPreviewStale     = errors.New("プレビュー作成後に枠・希望・名簿が変更されています。再実行してください")
)

// AllocationService 割当エンジンの業務インターフェース
type AllocationService interface {
	// Run 割当を実行しプレビュー（draft ラン）を保存して返す
	Run(ctx context.Context, req *dto.RunAllocationRequest) (*dto.AllocationRunResponse, error)
	// Get ランを取得する
	Get(ctx context.Context, runID string) (*dto.AllocationRunResponse, error)
	// Latest 直近のランを取得する
	Latest(ctx context.Context) (*dto.AllocationRunResponse, error)
	// Confirm draft ランを履歴へ確定する（追記専用）
	Confirm(ctx context.Context, runID string, req *dto.ConfirmAllocationRequest) (*dto.AllocationRunResponse, error)
	// Discard draft ランを破棄する
	Discard(ctx context.Context, runID string) error
	// History 確定済み履歴を返す
	History(ctx context.Context) (*dto.HistoryListResponse, error)
	// ResetHistory 全履歴を消去する（割当フローとは別の管理操作）
	ResetHistory(ctx context.Context) error
}

type allocationService struct {
	repo   *repository.Repository
	cfg    *config.SchedulingConfig
	norm   *slottext.Normalizer
	logger *zap.Logger
}

// NewAllocationService AllocationService を生成する
func NewAllocationService(repo *repository.Repository, cfg *config.SchedulingConfig, norm *slottext.Normalizer, logger *zap.Logger) AllocationService {
	return &allocationService{repo: repo, cfg: cfg, norm: norm, logger: logger}
}

// ════════════════════════════════════════════════════════════
// Run — 貪欲・単一パスの割当
// ════════════════════════════════════════════════════════════
//
// 枠は時系列順に 1 つずつ決めていき、決めた枠は二度と見直さない
// （バックトラックなし）。序盤の局所最適が全体の偏りを生み得るが、
// 単純さと再現性を優先した意図的な設計。処理順を時系列に固定する
// ことで、連続性判定の対象となる直前コマが常に先に確定する。
//
// 各枠の優先度スコア（小さいほど優先）:
//   確定履歴の同学期受講回数 + 今回ラン内の同学期割当数 + 連続性調整
// 連続性調整: 同日すでに 1 コマ持つ受講者は、直前コマの終了時刻と
// 新枠の開始時刻が一致すれば ContinuityBonus（強い優遇）、
// 一致しなければ SecondBookingPenalty（初回枠より必ず劣後）。
// 同点は枠ごとに独立な乱数で一様に決める。

func (s *allocationService) Run(ctx context.Context, req *dto.RunAllocationRequest) (*dto.AllocationRunResponse, error) {
	// ── 前提データの読み込み（不足は実行拒否、ストア障害はエラーのまま伝播）──

	slots, err := s.repo.Slot.ListAll(ctx)
	if err != nil {
		s.logger.Error("枠の取得に失敗", zap.Error(err))
		return nil, err
	}
	if len(slots) == 0 {
		return nil, ErrNoActiveSlots
	}

	students, err := s.repo.Student.ListAll(ctx)
	if err != nil {
		s.logger.Error("名簿の取得に失敗", zap.Error(err))
		return nil, err
	}
	if len(students) == 0 {
		return nil, ErrEmptyRoster
	}

	requests, err := s.repo.LessonRequest.ListAll(ctx)
	if err != nil {
		s.logger.Error("希望の取得に失敗", zap.Error(err))
		return nil, err
	}

	roster := make(map[string]bool, len(students))
	for _, st := range students {
		roster[st.Name] = true
	}

	wishlists := make(map[string][]string, len(requests))
	for i := range requests {
		r := &requests[i]
		if !roster[r.StudentName] {
			continue // 名簿から外れた受講者の残留希望は無視
		}
		if wishes := r.WishList(); len(wishes) > 0 {
			wishlists[r.StudentName] = wishes
		}
	}
	if len(wishlists) == 0 {
		return nil, ErrNoRequests
	}

	// ── 学期ごとの確定履歴回数 ──

	histCounts := make(map[slottext.Semester]map[string]int, 3)
	for _, sem := range []slottext.Semester{slottext.SemesterFirstHalf, slottext.SemesterSecondHalf, slottext.SemesterUnknown} {
		counts, err := s.repo.History.CountByStudentAndSemester(ctx, string(sem))
		if err != nil {
			s.logger.Error("履歴集計に失敗", zap.String("semester", string(sem)), zap.Error(err))
			return nil, err
		}
		histCounts[sem] = counts
	}

	// ── 枠の構造化と時系列順の決定 ──

	type slotEntry struct {
		label  string
		parsed slottext.SlotTime
		ok     bool
	}
	entries := make([]slotEntry, 0, len(slots))
	for _, sl := range slots {
		st, ok := s.norm.Parse(sl.Label)
		entries = append(entries, slotEntry{label: sl.Label, parsed: st, ok: ok})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return slottext.SortKey(entries[i].label) < slottext.SortKey(entries[j].label)
	})

	// ── 希望の反転: 枠 → 応募者リスト ──
	// 受講者の走査順を氏名順に固定して再現性を保つ

	names := make([]string, 0, len(wishlists))
	for name := range wishlists {
		names = append(names, name)
	}
	sort.Strings(names)

	active := make(map[string]bool, len(entries))
	for _, e := range entries {
		active[e.label] = true
	}
	applicants := make(map[string][]string, len(entries))
	for _, name := range names {
		seen := make(map[string]bool)
		for _, wish := range wishlists[name] {
			wish = s.norm.Normalize(wish)
			if !active[wish] || seen[wish] {
				continue // 削除・編集済みの枠への古い参照は黙って落とす
			}
			seen[wish] = true
			applicants[wish] = append(applicants[wish], name)
		}
	}

	// ── 乱数シードの解決 ──

	seed := s.cfg.Seed
	if req != nil && req.Seed != nil {
		seed = *req.Seed
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	// ── 貪欲割当本体 ──

	runCounts := map[slottext.Semester]map[string]int{
		slottext.SemesterFirstHalf:  {},
		slottext.SemesterSecondHalf: {},
		slottext.SemesterUnknown:    {},
	}
	dayCounts := make(map[string]map[string]int) // 日付 → 氏名 → 当日割当数
	lastEnds := make(map[string]map[string]int)  // 日付 → 氏名 → 直前コマの終了分

	items := make([]model.AllocationItem, 0, len(entries))

	for pos, e := range entries {
		dateKey := e.label
		if e.ok {
			dateKey = e.parsed.DateLabel()
		}
		sem := slottext.SemesterUnknown
		if e.ok {
			sem = slottext.SemesterOfMonth(e.parsed.Month)
		}

		winner := s.pickWinner(e.parsed, e.ok, sem, dateKey,
			applicants[e.label], histCounts, runCounts, dayCounts, lastEnds, rng)

		item := model.AllocationItem{Position: pos, SlotLabel: e.label}
		if winner != "" {
			name := winner
			item.StudentName = &name

			runCounts[sem][winner]++
			if dayCounts[dateKey] == nil {
				dayCounts[dateKey] = make(map[string]int)
			}
			dayCounts[dateKey][winner]++
			if e.ok && e.parsed.HasTime {
				if lastEnds[dateKey] == nil {
					lastEnds[dateKey] = make(map[string]int)
				}
				lastEnds[dateKey][winner] = e.parsed.End
			}
		}
		items = append(items, item)
	}

	// ── プレビューの永続化 ──

	run := &model.AllocationRun{
		Status:        model.RunStatusDraft,
		SnapshotToken: uuid.NewString(),
		Fingerprint:   fingerprint(slots, requests, students),
		Seed:          seed,
		Items:         items,
	}
	if err := s.repo.AllocationRun.Create(ctx, run); err != nil {
		s.logger.Error("割当ランの保存に失敗", zap.Error(err))
		return nil, err
	}

	assigned := 0
	for i := range items {
		if items[i].Assigned() {
			assigned++
		}
	}
	s.logger.Info("割当ランを実行しました",
		zap.String("run_id", run.RunID),
		zap.Int("slots", len(items)),
		zap.Int("assigned", assigned),
		zap.Int64("seed", seed),
	)

	return toRunResponse(run), nil
}

// pickWinner 1 つの枠について勝者を選ぶ。候補がいなければ空文字
func (s *allocationService) pickWinner(
	parsed slottext.SlotTime,
	parsedOK bool,
	sem slottext.Semester,
	dateKey string,
	candidates []string,
	histCounts map[slottext.Semester]map[string]int,
	runCounts map[slottext.Semester]map[string]int,
	dayCounts map[string]map[string]int,
	lastEnds map[string]map[string]int,
	rng *rand.Rand,
) string {
	if len(candidates) == 0 {
		return ""
	}

	type scored struct {
		name  string
		score int
	}
	var pool []scored

	for _, name := range candidates {
		// 同日上限（ハード制約）
		todays := dayCounts[dateKey][name]
		if todays >= s.cfg.DailyCap {
			continue
		}

		score := histCounts[sem][name] + runCounts[sem][name]

		// 連続性調整: 同日 1 コマ目の直後なら強く優遇、
		// 離れた 2 コマ目は初回枠より必ず劣後させる
		if todays == 1 {
			prevEnd, hasPrev := lastEnds[dateKey][name]
			if parsedOK && parsed.HasTime && hasPrev && parsed.Start == prevEnd {
				score += s.cfg.ContinuityBonus
			} else {
				score += s.cfg.SecondBookingPenalty
			}
		}

		pool = append(pool, scored{name: name, score: score})
	}
	if len(pool) == 0 {
		return ""
	}

	best := pool[0].score
	for _, c := range pool[1:] {
		if c.score < best {
			best = c.score
		}
	}
	var tied []string
	for _, c := range pool {
		if c.score == best {
			tied = append(tied, c.name)
		}
	}

	// 同点は枠ごとに独立な一様乱数で決める
	return tied[rng.Intn(len(tied))]
}

// ════════════════════════════════════════════════════════════
// Get / Latest
// ════════════════════════════════════════════════════════════

func (s *allocationService) Get(ctx context.Context, runID string) (*dto.AllocationRunResponse, error) {
	run, err := s.repo.AllocationRun.GetByID(ctx, runID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRunNotFound
		}
		s.logger.Error("割当ランの取得に失敗", zap.Error(err))
		return nil, err
	}
	return toRunResponse(run), nil
}

func (s *allocationService) Latest(ctx context.Context) (*dto.AllocationRunResponse, error) {
	run, err := s.repo.AllocationRun.GetLatest(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRunNotFound
		}
		s.logger.Error("割当ランの取得に失敗", zap.Error(err))
		return nil, err
	}
	return toRunResponse(run), nil
}

// ════════════════════════════════════════════════════════════
// Confirm — プレビューを履歴へ確定
// ════════════════════════════════════════════════════════════

func (s *allocationService) Confirm(ctx context.Context, runID string, req *dto.ConfirmAllocationRequest) (*dto.AllocationRunResponse, error) {
	run, err := s.repo.AllocationRun.GetByID(ctx, runID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRunNotFound
		}
		s.logger.Error("割当ランの取得に失敗", zap.Error(err))
		return nil, err
	}

	if run.Status != model.RunStatusDraft {
		return nil, ErrRunNotDraft
	}
	if req.SnapshotToken != run.SnapshotToken {
		return nil, ErrSnapshotMismatch
	}

	// プレビュー作成時の入力と現在のストア内容を照合する。
	// ずれていれば黙って適用せず確定を拒否する
	slots, err := s.repo.Slot.ListAll(ctx)
	if err != nil {
		s.logger.Error("枠の取得に失敗", zap.Error(err))
		return nil, err
	}
	requests, err := s.repo.LessonRequest.ListAll(ctx)
	if err != nil {
		s.logger.Error("希望の取得に失敗", zap.Error(err))
		return nil, err
	}
	students, err := s.repo.Student.ListAll(ctx)
	if err != nil {
		s.logger.Error("名簿の取得に失敗", zap.Error(err))
		return nil, err
	}
	if fingerprint(slots, requests, students) != run.Fingerprint {
		return nil, ErrPreviewStale
	}

	// 割当済みの明細のみ、(枠, 受講者, 学期) を追記する
	entries := make([]model.HistoryEntry, 0, len(run.Items))
	for i := range run.Items {
		item := &run.Items[i]
		if !item.Assigned() {
			continue
		}
		entries = append(entries, model.HistoryEntry{
			SlotLabel:   item.SlotLabel,
			StudentName: *item.StudentName,
			Semester:    string(slottext.SemesterOf(item.SlotLabel)),
		})
	}
	if err := s.repo.History.BulkAppend(ctx, entries); err != nil {
		s.logger.Error("履歴の追記に失敗", zap.Error(err))
		return nil, err
	}

	now := time.Now()
	run.Status = model.RunStatusConfirmed
	run.ConfirmedAt = &now
	if err := s.repo.AllocationRun.TransitionStatus(ctx, run, model.RunStatusDraft); err != nil {
		if errors.Is(err, pkgerrors.ErrStatusConflict) {
			return nil, ErrRunNotDraft
		}
		s.logger.Error("ランの確定状態更新に失敗", zap.Error(err))
		return nil, err
	}

	s.logger.Info("割当ランを確定しました",
		zap.String("run_id", run.RunID),
		zap.Int("history_appended", len(entries)),
	)
	return toRunResponse(run), nil
}

// ════════════════════════════════════════════════════════════
// Discard / History / ResetHistory
// ════════════════════════════════════════════════════════════

func (s *allocationService) Discard(ctx context.Context, runID string) error {
	run, err := s.repo.AllocationRun.GetByID(ctx, runID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRunNotFound
		}
		s.logger.Error("割当ランの取得に失敗", zap.Error(err))
		return err
	}
	if run.Status != model.RunStatusDraft {
		return ErrRunNotDraft
	}

	run.Status = model.RunStatusDiscarded
	if err := s.repo.AllocationRun.TransitionStatus(ctx, run, model.RunStatusDraft); err != nil {
		if errors.Is(err, pkgerrors.ErrStatusConflict) {
			return ErrRunNotDraft
		}
		s.logger.Error("ランの破棄に失敗", zap.Error(err))
		return err
	}
	return nil
}

func (s *allocationService) History(ctx context.Context) (*dto.HistoryListResponse, error) {
	entries, err := s.repo.History.ListAll(ctx)
	if err != nil {
		s.logger.Error("履歴の取得に失敗", zap.Error(err))
		return nil, err
	}

	resp := &dto.HistoryListResponse{
		Entries: make([]dto.HistoryEntryResponse, 0, len(entries)),
		Total:   len(entries),
	}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, dto.HistoryEntryResponse{
			SlotLabel:   e.SlotLabel,
			StudentName: e.StudentName,
			Semester:    e.Semester,
			CreatedAt:   e.CreatedAt.Format(time.RFC3339),
		})
	}
	return resp, nil
}

func (s *allocationService) ResetHistory(ctx context.Context) error {
	if err := s.repo.History.Clear(ctx); err != nil {
		s.logger.Error("履歴の消去に失敗", zap.Error(err))
		return err
	}
	s.logger.Warn("全履歴を消去しました")
	return nil
}

// ════════════════════════════════════════════════════════════
// 内部ヘルパ
// ════════════════════════════════════════════════════════════

// fingerprint 枠・希望・名簿の現在内容から決定的なハッシュを作る。
// プレビューと確定の間に元データが変わったことの検出に使う
func fingerprint(slots []model.Slot, requests []model.LessonRequest, students []model.Student) string {
	labels := make([]string, 0, len(slots))
	for _, sl := range slots {
		labels = append(labels, sl.Label)
	}
	sort.Strings(labels)

	reqLines := make([]string, 0, len(requests))
	for i := range requests {
		reqLines = append(reqLines, requests[i].StudentName+"\t"+requests[i].Wishes)
	}
	sort.Strings(reqLines)

	names := make([]string, 0, len(students))
	for _, st := range students {
		names = append(names, st.Name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("slots\n")
	b.WriteString(strings.Join(labels, "\n"))
	b.WriteString("\nrequests\n")
	b.WriteString(strings.Join(reqLines, "\n"))
	b.WriteString("\nroster\n")
	b.WriteString(strings.Join(names, "\n"))

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// toRunResponse ランをレスポンス形式へ変換する
func toRunResponse(run *model.AllocationRun) *dto.AllocationRunResponse {
	resp := &dto.AllocationRunResponse{
		RunID:         run.RunID,
		Status:        run.Status,
		SnapshotToken: run.SnapshotToken,
		Seed:          run.Seed,
		Items:         make([]dto.AllocationItemResponse, 0, len(run.Items)),
		CreatedAt:     run.CreatedAt.Format(time.RFC3339),
	}
	if run.ConfirmedAt != nil {
		t := run.ConfirmedAt.Format(time.RFC3339)
		resp.ConfirmedAt = &t
	}

	counts := make(map[string]int)
	for i := range run.Items {
		item := &run.Items[i]
		resp.Items = append(resp.Items, dto.AllocationItemResponse{
			SlotLabel:   item.SlotLabel,
			StudentName: item.StudentName,
			Assigned:    item.Assigned(),
		})
		if item.Assigned() {
			counts[*item.StudentName]++
		}
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		resp.Counts = append(resp.Counts, dto.StudentCountResponse{
			StudentName: name,
			Count:       counts[name],
		})
	}

	return resp
}
