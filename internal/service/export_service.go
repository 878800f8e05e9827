package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/taitaima2ma2-pixel/lesson-app/config"
	"github.com/taitaima2ma2-pixel/lesson-app/internal/model"
	"github.com/taitaima2ma2-pixel/lesson-app/internal/repository"
	"github.com/taitaima2ma2-pixel/lesson-app/internal/slottext"
)

// ── 出力モジュール業務エラー ──

var (
	ErrExportNoRun        = errors.New("出力対象の割当ランがありません")
	ErrExportNoItems      = errors.New("割当ランに明細がありません")
	ErrExportNotConfirmed = errors.New("確定済みのランのみカレンダー出力できます")
	ErrExportGenerateFail = errors.New("ファイルの生成に失敗しました")
)

// ExportService 日程表出力の業務インターフェース
//
// Excel はプレビュー共有用に draft ランも出力できる。
// iCal は実日程の購読が目的なので確定済みランのみを対象とする。
type ExportService interface {
	// ExportSchedule ランの割当結果を Excel (.xlsx) で返す
	ExportSchedule(ctx context.Context, runID string) (*bytes.Buffer, string, error)
	// ExportCalendar 確定済みランを iCalendar (.ics) で返す
	ExportCalendar(ctx context.Context, runID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	cfg    *config.SchedulingConfig
	norm   *slottext.Normalizer
	logger *zap.Logger
}

// NewExportService ExportService を生成する
func NewExportService(repo *repository.Repository, cfg *config.SchedulingConfig, norm *slottext.Normalizer, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, cfg: cfg, norm: norm, logger: logger}
}

// ════════════════════════════════════════════════════════════
// ExportSchedule — Excel 出力
// ════════════════════════════════════════════════════════════
//
// Sheet「日程表」: 日時 × 受講者（未割当は 空き (条件不一致)）
// Sheet「決定回数」: 受講者ごとの決定数

func (s *exportService) ExportSchedule(ctx context.Context, runID string) (*bytes.Buffer, string, error) {
	run, err := s.loadRun(ctx, runID)
	if err != nil {
		return nil, "", err
	}
	if len(run.Items) == 0 {
		return nil, "", ErrExportNoItems
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheetName = "日程表"
	idx, err := f.NewSheet(sheetName)
	if err != nil {
		s.logger.Error("シート作成に失敗", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	f.SetColWidth(sheetName, "A", "A", 28)
	f.SetColWidth(sheetName, "B", "B", 18)

	f.SetCellValue(sheetName, "A1", "日時")
	f.SetCellValue(sheetName, "B1", "受講者")
	f.SetCellStyle(sheetName, "A1", "B1", headerStyle)

	row := 2
	for i := range run.Items {
		item := &run.Items[i]
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), item.SlotLabel)
		if item.Assigned() {
			f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), *item.StudentName)
		} else {
			f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), "空き (条件不一致)")
		}
		row++
	}

	// 決定回数シート
	const countSheet = "決定回数"
	if _, err := f.NewSheet(countSheet); err == nil {
		f.SetColWidth(countSheet, "A", "A", 18)
		f.SetCellValue(countSheet, "A1", "氏名")
		f.SetCellValue(countSheet, "B1", "決定回数")
		f.SetCellStyle(countSheet, "A1", "B1", headerStyle)

		crow := 2
		for _, c := range toRunResponse(run).Counts {
			f.SetCellValue(countSheet, fmt.Sprintf("A%d", crow), c.StudentName)
			f.SetCellValue(countSheet, fmt.Sprintf("B%d", crow), c.Count)
			crow++
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("Excel の書き込みに失敗", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("レッスン日程_%s.xlsx", run.CreatedAt.Format("20060102"))
	return buf, filename, nil
}

// ════════════════════════════════════════════════════════════
// ExportCalendar — iCalendar 出力
// ════════════════════════════════════════════════════════════
//
// 枠は年を持たないため、基準年で実日付に解決する。
// 1〜3月の枠は年度の後半として基準年の翌年に置く。

func (s *exportService) ExportCalendar(ctx context.Context, runID string) (*bytes.Buffer, string, error) {
	run, err := s.loadRun(ctx, runID)
	if err != nil {
		return nil, "", err
	}
	if run.Status != model.RunStatusConfirmed {
		return nil, "", ErrExportNotConfirmed
	}
	if len(run.Items) == 0 {
		return nil, "", ErrExportNoItems
	}

	loc, err := time.LoadLocation(s.cfg.CalendarTimezone)
	if err != nil {
		loc = time.UTC
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//lesson-app//schedule//JP")

	events := 0
	for i := range run.Items {
		item := &run.Items[i]
		if !item.Assigned() {
			continue
		}
		st, ok := s.norm.Parse(item.SlotLabel)
		if !ok || !st.HasTime {
			continue
		}

		year := s.norm.Year
		if st.Month <= 3 {
			year++
		}
		start := time.Date(year, time.Month(st.Month), st.Day, st.Start/60, st.Start%60, 0, 0, loc)
		end := time.Date(year, time.Month(st.Month), st.Day, st.End/60, st.End%60, 0, 0, loc)

		evt := cal.AddEvent(item.ItemID)
		evt.SetCreatedTime(run.CreatedAt)
		evt.SetStartAt(start)
		evt.SetEndAt(end)
		evt.SetSummary(fmt.Sprintf("レッスン: %s", *item.StudentName))
		evt.SetDescription(item.SlotLabel)
		events++
	}
	if events == 0 {
		return nil, "", ErrExportNoItems
	}

	buf := bytes.NewBufferString(cal.Serialize())
	filename := fmt.Sprintf("レッスン日程_%s.ics", run.CreatedAt.Format("20060102"))
	return buf, filename, nil
}

// loadRun runID 指定ならそのラン、空なら直近のランを読む
func (s *exportService) loadRun(ctx context.Context, runID string) (*model.AllocationRun, error) {
	var (
		run *model.AllocationRun
		err error
	)
	if runID != "" {
		run, err = s.repo.AllocationRun.GetByID(ctx, runID)
	} else {
		run, err = s.repo.AllocationRun.GetLatest(ctx)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExportNoRun
		}
		s.logger.Error("割当ランの取得に失敗", zap.Error(err))
		return nil, err
	}
	return run, nil
}
