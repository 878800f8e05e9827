package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/taitaima2ma2-pixel/lesson-app/internal/service"
	"github.com/taitaima2ma2-pixel/lesson-app/pkg/response"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	icsContentType  = "text/calendar; charset=utf-8"
)

// ExportHandler 出力モジュール HTTP ハンドラ
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler ExportHandler を生成する
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportSchedule 日程表を Excel で出力
// GET /api/v1/export/schedule?run_id=xxx（省略時は最新ラン）
func (h *ExportHandler) ExportSchedule(c *gin.Context) {
	runID := c.Query("run_id")

	buf, filename, err := h.exportSvc.ExportSchedule(c.Request.Context(), runID)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ExportCalendar 確定済みレッスンを iCalendar で出力
// GET /api/v1/export/calendar?run_id=xxx（省略時は最新の確定ラン）
func (h *ExportHandler) ExportCalendar(c *gin.Context) {
	runID := c.Query("run_id")

	buf, filename, err := h.exportSvc.ExportCalendar(c.Request.Context(), runID)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, icsContentType, buf.Bytes())
}

// handleExportError 出力モジュールの業務エラーを HTTP に変換する
func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportNoRun):
		response.NotFound(c, 14001, "出力対象の割当ランがありません")
	case errors.Is(err, service.ErrExportNoItems):
		response.BadRequest(c, 14002, "割当ランに明細がありません")
	case errors.Is(err, service.ErrExportNotConfirmed):
		response.Conflict(c, 14003, "確定済みのランのみカレンダー出力できます")
	default:
		response.InternalError(c)
	}
}
