package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/taitaima2ma2-pixel/lesson-app/internal/dto"
	"github.com/taitaima2ma2-pixel/lesson-app/internal/service"
	"github.com/taitaima2ma2-pixel/lesson-app/pkg/response"
)

// SlotHandler 候補枠モジュール HTTP ハンドラ
type SlotHandler struct {
	slotSvc service.SlotService
}

// NewSlotHandler SlotHandler を生成する
func NewSlotHandler(slotSvc service.SlotService) *SlotHandler {
	return &SlotHandler{slotSvc: slotSvc}
}

// ListSlots 候補枠一覧を取得
// GET /api/v1/slots
func (h *SlotHandler) ListSlots(c *gin.Context) {
	slots, err := h.slotSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, slots)
}

// ReplaceSlots 候補枠を全置換
// PUT /api/v1/slots
func (h *SlotHandler) ReplaceSlots(c *gin.Context) {
	var req dto.ReplaceSlotsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "パラメータ検証に失敗しました")
		return
	}

	slots, err := h.slotSvc.Replace(c.Request.Context(), &req)
	if err != nil {
		h.handleSlotError(c, err)
		return
	}

	response.OK(c, slots)
}

// BulkGenerateSlots 同一日の連続枠を一括生成
// POST /api/v1/slots/bulk-generate
func (h *SlotHandler) BulkGenerateSlots(c *gin.Context) {
	var req dto.BulkGenerateSlotsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "パラメータ検証に失敗しました")
		return
	}

	slots, err := h.slotSvc.BulkGenerate(c.Request.Context(), &req)
	if err != nil {
		h.handleSlotError(c, err)
		return
	}

	response.Created(c, slots)
}

// SlotSummary 日別の連続帯要約を取得
// GET /api/v1/slots/summary
func (h *SlotHandler) SlotSummary(c *gin.Context) {
	summary, err := h.slotSvc.DaySummary(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, summary)
}

// handleSlotError 枠モジュールの業務エラーを HTTP に変換する
func (h *SlotHandler) handleSlotError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSlotDateInvalid):
		response.BadRequest(c, 11001, "枠の日付を解釈できません")
	default:
		response.InternalError(c)
	}
}
