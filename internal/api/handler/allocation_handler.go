package handler

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/taitaima2ma2-pixel/lesson-app/internal/dto"
	"github.com/taitaima2ma2-pixel/lesson-app/internal/service"
	"github.com/taitaima2ma2-pixel/lesson-app/pkg/response"
)

// AllocationHandler 割当モジュール HTTP ハンドラ
type AllocationHandler struct {
	allocationSvc service.AllocationService
}

// NewAllocationHandler AllocationHandler を生成する
func NewAllocationHandler(allocationSvc service.AllocationService) *AllocationHandler {
	return &AllocationHandler{allocationSvc: allocationSvc}
}

// RunAllocation 割当ランを実行しプレビューを作成
// POST /api/v1/allocations
func (h *AllocationHandler) RunAllocation(c *gin.Context) {
	// ボディ省略可（seed 未指定として扱う）
	var req dto.RunAllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, 10001, "パラメータ検証に失敗しました")
		return
	}

	run, err := h.allocationSvc.Run(c.Request.Context(), &req)
	if err != nil {
		h.handleAllocationError(c, err)
		return
	}

	response.Created(c, run)
}

// GetAllocation 割当ランを取得。:id に "latest" を指定すると最新ラン
// GET /api/v1/allocations/:id
func (h *AllocationHandler) GetAllocation(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "ランIDを指定してください")
		return
	}

	var (
		run *dto.AllocationRunResponse
		err error
	)
	if id == "latest" {
		run, err = h.allocationSvc.Latest(c.Request.Context())
	} else {
		run, err = h.allocationSvc.Get(c.Request.Context(), id)
	}
	if err != nil {
		h.handleAllocationError(c, err)
		return
	}

	response.OK(c, run)
}

// ConfirmAllocation プレビューを確定し履歴へ追記
// POST /api/v1/allocations/:id/confirm
func (h *AllocationHandler) ConfirmAllocation(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "ランIDを指定してください")
		return
	}

	var req dto.ConfirmAllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "パラメータ検証に失敗しました")
		return
	}

	run, err := h.allocationSvc.Confirm(c.Request.Context(), id, &req)
	if err != nil {
		h.handleAllocationError(c, err)
		return
	}

	response.OK(c, run)
}

// DiscardAllocation プレビューを破棄
// POST /api/v1/allocations/:id/discard
func (h *AllocationHandler) DiscardAllocation(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "ランIDを指定してください")
		return
	}

	if err := h.allocationSvc.Discard(c.Request.Context(), id); err != nil {
		h.handleAllocationError(c, err)
		return
	}

	response.OK(c, nil)
}

// ListHistory 確定済み履歴を取得
// GET /api/v1/history
func (h *AllocationHandler) ListHistory(c *gin.Context) {
	history, err := h.allocationSvc.History(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, history)
}

// ResetHistory 履歴を全消去（年度替わりの運用操作）
// DELETE /api/v1/history
func (h *AllocationHandler) ResetHistory(c *gin.Context) {
	if err := h.allocationSvc.ResetHistory(c.Request.Context()); err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, nil)
}

// handleAllocationError 割当モジュールの業務エラーを HTTP に変換する
func (h *AllocationHandler) handleAllocationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNoActiveSlots):
		response.BadRequest(c, 13001, "候補枠が登録されていません")
	case errors.Is(err, service.ErrNoRequests):
		response.BadRequest(c, 13002, "希望が1件も提出されていません")
	case errors.Is(err, service.ErrEmptyRoster):
		response.BadRequest(c, 13003, "名簿が空です")
	case errors.Is(err, service.ErrRunNotFound):
		response.NotFound(c, 13004, "割当ランが存在しません")
	case errors.Is(err, service.ErrRunNotDraft):
		response.Conflict(c, 13005, "プレビュー状態のランではありません")
	case errors.Is(err, service.ErrSnapshotMismatch):
		response.Conflict(c, 13006, "スナップショットトークンが一致しません")
	case errors.Is(err, service.ErrPreviewStale):
		response.Conflict(c, 13007, "プレビュー作成後にデータが変更されています。再実行してください")
	default:
		response.InternalError(c)
	}
}
