package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/taitaima2ma2-pixel/lesson-app/internal/dto"
	"github.com/taitaima2ma2-pixel/lesson-app/internal/service"
	"github.com/taitaima2ma2-pixel/lesson-app/pkg/response"
)

// RosterHandler 名簿モジュール HTTP ハンドラ
type RosterHandler struct {
	rosterSvc service.RosterService
}

// NewRosterHandler RosterHandler を生成する
func NewRosterHandler(rosterSvc service.RosterService) *RosterHandler {
	return &RosterHandler{rosterSvc: rosterSvc}
}

// ListRoster 名簿を取得
// GET /api/v1/roster
func (h *RosterHandler) ListRoster(c *gin.Context) {
	roster, err := h.rosterSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, roster)
}

// ReplaceRoster 名簿を全置換
// PUT /api/v1/roster
func (h *RosterHandler) ReplaceRoster(c *gin.Context) {
	var req dto.ReplaceRosterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "パラメータ検証に失敗しました")
		return
	}

	roster, err := h.rosterSvc.Replace(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, roster)
}
