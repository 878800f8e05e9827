package handler

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/taitaima2ma2-pixel/lesson-app/internal/dto"
	"github.com/taitaima2ma2-pixel/lesson-app/internal/service"
	"github.com/taitaima2ma2-pixel/lesson-app/pkg/response"
)

// RequestHandler 希望提出モジュール HTTP ハンドラ
type RequestHandler struct {
	requestSvc service.RequestService
}

// NewRequestHandler RequestHandler を生成する
func NewRequestHandler(requestSvc service.RequestService) *RequestHandler {
	return &RequestHandler{requestSvc: requestSvc}
}

// Board 回答状況ボードを取得
// GET /api/v1/requests
func (h *RequestHandler) Board(c *gin.Context) {
	board, err := h.requestSvc.Board(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, board)
}

// GetWishlist 受講者 1 人分の希望を取得
// GET /api/v1/requests/:name
func (h *RequestHandler) GetWishlist(c *gin.Context) {
	name := strings.TrimSpace(c.Param("name"))
	if name == "" {
		response.BadRequest(c, 10001, "受講者名を指定してください")
		return
	}

	wishlist, err := h.requestSvc.Get(c.Request.Context(), name)
	if err != nil {
		h.handleRequestError(c, err)
		return
	}

	response.OK(c, wishlist)
}

// UpsertWishlist 希望を提出する（再提出は全置換）
// PUT /api/v1/requests/:name
func (h *RequestHandler) UpsertWishlist(c *gin.Context) {
	name := strings.TrimSpace(c.Param("name"))
	if name == "" {
		response.BadRequest(c, 10001, "受講者名を指定してください")
		return
	}

	var req dto.UpsertWishlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "パラメータ検証に失敗しました")
		return
	}

	wishlist, err := h.requestSvc.Upsert(c.Request.Context(), name, &req)
	if err != nil {
		h.handleRequestError(c, err)
		return
	}

	response.OK(c, wishlist)
}

// handleRequestError 希望モジュールの業務エラーを HTTP に変換する
func (h *RequestHandler) handleRequestError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrStudentNotInRoster):
		response.NotFound(c, 12001, "名簿に存在しない受講者です")
	case errors.Is(err, service.ErrWishlistNotFound):
		response.NotFound(c, 12002, "希望が提出されていません")
	default:
		response.InternalError(c)
	}
}
