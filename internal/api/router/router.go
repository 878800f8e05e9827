package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taitaima2ma2-pixel/lesson-app/config"
	"github.com/taitaima2ma2-pixel/lesson-app/internal/api/handler"
	"github.com/taitaima2ma2-pixel/lesson-app/internal/api/middleware"
	"github.com/taitaima2ma2-pixel/lesson-app/pkg/redis"
)

const (
	maxBodyBytes     = 1 << 20 // 1MiB。枠・名簿・希望はいずれも小さい JSON
	rateLimitCount   = 120
	rateLimitWindow  = time.Minute
	writeLimitCount  = 30 // 割当実行・確定など書き込み系はより厳しく
	writeLimitWindow = time.Minute
)

// Setup Gin ルータを初期化して返す
func Setup(cfg *config.Config, h *handler.Handler, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── グローバルミドルウェア ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(maxBodyBytes))
	r.Use(middleware.RateLimit(rdb, rateLimitCount, rateLimitWindow))

	// ── ヘルスチェック ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 候補枠モジュール
		slots := v1.Group("/slots")
		{
			slots.GET("", h.Slot.ListSlots)
			slots.PUT("", h.Slot.ReplaceSlots)
			slots.POST("/bulk-generate", h.Slot.BulkGenerateSlots)
			slots.GET("/summary", h.Slot.SlotSummary)
		}

		// 名簿モジュール
		roster := v1.Group("/roster")
		{
			roster.GET("", h.Roster.ListRoster)
			roster.PUT("", h.Roster.ReplaceRoster)
		}

		// 希望提出モジュール
		requests := v1.Group("/requests")
		{
			requests.GET("", h.Request.Board)
			requests.GET("/:name", h.Request.GetWishlist)
			requests.PUT("/:name", h.Request.UpsertWishlist)
		}

		// 割当モジュール
		allocations := v1.Group("/allocations")
		allocations.Use(middleware.RateLimit(rdb, writeLimitCount, writeLimitWindow))
		{
			allocations.POST("", h.Allocation.RunAllocation)
			allocations.GET("/:id", h.Allocation.GetAllocation)
			allocations.POST("/:id/confirm", h.Allocation.ConfirmAllocation)
			allocations.POST("/:id/discard", h.Allocation.DiscardAllocation)
		}

		// 履歴モジュール
		history := v1.Group("/history")
		{
			history.GET("", h.Allocation.ListHistory)
			history.DELETE("", h.Allocation.ResetHistory)
		}

		// 出力モジュール
		export := v1.Group("/export")
		{
			export.GET("/schedule", h.Export.ExportSchedule)
			export.GET("/calendar", h.Export.ExportCalendar)
		}
	}

	return r
}
