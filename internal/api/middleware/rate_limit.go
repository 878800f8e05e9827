package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taitaima2ma2-pixel/lesson-app/pkg/redis"
	"github.com/taitaima2ma2-pixel/lesson-app/pkg/response"
)

// RateLimit Redis 固定ウィンドウによるレート制限ミドルウェア
// limit: ウィンドウ内に許可する最大リクエスト数
// window: ウィンドウ長
// rdb が nil の場合は制限なしで通す
func RateLimit(rdb *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil {
			c.Next()
			return
		}

		key := fmt.Sprintf("rate_limit:%s:%s", c.ClientIP(), c.FullPath())
		allowed, err := rdb.CheckRateLimit(c.Request.Context(), key, limit, window)
		if err != nil {
			// Redis 障害時は制限を外して通す
			c.Next()
			return
		}

		if !allowed {
			response.Error(c, http.StatusTooManyRequests, 42900, "リクエストが多すぎます。しばらくしてから再試行してください")
			c.Abort()
			return
		}

		c.Next()
	}
}
