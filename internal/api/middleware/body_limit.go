package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taitaima2ma2-pixel/lesson-app/pkg/response"
)

// BodyLimit リクエストボディのサイズ上限を適用する
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			response.Error(c, http.StatusRequestEntityTooLarge, 41300, "リクエストボディが大きすぎます")
			c.Abort()
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
