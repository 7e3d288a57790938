package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/articlegen-backend/internal/pkg/ctxutil"
)

// AttachRequestContext seeds the request context with a buffer for any SSE
// messages emitted while handling this request. No handler in this module
// reads or appends to the buffer.
func AttachRequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		ctx = ctxutil.WithSSEData(ctx)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
