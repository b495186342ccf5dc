package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"telemart/storecore/pkg/response"
)

// Recovery converts a handler panic into the standard error envelope.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic recovered",
					zap.Any("error", err),
					zap.String("path", c.Request.URL.Path))
				response.InternalError(c, "internal server error")
				c.Abort()
			}
		}()
		c.Next()
	}
}
