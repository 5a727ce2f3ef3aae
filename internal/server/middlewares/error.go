// Package middlewares 提供 gin 通用中间件。
package middlewares

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// contextWithTraceID 注入 trace_id（logger 从这里取）
func contextWithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, "trace_id", traceID)
}

// ErrorHandler 统一错误处理中间件
// 兜住 handler 往 c.Errors 里塞的错误，避免响应体为空。
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			err := c.Errors.Last()
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": err.Error(),
			})
		}
	}
}
