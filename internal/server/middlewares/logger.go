package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cdp/scansvc/pkg/logger"
)

// Logger 请求日志中间件
// 为每个请求生成 trace_id 并注入 Context，日志可按 trace_id 串联。
func Logger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		traceID := c.GetHeader("X-Request-ID")
		if traceID == "" {
			traceID = uuid.New().String()
		}
		c.Header("X-Request-ID", traceID)

		ctx := c.Request.Context()
		ctx = contextWithTraceID(ctx, traceID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		log.Infof(ctx, "[HTTP] %s %s status=%d duration=%v",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
