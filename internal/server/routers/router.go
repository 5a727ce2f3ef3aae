package routers

import (
	"github.com/gin-gonic/gin"

	"cdp/scansvc/internal/server/handlers/scan"
	"cdp/scansvc/internal/server/middlewares"
	"cdp/scansvc/pkg/logger"
)

// SetupRoutes 配置所有路由，使用 Route Group 分类
func SetupRoutes(scanHandler *scan.ScanHandler, log logger.Logger) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.CORS())
	r.Use(middlewares.Logger(log))
	r.Use(middlewares.ErrorHandler())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "scansvc",
			"message": "Service is running",
		})
	})

	v1 := r.Group("/api/v1")
	{
		scans := v1.Group("/scans")
		{
			scans.POST("", scanHandler.Create)
			scans.POST("/async", scanHandler.CreateAsync)
			scans.GET("", scanHandler.List)
			scans.GET("/:id", scanHandler.Get)
			scans.DELETE("/:id", scanHandler.Delete)
		}
	}

	return r
}
