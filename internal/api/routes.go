package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mautops/dailyreport-gin/internal/auth"
	"github.com/mautops/dailyreport-gin/internal/config"
	"github.com/mautops/dailyreport-gin/internal/container"
)

// SetupRoutes 配置路由
func SetupRoutes(cfg *config.Config, c *container.Container) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	// 全局中间件
	router.Use(RequestIDMiddleware())
	router.Use(RequestLogMiddleware())
	router.Use(SecurityHeadersMiddleware())
	router.Use(CORSMiddleware(&cfg.CORS))
	router.Use(ErrorHandlerMiddleware())
	if cfg.Tracing.Enabled {
		router.Use(TracingMiddleware(cfg.Tracing.ServiceName))
	}

	// 健康检查
	healthController := NewHealthController(c.DB, c.Authorizer)
	router.GET("/health", healthController.Check)

	// Prometheus 指标端点
	router.GET("/metrics", MetricsHandler)

	// 控制器
	reportController := NewReportController(c.ReportService, c.Authorizer)
	paramController := NewParameterController(c.ParameterService)
	queryController := NewQueryController(c.QueryService, c.StatisticsService)
	uploadController := NewUploadController(c.UploadService)
	exportController := NewExportController(c.ExportService)

	// API v1 路由组,JWT 认证 + 限流
	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(100, 200))
	v1.Use(auth.AuthMiddleware(c.TokenValidator))
	{
		// 汇报指标
		v1.GET("/params/my", paramController.GetMyParams)

		// 日报管理
		reports := v1.Group("/reports")
		{
			reports.POST("", reportController.Submit)
			reports.GET("/my", queryController.ListMy)
			reports.GET("/today", reportController.GetToday)
			reports.GET("/stats/my", queryController.GetMyStats)
			reports.GET("/export", exportController.ExportMonth)
			reports.PUT("/:id", reportController.Update)
			reports.DELETE("/:id", reportController.Delete)

			// 主管接口
			manager := reports.Group("")
			manager.Use(auth.RequireRole(auth.RoleManager))
			{
				manager.GET("/pending", queryController.ListPending)
				manager.POST("/:id/verify", reportController.Verify)
				manager.GET("/employee/:employee_id",
					auth.VerifierMiddleware(c.Authorizer, "employee_id"),
					queryController.ListByEmployee)
			}
		}

		// 附件
		v1.POST("/attachments", uploadController.Upload)
		v1.GET("/attachments/:handle", uploadController.Download)
	}

	// 未匹配的路由返回 JSON 格式的 404
	router.NoRoute(func(c *gin.Context) {
		Error(c, http.StatusNotFound, "route not found", "the requested route does not exist")
	})

	return router
}
