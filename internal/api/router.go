package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jengzang/maritime-metrics-go/internal/config"
	"github.com/jengzang/maritime-metrics-go/internal/handler"
	"github.com/jengzang/maritime-metrics-go/internal/middleware"
	"github.com/jengzang/maritime-metrics-go/internal/models"
	"github.com/jengzang/maritime-metrics-go/pkg/logger"
)

// Handlers groups the request handlers served by the router
type Handlers struct {
	Import   *handler.ImportHandler
	Waypoint *handler.WaypointHandler
	Stats    *handler.StatsHandler
}

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, h Handlers, limiter *middleware.RateLimiter, gatherer prometheus.Gatherer, log logger.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger(log))

	// CORS 中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Maritime Metrics API is running",
		})
	})

	// 监控指标
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := r.Group("/api", middleware.RateLimit(limiter))

	// 数据导入接口
	csv := api.Group("/csv")
	if cfg.RequireAuth {
		csv.Use(middleware.Auth([]byte(cfg.JWTSecret)))
	}
	csv.POST("/import", h.Import.Import)
	csv.GET("/imports", h.Import.GetHistory)

	// 航行指标接口
	metrics := api.Group("/metrics")
	{
		metrics.GET("/all", h.Waypoint.GetAll)
		metrics.GET("/vessel-codes", h.Waypoint.GetVesselCodes)
		metrics.GET("/more-compliant", h.Stats.GetMoreCompliant)
		metrics.GET("/outliers/speed", h.Stats.GetSpeedOutliers)
		metrics.GET("/outliers/fuel", h.Stats.GetFuelOutliers)

		vessel := metrics.Group("/:vesselCode")
		vessel.GET("/valid", h.Waypoint.GetValid)
		vessel.GET("/invalid", h.Waypoint.GetFlagged(models.FlagInvalid))
		vessel.GET("/missing", h.Waypoint.GetFlagged(models.FlagMissing))
		vessel.GET("/below-zero", h.Waypoint.GetFlagged(models.FlagBelowZero))
		vessel.GET("/outlier", h.Waypoint.GetFlagged(models.FlagOutlier))
		vessel.GET("/speed-difference", h.Waypoint.GetSpeedDifferences)
		vessel.GET("/speed-difference/summary", h.Stats.GetSpeedDeviationSummary)
		vessel.GET("/summary-metrics", h.Waypoint.GetSummaryMetrics)
		vessel.GET("/problems/frequencies", h.Stats.GetProblemFrequencies)
		vessel.GET("/problems/groups", h.Stats.GetProblemGroups)
	}

	return r
}
