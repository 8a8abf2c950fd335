package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jengzang/maritime-metrics-go/internal/api"
	"github.com/jengzang/maritime-metrics-go/internal/classify"
	"github.com/jengzang/maritime-metrics-go/internal/config"
	"github.com/jengzang/maritime-metrics-go/internal/handler"
	"github.com/jengzang/maritime-metrics-go/internal/ingest"
	"github.com/jengzang/maritime-metrics-go/internal/middleware"
	"github.com/jengzang/maritime-metrics-go/internal/repository"
	"github.com/jengzang/maritime-metrics-go/internal/service"
	"github.com/jengzang/maritime-metrics-go/pkg/logger"
	"github.com/jengzang/maritime-metrics-go/pkg/metrics"
)

func main() {
	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		logger.NewLogger("info").Fatal("Failed to load config", "error", err)
	}

	log := logger.NewLogger(cfg.LogLevel)
	defer log.Sync()

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化存储
	stores, err := repository.Open(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize store", "driver", cfg.StoreDriver, "error", err)
	}
	defer stores.Close()
	store := stores.Waypoints

	// 监控指标
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics("maritime", reg)

	// 初始化服务
	classifier := classify.NewClassifier(cfg.Thresholds.Classifier())
	pipeline := ingest.NewPipeline(classifier, store, cfg.ImportWorkers, log)
	handlers := api.Handlers{
		Import:   handler.NewImportHandler(service.NewImportService(pipeline, stores.Batches, m, log), cfg.MaxUploadBytes),
		Waypoint: handler.NewWaypointHandler(service.NewWaypointService(store)),
		Stats:    handler.NewStatsHandler(service.NewStatsService(store, cfg.Thresholds.GroupWindow, m, log)),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	limiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateWindow)
	go limiter.Run(ctx.Done())

	// 初始化路由
	router := api.SetupRouter(cfg, handlers, limiter, reg, log)
	server := &http.Server{
		Addr:              cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 启动服务器
	go func() {
		log.Info("Server starting", "addr", cfg.Port, "driver", cfg.StoreDriver, "auth", cfg.RequireAuth)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", "error", err)
	}
}
