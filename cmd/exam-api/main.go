package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/exam-schedule-api/api/swagger"
	"github.com/noah-isme/exam-schedule-api/internal/handler"
	"github.com/noah-isme/exam-schedule-api/internal/middleware"
	"github.com/noah-isme/exam-schedule-api/internal/repository"
	"github.com/noah-isme/exam-schedule-api/internal/service"
	"github.com/noah-isme/exam-schedule-api/pkg/cache"
	"github.com/noah-isme/exam-schedule-api/pkg/config"
	"github.com/noah-isme/exam-schedule-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/exam-schedule-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/exam-schedule-api/pkg/middleware/requestid"
	"github.com/noah-isme/exam-schedule-api/pkg/storage"
)

// @title Exam Schedule API
// @version 0.1.0
// @description Filterable exam schedule with calendar export
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck
	sugar := logr.Sugar()

	metricsSvc := service.NewMetricsService()

	repo := repository.NewExamRepository(cfg.Source, logr)
	loadErr := repo.Load(context.Background())
	if loadErr != nil {
		// Keep serving; the view projector reports the empty state and
		// a refresh (cron or restart) can recover.
		sugar.Errorw("initial exam source load failed", "source", cfg.Source.Path, "error", loadErr)
	}
	metricsSvc.ObserveSourceReload(loadErr, repo.Count())

	var cacheSvc *service.CacheService
	if cfg.Cache.Enabled {
		client, cacheErr := cache.NewRedis(cfg.Cache)
		if cacheErr != nil {
			sugar.Warnw("redis unavailable, serving uncached", "error", cacheErr)
		} else {
			cacheSvc = service.NewCacheService(client, cfg.Cache.TTL, metricsSvc, logr)
		}
	}

	scheduleSvc := service.NewScheduleService(repo, cacheSvc, logr)
	calendarSvc := service.NewCalendarService(repo, cfg.Calendar.DefaultDurationMinutes, logr)

	var exportSvc *service.ExportService
	if cfg.Exports.Enabled {
		store, storeErr := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if storeErr != nil {
			sugar.Fatalw("failed to init export storage", "error", storeErr)
		}
		signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
		exportSvc = service.NewExportService(scheduleSvc, store, signer,
			service.ExportConfig{APIPrefix: cfg.APIPrefix, ResultTTL: cfg.Exports.SignedURLTTL}, nil, logr)
	}

	scheduler := cron.New()
	if cfg.Source.RefreshCron != "" {
		if _, cronErr := scheduler.AddFunc(cfg.Source.RefreshCron, func() {
			loadErr := repo.Load(context.Background())
			metricsSvc.ObserveSourceReload(loadErr, repo.Count())
			if loadErr != nil {
				sugar.Warnw("scheduled exam source refresh failed", "error", loadErr)
				return
			}
			cacheSvc.Flush(context.Background())
		}); cronErr != nil {
			sugar.Fatalw("invalid refresh cron expression", "cron", cfg.Source.RefreshCron, "error", cronErr)
		}
	}
	if exportSvc != nil && cfg.Exports.CleanupInterval > 0 {
		scheduler.Schedule(cron.Every(cfg.Exports.CleanupInterval), cron.FuncJob(func() {
			deleted, cleanErr := exportSvc.Cleanup(0)
			if cleanErr != nil {
				sugar.Warnw("export cleanup failed", "error", cleanErr)
				return
			}
			if len(deleted) > 0 {
				sugar.Infow("expired exports removed", "count", len(deleted))
			}
		}))
	}
	scheduler.Start()
	defer scheduler.Stop()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	scheduleHandler := handler.NewScheduleHandler(scheduleSvc, repo)
	calendarHandler := handler.NewCalendarHandler(calendarSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if repo.LoadedAt().IsZero() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "waiting for exam source"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	api := r.Group(cfg.APIPrefix)
	{
		api.GET("/exams", scheduleHandler.List)
		api.GET("/exams/dates", scheduleHandler.Dates)
		api.GET("/exams/rooms", scheduleHandler.Rooms)
		api.GET("/exams/:id", scheduleHandler.Get)
		api.GET("/exams/:id/calendar", calendarHandler.Export)
		api.GET("/exams/:id/calendar.ics", calendarHandler.DownloadICS)
		api.POST("/exports", exportHandler.Create)
		api.GET("/export/:token", exportHandler.Download)
	}

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	sugar.Infow("server starting", "addr", addr, "env", cfg.Env, "source", cfg.Source.Path)
	if err := r.Run(addr); err != nil {
		sugar.Fatalw("server failed", "error", err)
	}
}
