package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/xXemran05khanXx/uniflow/api/swagger"
	"github.com/xXemran05khanXx/uniflow/internal/handler"
	"github.com/xXemran05khanXx/uniflow/internal/middleware"
	"github.com/xXemran05khanXx/uniflow/internal/repository"
	"github.com/xXemran05khanXx/uniflow/internal/service"
	"github.com/xXemran05khanXx/uniflow/pkg/cache"
	"github.com/xXemran05khanXx/uniflow/pkg/config"
	"github.com/xXemran05khanXx/uniflow/pkg/database"
	"github.com/xXemran05khanXx/uniflow/pkg/jobs"
	"github.com/xXemran05khanXx/uniflow/pkg/logger"
	corsmiddleware "github.com/xXemran05khanXx/uniflow/pkg/middleware/cors"
	reqidmiddleware "github.com/xXemran05khanXx/uniflow/pkg/middleware/requestid"
)

// @title UniFlow Timetabling API
// @version 1.0.0
// @description University timetable generation, clash auditing and publishing
// @BasePath /api/v1
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	metricsSvc := service.NewMetricsService()

	cacheEnabled := cfg.Cache.Enabled
	var cacheRepo service.CacheRepository
	if cacheEnabled {
		redisClient, redisErr := cache.NewRedis(cfg.Redis)
		if redisErr != nil {
			logr.Sugar().Warnw("redis unavailable, caching disabled", "error", redisErr)
			cacheEnabled = false
		} else {
			repo := repository.NewCacheRepository(redisClient, logr)
			defer repo.Close() //nolint:errcheck
			cacheRepo = repo
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, cacheEnabled)

	validate := validator.New()
	timetableRepo := repository.NewTimetableRepository(db)
	entryRepo := repository.NewTimetableEntryRepository(db)

	timetableSvc := service.NewTimetableService(
		timetableRepo,
		entryRepo,
		db,
		validate,
		logr,
		metricsSvc,
		cacheSvc,
		service.TimetableServiceConfig{
			Defaults:  cfg.Scheduler,
			Audit:     cfg.Audit,
			ResultTTL: cfg.Scheduler.ResultTTL,
		},
	)

	queue := jobs.NewQueue("timetable-generation", timetableSvc.ProcessJob, jobs.QueueConfig{
		Workers:    cfg.Jobs.Workers,
		BufferSize: cfg.Jobs.BufferSize,
		MaxRetries: cfg.Jobs.MaxRetries,
		RetryDelay: cfg.Jobs.RetryDelay,
		Logger:     logr,
	})
	queueCtx, queueCancel := context.WithCancel(context.Background())
	queue.Start(queueCtx)
	defer func() {
		queueCancel()
		queue.Stop()
	}()
	timetableSvc.AttachQueue(queue)

	timetableHandler := handler.NewTimetableHandler(timetableSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		timetables := api.Group("/timetables")
		timetables.POST("/generate", timetableHandler.Generate)
		timetables.POST("/audit", timetableHandler.Audit)
		timetables.GET("/jobs/:id", timetableHandler.Job)
		timetables.GET("", timetableHandler.List)
		timetables.GET("/:id", timetableHandler.Get)
		timetables.GET("/:id/export", timetableHandler.Export)

		protected := timetables.Group("")
		protected.Use(middleware.Auth(cfg.JWT.Secret))
		protected.POST("", timetableHandler.Save)
		protected.POST("/:id/publish", timetableHandler.Publish)
		protected.POST("/:id/archive", timetableHandler.Archive)
		protected.DELETE("/:id", timetableHandler.Delete)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("server shutdown failed", "error", err)
	}
	logr.Sugar().Infow("server stopped")
}
