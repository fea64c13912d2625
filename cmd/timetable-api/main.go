package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/campusops/timetable-api/api/swagger"
	"github.com/campusops/timetable-api/internal/engine"
	"github.com/campusops/timetable-api/internal/handler"
	"github.com/campusops/timetable-api/internal/middleware"
	"github.com/campusops/timetable-api/internal/repository"
	"github.com/campusops/timetable-api/internal/service"
	"github.com/campusops/timetable-api/pkg/cache"
	"github.com/campusops/timetable-api/pkg/config"
	"github.com/campusops/timetable-api/pkg/database"
	"github.com/campusops/timetable-api/pkg/logger"
	corsmiddleware "github.com/campusops/timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campusops/timetable-api/pkg/middleware/requestid"
)

// @title Timetable API
// @version 1.0.0
// @description Timetable scheduling and conflict resolution service
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Grid.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, grid caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Grid.CacheTTL, logr, true)
		}
	}

	catalogRepo := repository.NewCatalogRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	changeRequestRepo := repository.NewChangeRequestRepository(db)

	generator := engine.NewGenerator(engine.GeneratorConfig{
		MaxAttempts:   cfg.Scheduler.MaxAttempts,
		TermWeeks:     cfg.Scheduler.TermWeeks,
		ExamPrepWeeks: cfg.Scheduler.ExamPrepWeeks,
	}, logr)

	timetableSvc := service.NewTimetableService(catalogRepo, assignmentRepo, db, generator, cacheSvc, metricsSvc, nil, logr)
	changeRequestSvc := service.NewChangeRequestService(changeRequestRepo, assignmentRepo, catalogRepo, timetableSvc, metricsSvc, nil, logr)

	timetableHandler := handler.NewTimetableHandler(timetableSvc)
	changeRequestHandler := handler.NewChangeRequestHandler(changeRequestSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.GET("/timetable", timetableHandler.Grid)
		api.POST("/timetable/generate", timetableHandler.Generate)
		api.POST("/assignments/:id/move", timetableHandler.Move)
		api.GET("/assignments/:id/alternatives", timetableHandler.Alternatives)

		api.POST("/change-requests", changeRequestHandler.Create)
		api.GET("/change-requests", changeRequestHandler.List)
		api.GET("/change-requests/:id", changeRequestHandler.Get)
		api.POST("/change-requests/:id/resolve", changeRequestHandler.Resolve)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Sugar().Infow("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
