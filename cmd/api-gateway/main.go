package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/dtu-portal/timetable-api/api/swagger"
	"github.com/dtu-portal/timetable-api/internal/handler"
	"github.com/dtu-portal/timetable-api/internal/middleware"
	"github.com/dtu-portal/timetable-api/internal/repository"
	"github.com/dtu-portal/timetable-api/internal/service"
	"github.com/dtu-portal/timetable-api/pkg/cache"
	"github.com/dtu-portal/timetable-api/pkg/config"
	"github.com/dtu-portal/timetable-api/pkg/database"
	"github.com/dtu-portal/timetable-api/pkg/export"
	"github.com/dtu-portal/timetable-api/pkg/logger"
	corsmiddleware "github.com/dtu-portal/timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/dtu-portal/timetable-api/pkg/middleware/requestid"
)

// @title Timetable API
// @version 0.1.0
// @description Timetable generation service for the student portal
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	metricsSvc := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if cfg.Timetable.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, grid caching disabled", "error", err)
		} else {
			repo := repository.NewCacheRepository(redisClient, logr)
			defer repo.Close() //nolint:errcheck
			cacheRepo = repo
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Timetable.CacheTTL, logr, cfg.Timetable.CacheEnabled)

	settingsRepo := repository.NewSettingsRepository(db)
	entryRepo := repository.NewTimetableEntryRepository(db)
	assignedRepo := repository.NewAssignedClassRepository(db)

	timetableSvc := service.NewTimetableService(
		settingsRepo,
		assignedRepo,
		entryRepo,
		db,
		cacheSvc,
		metricsSvc,
		validator.New(),
		logr,
	)
	exportSvc := service.NewExportService(timetableSvc, export.NewCSVExporter(), export.NewPDFExporter(), logr)
	timetableHandler := handler.NewTimetableHandler(timetableSvc, exportSvc)

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
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	timetable := api.Group("/timetable")
	{
		timetable.GET("/settings", timetableHandler.GetSettings)
		timetable.PUT("/settings", timetableHandler.UpdateSettings)
		timetable.POST("/generate", timetableHandler.Generate)
		timetable.POST("/reset", timetableHandler.Reset)
		timetable.GET("/grid", timetableHandler.Grid)
		timetable.GET("/entries", timetableHandler.Entries)
		if cfg.Timetable.ExportEnabled {
			timetable.GET("/export", timetableHandler.Export)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
