package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/worktrack/timeclock-api/api/swagger"
	"github.com/worktrack/timeclock-api/internal/handler"
	"github.com/worktrack/timeclock-api/internal/middleware"
	"github.com/worktrack/timeclock-api/internal/repository"
	"github.com/worktrack/timeclock-api/internal/service"
	"github.com/worktrack/timeclock-api/pkg/cache"
	"github.com/worktrack/timeclock-api/pkg/config"
	"github.com/worktrack/timeclock-api/pkg/database"
	"github.com/worktrack/timeclock-api/pkg/export"
	"github.com/worktrack/timeclock-api/pkg/logger"
	corsmiddleware "github.com/worktrack/timeclock-api/pkg/middleware/cors"
	reqidmiddleware "github.com/worktrack/timeclock-api/pkg/middleware/requestid"
)

// @title Timeclock API
// @version 1.0.0
// @description Tablet attendance tracking: time events, schedules, reports and a live dashboard
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

	loc, err := time.LoadLocation(cfg.Attendance.Timezone)
	if err != nil {
		logr.Sugar().Fatalw("invalid attendance timezone", "timezone", cfg.Attendance.Timezone, "error", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	var redisClient *redis.Client
	if client, err := cache.NewRedis(cfg.Redis); err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
	} else {
		redisClient = client
		defer redisClient.Close() //nolint:errcheck
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	employeeRepo := repository.NewEmployeeRepository(db)
	deviceRepo := repository.NewDeviceRepository(db)
	eventRepo := repository.NewTimeEventRepository(db)
	scheduleRepo := repository.NewWorkScheduleRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metrics := service.NewMetricsService()
	cachingEnabled := redisClient != nil
	dashboardCache := service.NewCacheService(cacheRepo, metrics, cfg.Dashboard.CacheTTL, logr, cachingEnabled)
	reportCache := service.NewCacheService(cacheRepo, metrics, cfg.Reports.CacheTTL, logr, cachingEnabled)

	validate := validator.New()
	stateService := service.NewStateService(eventRepo, loc, logr)
	eventService := service.NewEventService(eventRepo, deviceRepo, stateService, metrics, loc, logr)
	reportService := service.NewReportService(employeeRepo, scheduleRepo, eventRepo, cfg.Attendance.LateThresholdMinutes, loc, logr)
	dashboardService := service.NewDashboardService(employeeRepo, scheduleRepo, eventRepo, stateService, dashboardCache, loc, logr)
	scheduleService := service.NewScheduleService(scheduleRepo, employeeRepo, dashboardCache, validate, loc, logr)
	exportService := service.NewExportService(export.NewCSVExporter(), export.NewPDFExporter(), logr)

	tabletHandler := handler.NewTabletHandler(employeeRepo, eventRepo, eventService, stateService, logr)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, logr)
	reportHandler := handler.NewReportHandler(reportService, exportService, reportCache, loc, logr)
	scheduleHandler := handler.NewScheduleHandler(scheduleService, logr)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	tablet := api.Group("/tablet")
	tablet.Use(middleware.DeviceAuth(deviceRepo))
	tablet.POST("/events", tabletHandler.RegisterEvent)
	tablet.GET("/status", tabletHandler.Status)

	admin := api.Group("")
	admin.Use(middleware.AdminAuth(cfg.AdminJWT.Secret))
	if cfg.Dashboard.Enabled {
		admin.GET("/dashboard/live", dashboardHandler.Live)
	}
	admin.GET("/reports/attendance", reportHandler.Attendance)
	admin.GET("/reports/attendance/export", reportHandler.Export)
	admin.GET("/schedules", scheduleHandler.List)
	admin.POST("/schedules", scheduleHandler.Upsert)
	admin.PUT("/schedules", scheduleHandler.Upsert)
	admin.DELETE("/schedules/:id", scheduleHandler.Delete)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "timezone", cfg.Attendance.Timezone)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
