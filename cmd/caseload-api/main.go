package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/talktrack/caseload-api/api/swagger"
	"github.com/talktrack/caseload-api/internal/handler"
	"github.com/talktrack/caseload-api/internal/middleware"
	"github.com/talktrack/caseload-api/internal/models"
	"github.com/talktrack/caseload-api/internal/repository"
	"github.com/talktrack/caseload-api/internal/service"
	"github.com/talktrack/caseload-api/pkg/cache"
	"github.com/talktrack/caseload-api/pkg/config"
	"github.com/talktrack/caseload-api/pkg/database"
	"github.com/talktrack/caseload-api/pkg/logger"
	corsmiddleware "github.com/talktrack/caseload-api/pkg/middleware/cors"
	reqidmiddleware "github.com/talktrack/caseload-api/pkg/middleware/requestid"
)

// @title Caseload API
// @version 1.0.0
// @description Caseload management, reminder feed and timesheet note generation for school-based speech therapy.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		redisClient = nil
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
	}
	reminderCache := service.NewCacheService(cacheRepo, metricsSvc, cfg.Reminders.CacheTTL, logr)
	timesheetCache := service.NewCacheService(cacheRepo, metricsSvc, cfg.Timesheet.CacheTTL, logr)

	studentRepo := repository.NewStudentRepository(db)
	goalRepo := repository.NewGoalRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	userRepo := repository.NewUserRepository(db)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret:             cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "caseload-api",
	})
	reminderSvc := service.NewReminderService(service.ReminderServiceParams{
		Students: studentRepo,
		Goals:    goalRepo,
		Reviews:  reviewRepo,
		Sessions: sessionRepo,
		Cache:    reminderCache,
		Metrics:  metricsSvc,
		Logger:   logr,
		CacheTTL: cfg.Reminders.CacheTTL,
	})
	timesheetSvc := service.NewTimesheetService(service.TimesheetServiceParams{
		Sessions:   sessionRepo,
		Activities: activityRepo,
		Students:   studentRepo,
		Schedules:  scheduleRepo,
		Cache:      timesheetCache,
		Metrics:    metricsSvc,
		Logger:     logr,
		CacheTTL:   cfg.Timesheet.CacheTTL,
	})
	studentSvc := service.NewStudentService(studentRepo, goalRepo, reminderSvc, validate, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	reminderHandler := handler.NewReminderHandler(reminderSvc)
	timesheetHandler := handler.NewTimesheetHandler(timesheetSvc, service.NoteOptions{
		Teletherapy: cfg.Timesheet.Teletherapy,
	})
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
			auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)
		}

		protected := api.Group("")
		protected.Use(middleware.JWT(authSvc))
		protected.Use(middleware.RequireRoles(models.RoleAdmin, models.RoleTherapist))
		{
			protected.GET("/students", studentHandler.List)
			protected.POST("/students", studentHandler.Create)
			protected.GET("/students/:id", studentHandler.Get)
			protected.GET("/students/:id/goals", studentHandler.Goals)
			protected.PUT("/students/:id", studentHandler.Update)
			protected.DELETE("/students/:id", studentHandler.Archive)

			protected.GET("/reminders", reminderHandler.Feed)
			protected.GET("/reminders/export", reminderHandler.Export)

			protected.GET("/timesheet/note", timesheetHandler.Note)
			protected.GET("/timesheet/note/pdf", timesheetHandler.NotePDF)
			protected.GET("/timesheet/prospective", timesheetHandler.Prospective)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logr.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
}
