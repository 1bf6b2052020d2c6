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
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/edubuild-api/api/swagger"
	"github.com/noah-isme/edubuild-api/internal/handler"
	"github.com/noah-isme/edubuild-api/internal/repository"
	"github.com/noah-isme/edubuild-api/internal/service"
	"github.com/noah-isme/edubuild-api/pkg/cache"
	"github.com/noah-isme/edubuild-api/pkg/config"
	"github.com/noah-isme/edubuild-api/pkg/database"
	"github.com/noah-isme/edubuild-api/pkg/gemini"
	"github.com/noah-isme/edubuild-api/pkg/logger"
	"github.com/noah-isme/edubuild-api/pkg/observability"
)

// @title EduBuild API
// @version 1.0.0
// @description STEM project catalogue with moderation, feedback, recommendations and an AI assistant
// @BasePath /api
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

	flush, err := observability.InitSentry(cfg.Sentry.DSN, cfg.Env, cfg.Sentry.Release)
	if err != nil {
		logr.Warn("sentry disabled", zap.Error(err))
	}
	defer flush()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		migrator, err := database.NewMigrator(db.DB, logger.NewGooseLogger(logr))
		if err != nil {
			logr.Fatal("failed to prepare migrations", zap.Error(err))
		}
		if err := migrator.Up(ctx); err != nil {
			logr.Fatal("failed to apply migrations", zap.Error(err))
		}
	}

	var redisClient *redis.Client
	if cfg.Projects.CacheEnabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, project cache disabled", zap.Error(err))
			redisClient = nil
		}
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	var aiClient *gemini.Client
	if cfg.AI.Enabled() {
		aiClient = gemini.New(gemini.Config{APIKey: cfg.AI.APIKey, Timeout: cfg.AI.Timeout})
		defer aiClient.Close() //nolint:errcheck
	} else {
		logr.Info("gemini api key not configured, ai assistant serves canned replies")
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Projects.CacheTTL, logr, redisClient != nil)
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
		AdminSecret: cfg.Auth.AdminSecret,
	})
	projectSvc := service.NewProjectService(projectRepo, auditRepo, cacheSvc, metricsSvc, validate, logr, service.ProjectConfig{
		CacheTTL:       cfg.Projects.CacheTTL,
		RereviewOnEdit: cfg.Projects.RereviewOnEdit,
	})
	feedbackSvc := service.NewFeedbackService(feedbackRepo, projectRepo, userRepo, cacheSvc, metricsSvc, validate, logr)
	exportSvc := service.NewExportService(projectSvc, projectRepo, logr)

	var generator service.TextGenerator
	if aiClient != nil {
		generator = aiClient
	}
	aiSvc := service.NewAIService(generator, service.AIConfig{
		Enabled:       cfg.AI.Enabled(),
		Model:         cfg.AI.Model,
		FallbackModel: cfg.AI.FallbackModel,
		Timeout:       cfg.AI.Timeout,
	}, metricsSvc, logr)

	checks := map[string]handler.Pinger{"database": db}
	if redisClient != nil {
		checks["redis"] = handler.PingFunc(cacheRepo.Ping)
	}

	r := newRouter(cfg, logr, routeDeps{
		auth:       handler.NewAuthHandler(authSvc),
		projects:   handler.NewProjectHandler(projectSvc, exportSvc),
		feedback:   handler.NewFeedbackHandler(feedbackSvc),
		ai:         handler.NewAIHandler(aiSvc),
		health:     handler.NewHealthHandler(checks),
		metrics:    handler.NewMetricsHandler(metricsSvc),
		tokens:     authSvc,
		audit:      auditRepo,
		metricsSvc: metricsSvc,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "prefix", cfg.APIPrefix)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
