package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/edubuild-api/internal/handler"
	"github.com/noah-isme/edubuild-api/internal/middleware"
	"github.com/noah-isme/edubuild-api/internal/models"
	"github.com/noah-isme/edubuild-api/internal/service"
	"github.com/noah-isme/edubuild-api/pkg/config"
	"github.com/noah-isme/edubuild-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/edubuild-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/edubuild-api/pkg/middleware/requestid"
)

type routeDeps struct {
	auth       *handler.AuthHandler
	projects   *handler.ProjectHandler
	feedback   *handler.FeedbackHandler
	ai         *handler.AIHandler
	health     *handler.HealthHandler
	metrics    *handler.MetricsHandler
	tokens     middleware.TokenValidator
	audit      middleware.AuditWriter
	metricsSvc *service.MetricsService
}

func newRouter(cfg *config.Config, logr *zap.Logger, deps routeDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.metricsSvc))

	r.GET("/health", deps.health.Health)
	r.GET("/ready", deps.health.Ready)
	r.GET("/metrics", deps.metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	requireAuth := middleware.JWT(deps.tokens)
	optionalAuth := middleware.OptionalJWT(deps.tokens)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/signup", middleware.Audit(deps.audit, logr, models.AuditActionSignup, models.AuditResourceUser), deps.auth.Signup)
	auth.POST("/signin", middleware.Audit(deps.audit, logr, models.AuditActionSignin, models.AuditResourceUser), deps.auth.Signin)
	auth.GET("/profile", requireAuth, deps.auth.Profile)

	projects := api.Group("/projects")
	projects.GET("", optionalAuth, middleware.WithResponseMeta(), deps.projects.List)
	projects.GET("/mine", requireAuth, deps.projects.Mine)
	projects.GET("/pending", requireAuth, adminOnly, deps.projects.Pending)
	projects.GET("/recommendations", optionalAuth, deps.projects.Recommendations)
	projects.GET("/export", requireAuth, adminOnly, deps.projects.ExportCatalog)
	projects.GET("/:id", optionalAuth, deps.projects.Get)
	projects.GET("/:id/export.pdf", optionalAuth, deps.projects.ExportGuide)
	projects.POST("", requireAuth, deps.projects.Create)
	projects.PUT("/:id", requireAuth, deps.projects.Update)
	projects.PATCH("/:id/status", requireAuth, deps.projects.SetStatus)
	projects.DELETE("/:id", requireAuth, deps.projects.Delete)

	feedback := api.Group("/feedback")
	feedback.POST("", requireAuth, deps.feedback.Submit)
	feedback.GET("/:projectId", deps.feedback.List)

	ai := api.Group("/ai")
	ai.POST("/explain", deps.ai.Explain)
	ai.POST("/chat", deps.ai.Chat)

	return r
}
