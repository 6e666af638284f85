package handler

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/literacy-tracker-api/internal/middleware"
	"github.com/noah-isme/literacy-tracker-api/internal/models"
	"github.com/noah-isme/literacy-tracker-api/internal/service"
	"github.com/noah-isme/literacy-tracker-api/pkg/config"
	"github.com/noah-isme/literacy-tracker-api/pkg/logger"
	"github.com/noah-isme/literacy-tracker-api/pkg/middleware/cors"
	"github.com/noah-isme/literacy-tracker-api/pkg/middleware/requestid"
)

// RouterParams bundles everything the HTTP surface needs.
type RouterParams struct {
	Config    *config.Config
	Logger    *zap.Logger
	Auth      *service.AuthService
	Metrics   *service.MetricsService
	Health    *HealthHandler
	AuthH     *AuthHandler
	Students  *StudentHandler
	Dashboard *DashboardHandler
	Admin     *AdminHandler
}

// NewRouter assembles the gin engine with middleware, probes, docs, and the
// versioned API routes.
func NewRouter(p RouterParams) *gin.Engine {
	if p.Config.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.Middleware())
	router.Use(logger.GinMiddleware(p.Logger))
	router.Use(cors.New(p.Config.CORS.AllowedOrigins))
	router.Use(middleware.Metrics(p.Metrics))

	router.GET("/health", p.Health.Health)
	router.GET("/ready", p.Health.Ready)
	router.GET("/metrics", gin.WrapH(p.Metrics.Handler()))
	router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group(p.Config.APIPrefix)
	api.POST("/auth/login", p.AuthH.Login)

	authed := api.Group("", middleware.Auth(p.Auth))
	{
		authed.GET("/dashboard", p.Dashboard.Overview)
		authed.GET("/dashboard/priority-report", p.Dashboard.PriorityReport)

		authed.GET("/students/priorities", p.Students.Priorities)
		authed.GET("/students/legacy/:legacy_id", p.Students.ByLegacyID)
		authed.GET("/students/:id/support", p.Students.Support)
		authed.GET("/students/:id/legacy-id", p.Students.LegacyID)
		authed.GET("/students/:id/assessments", p.Students.AssessmentHistory)
		authed.POST("/students/:id/assessments", p.Students.RecordAssessment)

		admin := authed.Group("/admin", middleware.RequireRole(models.RoleAdmin))
		admin.POST("/snapshots/run", p.Admin.RunSnapshot)
	}

	return router
}
