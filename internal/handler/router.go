package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/middleware"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/service"
	"github.com/noah-isme/sma-timetable-api/pkg/config"
	"github.com/noah-isme/sma-timetable-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-timetable-api/pkg/middleware/requestid"
)

// RouterDeps groups everything the HTTP layer needs.
type RouterDeps struct {
	Config    *config.Config
	Logger    *zap.Logger
	Metrics   *service.MetricsService
	Verifier  *service.TokenVerifier
	Timetable *TimetableHandler
	Catalog   pinger
}

var schedulerRoles = []models.UserRole{models.RoleSuperAdmin, models.RoleAdmin, models.RoleScheduler}

// NewRouter assembles the gin engine with middleware and routes.
func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(log))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.Metrics))

	metricsHandler := NewMetricsHandler(deps.Metrics, deps.Catalog)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group("/" + strings.Trim(cfg.APIPrefix, "/"))
	if cfg.JWT.Disabled {
		log.Warn("authentication disabled; requests run as anonymous scheduler")
		api.Use(middleware.Anonymous(models.RoleScheduler))
	} else {
		api.Use(middleware.JWT(deps.Verifier))
	}
	api.Use(middleware.RequireRoles(schedulerRoles...))
	api.GET("/metrics/summary", metricsHandler.Summary)

	if cfg.Scheduler.Enabled && deps.Timetable != nil {
		timetables := api.Group("/timetables")
		timetables.POST("/generate", deps.Timetable.Generate)
		if cfg.Catalog.Enabled {
			timetables.POST("/generate/catalog", deps.Timetable.GenerateFromCatalog)
		}
		if cfg.Exports.Enabled {
			timetables.POST("/export", deps.Timetable.Export)
		}
	}
	return r
}
