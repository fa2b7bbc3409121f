package routes

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/filipal/graph-platform-iam/internal/core/domain"
	"github.com/filipal/graph-platform-iam/internal/infra/config"
	"github.com/filipal/graph-platform-iam/internal/transport/http/handlers"
	"github.com/filipal/graph-platform-iam/internal/transport/http/middleware"
	"github.com/filipal/graph-platform-iam/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Auth         *usecase.AuthService
	Registration *usecase.RegistrationService
	Roles        *usecase.RoleService
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config   *config.AppConfig
	Logger   *zap.Logger
	Services ServiceSet
	Metrics  *middleware.HTTPMetrics
	Database DatabaseChecker
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config != nil && deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))

	if deps.Config != nil && len(deps.Config.CORS.AllowedOrigins) > 0 {
		r.Use(middleware.CORS(deps.Config.CORS.AllowedOrigins))
	}

	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler())
	}

	authMiddleware := middleware.RequireAuth(deps.Services.Auth)
	adminOnly := middleware.RequireRole(domain.RoleAdmin)

	healthOptions := make([]handlers.HealthOption, 0, 1)
	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}

	healthHandler := handlers.NewHealthHandler(healthOptions...)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")

		registrationHandler := handlers.NewRegistrationHandler(deps.Services.Registration)
		registrationHandler.RegisterRoutes(authGroup)

		authHandler := handlers.NewAuthHandler(deps.Services.Auth)
		authHandler.RegisterRoutes(authGroup)

		authed := api.Group("")
		authed.Use(authMiddleware)

		admin := api.Group("")
		admin.Use(authMiddleware, adminOnly)

		resourceHandler := handlers.NewResourceHandler()
		resourceHandler.RegisterRoutes(authed, admin)

		if deps.Services.Roles != nil {
			rolesGroup := api.Group("/roles")
			rolesGroup.Use(authMiddleware, adminOnly)
			roleHandler := handlers.NewRoleHandler(deps.Services.Roles)
			roleHandler.RegisterRoutes(rolesGroup)
		}
	}

	return r
}
