// Package router assembles the gin engine from middleware and handlers.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/omnistock/backend/internal/infrastructure/auth"
	"github.com/omnistock/backend/internal/infrastructure/config"
	"github.com/omnistock/backend/internal/infrastructure/logger"
	"github.com/omnistock/backend/internal/interfaces/http/middleware"
)

// RouteRegistrar is implemented by every handler that mounts routes
type RouteRegistrar interface {
	RegisterRoutes(group *gin.RouterGroup)
}

// Options configures the router assembly
type Options struct {
	Config *config.Config
	Logger *zap.Logger
	Tokens *auth.JWTService

	// Public handlers mount under /api/v1 without session auth
	Public []RouteRegistrar
	// Protected handlers mount under /api/v1 behind JWT auth
	Protected []RouteRegistrar
}

// New builds the gin engine with the full middleware chain
func New(opts Options) *gin.Engine {
	if opts.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(opts.Logger),
		logger.Recovery(opts.Logger),
		middleware.BodyLimit(opts.Config.HTTP.MaxBodySize),
	)

	api := engine.Group("/api/v1")
	for _, registrar := range opts.Public {
		registrar.RegisterRoutes(api)
	}

	protected := engine.Group("/api/v1")
	protected.Use(middleware.JWTAuth(opts.Tokens))
	for _, registrar := range opts.Protected {
		registrar.RegisterRoutes(protected)
	}

	return engine
}
