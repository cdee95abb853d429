package http

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/verse-recommender/internal/adapters/http/dto"
	"github.com/jsamuelsen/verse-recommender/internal/adapters/http/handlers"
	"github.com/jsamuelsen/verse-recommender/internal/adapters/http/middleware"
	"github.com/jsamuelsen/verse-recommender/internal/platform/config"
	"github.com/jsamuelsen/verse-recommender/internal/platform/telemetry"
)

// DefaultRequestTimeout bounds recommendation requests, enrichment included.
const DefaultRequestTimeout = 60 * time.Second

// RouterConfig contains configuration for setting up the router.
type RouterConfig struct {
	Logger *slog.Logger

	// ServiceName labels server spans.
	ServiceName string

	// CORS is optional. Nil or disabled registers no CORS middleware.
	CORS *config.CORSConfig

	// HealthHandler serves /-/ routes. Optional.
	HealthHandler *handlers.HealthHandler

	// RecommendHandler serves /recommend and /api/v1. Optional.
	RecommendHandler *handlers.RecommendHandler

	// Timeout is the deadline for recommendation routes. Zero disables it.
	Timeout time.Duration
}

// SetupRouter configures all routes and middleware on the Gin engine.
// Middleware runs in this order:
//  1. Recovery
//  2. Context logger, request ID and correlation ID
//  3. OpenTelemetry
//  4. CORS, when enabled
//  5. Logging (skips /-/ routes)
//  6. Timeout, on recommendation routes only
//
// Unknown routes answer 404 and known routes with the wrong method answer 405,
// both in the recommendation envelope.
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	engine.HandleMethodNotAllowed = true

	engine.Use(
		middleware.Recovery(cfg.Logger),
		middleware.ContextLogger(cfg.Logger),
		middleware.RequestID(),
		middleware.CorrelationID(),
	)
	engine.Use(telemetry.Middleware(cfg.ServiceName)...)

	if cfg.CORS != nil && cfg.CORS.Enabled {
		engine.Use(cors.New(corsConfig(cfg.CORS)))
	}

	engine.Use(middleware.Logging(cfg.Logger))

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterHealthRoutesOnEngine(engine)
	}

	if cfg.RecommendHandler != nil {
		cfg.RecommendHandler.RegisterLegacyRoutes(engine.Group("", middleware.Timeout(cfg.Timeout)))

		apiV1 := engine.Group("/api/v1", middleware.Timeout(cfg.Timeout))
		cfg.RecommendHandler.RegisterRecommendRoutes(apiV1)
	}

	engine.NoRoute(func(c *gin.Context) {
		AbortWithErrorCode(c, dto.ErrorCodeNotFound, dto.MessageNotFound)
	})
	engine.NoMethod(func(c *gin.Context) {
		AbortWithErrorCode(c, dto.ErrorCodeMethodNotAllowed, dto.MessageMethodNotAllowed)
	})
}

func corsConfig(cfg *config.CORSConfig) cors.Config {
	cc := cors.Config{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept",
			middleware.HeaderRequestID, middleware.HeaderCorrelationID,
		},
		ExposeHeaders: []string{middleware.HeaderRequestID, middleware.HeaderCorrelationID},
		MaxAge:        cfg.MaxAge,
	}

	if len(cfg.AllowedOrigins) == 0 || (len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*") {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = cfg.AllowedOrigins
	}

	return cc
}

// NewDefaultRouterConfig creates a RouterConfig from the loaded configuration.
func NewDefaultRouterConfig(
	logger *slog.Logger,
	cfg *config.Config,
	healthHandler *handlers.HealthHandler,
	recommendHandler *handlers.RecommendHandler,
) RouterConfig {
	timeout := cfg.Server.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	return RouterConfig{
		Logger:           logger,
		ServiceName:      cfg.App.Name,
		CORS:             &cfg.CORS,
		HealthHandler:    healthHandler,
		RecommendHandler: recommendHandler,
		Timeout:          timeout,
	}
}
