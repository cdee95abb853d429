// Package main is the entry point for the verse recommendation service.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jsamuelsen/verse-recommender/internal/adapters/cache"
	"github.com/jsamuelsen/verse-recommender/internal/adapters/clients"
	"github.com/jsamuelsen/verse-recommender/internal/adapters/clients/acl"
	"github.com/jsamuelsen/verse-recommender/internal/adapters/factbase"
	"github.com/jsamuelsen/verse-recommender/internal/adapters/http"
	"github.com/jsamuelsen/verse-recommender/internal/adapters/http/handlers"
	"github.com/jsamuelsen/verse-recommender/internal/app"
	"github.com/jsamuelsen/verse-recommender/internal/platform/config"
	"github.com/jsamuelsen/verse-recommender/internal/platform/logging"
	"github.com/jsamuelsen/verse-recommender/internal/platform/telemetry"
	"github.com/jsamuelsen/verse-recommender/internal/ports"
)

// Build-time variables, injected via ldflags.
// Example: go build -ldflags "-X main.Version=1.0.0 -X main.Commit=$(git rev-parse HEAD) -X main.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	// Version is the semantic version of the service.
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "unknown"

	// BuildTime is the timestamp when the binary was built.
	BuildTime = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Determine profile from environment
	profile := os.Getenv("APP_ENVIRONMENT")
	if profile == "" {
		profile = "local"
	}

	// 2. Load and validate configuration (fail fast)
	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// 3. Initialize logging
	logger := logging.New(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
	logging.SetDefault(logger)

	logger.Info("starting service",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
	)

	// 4. Initialize telemetry (noop if disabled)
	telProvider, err := telemetry.New(ctx, &telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		Endpoint:     cfg.Telemetry.Endpoint,
		ServiceName:  cfg.Telemetry.ServiceName,
		Version:      cfg.App.Version,
		Environment:  cfg.App.Environment,
		SamplingRate: cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	defer func() {
		// The signal context is already done here, so shutdown gets its own.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if shutdownErr := telProvider.Shutdown(shutdownCtx); shutdownErr != nil {
			logger.Error("telemetry shutdown error", slog.Any("error", shutdownErr))
		}
	}()

	metrics, err := telemetry.NewRecommenderMetrics()
	if err != nil {
		return fmt.Errorf("creating recommender metrics: %w", err)
	}

	// 5. Load the fact base and build the match engine
	source, err := factbase.NewSource(cfg.Recommender.FactBase.Source, cfg.Recommender.FactBase.Path)
	if err != nil {
		return fmt.Errorf("configuring fact base: %w", err)
	}

	matcher, err := factbase.Open(ctx, source, cfg.Recommender.Engine, logger)
	if err != nil {
		return fmt.Errorf("opening fact base: %w", err)
	}

	// 6. Create health registry
	healthRegistry := ports.NewHealthRegistry()

	if err := healthRegistry.Register(matcher); err != nil {
		return fmt.Errorf("registering matcher health check: %w", err)
	}

	// 7. Create the verse lookup chain: HTTP client, ACL adapter, cache
	quranClient, err := newQuranClient(cfg, logger)
	if err != nil {
		return err
	}

	if err := healthRegistry.Register(quranClient); err != nil {
		return fmt.Errorf("registering verse lookup health check: %w", err)
	}

	var lookup ports.VerseLookup = quranClient
	if cfg.Recommender.Enrichment.CacheTTL > 0 {
		lookup = cache.NewVerseCache(quranClient, cache.Config{
			Edition:         quranClient.Edition(),
			TTL:             cfg.Recommender.Enrichment.CacheTTL,
			CleanupInterval: cfg.Recommender.Enrichment.CacheCleanup,
			Metrics:         metrics,
		})
	}

	// 8. Create the application layer
	enricher := app.NewEnricher(app.EnricherConfig{
		Lookup:        lookup,
		Concurrency:   cfg.Recommender.Enrichment.Concurrency,
		LookupTimeout: cfg.Recommender.Enrichment.LookupTimeout,
		Metrics:       metrics,
		Logger:        logger,
	})

	recommendService := app.NewRecommendationService(app.RecommendationServiceConfig{
		Matcher:   matcher,
		Enricher:  enricher,
		Engine:    cfg.Recommender.Engine,
		Dedupe:    cfg.Recommender.Enrichment.Dedupe,
		MaxVerses: cfg.Recommender.Enrichment.MaxVerses,
		Metrics:   metrics,
		Logger:    logger,
	})

	// 9. Create handlers
	buildInfo := handlers.NewBuildInfo(Version, Commit, BuildTime).
		WithFactBase(cfg.Recommender.Engine, source.Name(), matcher.Len())
	healthHandler := handlers.NewHealthHandler(healthRegistry, buildInfo)
	recommendHandler := handlers.NewRecommendHandler(recommendService)

	// 10. Create HTTP server and router
	server := http.New(&cfg.Server, logger)
	http.SetupRouter(server.Engine(), http.NewDefaultRouterConfig(logger, cfg, healthHandler, recommendHandler))

	// 11. Serve until a signal arrives or the server fails
	return serve(ctx, logger, server, cfg.Server.ShutdownTimeout)
}

// newQuranClient builds the instrumented client and the ACL adapter over it.
func newQuranClient(cfg *config.Config, logger *slog.Logger) (*acl.QuranClient, error) {
	quran := cfg.Services.Quran

	httpClient, err := clients.New(&clients.Config{
		BaseURL:     quran.BaseURL,
		ServiceName: quran.Name,
		Timeout:     cfg.Client.Timeout,
		Retry:       cfg.Client.Retry,
		Circuit:     cfg.Client.CircuitBreaker,
		Transport:   cfg.Client.Transport,
		RateLimit:   quran.RateLimit,
		Burst:       quran.Burst,
		UserAgent:   cfg.App.Name + "/" + Version,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating HTTP client: %w", err)
	}

	return acl.NewQuranClient(acl.QuranClientConfig{
		Client:  httpClient,
		Edition: quran.Edition,
		Logger:  logger,
	}), nil
}

// serve runs the server until ctx is done, then drains in-flight requests
// within shutdownTimeout.
func serve(ctx context.Context, logger *slog.Logger, server *http.Server, shutdownTimeout time.Duration) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return server.ListenAndServe()
	})

	g.Go(func() error {
		<-gctx.Done()

		if ctx.Err() != nil {
			logger.Info("received shutdown signal")
		}

		// Create shutdown context with timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		logger.Info("initiating graceful shutdown",
			slog.Duration("timeout", shutdownTimeout),
		)

		// Stop accepting new requests, drain in-flight
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}

		logger.Info("shutdown complete")

		return nil
	})

	return g.Wait()
}
