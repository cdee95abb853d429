package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jsamuelsen/verse-recommender/internal/adapters/cache"
	"github.com/jsamuelsen/verse-recommender/internal/adapters/clients"
	"github.com/jsamuelsen/verse-recommender/internal/adapters/clients/acl"
	"github.com/jsamuelsen/verse-recommender/internal/adapters/factbase"
	"github.com/jsamuelsen/verse-recommender/internal/app"
	"github.com/jsamuelsen/verse-recommender/internal/platform/config"
	"github.com/jsamuelsen/verse-recommender/internal/platform/logging"
	"github.com/jsamuelsen/verse-recommender/internal/ports"
)

// environment is everything a recommend run needs.
type environment struct {
	matcher   ports.VerseMatcher
	enricher  *app.Enricher
	engine    string
	dedupe    bool
	maxVerses int
	logger    *slog.Logger
	close     func()
}

// environmentLoader builds the environment for opts. Tests replace it.
type environmentLoader func(ctx context.Context, opts *rootOptions) (*environment, error)

// loadEnvironment reads configuration and opens the fact base. The verse
// lookup chain is only built when opts.enrich is set.
func loadEnvironment(ctx context.Context, opts *rootOptions) (*environment, error) {
	profile := opts.profile
	if profile == "" {
		profile = "local"
	}

	cfg, err := config.LoadDir(opts.configDir, profile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	applyOverrides(cfg, opts)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.NewWithWriter(&logging.Config{
		Level:   opts.logLevel,
		Format:  "pretty",
		Service: "recommend",
		Version: Version,
	}, os.Stderr)

	source, err := factbase.NewSource(cfg.Recommender.FactBase.Source, cfg.Recommender.FactBase.Path)
	if err != nil {
		return nil, fmt.Errorf("configuring fact base: %w", err)
	}

	matcher, err := factbase.Open(ctx, source, cfg.Recommender.Engine, logger)
	if err != nil {
		return nil, fmt.Errorf("opening fact base: %w", err)
	}

	env := &environment{
		matcher:   matcher,
		engine:    cfg.Recommender.Engine,
		dedupe:    cfg.Recommender.Enrichment.Dedupe,
		maxVerses: cfg.Recommender.Enrichment.MaxVerses,
		logger:    logger,
		close:     func() {},
	}

	if !opts.enrich {
		return env, nil
	}

	lookup, closeLookup, err := newLookup(cfg, logger)
	if err != nil {
		return nil, err
	}

	env.close = closeLookup
	env.enricher = app.NewEnricher(app.EnricherConfig{
		Lookup:        lookup,
		Concurrency:   cfg.Recommender.Enrichment.Concurrency,
		LookupTimeout: cfg.Recommender.Enrichment.LookupTimeout,
		Logger:        logger,
	})

	return env, nil
}

// applyOverrides layers the fact base flags over the loaded configuration.
func applyOverrides(cfg *config.Config, opts *rootOptions) {
	if opts.source != "" {
		cfg.Recommender.FactBase.Source = opts.source
	}
	if opts.factBase != "" {
		cfg.Recommender.FactBase.Path = opts.factBase
	}
	if opts.engine != "" {
		cfg.Recommender.Engine = opts.engine
	}
}

// newLookup builds the client, ACL adapter and cache chain. The returned
// func releases the cache.
func newLookup(cfg *config.Config, logger *slog.Logger) (ports.VerseLookup, func(), error) {
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
		UserAgent:   "recommend/" + Version,
		Logger:      logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("creating HTTP client: %w", err)
	}

	client := acl.NewQuranClient(acl.QuranClientConfig{
		Client:  httpClient,
		Edition: quran.Edition,
		Logger:  logger,
	})

	if cfg.Recommender.Enrichment.CacheTTL <= 0 {
		return client, func() {}, nil
	}

	verses := cache.NewVerseCache(client, cache.Config{
		Edition:         client.Edition(),
		TTL:             cfg.Recommender.Enrichment.CacheTTL,
		CleanupInterval: cfg.Recommender.Enrichment.CacheCleanup,
	})

	return verses, verses.Flush, nil
}
