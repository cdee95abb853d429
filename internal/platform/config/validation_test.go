package config

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validConfig returns a fully valid configuration for testing.
func validConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:        "verse-recommender",
			Version:     "1.0.0",
			Environment: "local",
		},
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RequestTimeout:  60 * time.Second,
			MaxRequestSize:  DefaultMaxRequestSize,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Client: ClientConfig{
			Timeout: 10 * time.Second,
			Retry: RetryConfig{
				MaxAttempts:     3,
				InitialInterval: 100 * time.Millisecond,
				MaxInterval:     2 * time.Second,
				Multiplier:      2.0,
				JitterFactor:    0.25,
			},
			CircuitBreaker: CircuitBreakerConfig{
				MaxFailures:   5,
				Timeout:       30 * time.Second,
				HalfOpenLimit: 3,
			},
			Transport: TransportConfig{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		Services: ServicesConfig{
			Quran: QuranServiceConfig{
				BaseURL:   DefaultQuranBaseURL,
				Name:      "alquran-cloud",
				Edition:   DefaultQuranEdition,
				RateLimit: 10,
				Burst:     5,
			},
		},
		Recommender: RecommenderConfig{
			Engine:   "index",
			FactBase: FactBaseConfig{Source: "embedded"},
			Enrichment: EnrichmentConfig{
				Concurrency:   5,
				LookupTimeout: 10 * time.Second,
				Dedupe:        true,
				MaxVerses:     20,
				CacheTTL:      time.Hour,
				CacheCleanup:  10 * time.Minute,
			},
		},
	}
}

func TestConfig_Validate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestConfig_Validate_Fields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
		phrase string
	}{
		{"missing app name", func(c *Config) { c.App.Name = "" }, "app.name", "is required"},
		{"invalid environment", func(c *Config) { c.App.Environment = "staging" }, "app.environment", "must be one of"},
		{"port too high", func(c *Config) { c.Server.Port = 65536 }, "server.port", "must be at most"},
		{"zero port", func(c *Config) { c.Server.Port = 0 }, "server.port", "is required"},
		{"short read timeout", func(c *Config) { c.Server.ReadTimeout = time.Millisecond }, "server.read_timeout", "must be at least"},
		{"short request timeout", func(c *Config) { c.Server.RequestTimeout = time.Millisecond }, "server.request_timeout", "must be at least"},
		{"cors without origins", func(c *Config) { c.CORS = CORSConfig{Enabled: true} }, "cors.allowed_origins", "is required when"},
		{"unknown log level", func(c *Config) { c.Log.Level = "verbose" }, "log.level", "must be one of"},
		{"log file without path", func(c *Config) { c.Log.File = LogFileConfig{Enabled: true} }, "log.file.path", "is required when"},
		{"telemetry without endpoint", func(c *Config) {
			c.Telemetry = TelemetryConfig{Enabled: true, ServiceName: "verse-recommender"}
		}, "telemetry.endpoint", "is required when"},
		{"sampling rate above one", func(c *Config) { c.Telemetry.SamplingRate = 1.1 }, "telemetry.sampling_rate", "must be at most"},
		{"client timeout too short", func(c *Config) { c.Client.Timeout = 50 * time.Millisecond }, "client.timeout", "must be at least"},
		{"too many attempts", func(c *Config) { c.Client.Retry.MaxAttempts = 11 }, "client.retry.max_attempts", "must be at most"},
		{"multiplier too small", func(c *Config) { c.Client.Retry.Multiplier = 1.0 }, "client.retry.multiplier", "must be at least"},
		{"zero max failures", func(c *Config) { c.Client.CircuitBreaker.MaxFailures = 0 }, "client.circuit_breaker.max_failures", "is required"},
		{"zero idle conns", func(c *Config) { c.Client.Transport.MaxIdleConns = 0 }, "client.transport.max_idle_conns", "is required"},
		{"invalid quran url", func(c *Config) { c.Services.Quran.BaseURL = "not a url" }, "services.quran.base_url", "must be a valid URL"},
		{"missing edition", func(c *Config) { c.Services.Quran.Edition = "" }, "services.quran.edition", "is required"},
		{"rate limit without burst", func(c *Config) { c.Services.Quran.Burst = 0 }, "services.quran.burst", "is required when"},
		{"unknown engine", func(c *Config) { c.Recommender.Engine = "prolog" }, "recommender.engine", "must be one of"},
		{"unknown source", func(c *Config) { c.Recommender.FactBase.Source = "csv" }, "recommender.fact_base.source", "must be one of"},
		{"file source without path", func(c *Config) { c.Recommender.FactBase.Source = "sqlite" }, "recommender.fact_base.path", "is required unless"},
		{"zero concurrency", func(c *Config) { c.Recommender.Enrichment.Concurrency = 0 }, "recommender.enrichment.concurrency", "is required"},
		{"max verses above cap", func(c *Config) { c.Recommender.Enrichment.MaxVerses = 101 }, "recommender.enrichment.max_verses", "must be at most"},
		{"cache ttl without cleanup", func(c *Config) { c.Recommender.Enrichment.CacheCleanup = 0 }, "recommender.enrichment.cache_cleanup", "is required when"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.path)
			assert.Contains(t, err.Error(), tt.phrase)
		})
	}
}

func TestConfig_Validate_OptionalSections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"telemetry disabled without endpoint", func(c *Config) { c.Telemetry = TelemetryConfig{} }},
		{"cors disabled without origins", func(c *Config) { c.CORS = CORSConfig{} }},
		{"rate limiting off", func(c *Config) { c.Services.Quran.RateLimit, c.Services.Quran.Burst = 0, 0 }},
		{"cache off", func(c *Config) { c.Recommender.Enrichment.CacheTTL, c.Recommender.Enrichment.CacheCleanup = 0, 0 }},
		{"yaml fact base with path", func(c *Config) { c.Recommender.FactBase = FactBaseConfig{Source: "yaml", Path: "data/verses.yaml"} }},
		{"datalog engine", func(c *Config) { c.Recommender.Engine = "datalog" }},
		{"no enrichment cap", func(c *Config) { c.Recommender.Enrichment.MaxVerses = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			assert.NoError(t, cfg.Validate())
		})
	}
}

func TestConfig_Validate_ValidEnvironments(t *testing.T) {
	for _, env := range []string{"local", "dev", "qa", "prod", "test"} {
		t.Run(env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = env

			assert.NoError(t, cfg.Validate())
		})
	}
}

func TestConfig_Validate_SamplingRateBounds(t *testing.T) {
	tests := []struct {
		rate    float64
		wantErr bool
	}{
		{0.0, false},
		{0.5, false},
		{1.0, false},
		{-0.1, true},
		{1.1, true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("rate_%v", tt.rate), func(t *testing.T) {
			cfg := validConfig()
			cfg.Telemetry.SamplingRate = tt.rate

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_Validate_MultipleErrors(t *testing.T) {
	cfg := validConfig()
	cfg.App.Name = ""
	cfg.Recommender.Engine = "prolog"

	err := cfg.Validate()
	require.Error(t, err)

	errStr := err.Error()
	assert.Contains(t, errStr, "config validation failed")
	assert.Contains(t, errStr, "app.name")
	assert.Contains(t, errStr, "recommender.engine")
}

func TestFormatFieldPath(t *testing.T) {
	tests := []struct {
		namespace string
		expected  string
	}{
		{"Config.server.port", "server.port"},
		{"Config.recommender.fact_base.path", "recommender.fact_base.path"},
		{"Config.Server.Port", "server.port"},
		{"port", "port"},
	}

	for _, tt := range tests {
		t.Run(tt.namespace, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatFieldPath(tt.namespace))
		})
	}
}
