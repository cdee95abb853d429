package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/verse-recommender/internal/adapters/http/handlers"
	"github.com/jsamuelsen/verse-recommender/internal/adapters/http/middleware"
	"github.com/jsamuelsen/verse-recommender/internal/app"
	"github.com/jsamuelsen/verse-recommender/internal/domain"
	"github.com/jsamuelsen/verse-recommender/internal/mocks"
	"github.com/jsamuelsen/verse-recommender/internal/platform/config"
	"github.com/jsamuelsen/verse-recommender/internal/ports"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testServerConfig() *config.ServerConfig {
	return &config.ServerConfig{
		Host:            "127.0.0.1",
		Port:            0,
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    10 * time.Second,
		IdleTimeout:     30 * time.Second,
		ShutdownTimeout: 5 * time.Second,
		RequestTimeout:  time.Second,
		MaxRequestSize:  1 << 10,
	}
}

// newTestRouter builds the full router over mocked ports.
func newTestRouter(t *testing.T, matcher *mocks.MockVerseMatcher, cors *config.CORSConfig) *gin.Engine {
	t.Helper()

	registry := mocks.NewMockHealthRegistry(t)
	registry.EXPECT().CheckAll(mock.Anything).Return(&ports.HealthResult{
		Status: ports.HealthStatusHealthy,
		Checks: map[string]*ports.CheckResult{},
	}).Maybe()

	service := app.NewRecommendationService(app.RecommendationServiceConfig{
		Matcher: matcher,
		Enricher: app.NewEnricher(app.EnricherConfig{
			Lookup: mocks.NewMockVerseLookup(t),
			Logger: discardLogger(),
		}),
		Logger: discardLogger(),
	})

	srv := New(testServerConfig(), discardLogger())
	SetupRouter(srv.Engine(), RouterConfig{
		Logger:           discardLogger(),
		ServiceName:      "verse-recommender-test",
		CORS:             cors,
		HealthHandler:    handlers.NewHealthHandler(registry, handlers.NewBuildInfo("test", "none", "")),
		RecommendHandler: handlers.NewRecommendHandler(service),
		Timeout:          time.Second,
	})

	return srv.Engine()
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())

	return body
}

func TestSetupRouter_Routes(t *testing.T) {
	engine := newTestRouter(t, mocks.NewMockVerseMatcher(t), nil)

	routes := make(map[string]bool)
	for _, r := range engine.Routes() {
		routes[r.Method+" "+r.Path] = true
	}

	for _, want := range []string{
		"POST /recommend",
		"POST /api/v1/recommendations",
		"POST /api/v1/recommendations/enriched",
		"GET /api/v1/facets",
		"GET /-/live",
		"GET /-/ready",
		"GET /-/build",
		"GET /-/metrics",
	} {
		assert.True(t, routes[want], "missing route: %s", want)
	}
}

func TestSetupRouter_Recommend(t *testing.T) {
	matcher := mocks.NewMockVerseMatcher(t)
	matcher.EXPECT().Match(mock.Anything, domain.FacetQuery{Theme: domain.ThemePatience, Audience: domain.AudienceBelievers}).
		Return(domain.MatchResult{{Surah: 2, Verse: 155}}, nil)

	engine := newTestRouter(t, matcher, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/recommend", strings.NewReader(`{"theme":"patience","audience":"believers"}`))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"data":[[2,155]],"total_found":1}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderRequestID))
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderCorrelationID))
}

func TestSetupRouter_NotFoundAndMethodNotAllowed(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		status int
		error  string
	}{
		{"unknown route", http.MethodGet, "/nope", http.StatusNotFound, "Endpoint not found"},
		{"unknown api route", http.MethodPost, "/api/v1/verses", http.StatusNotFound, "Endpoint not found"},
		{"get on recommend", http.MethodGet, "/recommend", http.StatusMethodNotAllowed, "Method not allowed"},
		{"delete on facets", http.MethodDelete, "/api/v1/facets", http.StatusMethodNotAllowed, "Method not allowed"},
	}

	engine := newTestRouter(t, mocks.NewMockVerseMatcher(t), nil)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))

			assert.Equal(t, tt.status, w.Code)
			body := decode(t, w)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.error, body["error"])
		})
	}
}

func TestSetupRouter_BodyTooLarge(t *testing.T) {
	engine := newTestRouter(t, mocks.NewMockVerseMatcher(t), nil)

	body := `{"theme":"` + strings.Repeat("x", 2<<10) + `"}`

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/recommendations", strings.NewReader(body)))

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "Request body too large", decode(t, w)["error"])
}

func TestSetupRouter_CORS(t *testing.T) {
	tests := []struct {
		name   string
		cors   *config.CORSConfig
		origin string
		want   string
	}{
		{"disabled", &config.CORSConfig{Enabled: false}, "http://localhost:3000", ""},
		{"wildcard", &config.CORSConfig{Enabled: true, AllowedOrigins: []string{"*"}}, "http://localhost:3000", "*"},
		{
			name:   "listed origin",
			cors:   &config.CORSConfig{Enabled: true, AllowedOrigins: []string{"http://localhost:3000"}},
			origin: "http://localhost:3000",
			want:   "http://localhost:3000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newTestRouter(t, mocks.NewMockVerseMatcher(t), tt.cors)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/facets", nil)
			req.Header.Set("Origin", tt.origin)
			engine.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.want, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestSetupRouter_CORSRejectsUnlistedOrigin(t *testing.T) {
	engine := newTestRouter(t, mocks.NewMockVerseMatcher(t),
		&config.CORSConfig{Enabled: true, AllowedOrigins: []string{"http://localhost:3000"}})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/facets", nil)
	req.Header.Set("Origin", "http://evil.example")
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSetupRouter_RequestTimeout(t *testing.T) {
	matcher := mocks.NewMockVerseMatcher(t)
	matcher.EXPECT().Match(mock.Anything, mock.Anything).
		RunAndReturn(func(ctx context.Context, _ domain.FacetQuery) (domain.MatchResult, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		})

	registry := mocks.NewMockHealthRegistry(t)
	service := app.NewRecommendationService(app.RecommendationServiceConfig{Matcher: matcher, Logger: discardLogger()})

	engine := gin.New()
	SetupRouter(engine, RouterConfig{
		Logger:           discardLogger(),
		HealthHandler:    handlers.NewHealthHandler(registry, handlers.BuildInfo{}),
		RecommendHandler: handlers.NewRecommendHandler(service),
		Timeout:          20 * time.Millisecond,
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/recommend", strings.NewReader(`{"tone":"hopeful"}`)))

	// a matcher that gives up on cancellation is still an engine failure
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Error fetching recommendations", decode(t, w)["error"])
}

func TestNewDefaultRouterConfig(t *testing.T) {
	cfg := &config.Config{
		App:    config.AppConfig{Name: "verse-recommender"},
		Server: config.ServerConfig{},
		CORS:   config.CORSConfig{Enabled: true},
	}

	rc := NewDefaultRouterConfig(discardLogger(), cfg, nil, nil)

	assert.Equal(t, "verse-recommender", rc.ServiceName)
	assert.Equal(t, DefaultRequestTimeout, rc.Timeout)
	assert.True(t, rc.CORS.Enabled)

	cfg.Server.RequestTimeout = 5 * time.Second
	assert.Equal(t, 5*time.Second, NewDefaultRouterConfig(discardLogger(), cfg, nil, nil).Timeout)
}

func TestServer_New(t *testing.T) {
	cfg := testServerConfig()
	cfg.Host = "0.0.0.0"
	cfg.Port = 3000

	srv := New(cfg, discardLogger())

	require.NotNil(t, srv.Engine())
	assert.Equal(t, cfg, srv.Config())
	assert.Equal(t, "0.0.0.0:3000", srv.Addr())
}

func TestServer_ServeAndShutdown(t *testing.T) {
	srv := New(testServerConfig(), discardLogger())
	srv.Engine().GET("/-/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- srv.Serve(ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/-/live")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, srv.Shutdown(ctx))
	require.NoError(t, <-done)
}

func TestAbortWithErrorCode(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	AbortWithErrorCode(c, "TIMEOUT", "Request timed out")

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"Request timed out"}`, w.Body.String())
}
