//go:build integration

package integration

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/verse-recommender/internal/adapters/cache"
	"github.com/jsamuelsen/verse-recommender/internal/adapters/clients"
	"github.com/jsamuelsen/verse-recommender/internal/adapters/clients/acl"
	"github.com/jsamuelsen/verse-recommender/internal/adapters/factbase"
	apihttp "github.com/jsamuelsen/verse-recommender/internal/adapters/http"
	"github.com/jsamuelsen/verse-recommender/internal/adapters/http/handlers"
	"github.com/jsamuelsen/verse-recommender/internal/app"
	"github.com/jsamuelsen/verse-recommender/internal/platform/config"
	"github.com/jsamuelsen/verse-recommender/internal/ports"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeQuran imitates the alquran.cloud ayah endpoint.
// Unknown verses get the upstream's 404 envelope.
type fakeQuran struct {
	server *httptest.Server

	hits     atomic.Int32
	inFlight atomic.Int32
	peak     atomic.Int32

	mu         sync.Mutex
	requestIDs []string

	// failFirst makes the first n calls return 503.
	failFirst atomic.Int32

	// delay holds every response for this long.
	delay time.Duration
}

func newFakeQuran(tb testing.TB) *fakeQuran {
	tb.Helper()

	f := &fakeQuran{}
	f.server = httptest.NewServer(http.HandlerFunc(f.serve))
	tb.Cleanup(f.server.Close)

	return f
}

func (f *fakeQuran) URL() string { return f.server.URL }

func (f *fakeQuran) RequestIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.requestIDs...)
}

func (f *fakeQuran) serve(w http.ResponseWriter, r *http.Request) {
	f.hits.Add(1)

	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		peak := f.peak.Load()
		if n <= peak || f.peak.CompareAndSwap(peak, n) {
			break
		}
	}

	f.mu.Lock()
	f.requestIDs = append(f.requestIDs, r.Header.Get("X-Request-ID"))
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-r.Context().Done():
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")

	if f.failFirst.Add(-1) >= 0 {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"code":503,"status":"UNAVAILABLE","data":"try later"}`)
		return
	}

	// /ayah/{surah}:{verse}/{edition}
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/ayah/"), "/")
	surah, verse, ok := parseRef(parts[0])
	if !ok || surah > 114 || verse > 286 {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"code":404,"status":"NOT FOUND","data":"Not found."}`)
		return
	}

	_, _ = fmt.Fprintf(w,
		`{"code":200,"status":"OK","data":{"text":"text %d:%d","audio":"https://cdn.example/%d/%d.mp3","numberInSurah":%d,"surah":{"englishName":"Surah %d"}}}`,
		surah, verse, surah, verse, verse, surah)
}

func parseRef(s string) (int, int, bool) {
	a, b, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, false
	}

	surah, err1 := strconv.Atoi(a)
	verse, err2 := strconv.Atoi(b)

	return surah, verse, err1 == nil && err2 == nil
}

// stackOptions tune newStack.
type stackOptions struct {
	engine      string
	concurrency int
	cacheTTL    time.Duration
	maxFailures int
	attempts    int
}

// stack is the service wired the way cmd/service wires it, against a fake upstream.
type stack struct {
	engine   *gin.Engine
	registry *ports.DefaultHealthRegistry
	client   *clients.Client
	cache    *cache.VerseCache
}

func newStack(tb testing.TB, upstreamURL string, opts stackOptions) *stack {
	tb.Helper()

	if opts.engine == "" {
		opts.engine = factbase.EngineIndex
	}
	if opts.concurrency == 0 {
		opts.concurrency = 5
	}
	if opts.maxFailures == 0 {
		opts.maxFailures = 5
	}
	if opts.attempts == 0 {
		opts.attempts = 3
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	matcher, err := factbase.Open(context.Background(), factbase.EmbeddedSource{}, opts.engine, logger)
	if err != nil {
		tb.Fatalf("opening fact base: %v", err)
	}

	client, err := clients.New(&clients.Config{
		BaseURL:     upstreamURL,
		ServiceName: "alquran-cloud",
		Timeout:     2 * time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:     opts.attempts,
			InitialInterval: 10 * time.Millisecond,
			MaxInterval:     50 * time.Millisecond,
			Multiplier:      2.0,
		},
		Circuit: config.CircuitBreakerConfig{
			MaxFailures:   opts.maxFailures,
			Timeout:       time.Minute,
			HalfOpenLimit: 1,
		},
		Logger: logger,
	})
	if err != nil {
		tb.Fatalf("creating client: %v", err)
	}

	quran := acl.NewQuranClient(acl.QuranClientConfig{Client: client, Logger: logger})

	s := &stack{registry: ports.NewHealthRegistry(), client: client}

	var lookup ports.VerseLookup = quran
	if opts.cacheTTL > 0 {
		s.cache = cache.NewVerseCache(quran, cache.Config{Edition: quran.Edition(), TTL: opts.cacheTTL})
		lookup = s.cache
	}

	if err := s.registry.Register(matcher); err != nil {
		tb.Fatalf("registering matcher: %v", err)
	}
	if err := s.registry.Register(quran); err != nil {
		tb.Fatalf("registering lookup: %v", err)
	}

	service := app.NewRecommendationService(app.RecommendationServiceConfig{
		Matcher: matcher,
		Enricher: app.NewEnricher(app.EnricherConfig{
			Lookup:        lookup,
			Concurrency:   opts.concurrency,
			LookupTimeout: 2 * time.Second,
			Logger:        logger,
		}),
		Engine:    opts.engine,
		Dedupe:    true,
		MaxVerses: 20,
		Logger:    logger,
	})

	s.engine = gin.New()
	apihttp.SetupRouter(s.engine, apihttp.RouterConfig{
		Logger:      logger,
		ServiceName: "verse-recommender-it",
		HealthHandler: handlers.NewHealthHandler(s.registry,
			handlers.NewBuildInfo("it", "none", "").WithFactBase(opts.engine, "embedded", matcher.Len())),
		RecommendHandler: handlers.NewRecommendHandler(service),
		Timeout:          5 * time.Second,
	})

	return s
}

// post sends body to path through the stack.
func (s *stack) post(path, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	return w
}

func (s *stack) get(path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

	return w
}
