package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	reqctx "github.com/jsamuelsen/verse-recommender/internal/app/context"
	"github.com/jsamuelsen/verse-recommender/internal/domain"
	"github.com/jsamuelsen/verse-recommender/internal/platform/logging"
	"github.com/jsamuelsen/verse-recommender/internal/platform/telemetry"
	"github.com/jsamuelsen/verse-recommender/internal/ports"
)

const (
	defaultEnrichConcurrency = 5
	defaultLookupTimeout     = 10 * time.Second
)

// EnricherConfig holds dependencies for the Enricher.
type EnricherConfig struct {
	Lookup ports.VerseLookup

	// Concurrency bounds in-flight lookups. Defaults to 5.
	Concurrency int

	// LookupTimeout bounds each lookup. Defaults to 10s.
	LookupTimeout time.Duration

	Metrics *telemetry.RecommenderMetrics
	Logger  *slog.Logger
}

// Enricher resolves verse references into display metadata.
// A failed lookup becomes a failure entry and never aborts the batch.
type Enricher struct {
	lookup        ports.VerseLookup
	concurrency   int
	lookupTimeout time.Duration
	metrics       *telemetry.RecommenderMetrics
	logger        *slog.Logger
}

// NewEnricher creates an Enricher. It panics if cfg.Lookup is nil.
func NewEnricher(cfg EnricherConfig) *Enricher {
	if cfg.Lookup == nil {
		panic("app: NewEnricher requires a VerseLookup")
	}

	e := &Enricher{
		lookup:        cfg.Lookup,
		concurrency:   cfg.Concurrency,
		lookupTimeout: cfg.LookupTimeout,
		metrics:       cfg.Metrics,
		logger:        cfg.Logger,
	}

	if e.concurrency < 1 {
		e.concurrency = defaultEnrichConcurrency
	}
	if e.lookupTimeout <= 0 {
		e.lookupTimeout = defaultLookupTimeout
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}

	return e
}

// Enrich looks up every reference and returns one entry per input, in input order.
// Repeated references within one call share a single lookup.
func (e *Enricher) Enrich(ctx context.Context, refs []domain.VerseRef) []domain.EnrichedVerse {
	if len(refs) == 0 {
		return []domain.EnrichedVerse{}
	}

	ctx, rc := reqctx.Ensure(ctx)

	fns := make([]func(context.Context) (*domain.VerseDisplay, error), len(refs))
	for i, ref := range refs {
		fns[i] = func(ctx context.Context) (*domain.VerseDisplay, error) {
			return reqctx.Fetch(ctx, rc, ref.String(), func(ctx context.Context) (*domain.VerseDisplay, error) {
				callCtx, cancel := context.WithTimeout(ctx, e.lookupTimeout)
				defer cancel()

				return e.lookup.LookupVerse(callCtx, ref)
			})
		}
	}

	results := ParallelPartialLimit(ctx, e.concurrency, fns...)

	logger := logging.FromContextOr(ctx, e.logger)
	out := make([]domain.EnrichedVerse, len(refs))

	for i, res := range results {
		ref := refs[i]

		if res.Err == nil && res.Value == nil {
			res.Err = errors.New("empty lookup result")
		}

		if res.Err != nil {
			reason := failureReason(res.Err)
			logger.WarnContext(ctx, "verse lookup failed",
				slog.String("verse", ref.String()),
				slog.String("reason", reason),
				slog.Any("error", res.Err),
			)
			e.metrics.RecordLookup(ctx, telemetry.OutcomeFailure)
			out[i] = domain.NewFailedVerse(ref, reason)

			continue
		}

		e.metrics.RecordLookup(ctx, telemetry.OutcomeSuccess)
		out[i] = domain.NewEnrichedVerse(ref, *res.Value)
	}

	return out
}

func failureReason(err error) string {
	switch {
	case domain.IsNotFound(err):
		return "verse not found"
	case errors.Is(err, context.DeadlineExceeded):
		return "lookup timed out"
	case domain.IsUnavailable(err):
		return "verse service unavailable"
	default:
		return "lookup failed"
	}
}
