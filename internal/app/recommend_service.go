package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jsamuelsen/verse-recommender/internal/domain"
	"github.com/jsamuelsen/verse-recommender/internal/platform/telemetry"
	"github.com/jsamuelsen/verse-recommender/internal/ports"
)

// Recommendation is the outcome of a plain facet query.
// Matches keep the fact base's natural order, repeats included.
type Recommendation struct {
	Query   domain.FacetQuery
	Matches domain.MatchResult
}

// EnrichedRecommendation is the outcome of a query followed by enrichment.
type EnrichedRecommendation struct {
	Query domain.FacetQuery

	// Verses has one entry per enriched reference, in match order.
	Verses []domain.EnrichedVerse

	// TotalFound counts matches after deduplication and before the limit.
	TotalFound int

	// Failed counts entries whose lookup failed.
	Failed int
}

// RecommendationServiceConfig holds dependencies for RecommendationService.
type RecommendationServiceConfig struct {
	Matcher  ports.VerseMatcher
	Enricher *Enricher

	// Engine names the matcher in metrics.
	Engine string

	// Dedupe drops repeated references before enrichment.
	Dedupe bool

	// MaxVerses caps enrichment when the caller gives no limit. Zero means no cap.
	MaxVerses int

	Metrics *telemetry.RecommenderMetrics
	Logger  *slog.Logger
}

// RecommendationService runs facet queries and optional enrichment.
type RecommendationService struct {
	matcher   ports.VerseMatcher
	enricher  *Enricher
	engine    string
	dedupe    bool
	maxVerses int
	metrics   *telemetry.RecommenderMetrics
	exec      *Executor
}

// NewRecommendationService creates a RecommendationService.
// It panics if cfg.Matcher is nil. Enricher may be nil when only plain
// recommendations are served.
func NewRecommendationService(cfg RecommendationServiceConfig) *RecommendationService {
	if cfg.Matcher == nil {
		panic("app: NewRecommendationService requires a VerseMatcher")
	}

	engine := cfg.Engine
	if engine == "" {
		engine = "matcher"
	}

	return &RecommendationService{
		matcher:   cfg.Matcher,
		enricher:  cfg.Enricher,
		engine:    engine,
		dedupe:    cfg.Dedupe,
		maxVerses: cfg.MaxVerses,
		metrics:   cfg.Metrics,
		exec:      NewExecutor(cfg.Logger),
	}
}

// Recommend validates sel and returns the matching references.
//
// Errors unwrap to a *domain.QueryValidationError when sel is invalid and to
// a *domain.MatchEngineError when the fact base query fails.
func (s *RecommendationService) Recommend(ctx context.Context, sel domain.FacetSelection) (*Recommendation, error) {
	return Execute(ctx, s.exec, Operation[domain.FacetSelection, domain.FacetQuery, domain.MatchResult, *Recommendation]{
		Name: "recommend",
		Validate: func(_ context.Context, sel domain.FacetSelection) (domain.FacetQuery, error) {
			return domain.ParseFacetQuery(sel)
		},
		Perform: s.match,
		Verify:  verifyMatches,
		Respond: func(_ context.Context, q domain.FacetQuery, matches domain.MatchResult) (*Recommendation, error) {
			return &Recommendation{Query: q, Matches: matches}, nil
		},
	}, sel)
}

// RecommendEnriched runs Recommend and enriches up to limit references.
// limit <= 0 falls back to the configured maximum.
func (s *RecommendationService) RecommendEnriched(
	ctx context.Context,
	sel domain.FacetSelection,
	limit int,
) (*EnrichedRecommendation, error) {
	if s.enricher == nil {
		return nil, domain.NewUnavailableError("enricher", "verse enrichment is not configured")
	}

	rec, err := s.Recommend(ctx, sel)
	if err != nil {
		return nil, err
	}

	refs := rec.Matches
	if s.dedupe {
		refs = refs.Dedupe()
	}

	total := len(refs)

	if limit <= 0 {
		limit = s.maxVerses
	}
	if limit > 0 && len(refs) > limit {
		refs = refs[:limit]
	}

	verses := s.enricher.Enrich(ctx, refs)

	failed := 0
	for _, v := range verses {
		if v.LookupFailed {
			failed++
		}
	}

	return &EnrichedRecommendation{
		Query:      rec.Query,
		Verses:     verses,
		TotalFound: total,
		Failed:     failed,
	}, nil
}

func (s *RecommendationService) match(ctx context.Context, q domain.FacetQuery) (domain.MatchResult, error) {
	matches, err := s.matcher.Match(ctx, q)
	if err != nil {
		if !domain.IsMatchEngine(err) {
			err = domain.NewMatchEngineError(s.engine, err)
		}
		return nil, err
	}

	if matches == nil {
		matches = domain.MatchResult{}
	}

	s.metrics.RecordMatch(ctx, s.engine, len(matches))

	return matches, nil
}

func verifyMatches(_ context.Context, _ domain.FacetQuery, matches domain.MatchResult) error {
	for i, ref := range matches {
		if !ref.Valid() {
			return domain.NewMatchEngineError("matcher", fmt.Errorf("result %d has invalid reference %s", i, ref))
		}
	}

	return nil
}
