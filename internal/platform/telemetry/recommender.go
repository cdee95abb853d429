package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Lookup outcomes recorded by RecommenderMetrics.
const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeCacheHit = "cache_hit"
)

// RecommenderMetrics holds matching and enrichment instruments.
// A nil *RecommenderMetrics records nothing.
type RecommenderMetrics struct {
	matches      metric.Int64Histogram
	lookups      metric.Int64Counter
	matchQueries metric.Int64Counter
}

// NewRecommenderMetrics registers the recommender instruments on the global meter provider.
func NewRecommenderMetrics() (*RecommenderMetrics, error) {
	meter := otel.Meter(instrumentationName)

	matches, err := meter.Int64Histogram(
		"recommender.match.results",
		metric.WithDescription("Number of verse references returned per match"),
	)
	if err != nil {
		return nil, err
	}

	matchQueries, err := meter.Int64Counter(
		"recommender.match.total",
		metric.WithDescription("Total number of facet queries matched"),
	)
	if err != nil {
		return nil, err
	}

	lookups, err := meter.Int64Counter(
		"recommender.lookup.total",
		metric.WithDescription("Verse lookups by outcome"),
	)
	if err != nil {
		return nil, err
	}

	return &RecommenderMetrics{
		matches:      matches,
		lookups:      lookups,
		matchQueries: matchQueries,
	}, nil
}

// RecordMatch records one facet query and the size of its result.
func (m *RecommenderMetrics) RecordMatch(ctx context.Context, engine string, found int) {
	if m == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String("engine", engine))
	m.matchQueries.Add(ctx, 1, attrs)
	m.matches.Record(ctx, int64(found), attrs)
}

// RecordLookup records one verse lookup outcome.
func (m *RecommenderMetrics) RecordLookup(ctx context.Context, outcome string) {
	if m == nil {
		return
	}

	m.lookups.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
