// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, allowing the application layer
// to depend on abstractions rather than concrete implementations.
//
// Port Design Principles:
//   - Context as first parameter for anything that may block
//   - Return domain types, never external DTOs or infrastructure types
//   - Error returns use domain error types (ErrNotFound, ErrUnavailable, etc.)
//   - Keep interfaces small and focused
package ports

import (
	"context"

	"github.com/jsamuelsen/verse-recommender/internal/domain"
)

// VerseMatcher evaluates a validated facet query against the fact base.
//
// Implementations are read-only after construction and safe for concurrent use.
// Results follow the fact base's natural order and are never deduplicated.
// Backend failures are returned as *domain.MatchEngineError.
type VerseMatcher interface {
	Match(ctx context.Context, q domain.FacetQuery) (domain.MatchResult, error)
}

// VerseLookup resolves a verse reference into display metadata.
//
// Returns domain.ErrNotFound when the verse does not exist upstream and
// domain.ErrUnavailable for transport or upstream failures.
type VerseLookup interface {
	LookupVerse(ctx context.Context, ref domain.VerseRef) (*domain.VerseDisplay, error)
}

// FactSource produces the fact base records in natural order.
// Sources are read once at startup.
type FactSource interface {
	// Name identifies the source in logs, e.g. "yaml:data/verses.yaml".
	Name() string

	Load(ctx context.Context) ([]domain.VerseRecord, error)
}
