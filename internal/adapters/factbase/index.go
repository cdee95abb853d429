// Package factbase loads the tagged verse fact base and evaluates facet
// queries against it. Two engines implement ports.VerseMatcher: an inverted
// index (default) and a Datalog fact store backed by Mangle.
package factbase

import (
	"context"
	"slices"

	"github.com/jsamuelsen/verse-recommender/internal/domain"
)

// EngineIndex is the name of the inverted index engine.
const EngineIndex = "index"

// IndexMatcher answers facet queries by intersecting per-value posting lists.
// Posting lists hold record ordinals in ascending order, so the intersection
// preserves the fact base's natural order.
type IndexMatcher struct {
	records  []domain.VerseRecord
	postings map[domain.Constraint][]int
}

// NewIndexMatcher builds the index. The records slice is copied.
func NewIndexMatcher(records []domain.VerseRecord) *IndexMatcher {
	m := &IndexMatcher{
		records:  slices.Clone(records),
		postings: make(map[domain.Constraint][]int),
	}

	for i, r := range m.records {
		for _, f := range domain.Facets() {
			key := domain.Constraint{Facet: f, Value: r.Value(f)}
			m.postings[key] = append(m.postings[key], i)
		}
	}

	return m
}

// Match returns the references of every record satisfying q.
func (m *IndexMatcher) Match(_ context.Context, q domain.FacetQuery) (domain.MatchResult, error) {
	constraints := q.Constraints()
	if len(constraints) == 0 {
		out := make(domain.MatchResult, len(m.records))
		for i, r := range m.records {
			out[i] = r.VerseRef
		}

		return out, nil
	}

	lists := make([][]int, 0, len(constraints))
	for _, c := range constraints {
		list, ok := m.postings[c]
		if !ok {
			return domain.MatchResult{}, nil
		}
		lists = append(lists, list)
	}

	// Start from the shortest list to keep every step small.
	slices.SortFunc(lists, func(a, b []int) int { return len(a) - len(b) })

	hits := lists[0]
	for _, list := range lists[1:] {
		hits = intersect(hits, list)
		if len(hits) == 0 {
			break
		}
	}

	out := make(domain.MatchResult, len(hits))
	for i, ord := range hits {
		out[i] = m.records[ord].VerseRef
	}

	return out, nil
}

// Len returns the number of records in the fact base.
func (m *IndexMatcher) Len() int {
	return len(m.records)
}

// Name implements ports.HealthChecker.
func (m *IndexMatcher) Name() string {
	return "matcher"
}

// Check implements ports.HealthChecker. The index has no failure mode once built.
func (m *IndexMatcher) Check(context.Context) error {
	return nil
}

// intersect merges two ascending lists into a new ascending list.
func intersect(a, b []int) []int {
	out := make([]int, 0, min(len(a), len(b)))

	for i, j := 0, 0; i < len(a) && j < len(b); {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}

	return out
}
