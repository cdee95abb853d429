package factbase

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/mangle/ast"
	"github.com/google/mangle/factstore"

	"github.com/jsamuelsen/verse-recommender/internal/domain"
)

// EngineDatalog is the name of the Mangle-backed engine.
const EngineDatalog = "datalog"

// verse_facet(Ordinal, Surah, Verse, /theme, /audience, /length, /tone, /location)
var verseFacetSym = ast.PredicateSym{Symbol: "verse_facet", Arity: 8}

var errStopScan = errors.New("stop scan")

// DatalogMatcher asserts every record as a Mangle fact and answers a query
// with a single atom whose set facets are name constants and whose
// wildcards are variables. The fact store does not preserve insertion order,
// so each fact carries its ordinal and results are re-sorted on it.
type DatalogMatcher struct {
	store factstore.FactStore
	count int
}

// NewDatalogMatcher loads records into an in-memory fact store.
func NewDatalogMatcher(records []domain.VerseRecord) (*DatalogMatcher, error) {
	store := factstore.NewSimpleInMemoryStore()

	for i, r := range records {
		atom, err := recordAtom(i, r)
		if err != nil {
			return nil, fmt.Errorf("asserting record %d (%s): %w", i, r.VerseRef, err)
		}
		store.Add(atom)
	}

	return &DatalogMatcher{store: store, count: len(records)}, nil
}

// Match queries the fact store for records satisfying q.
func (m *DatalogMatcher) Match(ctx context.Context, q domain.FacetQuery) (domain.MatchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewMatchEngineError(EngineDatalog, err)
	}

	pattern, err := queryAtom(q)
	if err != nil {
		return nil, domain.NewMatchEngineError(EngineDatalog, err)
	}

	type hit struct {
		ord int64
		ref domain.VerseRef
	}

	var hits []hit

	err = m.store.GetFacts(pattern, func(a ast.Atom) error {
		ord, rec, err := decodeAtom(a)
		if err != nil {
			return err
		}

		// GetFacts filters on constants; re-check so the result never
		// depends on the store's matching rules.
		if q.Matches(rec) {
			hits = append(hits, hit{ord: ord, ref: rec.VerseRef})
		}

		return nil
	})
	if err != nil {
		return nil, domain.NewMatchEngineError(EngineDatalog, err)
	}

	slices.SortFunc(hits, func(a, b hit) int { return cmp.Compare(a.ord, b.ord) })

	out := make(domain.MatchResult, len(hits))
	for i, h := range hits {
		out[i] = h.ref
	}

	return out, nil
}

// Len returns the number of asserted facts.
func (m *DatalogMatcher) Len() int {
	return m.count
}

// Name implements ports.HealthChecker.
func (m *DatalogMatcher) Name() string {
	return "matcher"
}

// Check implements ports.HealthChecker by scanning the first fact.
func (m *DatalogMatcher) Check(context.Context) error {
	err := m.store.GetFacts(ast.NewQuery(verseFacetSym), func(a ast.Atom) error {
		if _, _, err := decodeAtom(a); err != nil {
			return err
		}
		return errStopScan
	})
	if err != nil && !errors.Is(err, errStopScan) {
		return domain.NewMatchEngineError(EngineDatalog, err)
	}

	return nil
}

func recordAtom(ord int, r domain.VerseRecord) (ast.Atom, error) {
	args := []ast.BaseTerm{
		ast.Number(int64(ord)),
		ast.Number(int64(r.Surah)),
		ast.Number(int64(r.Verse)),
	}

	for _, f := range domain.Facets() {
		c, err := ast.Name("/" + r.Value(f))
		if err != nil {
			return ast.Atom{}, fmt.Errorf("facet %s: %w", f, err)
		}
		args = append(args, c)
	}

	return ast.NewAtom(verseFacetSym.Symbol, args...), nil
}

func queryAtom(q domain.FacetQuery) (ast.Atom, error) {
	args := []ast.BaseTerm{
		ast.Variable{Symbol: "Ord"},
		ast.Variable{Symbol: "Surah"},
		ast.Variable{Symbol: "Verse"},
	}

	for _, f := range domain.Facets() {
		v := q.Value(f)
		if v == "" {
			args = append(args, ast.Variable{Symbol: facetVariable(f)})
			continue
		}

		c, err := ast.Name("/" + v)
		if err != nil {
			return ast.Atom{}, fmt.Errorf("facet %s: %w", f, err)
		}
		args = append(args, c)
	}

	return ast.NewAtom(verseFacetSym.Symbol, args...), nil
}

// facetVariable turns "theme" into "Theme".
func facetVariable(f domain.Facet) string {
	s := string(f)
	return strings.ToUpper(s[:1]) + s[1:]
}

func decodeAtom(a ast.Atom) (int64, domain.VerseRecord, error) {
	if len(a.Args) != verseFacetSym.Arity {
		return 0, domain.VerseRecord{}, fmt.Errorf("fact %s has arity %d", a.Predicate.Symbol, len(a.Args))
	}

	nums := make([]int64, 3)
	for i := range nums {
		c, ok := a.Args[i].(ast.Constant)
		if !ok || c.Type != ast.NumberType {
			return 0, domain.VerseRecord{}, fmt.Errorf("argument %d of %s is not a number", i, a.Predicate.Symbol)
		}
		nums[i] = c.NumValue
	}

	tags := make([]string, 0, len(domain.Facets()))
	for i := 3; i < len(a.Args); i++ {
		c, ok := a.Args[i].(ast.Constant)
		if !ok || c.Type != ast.NameType {
			return 0, domain.VerseRecord{}, fmt.Errorf("argument %d of %s is not a name", i, a.Predicate.Symbol)
		}
		tags = append(tags, strings.TrimPrefix(c.Symbol, "/"))
	}

	rec := domain.VerseRecord{
		VerseRef: domain.VerseRef{Surah: int(nums[1]), Verse: int(nums[2])},
		Theme:    domain.Theme(tags[0]),
		Audience: domain.Audience(tags[1]),
		Length:   domain.Length(tags[2]),
		Tone:     domain.Tone(tags[3]),
		Location: domain.Location(tags[4]),
	}

	return nums[0], rec, nil
}
