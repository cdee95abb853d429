package domain

import "strings"

// FacetSelection is the untyped facet input received at a boundary
// (HTTP body, CLI flags). Empty fields mean "no preference".
type FacetSelection struct {
	Theme    string
	Audience string
	Length   string
	Tone     string
	Location string
}

// FacetQuery is a validated conjunctive query. A zero-valued field is a wildcard.
type FacetQuery struct {
	Theme    Theme
	Audience Audience
	Length   Length
	Tone     Tone
	Location Location
}

// Constraint is one set facet of a query.
type Constraint struct {
	Facet Facet
	Value string
}

// ParseFacetQuery validates a selection against the facet vocabularies.
// Every invalid field is reported in a single *QueryValidationError.
func ParseFacetQuery(sel FacetSelection) (FacetQuery, error) {
	var (
		q          FacetQuery
		violations []*ValidationError
		verr       *ValidationError
	)

	if q.Theme, verr = parseFacet(FacetTheme, themes, sel.Theme); verr != nil {
		violations = append(violations, verr)
	}
	if q.Audience, verr = parseFacet(FacetAudience, audiences, sel.Audience); verr != nil {
		violations = append(violations, verr)
	}
	if q.Length, verr = parseFacet(FacetLength, lengths, sel.Length); verr != nil {
		violations = append(violations, verr)
	}
	if q.Tone, verr = parseFacet(FacetTone, tones, sel.Tone); verr != nil {
		violations = append(violations, verr)
	}
	if q.Location, verr = parseFacet(FacetLocation, locations, sel.Location); verr != nil {
		violations = append(violations, verr)
	}

	if len(violations) > 0 {
		return FacetQuery{}, &QueryValidationError{Violations: violations}
	}

	return q, nil
}

// IsWildcard reports whether no facet is constrained.
func (q FacetQuery) IsWildcard() bool {
	return q == FacetQuery{}
}

// Constraints lists the set facets in canonical order.
func (q FacetQuery) Constraints() []Constraint {
	out := make([]Constraint, 0, len(Facets()))
	for _, f := range Facets() {
		if v := q.Value(f); v != "" {
			out = append(out, Constraint{Facet: f, Value: v})
		}
	}

	return out
}

// Value returns the constraint for a facet, or "" when it is a wildcard.
func (q FacetQuery) Value(f Facet) string {
	switch f {
	case FacetTheme:
		return string(q.Theme)
	case FacetAudience:
		return string(q.Audience)
	case FacetLength:
		return string(q.Length)
	case FacetTone:
		return string(q.Tone)
	case FacetLocation:
		return string(q.Location)
	default:
		return ""
	}
}

// Matches reports whether a record satisfies every set constraint.
func (q FacetQuery) Matches(r VerseRecord) bool {
	for _, c := range q.Constraints() {
		if r.Value(c.Facet) != c.Value {
			return false
		}
	}

	return true
}

// String renders the query as facet=value pairs, or "*" for a wildcard query.
func (q FacetQuery) String() string {
	cs := q.Constraints()
	if len(cs) == 0 {
		return "*"
	}

	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = string(c.Facet) + "=" + c.Value
	}

	return strings.Join(parts, ",")
}
