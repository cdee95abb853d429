package domain

import (
	"fmt"
	"slices"
	"strings"
)

// Facet names one filterable attribute of a verse record.
type Facet string

// The five facets, in the order queries and messages list them.
const (
	FacetTheme    Facet = "theme"
	FacetAudience Facet = "audience"
	FacetLength   Facet = "length"
	FacetTone     Facet = "tone"
	FacetLocation Facet = "location"
)

// Facets returns every facet in canonical order.
func Facets() []Facet {
	return []Facet{FacetTheme, FacetAudience, FacetLength, FacetTone, FacetLocation}
}

// Theme is the subject a verse addresses.
type Theme string

// Theme vocabulary.
const (
	ThemeKnowledge Theme = "knowledge"
	ThemeStory     Theme = "story"
	ThemeRule      Theme = "rule"
	ThemePatience  Theme = "patience"
	ThemeJustice   Theme = "justice"
	ThemeCharity   Theme = "charity"
)

// Audience is who a verse speaks to.
type Audience string

// Audience vocabulary.
const (
	AudienceBelievers    Audience = "believers"
	AudienceHumanity     Audience = "humanity"
	AudienceDisbelievers Audience = "disbelievers"
	AudienceProphet      Audience = "prophet"
)

// Length is the relative size of a verse.
type Length string

// Length vocabulary.
const (
	LengthShort  Length = "short"
	LengthMedium Length = "medium"
	LengthLong   Length = "long"
)

// Tone is the register of a verse.
type Tone string

// Tone vocabulary.
const (
	ToneHopeful       Tone = "hopeful"
	ToneSad           Tone = "sad"
	ToneEncouragement Tone = "encouragement"
	ToneWarning       Tone = "warning"
	ToneCommand       Tone = "command"
	ToneGladTidings   Tone = "glad_tidings"
)

// Location is where a verse was revealed.
type Location string

// Location vocabulary.
const (
	LocationMakki  Location = "makki"
	LocationMadani Location = "madani"
)

var (
	themes    = []Theme{ThemeKnowledge, ThemeStory, ThemeRule, ThemePatience, ThemeJustice, ThemeCharity}
	audiences = []Audience{AudienceBelievers, AudienceHumanity, AudienceDisbelievers, AudienceProphet}
	lengths   = []Length{LengthShort, LengthMedium, LengthLong}
	tones     = []Tone{ToneHopeful, ToneSad, ToneEncouragement, ToneWarning, ToneCommand, ToneGladTidings}
	locations = []Location{LocationMakki, LocationMadani}
)

// Vocabulary returns the closed set of values for a facet, in canonical order.
// It returns nil for an unknown facet.
func Vocabulary(f Facet) []string {
	switch f {
	case FacetTheme:
		return toStrings(themes)
	case FacetAudience:
		return toStrings(audiences)
	case FacetLength:
		return toStrings(lengths)
	case FacetTone:
		return toStrings(tones)
	case FacetLocation:
		return toStrings(locations)
	default:
		return nil
	}
}

// InVocabulary reports whether value belongs to the facet's vocabulary.
func InVocabulary(f Facet, value string) bool {
	return slices.Contains(Vocabulary(f), value)
}

func toStrings[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}

	return out
}

// parseFacet converts a raw value into the facet's closed type.
// Empty input is the wildcard and always succeeds.
func parseFacet[T ~string](f Facet, vocab []T, raw string) (T, *ValidationError) {
	if raw == "" {
		return "", nil
	}

	if slices.Contains(vocab, T(raw)) {
		return T(raw), nil
	}

	return "", &ValidationError{
		Field:   string(f),
		Message: vocabularyMessage(f, raw),
		Value:   raw,
	}
}

func vocabularyMessage(f Facet, value string) string {
	return fmt.Sprintf("Invalid %s %q. Valid options: %s", f, value, strings.Join(Vocabulary(f), ", "))
}
