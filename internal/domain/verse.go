package domain

import (
	"fmt"
	"strconv"
)

// VerseRef identifies a verse by chapter (surah) and verse within the chapter.
type VerseRef struct {
	Surah int
	Verse int
}

// String renders the reference as "surah:verse".
func (r VerseRef) String() string {
	return strconv.Itoa(r.Surah) + ":" + strconv.Itoa(r.Verse)
}

// Valid reports whether both indices are positive.
func (r VerseRef) Valid() bool {
	return r.Surah >= 1 && r.Verse >= 1
}

// VerseRecord is one tagged entry of the fact base.
// The same VerseRef may appear in several records with different tags.
type VerseRecord struct {
	VerseRef
	Theme    Theme
	Audience Audience
	Length   Length
	Tone     Tone
	Location Location
}

// NewVerseRecord validates raw values into a record.
// All invalid facets are reported together.
func NewVerseRecord(surah, verse int, sel FacetSelection) (VerseRecord, error) {
	ref := VerseRef{Surah: surah, Verse: verse}
	if !ref.Valid() {
		return VerseRecord{}, NewValidationErrorWithValue("verse",
			fmt.Sprintf("surah and verse must be >= 1, got %s", ref), ref.String())
	}

	for _, f := range Facets() {
		if selectionValue(sel, f) == "" {
			return VerseRecord{}, NewValidationError(string(f), "record must set every facet")
		}
	}

	q, err := ParseFacetQuery(sel)
	if err != nil {
		return VerseRecord{}, err
	}

	return VerseRecord{
		VerseRef: ref,
		Theme:    q.Theme,
		Audience: q.Audience,
		Length:   q.Length,
		Tone:     q.Tone,
		Location: q.Location,
	}, nil
}

// Value returns the record's tag for a facet.
func (r VerseRecord) Value(f Facet) string {
	switch f {
	case FacetTheme:
		return string(r.Theme)
	case FacetAudience:
		return string(r.Audience)
	case FacetLength:
		return string(r.Length)
	case FacetTone:
		return string(r.Tone)
	case FacetLocation:
		return string(r.Location)
	default:
		return ""
	}
}

func selectionValue(sel FacetSelection, f Facet) string {
	switch f {
	case FacetTheme:
		return sel.Theme
	case FacetAudience:
		return sel.Audience
	case FacetLength:
		return sel.Length
	case FacetTone:
		return sel.Tone
	case FacetLocation:
		return sel.Location
	default:
		return ""
	}
}

// MatchResult is the ordered output of a facet query.
type MatchResult []VerseRef

// Dedupe drops repeated references, keeping first-seen order.
func (m MatchResult) Dedupe() MatchResult {
	seen := make(map[VerseRef]struct{}, len(m))
	out := make(MatchResult, 0, len(m))

	for _, ref := range m {
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		out = append(out, ref)
	}

	return out
}

// VerseDisplay is the display metadata returned by the verse lookup service.
type VerseDisplay struct {
	SurahName   string
	VerseNumber int
	Text        string
	Audio       string
}

// EnrichedVerse is one entry of an enrichment batch.
// Display fields are set only when LookupFailed is false.
type EnrichedVerse struct {
	Ref          VerseRef
	SurahName    string
	VerseNumber  int
	Text         string
	Audio        string
	LookupFailed bool
	// Reason is a short description of a lookup failure.
	Reason string
}

// NewEnrichedVerse builds a successful entry.
func NewEnrichedVerse(ref VerseRef, d VerseDisplay) EnrichedVerse {
	return EnrichedVerse{
		Ref:         ref,
		SurahName:   d.SurahName,
		VerseNumber: d.VerseNumber,
		Text:        d.Text,
		Audio:       d.Audio,
	}
}

// NewFailedVerse builds a failure entry for ref.
func NewFailedVerse(ref VerseRef, reason string) EnrichedVerse {
	return EnrichedVerse{Ref: ref, LookupFailed: true, Reason: reason}
}
