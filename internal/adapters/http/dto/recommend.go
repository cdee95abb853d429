package dto

import (
	"github.com/jsamuelsen/verse-recommender/internal/domain"
)

// RecommendRequest is the body of the recommendation endpoints.
// Every field is optional; an empty value means "no preference".
// Values are checked against the facet vocabularies by the service, not here.
type RecommendRequest struct {
	Theme    string `json:"theme"`
	Audience string `json:"audience"`
	Length   string `json:"length"`
	Tone     string `json:"tone"`
	Location string `json:"location"`
}

// Selection converts the request to a domain selection.
func (r *RecommendRequest) Selection() domain.FacetSelection {
	return domain.FacetSelection{
		Theme:    r.Theme,
		Audience: r.Audience,
		Length:   r.Length,
		Tone:     r.Tone,
		Location: r.Location,
	}
}

// EnrichedRecommendRequest adds a bound on how many distinct matches are enriched.
type EnrichedRecommendRequest struct {
	RecommendRequest

	// Limit is optional. When omitted the service default applies.
	Limit *int `json:"limit" validate:"omitempty,min=1,max=100"`
}

// LimitOrZero returns Limit, or 0 when it was omitted.
func (r *EnrichedRecommendRequest) LimitOrZero() int {
	if r.Limit == nil {
		return 0
	}

	return *r.Limit
}

// VersePair is a verse reference encoded as [surah, verse].
type VersePair [2]int

// EnrichedVerse is one entry of an enriched recommendation.
// Display fields are present only when LookupFailed is false.
type EnrichedVerse struct {
	Surah        int     `json:"surah"`
	Verse        int     `json:"verse"`
	SurahName    *string `json:"surah_name,omitempty"`
	VerseNumber  *int    `json:"verse_number,omitempty"`
	Text         *string `json:"text,omitempty"`
	Audio        *string `json:"audio,omitempty"`
	LookupFailed bool    `json:"lookup_failed"`
	Reason       string  `json:"reason,omitempty"`
}

// FacetVocabulary lists the allowed values of one facet.
type FacetVocabulary struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// NewPairsResponse renders a match result.
// An empty result carries an empty list and MessageNoMatches.
func NewPairsResponse(refs []domain.VerseRef) *Response {
	pairs := make([]VersePair, len(refs))
	for i, ref := range refs {
		pairs[i] = VersePair{ref.Surah, ref.Verse}
	}

	if len(pairs) == 0 {
		return &Response{Success: true, Data: pairs, Message: MessageNoMatches}
	}

	total := len(pairs)

	return &Response{Success: true, Data: pairs, TotalFound: &total}
}

// NewEnrichedResponse renders an enrichment batch.
func NewEnrichedResponse(verses []domain.EnrichedVerse, totalFound, failed int) *Response {
	out := make([]EnrichedVerse, len(verses))
	for i, v := range verses {
		out[i] = ToEnrichedVerse(v)
	}

	resp := &Response{
		Success:     true,
		Data:        out,
		TotalFound:  &totalFound,
		FailedCount: &failed,
	}
	if totalFound == 0 {
		resp.Message = MessageNoMatches
	}

	return resp
}

// ToEnrichedVerse converts a domain entry to its wire form.
func ToEnrichedVerse(v domain.EnrichedVerse) EnrichedVerse {
	out := EnrichedVerse{
		Surah:        v.Ref.Surah,
		Verse:        v.Ref.Verse,
		LookupFailed: v.LookupFailed,
	}

	if v.LookupFailed {
		out.Reason = v.Reason
		return out
	}

	out.SurahName = &v.SurahName
	out.VerseNumber = &v.VerseNumber
	out.Text = &v.Text
	out.Audio = &v.Audio

	return out
}

// NewFacetsResponse lists every facet vocabulary in canonical order.
func NewFacetsResponse() *Response {
	facets := domain.Facets()
	out := make([]FacetVocabulary, len(facets))
	for i, f := range facets {
		out[i] = FacetVocabulary{Name: string(f), Values: domain.Vocabulary(f)}
	}

	return &Response{Success: true, Data: out}
}
