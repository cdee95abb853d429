package factbase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jsamuelsen/verse-recommender/internal/domain"
	"github.com/jsamuelsen/verse-recommender/internal/ports"
)

// Source kinds accepted by NewSource.
const (
	SourceEmbedded = "embedded"
	SourceYAML     = "yaml"
	SourceMangle   = "mangle"
	SourceSQLite   = "sqlite"
)

// Matcher is a match engine that can also report its health.
type Matcher interface {
	ports.VerseMatcher
	ports.HealthChecker
	Len() int
}

// NewSource returns the fact source for kind. Path is ignored for the
// embedded source and required for every other kind.
func NewSource(kind, path string) (ports.FactSource, error) {
	if kind != SourceEmbedded && kind != "" && path == "" {
		return nil, fmt.Errorf("fact base source %q requires a path", kind)
	}

	switch kind {
	case SourceEmbedded, "":
		return EmbeddedSource{}, nil
	case SourceYAML:
		return &YAMLSource{Path: path}, nil
	case SourceMangle:
		return &MangleSource{Path: path}, nil
	case SourceSQLite:
		return &SQLiteSource{Path: path}, nil
	default:
		return nil, fmt.Errorf("unknown fact base source %q", kind)
	}
}

// NewMatcher builds the named engine over records.
func NewMatcher(engine string, records []domain.VerseRecord) (Matcher, error) {
	switch engine {
	case EngineIndex, "":
		return NewIndexMatcher(records), nil
	case EngineDatalog:
		m, err := NewDatalogMatcher(records)
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unknown match engine %q", engine)
	}
}

// Open loads the fact base from src and builds the engine over it.
func Open(ctx context.Context, src ports.FactSource, engine string, logger *slog.Logger) (Matcher, error) {
	records, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading fact base from %s: %w", src.Name(), err)
	}

	m, err := NewMatcher(engine, records)
	if err != nil {
		return nil, err
	}

	logger.Info("fact base loaded",
		slog.String("source", src.Name()),
		slog.String("engine", engineName(engine)),
		slog.Int("records", m.Len()),
	)

	return m, nil
}

func engineName(engine string) string {
	if engine == "" {
		return EngineIndex
	}

	return engine
}

// rawRecord is the loader-neutral shape of a fact base row.
type rawRecord struct {
	Surah    int    `yaml:"surah"`
	Verse    int    `yaml:"verse"`
	Theme    string `yaml:"theme"`
	Audience string `yaml:"audience"`
	Length   string `yaml:"length"`
	Tone     string `yaml:"tone"`
	Location string `yaml:"location"`
}

func (r rawRecord) toDomain(pos int) (domain.VerseRecord, error) {
	rec, err := domain.NewVerseRecord(r.Surah, r.Verse, domain.FacetSelection{
		Theme:    r.Theme,
		Audience: r.Audience,
		Length:   r.Length,
		Tone:     r.Tone,
		Location: r.Location,
	})
	if err != nil {
		return domain.VerseRecord{}, fmt.Errorf("record %d: %w", pos, err)
	}

	return rec, nil
}

func toDomain(raws []rawRecord) ([]domain.VerseRecord, error) {
	out := make([]domain.VerseRecord, 0, len(raws))
	for i, r := range raws {
		rec, err := r.toDomain(i)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}

	return out, nil
}
