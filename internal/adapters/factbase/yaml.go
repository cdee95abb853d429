package factbase

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jsamuelsen/verse-recommender/internal/domain"
)

//go:embed data/verses.yaml
var embeddedVerses []byte

type yamlFactBase struct {
	Verses []rawRecord `yaml:"verses"`
}

// YAMLSource reads records from a YAML document:
//
//	verses:
//	  - {surah: 2, verse: 153, theme: patience, audience: believers, length: short, tone: encouragement, location: madani}
type YAMLSource struct {
	Path string
}

// Name implements ports.FactSource.
func (s *YAMLSource) Name() string {
	return SourceYAML + ":" + s.Path
}

// Load implements ports.FactSource.
func (s *YAMLSource) Load(context.Context) ([]domain.VerseRecord, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.Path, err)
	}

	return parseYAML(data)
}

// EmbeddedSource serves the sample fact base compiled into the binary.
type EmbeddedSource struct{}

// Name implements ports.FactSource.
func (EmbeddedSource) Name() string {
	return SourceEmbedded
}

// Load implements ports.FactSource.
func (EmbeddedSource) Load(context.Context) ([]domain.VerseRecord, error) {
	return parseYAML(embeddedVerses)
}

func parseYAML(data []byte) ([]domain.VerseRecord, error) {
	var doc yamlFactBase
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding yaml fact base: %w", err)
	}

	return toDomain(doc.Verses)
}
