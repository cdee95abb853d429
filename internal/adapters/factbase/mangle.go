package factbase

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/mangle/ast"
	"github.com/google/mangle/parse"

	"github.com/jsamuelsen/verse-recommender/internal/domain"
)

// verse(Surah, Verse, /theme, /audience, /length, /tone, /location).
var verseSym = ast.PredicateSym{Symbol: "verse", Arity: 7}

// MangleSource reads ground verse facts from a Datalog source file:
//
//	verse(2, 153, /patience, /believers, /short, /encouragement, /madani).
//
// Facts are returned in source order. Rules and other predicates are rejected.
type MangleSource struct {
	Path string
}

// Name implements ports.FactSource.
func (s *MangleSource) Name() string {
	return SourceMangle + ":" + s.Path
}

// Load implements ports.FactSource.
func (s *MangleSource) Load(context.Context) ([]domain.VerseRecord, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.Path, err)
	}

	return parseMangle(data)
}

func parseMangle(data []byte) ([]domain.VerseRecord, error) {
	unit, err := parse.Unit(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing mangle fact base: %w", err)
	}

	raws := make([]rawRecord, 0, len(unit.Clauses))

	for i, clause := range unit.Clauses {
		if len(clause.Premises) > 0 {
			return nil, fmt.Errorf("clause %d: only ground facts are allowed", i)
		}

		head := clause.Head
		if head.Predicate != verseSym {
			return nil, fmt.Errorf("clause %d: unexpected predicate %v", i, head.Predicate)
		}

		raw, err := rawFromArgs(head.Args)
		if err != nil {
			return nil, fmt.Errorf("clause %d: %w", i, err)
		}
		raws = append(raws, raw)
	}

	return toDomain(raws)
}

func rawFromArgs(args []ast.BaseTerm) (rawRecord, error) {
	consts := make([]ast.Constant, len(args))
	for i, arg := range args {
		c, ok := arg.(ast.Constant)
		if !ok {
			return rawRecord{}, fmt.Errorf("argument %d is not a constant", i)
		}
		consts[i] = c
	}

	for i := range 2 {
		if consts[i].Type != ast.NumberType {
			return rawRecord{}, fmt.Errorf("argument %d must be a number", i)
		}
	}

	names := make([]string, 0, 5)
	for i := 2; i < len(consts); i++ {
		if consts[i].Type != ast.NameType {
			return rawRecord{}, fmt.Errorf("argument %d must be a name like /patience", i)
		}
		names = append(names, strings.TrimPrefix(consts[i].Symbol, "/"))
	}

	return rawRecord{
		Surah:    int(consts[0].NumValue),
		Verse:    int(consts[1].NumValue),
		Theme:    names[0],
		Audience: names[1],
		Length:   names[2],
		Tone:     names[3],
		Location: names[4],
	}, nil
}
