package factbase

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "modernc.org/sqlite" // pure Go driver, registers "sqlite"

	"github.com/jsamuelsen/verse-recommender/internal/domain"
)

// SQLiteSchema creates the table read by SQLiteSource.
const SQLiteSchema = `CREATE TABLE IF NOT EXISTS verse_facets (
	surah    INTEGER NOT NULL,
	verse    INTEGER NOT NULL,
	theme    TEXT NOT NULL,
	audience TEXT NOT NULL,
	length   TEXT NOT NULL,
	tone     TEXT NOT NULL,
	location TEXT NOT NULL
)`

const selectFacets = `SELECT surah, verse, theme, audience, length, tone, location
FROM verse_facets ORDER BY rowid`

// SQLiteSource reads records from the verse_facets table in rowid order.
type SQLiteSource struct {
	Path string
}

// Name implements ports.FactSource.
func (s *SQLiteSource) Name() string {
	return SourceSQLite + ":" + s.Path
}

// Load implements ports.FactSource.
func (s *SQLiteSource) Load(ctx context.Context) (records []domain.VerseRecord, err error) {
	// Opening a missing path would create an empty database.
	if _, err := os.Stat(s.Path); err != nil {
		return nil, fmt.Errorf("opening %s: %w", s.Path, err)
	}

	db, err := sql.Open("sqlite", s.Path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", s.Path, err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", s.Path, cerr)
		}
	}()

	rows, err := db.QueryContext(ctx, selectFacets)
	if err != nil {
		return nil, fmt.Errorf("querying verse_facets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var raws []rawRecord
	for rows.Next() {
		var r rawRecord
		if err := rows.Scan(&r.Surah, &r.Verse, &r.Theme, &r.Audience, &r.Length, &r.Tone, &r.Location); err != nil {
			return nil, fmt.Errorf("scanning verse_facets row %d: %w", len(raws), err)
		}
		raws = append(raws, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating verse_facets: %w", err)
	}

	return toDomain(raws)
}
