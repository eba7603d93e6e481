package counter

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/five82/cinefind/internal/tmdb"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)
)

// SQLite counts searches in a local database file.
//
// Record is a single upsert statement, so concurrent Records for the same term
// never lose increments.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (creating if needed) the database at path and applies the schema.
func OpenSQLite(path string) (*SQLite, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("counter db path is empty")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create counter dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open counter db: %w", err)
	}
	// One writer keeps the in-memory database on a single connection too.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	s := &SQLite{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate counter db: %w", err)
	}
	return s, nil
}

func (s *SQLite) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS search_counts (
		term_key   TEXT PRIMARY KEY,
		term       TEXT NOT NULL,
		count      INTEGER NOT NULL DEFAULT 0,
		movie_id   INTEGER NOT NULL DEFAULT 0,
		poster_url TEXT NOT NULL DEFAULT '',
		updated_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_search_counts_count ON search_counts(count DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record implements Recorder.
func (s *SQLite) Record(ctx context.Context, term string, top *tmdb.Movie) error {
	key := normalizeTerm(term)
	if key == "" {
		return nil
	}
	movieID, poster := posterFor(top)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO search_counts (term_key, term, count, movie_id, poster_url, updated_at)
		VALUES (?, ?, 1, ?, ?, ?)
		ON CONFLICT(term_key) DO UPDATE SET
			term = excluded.term,
			count = search_counts.count + 1,
			movie_id = excluded.movie_id,
			poster_url = excluded.poster_url,
			updated_at = excluded.updated_at
	`, key, strings.TrimSpace(term), movieID, poster, s.now().UTC())
	if err != nil {
		return fmt.Errorf("record search %q: %w", key, err)
	}
	return nil
}

// Trending implements Trender.
func (s *SQLite) Trending(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT term, count, movie_id, poster_url, updated_at
		FROM search_counts
		ORDER BY count DESC, updated_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query trending: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Term, &e.Count, &e.MovieID, &e.PosterURL, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan trending: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trending: %w", err)
	}
	return entries, nil
}

// Close implements Backend.
func (s *SQLite) Close() error {
	return s.db.Close()
}
