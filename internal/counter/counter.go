// Package counter records which search terms users run.
//
// A Backend is the analytics collaborator: search results are reported to it
// after they render, and it answers "what is trending" for the trending panel.
// Callers treat every failure as non-fatal.
package counter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/five82/cinefind/internal/tmdb"
)

// Entry is one counted search term.
type Entry struct {
	Term      string
	Count     int
	MovieID   int64
	PosterURL string
	UpdatedAt time.Time
}

// Recorder records that a term was searched. top is the first hit, or nil.
type Recorder interface {
	Record(ctx context.Context, term string, top *tmdb.Movie) error
}

// Trender lists the most searched terms, highest count first.
type Trender interface {
	Trending(ctx context.Context, limit int) ([]Entry, error)
}

// Backend is a Recorder that can also report trends and must be closed.
type Backend interface {
	Recorder
	Trender
	Close() error
}

// Backend names accepted by Open.
const (
	BackendSQLite = "sqlite"
	BackendHTTP   = "http"
	BackendNone   = "none"
)

// Options select and configure a backend.
type Options struct {
	Backend string
	DBPath  string
	URL     string
	Project string
	APIKey  string
	Timeout time.Duration
}

// Open returns the backend named by opts.Backend. An empty name selects SQLite.
func Open(opts Options) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendSQLite:
		return OpenSQLite(opts.DBPath)
	case BackendHTTP:
		return NewHTTP(HTTPOptions{
			BaseURL: opts.URL,
			Project: opts.Project,
			APIKey:  opts.APIKey,
			Timeout: opts.Timeout,
		})
	case BackendNone:
		return Nop{}, nil
	default:
		return nil, fmt.Errorf("unknown counter backend %q", opts.Backend)
	}
}

// Nop discards everything.
type Nop struct{}

// Record implements Recorder.
func (Nop) Record(context.Context, string, *tmdb.Movie) error { return nil }

// Trending implements Trender.
func (Nop) Trending(context.Context, int) ([]Entry, error) { return nil, nil }

// Close implements Backend.
func (Nop) Close() error { return nil }

func normalizeTerm(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

func posterFor(top *tmdb.Movie) (int64, string) {
	if top == nil {
		return 0, ""
	}
	return top.ID, tmdb.PosterURL(top.PosterPath, "w500")
}
