package search

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"

	"github.com/five82/cinefind/internal/counter"
	"github.com/five82/cinefind/internal/logging"
	"github.com/five82/cinefind/internal/tmdb"
)

// User-visible messages. Underlying errors only go to the log.
const (
	FallbackError = "Error fetching movies. Please try again later."
	FailedError   = "Failed to fetch movies"
)

const recordTimeout = 5 * time.Second

// Status is the controller's rendering state.
type Status int

const (
	StatusReady Status = iota
	StatusLoading
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusError:
		return "error"
	default:
		return "ready"
	}
}

// State is what the UI renders. Exactly one of spinner, Message, Movies is shown.
type State struct {
	Status  Status
	Query   string
	Movies  []tmdb.Movie
	Message string
}

// Request is one dispatched fetch.
type Request struct {
	Seq   uint64
	Query string
}

// Result is the outcome of a Request.
type Result struct {
	Seq    uint64
	Query  string
	Movies []tmdb.Movie
	Err    error
}

// Controller owns the result state and sequences fetches so that only the
// most recently dispatched request can change it.
type Controller struct {
	fetcher  tmdb.MovieFetcher
	recorder counter.Recorder
	logger   *log.Logger

	seq   uint64
	state State
}

// NewController wires a controller. A nil recorder disables search counting and
// a nil logger discards diagnostics.
func NewController(fetcher tmdb.MovieFetcher, recorder counter.Recorder, logger *log.Logger) *Controller {
	if recorder == nil {
		recorder = counter.Nop{}
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Controller{
		fetcher:  fetcher,
		recorder: recorder,
		logger:   logger,
		state:    State{Status: StatusReady, Movies: []tmdb.Movie{}},
	}
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	s := c.state
	s.Movies = make([]tmdb.Movie, len(c.state.Movies))
	copy(s.Movies, c.state.Movies)
	return s
}

// Loading reports whether a fetch is outstanding.
func (c *Controller) Loading() bool {
	return c.state.Status == StatusLoading
}

// Begin enters the loading state for query and returns the request to run.
func (c *Controller) Begin(query string) Request {
	c.seq++
	c.state = State{Status: StatusLoading, Query: query, Movies: []tmdb.Movie{}}
	return Request{Seq: c.seq, Query: query}
}

// Fetch runs req against the catalog. It does not touch controller state and is
// safe to call from a goroutine.
func (c *Controller) Fetch(ctx context.Context, req Request) Result {
	movies, err := c.fetcher.Movies(ctx, req.Query)
	return Result{Seq: req.Seq, Query: req.Query, Movies: movies, Err: err}
}

// Resolve applies res when it answers the newest request. It returns false for
// stale results, which are dropped.
func (c *Controller) Resolve(res Result) bool {
	if res.Seq != c.seq {
		c.logger.Debug("discarding stale result", "query", res.Query, "seq", res.Seq, "latest", c.seq)
		return false
	}

	if res.Err != nil {
		c.state = State{Status: StatusError, Query: res.Query, Movies: []tmdb.Movie{}, Message: userMessage(res.Err)}
		c.logger.Error("fetch movies failed", "query", res.Query, "err", res.Err)
		return true
	}

	movies := res.Movies
	if movies == nil {
		movies = []tmdb.Movie{}
	}
	c.state = State{Status: StatusReady, Query: res.Query, Movies: movies}
	c.logger.Debug("fetched movies", "query", res.Query, "count", len(movies))
	return true
}

// ShouldRecord reports whether res is a search worth counting: a successful,
// non-empty query that matched at least one movie.
func ShouldRecord(res Result) bool {
	return res.Err == nil && res.Query != "" && len(res.Movies) > 0
}

// Record reports a successful search to the counter collaborator with its top
// hit. Failures are logged and swallowed.
func (c *Controller) Record(ctx context.Context, res Result) {
	if !ShouldRecord(res) {
		return
	}
	top := res.Movies[0]
	ctx, cancel := context.WithTimeout(ctx, recordTimeout)
	defer cancel()
	if err := c.recorder.Record(ctx, res.Query, &top); err != nil {
		c.logger.Warn("record search failed", "query", res.Query, "err", err)
	}
}

func userMessage(err error) string {
	var apiErr *tmdb.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return FailedError
	}
	return FallbackError
}
