package counter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"github.com/five82/cinefind/internal/tmdb"
)

// HTTP counts searches in a remote document collection (Appwrite-style REST).
//
// Lookups and writes go through a circuit breaker; once the collaborator keeps
// failing, calls fail fast with gobreaker.ErrOpenState until it cools down.
//
// An increment is a read followed by a write of count+1, so two clients
// recording the same term at the same moment can lose one increment. The
// document API offers no atomic update.
type HTTP struct {
	baseURL *url.URL
	project string
	apiKey  string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	newID   func() string
	now     func() time.Time
}

// HTTPOptions configure the remote counter.
type HTTPOptions struct {
	BaseURL string // collection URL, e.g. https://cloud.appwrite.io/v1/databases/db/collections/metrics
	Project string
	APIKey  string
	Timeout time.Duration
	Breaker BreakerConfig
}

// BreakerConfig tunes the circuit breaker around the remote counter.
type BreakerConfig struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerConfig suits a best-effort side call: trip quickly, retry after a minute.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      1,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      3,
	}
}

const defaultCounterTimeout = 5 * time.Second

// document is one counter record on the wire.
type document struct {
	ID         string `json:"$id,omitempty"`
	SearchTerm string `json:"searchTerm"`
	Count      int    `json:"count"`
	MovieID    int64  `json:"movie_id"`
	PosterURL  string `json:"poster_url"`
	UpdatedAt  string `json:"$updatedAt,omitempty"`
}

type documentList struct {
	Total     int        `json:"total"`
	Documents []document `json:"documents"`
}

// NewHTTP builds a remote counter.
func NewHTTP(opts HTTPOptions) (*HTTP, error) {
	raw := strings.TrimSpace(opts.BaseURL)
	if raw == "" {
		return nil, fmt.Errorf("counter url is empty")
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse counter url %q: %w", raw, err)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	base.RawQuery = ""
	base.Fragment = ""

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultCounterTimeout
	}
	cfg := opts.Breaker
	if cfg == (BreakerConfig{}) {
		cfg = DefaultBreakerConfig()
	}

	return &HTTP{
		baseURL: base,
		project: strings.TrimSpace(opts.Project),
		apiKey:  strings.TrimSpace(opts.APIKey),
		http:    &http.Client{Timeout: timeout},
		breaker: newBreaker("search-counter", cfg),
		newID:   func() string { return uuid.New().String() },
		now:     time.Now,
	}, nil
}

func newBreaker(name string, cfg BreakerConfig) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureThreshold
		},
	})
}

// Record implements Recorder. It increments the term's document, creating it
// on first use.
func (h *HTTP) Record(ctx context.Context, term string, top *tmdb.Movie) error {
	key := normalizeTerm(term)
	if key == "" {
		return nil
	}
	_, err := h.breaker.Execute(func() (interface{}, error) {
		return nil, h.record(ctx, key, top)
	})
	if err != nil {
		return fmt.Errorf("record search %q: %w", key, err)
	}
	return nil
}

func (h *HTTP) record(ctx context.Context, key string, top *tmdb.Movie) error {
	values := url.Values{}
	values.Set("searchTerm", key)
	var list documentList
	if err := h.do(ctx, http.MethodGet, "documents", values, nil, &list); err != nil {
		return err
	}

	if len(list.Documents) > 0 {
		doc := list.Documents[0]
		patch := map[string]any{"data": map[string]any{"count": doc.Count + 1}}
		return h.do(ctx, http.MethodPatch, "documents/"+url.PathEscape(doc.ID), nil, patch, nil)
	}

	movieID, poster := posterFor(top)
	create := map[string]any{
		"documentId": h.newID(),
		"data": document{
			SearchTerm: key,
			Count:      1,
			MovieID:    movieID,
			PosterURL:  poster,
		},
	}
	return h.do(ctx, http.MethodPost, "documents", nil, create, nil)
}

// Trending implements Trender.
func (h *HTTP) Trending(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		return nil, nil
	}
	values := url.Values{}
	values.Set("orderDesc", "count")
	values.Set("limit", strconv.Itoa(limit))

	result, err := h.breaker.Execute(func() (interface{}, error) {
		var list documentList
		if err := h.do(ctx, http.MethodGet, "documents", values, nil, &list); err != nil {
			return nil, err
		}
		return list, nil
	})
	if err != nil {
		return nil, fmt.Errorf("query trending: %w", err)
	}

	list := result.(documentList)
	entries := make([]Entry, 0, len(list.Documents))
	for _, doc := range list.Documents {
		entry := Entry{
			Term:      doc.SearchTerm,
			Count:     doc.Count,
			MovieID:   doc.MovieID,
			PosterURL: doc.PosterURL,
		}
		if ts, err := time.Parse(time.RFC3339Nano, doc.UpdatedAt); err == nil {
			entry.UpdatedAt = ts
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Close implements Backend.
func (h *HTTP) Close() error {
	h.http.CloseIdleConnections()
	return nil
}

func (h *HTTP) do(ctx context.Context, method, path string, values url.Values, body, dest any) error {
	rel := &url.URL{Path: path}
	if values != nil {
		rel.RawQuery = values.Encode()
	}
	reqURL := h.baseURL.ResolveReference(rel)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if h.project != "" {
		req.Header.Set("X-Appwrite-Project", h.project)
	}
	if h.apiKey != "" {
		req.Header.Set("X-Appwrite-Key", h.apiKey)
	}

	resp, err := h.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("counter %s %s returned status %d", method, rel.Path, resp.StatusCode)
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
