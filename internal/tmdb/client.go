package tmdb

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/time/rate"
)

// MovieFetcher is the subset of the catalog API the search controller needs.
// It is implemented by *Client and can be faked in tests.
type MovieFetcher interface {
	Movies(ctx context.Context, query string) ([]Movie, error)
}

// Ensure Client implements MovieFetcher at compile time.
var _ MovieFetcher = (*Client)(nil)

// Client talks to the TMDB v3 HTTP API.
type Client struct {
	baseURL   *url.URL
	token     string
	http      *http.Client
	limiter   *rate.Limiter
	userAgent string
}

// Options configure a Client.
type Options struct {
	BaseURL           string
	Token             string
	Timeout           time.Duration
	RequestsPerSecond float64 // zero disables limiting
	UserAgent         string
}

const (
	DefaultBaseURL   = "https://api.themoviedb.org/3"
	defaultUserAgent = "cinefind/0.1"
	requestTimeout   = 10 * time.Second
	imageBaseURL     = "https://image.tmdb.org/t/p/"
)

// NewClient builds a Client from opts.
func NewClient(opts Options) (*Client, error) {
	base, err := parseBaseURL(opts.BaseURL)
	if err != nil {
		return nil, err
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = requestTimeout
	}
	userAgent := strings.TrimSpace(opts.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	return &Client{
		baseURL: base,
		token:   strings.TrimSpace(opts.Token),
		http: &http.Client{
			Timeout: timeout,
		},
		limiter:   limiter,
		userAgent: userAgent,
	}, nil
}

// Movies returns popular movies for an empty query and search hits otherwise.
func (c *Client) Movies(ctx context.Context, query string) ([]Movie, error) {
	if query == "" {
		return c.Discover(ctx)
	}
	return c.Search(ctx, query)
}

// Discover lists movies sorted by popularity.
func (c *Client) Discover(ctx context.Context) ([]Movie, error) {
	values := url.Values{}
	values.Set("sort_by", "popularity.desc")
	return c.list(ctx, "discover/movie", values)
}

// Search lists movies matching query. The query is sent verbatim, percent-encoded.
func (c *Client) Search(ctx context.Context, query string) ([]Movie, error) {
	values := url.Values{}
	values.Set("query", query)
	return c.list(ctx, "search/movie", values)
}

func (c *Client) list(ctx context.Context, path string, values url.Values) ([]Movie, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	rel := &url.URL{Path: path, RawQuery: encodeQuery(values)}
	var payload ListResponse
	if err := c.doURL(ctx, http.MethodGet, rel, &payload); err != nil {
		return nil, err
	}
	if msg, failed := payload.Failed(); failed {
		return nil, &APIError{Message: msg}
	}
	if payload.Results == nil {
		return []Movie{}, nil
	}
	return payload.Results, nil
}

func (c *Client) doURL(ctx context.Context, method string, rel *url.URL, dest any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit: %w", err)
		}
	}

	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Path: "/" + rel.Path, Code: resp.StatusCode}
	}
	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// PosterURL returns the image CDN URL for a poster path, or "" when there is none.
func PosterURL(posterPath, size string) string {
	posterPath = strings.TrimSpace(posterPath)
	if posterPath == "" {
		return ""
	}
	if size == "" {
		size = "w500"
	}
	if !strings.HasPrefix(posterPath, "/") {
		posterPath = "/" + posterPath
	}
	return imageBaseURL + size + posterPath
}

// encodeQuery is url.Values.Encode with spaces written as %20, matching
// encodeURIComponent rather than form encoding.
func encodeQuery(values url.Values) string {
	return strings.ReplaceAll(values.Encode(), "+", "%20")
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_base_url %q: %w", raw, err)
	}
	// ResolveReference drops the last path segment unless the base ends in "/".
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
