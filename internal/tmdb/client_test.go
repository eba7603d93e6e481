package tmdb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := NewClient(Options{BaseURL: server.URL, Token: "secret"})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return c
}

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.String() != DefaultBaseURL+"/" {
		t.Fatalf("base = %q, want %q", u.String(), DefaultBaseURL+"/")
	}

	u, err = parseBaseURL("http://example.com:1234/3?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Path != "/3/" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}

	u, err = parseBaseURL("api.example.com/3")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "https" {
		t.Fatalf("scheme = %q, want https", u.Scheme)
	}
}

func TestClient_EmptyQueryUsesDiscover(t *testing.T) {
	t.Parallel()

	var gotPath, gotSort, gotAuth, gotUserAgent string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotSort = r.URL.Query().Get("sort_by")
		gotAuth = r.Header.Get("Authorization")
		gotUserAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"page":1,"results":[{"id":1,"title":"One"},{"id":2,"title":"Two"}]}`))
	})

	movies, err := c.Movies(context.Background(), "")
	if err != nil {
		t.Fatalf("Movies returned error: %v", err)
	}
	if gotPath != "/discover/movie" || gotSort != "popularity.desc" {
		t.Fatalf("request = %s sort_by=%s, want /discover/movie sort_by=popularity.desc", gotPath, gotSort)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("Authorization = %q, want bearer token", gotAuth)
	}
	if !strings.HasPrefix(gotUserAgent, "cinefind/") {
		t.Fatalf("User-Agent = %q, want cinefind/*", gotUserAgent)
	}
	ids := []int64{movies[0].ID, movies[1].ID}
	if diff := cmp.Diff([]int64{1, 2}, ids); diff != "" {
		t.Fatalf("movie ids mismatch (-want +got):\n%s", diff)
	}
}

func TestClient_SearchPercentEncodesQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		query   string
		wantRaw string
	}{
		{"plain", "batman", "query=batman"},
		{"spaces", "the dark knight", "query=the%20dark%20knight"},
		{"reserved", "fast & furious+", "query=fast%20%26%20furious%2B"},
		{"unicode", "amélie", "query=am%C3%A9lie"},
		{"whitespace only", "  ", "query=%20%20"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath, gotRaw, gotQuery string
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				gotRaw = r.URL.RawQuery
				gotQuery = r.URL.Query().Get("query")
				_, _ = w.Write([]byte(`{"results":[]}`))
			})
			if _, err := c.Movies(context.Background(), tt.query); err != nil {
				t.Fatalf("Movies returned error: %v", err)
			}
			if gotPath != "/search/movie" {
				t.Fatalf("path = %q, want /search/movie", gotPath)
			}
			if gotRaw != tt.wantRaw {
				t.Fatalf("raw query = %q, want %q", gotRaw, tt.wantRaw)
			}
			if gotQuery != tt.query {
				t.Fatalf("decoded query = %q, want %q", gotQuery, tt.query)
			}
		})
	}
}

func TestClient_MissingResultsIsEmptyList(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"page":1}`))
	})
	movies, err := c.Search(context.Background(), "nothing")
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if movies == nil || len(movies) != 0 {
		t.Fatalf("movies = %#v, want empty non-nil slice", movies)
	}
}

func TestClient_ApplicationFailures(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"legacy string flag", `{"Response":"False","Error":"Invalid key"}`, "Invalid key"},
		{"legacy bool flag", `{"Response":false,"Error":"Invalid key"}`, "Invalid key"},
		{"legacy without message", `{"Response":false}`, ""},
		{"tmdb success false", `{"success":false,"status_code":7,"status_message":"Invalid API key"}`, "Invalid API key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := c.Search(context.Background(), "x")
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("error = %v, want *APIError", err)
			}
			if apiErr.Message != tt.wantMsg {
				t.Fatalf("message = %q, want %q", apiErr.Message, tt.wantMsg)
			}
		})
	}
}

func TestClient_ResponseTrueIsSuccess(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Response":"True","results":[{"id":9}]}`))
	})
	movies, err := c.Search(context.Background(), "x")
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(movies) != 1 || movies[0].ID != 9 {
		t.Fatalf("movies = %#v, want id 9", movies)
	}
}

func TestClient_HTTPErrorIgnoresBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"results":[{"id":1}]}`))
	})
	_, err := c.Discover(context.Background())
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("error = %v, want *StatusError", err)
	}
	if statusErr.Code != http.StatusUnauthorized {
		t.Fatalf("code = %d, want 401", statusErr.Code)
	}
	if !strings.Contains(err.Error(), "returned status 401") {
		t.Fatalf("error = %q, want status text", err.Error())
	}
}

func TestClient_DecodeError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{not-json"))
	})
	_, err := c.Discover(context.Background())
	if err == nil || !strings.Contains(err.Error(), "decode response") {
		t.Fatalf("error = %v, want decode response error", err)
	}
}

func TestClient_NetworkError(t *testing.T) {
	c, err := NewClient(Options{BaseURL: "http://127.0.0.1:1", Timeout: time.Second})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	_, err = c.Discover(context.Background())
	if err == nil || !strings.Contains(err.Error(), "execute request") {
		t.Fatalf("error = %v, want execute request error", err)
	}
}

func TestClient_RateLimitHonoursContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(Options{BaseURL: server.URL, RequestsPerSecond: 0.01})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if _, err := c.Discover(context.Background()); err != nil {
		t.Fatalf("first request returned error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.Discover(ctx)
	if err == nil || !strings.Contains(err.Error(), "rate limit") {
		t.Fatalf("error = %v, want rate limit error", err)
	}
}

func TestPosterURL(t *testing.T) {
	if got := PosterURL("", "w500"); got != "" {
		t.Fatalf("PosterURL empty = %q, want empty", got)
	}
	if got := PosterURL("/abc.jpg", ""); got != "https://image.tmdb.org/t/p/w500/abc.jpg" {
		t.Fatalf("PosterURL = %q", got)
	}
	if got := PosterURL("abc.jpg", "w185"); got != "https://image.tmdb.org/t/p/w185/abc.jpg" {
		t.Fatalf("PosterURL = %q", got)
	}
}

func TestMovieYear(t *testing.T) {
	if got := (Movie{ReleaseDate: "2008-07-16"}).Year(); got != "2008" {
		t.Fatalf("Year = %q, want 2008", got)
	}
	if got := (Movie{}).Year(); got != "N/A" {
		t.Fatalf("Year empty = %q, want N/A", got)
	}
}
