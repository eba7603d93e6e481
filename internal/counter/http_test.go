package counter

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/sony/gobreaker"

	"github.com/five82/cinefind/internal/tmdb"
)

type fakeCollection struct {
	mu       sync.Mutex
	docs     map[string]document
	requests []string
	headers  http.Header
}

func (f *fakeCollection) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.requests = append(f.requests, r.Method+" "+r.URL.Path)
		f.headers = r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/collection/documents":
			var out documentList
			term := r.URL.Query().Get("searchTerm")
			for _, doc := range f.docs {
				if term == "" || doc.SearchTerm == term {
					out.Documents = append(out.Documents, doc)
				}
			}
			out.Total = len(out.Documents)
			_ = json.NewEncoder(w).Encode(out)
		case r.Method == http.MethodPost && r.URL.Path == "/collection/documents":
			var body struct {
				DocumentID string   `json:"documentId"`
				Data       document `json:"data"`
			}
			raw, _ := io.ReadAll(r.Body)
			if err := json.Unmarshal(raw, &body); err != nil {
				t.Errorf("decode create body: %v", err)
			}
			body.Data.ID = body.DocumentID
			f.docs[body.DocumentID] = body.Data
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(body.Data)
		case r.Method == http.MethodPatch && strings.HasPrefix(r.URL.Path, "/collection/documents/"):
			id := strings.TrimPrefix(r.URL.Path, "/collection/documents/")
			var patch struct {
				Data *struct {
					Count int `json:"count"`
				} `json:"data"`
			}
			raw, _ := io.ReadAll(r.Body)
			if err := json.Unmarshal(raw, &patch); err != nil || patch.Data == nil {
				t.Errorf("update body = %s, want {\"data\":{\"count\":n}}", raw)
				http.Error(w, "missing data", http.StatusBadRequest)
				return
			}
			doc := f.docs[id]
			doc.Count = patch.Data.Count
			f.docs[id] = doc
			_ = json.NewEncoder(w).Encode(doc)
		default:
			http.NotFound(w, r)
		}
	}
}

func TestHTTP_RecordCreatesThenIncrements(t *testing.T) {
	fake := &fakeCollection{docs: map[string]document{}}
	server := httptest.NewServer(fake.handler(t))
	t.Cleanup(server.Close)

	h, err := NewHTTP(HTTPOptions{BaseURL: server.URL + "/collection", Project: "proj", APIKey: "key"})
	if err != nil {
		t.Fatalf("NewHTTP returned error: %v", err)
	}
	h.newID = func() string { return "doc-1" }

	ctx := context.Background()
	top := &tmdb.Movie{ID: 155, PosterPath: "/dk.jpg"}
	if err := h.Record(ctx, "Dark Knight", top); err != nil {
		t.Fatalf("first Record returned error: %v", err)
	}
	if err := h.Record(ctx, "dark knight", top); err != nil {
		t.Fatalf("second Record returned error: %v", err)
	}

	doc := fake.docs["doc-1"]
	if doc.Count != 2 || doc.SearchTerm != "dark knight" || doc.MovieID != 155 {
		t.Fatalf("document = %#v, want count 2 for dark knight", doc)
	}
	if doc.PosterURL != "https://image.tmdb.org/t/p/w500/dk.jpg" {
		t.Fatalf("PosterURL = %q", doc.PosterURL)
	}
	if got := fake.headers.Get("X-Appwrite-Project"); got != "proj" {
		t.Fatalf("project header = %q, want proj", got)
	}
	if got := fake.headers.Get("X-Appwrite-Key"); got != "key" {
		t.Fatalf("key header = %q, want key", got)
	}

	want := []string{
		"GET /collection/documents",
		"POST /collection/documents",
		"GET /collection/documents",
		"PATCH /collection/documents/doc-1",
	}
	if strings.Join(fake.requests, ",") != strings.Join(want, ",") {
		t.Fatalf("requests = %v, want %v", fake.requests, want)
	}
}

func TestHTTP_UpdateSendsDataEnvelope(t *testing.T) {
	var body []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			_, _ = io.WriteString(w, `{"total":1,"documents":[{"$id":"doc-9","searchTerm":"heat","count":3}]}`)
		case http.MethodPatch:
			body, _ = io.ReadAll(r.Body)
			_, _ = io.WriteString(w, `{}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	h, err := NewHTTP(HTTPOptions{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewHTTP returned error: %v", err)
	}
	if err := h.Record(context.Background(), "heat", nil); err != nil {
		t.Fatalf("Record returned error: %v", err)
	}

	var got map[string]map[string]int
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("decode update body %s: %v", body, err)
	}
	if got["data"]["count"] != 4 || len(got) != 1 {
		t.Fatalf("update body = %s, want {\"data\":{\"count\":4}}", body)
	}
}

func TestHTTP_Trending(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"total":2,"documents":[
			{"$id":"a","searchTerm":"heat","count":4,"movie_id":949,"$updatedAt":"2026-01-02T03:04:05.000+00:00"},
			{"$id":"b","searchTerm":"up","count":1}
		]}`))
	}))
	t.Cleanup(server.Close)

	h, err := NewHTTP(HTTPOptions{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewHTTP returned error: %v", err)
	}
	entries, err := h.Trending(context.Background(), 5)
	if err != nil {
		t.Fatalf("Trending returned error: %v", err)
	}
	if !strings.Contains(gotQuery, "limit=5") || !strings.Contains(gotQuery, "orderDesc=count") {
		t.Fatalf("query = %q, want limit and ordering", gotQuery)
	}
	if len(entries) != 2 || entries[0].Term != "heat" || entries[0].Count != 4 {
		t.Fatalf("entries = %#v", entries)
	}
	if entries[0].UpdatedAt.IsZero() {
		t.Fatalf("UpdatedAt not parsed")
	}
}

func TestHTTP_BreakerOpensAfterFailures(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		mu.Unlock()
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	h, err := NewHTTP(HTTPOptions{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewHTTP returned error: %v", err)
	}

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		err := h.Record(ctx, "heat", nil)
		if err == nil || !strings.Contains(err.Error(), "returned status 503") {
			t.Fatalf("Record #%d error = %v, want status 503", i, err)
		}
	}
	if h.breaker.State() != gobreaker.StateOpen {
		t.Fatalf("breaker state = %v, want open", h.breaker.State())
	}

	err = h.Record(ctx, "heat", nil)
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("Record error = %v, want ErrOpenState", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if calls != 3 {
		t.Fatalf("server calls = %d, want 3 (open breaker must not call out)", calls)
	}
}

func TestNewHTTP_RequiresURL(t *testing.T) {
	if _, err := NewHTTP(HTTPOptions{}); err == nil {
		t.Fatalf("NewHTTP returned nil error, want error")
	}
}
