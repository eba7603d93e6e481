package tmdb

import (
	"bytes"
	"strings"

	json "github.com/goccy/go-json"
)

// Movie mirrors one entry of a TMDB movie listing.
type Movie struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	OriginalTitle    string  `json:"original_title"`
	Overview         string  `json:"overview"`
	PosterPath       string  `json:"poster_path"`
	ReleaseDate      string  `json:"release_date"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	OriginalLanguage string  `json:"original_language"`
	Popularity       float64 `json:"popularity"`
}

// Year returns the release year or "N/A" when the date is missing.
func (m Movie) Year() string {
	date := strings.TrimSpace(m.ReleaseDate)
	if len(date) < 4 {
		return "N/A"
	}
	return date[:4]
}

// ListResponse mirrors /discover/movie and /search/movie.
//
// Response and Error cover the legacy OMDb-style failure signalling some
// proxies still emit; Success and StatusMessage cover TMDB's own error body.
type ListResponse struct {
	Page          int     `json:"page"`
	Results       []Movie `json:"results"`
	TotalPages    int     `json:"total_pages"`
	TotalResults  int     `json:"total_results"`
	Response      *Flag   `json:"Response,omitempty"`
	Error         string  `json:"Error,omitempty"`
	Success       *Flag   `json:"success,omitempty"`
	StatusMessage string  `json:"status_message,omitempty"`
	StatusCode    int     `json:"status_code,omitempty"`
}

// Failed reports whether the payload signals an application-level failure,
// along with the message it carried (possibly empty).
func (r ListResponse) Failed() (string, bool) {
	if r.Response != nil && !bool(*r.Response) {
		return strings.TrimSpace(r.Error), true
	}
	if r.Success != nil && !bool(*r.Success) {
		return strings.TrimSpace(r.StatusMessage), true
	}
	return "", false
}

// Flag decodes booleans sent either as JSON booleans or as "True"/"False" strings.
type Flag bool

// UnmarshalJSON implements json.Unmarshaler.
func (f *Flag) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*f = true
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*f = Flag(!strings.EqualFold(strings.TrimSpace(s), "false"))
		return nil
	}
	var b bool
	if err := json.Unmarshal(trimmed, &b); err != nil {
		return err
	}
	*f = Flag(b)
	return nil
}
