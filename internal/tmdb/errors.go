package tmdb

import "fmt"

// StatusError is returned when the API answers with a non-2xx status.
// The body is ignored.
type StatusError struct {
	Path string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api %s returned status %d", e.Path, e.Code)
}

// APIError is returned when a 2xx payload reports a failure of its own.
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return "api reported failure"
	}
	return "api reported failure: " + e.Message
}
