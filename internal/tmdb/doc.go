// Package tmdb provides an HTTP client for the TMDB v3 movie catalog API.
//
// # Overview
//
// The client exposes the two listings cinefind renders:
//
//   - GET /discover/movie?sort_by=popularity.desc: default listing for an empty query
//   - GET /search/movie?query=<text>: text search, query percent-encoded
//
// Movies picks between them so callers only deal with a query string.
//
// # Authentication
//
// Requests carry "Authorization: Bearer <token>" with the read access token
// from configuration. The token is injected through Options; the package never
// reads the environment.
//
// # Error Handling
//
// Three failure shapes reach callers:
//
//   - *StatusError: any non-2xx status, regardless of body
//   - *APIError: a 2xx body that reports failure, either the legacy
//     {"Response": "False", "Error": "..."} form or TMDB's
//     {"success": false, "status_message": "..."} form
//   - wrapped transport errors ("execute request", "decode response", "rate limit")
//
// Callers distinguish them with errors.As.
//
// # Rate Limiting
//
// When Options.RequestsPerSecond is set, every request waits on a token bucket
// before it is sent. Waiting honours context cancellation.
package tmdb
