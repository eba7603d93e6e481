// Package search implements the debounced search flow behind the search box.
//
// # Overview
//
//	keystroke -> Debouncer.Push -> (quiet period) -> Debouncer.Settle
//	          -> Controller.Begin -> Controller.Fetch -> Controller.Resolve
//	          -> render -> Controller.Record (best effort)
//
// The Debouncer commits a raw value only after it has been stable for the
// configured delay (500ms by default). Every push returns a Tag and only the
// newest tag can settle, so intermediate keystrokes never reach the network.
//
// # Controller States
//
// The Controller owns a three-state machine:
//
//   - StatusLoading: a fetch is outstanding; no list or message is shown
//   - StatusError: the last fetch failed; Message holds the user-visible text
//   - StatusReady: Movies holds the last listing in API order
//
// Begin bumps a sequence number and Resolve ignores any Result whose sequence
// is not the newest, so a slow response for an old query can never overwrite
// the results of a newer one. Superseded requests are not cancelled.
//
// # Errors
//
// Payload-reported failures (*tmdb.APIError) surface their own message, or
// FailedError when they carry none. Every other failure surfaces FallbackError.
// The underlying error is only written to the log.
//
// # Concurrency
//
// Begin, Resolve and State must be called from a single goroutine (the Bubble
// Tea update loop). Fetch and Record only read immutable fields and are meant
// to run inside tea.Cmds.
package search
