// Package logtail reads the tail of cinefind's log file for the diagnostics
// view.
//
// Read uses a ring buffer of maxLines entries, so memory stays O(maxLines)
// regardless of file size and lines come back in chronological order. A
// missing file reads as empty.
//
// Parse understands the layout charmbracelet/log's text formatter writes:
//
//	2026-10-18T09:30:00Z INFO fetched movies query=batman count=20
//
// Lines that do not match keep their text and carry LevelNone. Filter keeps
// lines at or above a minimum level; the UI applies colors per level.
package logtail
