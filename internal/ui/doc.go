// Package ui is cinefind's Bubble Tea terminal interface.
//
// # Layout
//
//	┌ header: logo, search state, counter health ─────────────┐
//	│ command bar: key hints for the focused area              │
//	╭──────────────────────────────────────────────────────────╮
//	│ > search box (bubbles/textinput)                         │
//	╰──────────────────────────────────────────────────────────╯
//	  Trending  1. batman ×4  2. alien ×2
//	  result area (viewport): spinner, error alert or card grid
//
// The diagnostics view (L) replaces the search screen with a tail of the log
// file, filterable by minimum level.
//
// # Search flow
//
// Every change to the search box is pushed to a search.Debouncer, which
// returns a tag and a tea.Tick command. When the SettleMsg for the newest tag
// arrives the query is committed, search.Controller.Begin moves the result
// area to loading, and the fetch runs as a tea.Cmd. Its resultMsg is applied
// through Controller.Resolve, which drops answers to superseded requests.
// Successful searches are then reported to the counter in another command.
//
// The initial query (empty, or -query from the command line) is committed
// immediately in New so the first screen shows popular movies.
//
// # Focus
//
// While the search box has focus every printable key is text. tab moves focus
// to the results, where single-letter keys act: t toggles trending, T cycles
// the theme, L opens diagnostics, ? shows help and q quits. Theme and trending
// visibility are saved to the preferences file.
//
// # Trending
//
// The app package refreshes a state.Store in the background. The UI copies a
// snapshot on every tick and shows the panel when it holds entries and the
// user has not hidden it.
package ui
