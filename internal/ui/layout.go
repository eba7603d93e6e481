package ui

import "time"

// Card grid sizing.
const (
	// cardMinWidth is the narrowest column a card gets before the grid drops a column.
	cardMinWidth = 44

	// maxCardColumns caps the grid on very wide terminals.
	maxCardColumns = 3

	// posterSize is the TMDB image width shown on cards.
	posterSize = "w342"
)

// Diagnostics view limits.
const (
	// LogTailLines is how many lines of the log file the diagnostics view reads.
	LogTailLines = 500
)

// DefaultUIInterval is how often the UI pulls the trending snapshot and tails logs.
const DefaultUIInterval = time.Second
