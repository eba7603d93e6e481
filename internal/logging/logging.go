// Package logging writes cinefind diagnostics to a dated file with
// charmbracelet/log. The terminal belongs to the TUI, so nothing is logged
// to stdout or stderr while it runs.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
)

// Sink is an open log file and the logger writing to it.
type Sink struct {
	Logger *log.Logger
	Path   string

	file *os.File
}

// FileName returns the log file name used for day.
func FileName(day time.Time) string {
	return fmt.Sprintf("cinefind-%s.log", day.Format("2006-01-02"))
}

// Open creates dir when needed and appends to the log file for now's date.
// Debug lowers the level from info to debug.
func Open(dir string, debug bool, now time.Time) (*Sink, error) {
	if dir == "" {
		return nil, fmt.Errorf("log dir is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	path := filepath.Join(dir, FileName(now))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	return &Sink{
		Logger: New(file, debug),
		Path:   path,
		file:   file,
	}, nil
}

// New builds a logger with cinefind's options on w.
func New(w io.Writer, debug bool) *log.Logger {
	level := log.InfoLevel
	if debug {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Level:           level,
	})
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

// Close flushes a final line and closes the file.
func (s *Sink) Close() error {
	if s == nil || s.file == nil {
		return nil
	}
	s.Logger.Info("cinefind shutting down")
	err := s.file.Close()
	s.file = nil
	return err
}
