package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Read returns at most maxLines from the end of the file at path.
func Read(path string, maxLines int) ([]string, error) {
	if maxLines <= 0 {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	ring := make([]string, maxLines)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Level is a log severity as written by charmbracelet/log's text formatter.
type Level int

const (
	LevelNone Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBU"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERRO"
	case LevelFatal:
		return "FATA"
	default:
		return ""
	}
}

var levelTokens = map[string]Level{
	"DEBU":  LevelDebug,
	"DEBUG": LevelDebug,
	"INFO":  LevelInfo,
	"WARN":  LevelWarn,
	"ERRO":  LevelError,
	"ERROR": LevelError,
	"FATA":  LevelFatal,
	"FATAL": LevelFatal,
}

// Line is one parsed log line. Lines that don't match the expected layout
// keep their text in Message with a zero Time and LevelNone.
type Line struct {
	Raw     string
	Time    time.Time
	Level   Level
	Message string
}

// Parse splits "<RFC3339 time> <LEVEL> <message...>" into its parts.
func Parse(raw string) Line {
	line := Line{Raw: raw, Message: raw}
	rest := strings.TrimSpace(raw)
	if rest == "" {
		line.Message = ""
		return line
	}

	if head, tail, ok := strings.Cut(rest, " "); ok {
		if ts, err := time.Parse(time.RFC3339, head); err == nil {
			line.Time = ts
			rest = strings.TrimSpace(tail)
		}
	}

	head, tail, _ := strings.Cut(rest, " ")
	if level, ok := levelTokens[head]; ok {
		line.Level = level
		rest = strings.TrimSpace(tail)
	}

	line.Message = rest
	return line
}

// Filter parses lines and keeps those at or above min. Unleveled lines are
// continuation output and are kept.
func Filter(lines []string, min Level) []Line {
	out := make([]Line, 0, len(lines))
	for _, raw := range lines {
		parsed := Parse(raw)
		if parsed.Level != LevelNone && parsed.Level < min {
			continue
		}
		out = append(out, parsed)
	}
	return out
}
