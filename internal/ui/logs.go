package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/cinefind/internal/logtail"
)

// logState holds the diagnostics view state.
type logState struct {
	raw      []string
	minLevel logtail.Level
	follow   bool
	err      error
}

type logLinesMsg struct {
	lines []string
	err   error
}

// refreshLogs reads the tail of the log file off the UI goroutine.
func (m *Model) refreshLogs() tea.Cmd {
	path := m.logPath
	return func() tea.Msg {
		if path == "" {
			return logLinesMsg{}
		}
		lines, err := logtail.Read(path, LogTailLines)
		return logLinesMsg{lines: lines, err: err}
	}
}

func (m *Model) handleLogLines(msg logLinesMsg) {
	m.logState.err = msg.err
	if msg.err == nil {
		m.logState.raw = msg.lines
	}
	m.updateLogViewport()
}

// updateLogViewport re-renders the filtered lines into the viewport.
func (m *Model) updateLogViewport() {
	if !m.ready {
		return
	}
	m.logViewport.SetContent(m.renderLogContent())
	if m.logState.follow {
		m.logViewport.GotoBottom()
	}
}

func (m Model) renderLogContent() string {
	styles := m.theme.Styles()
	if m.logPath == "" {
		return styles.MutedText.Render("Logging is not configured")
	}
	lines := logtail.Filter(m.logState.raw, m.logState.minLevel)
	if len(lines) == 0 {
		return styles.MutedText.Render("No log entries")
	}

	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(m.renderLogLine(line, styles))
	}
	return b.String()
}

func (m Model) renderLogLine(line logtail.Line, styles Styles) string {
	if line.Level == logtail.LevelNone && line.Time.IsZero() {
		return styles.Text.Render(line.Raw)
	}
	var parts []string
	if !line.Time.IsZero() {
		parts = append(parts, styles.FaintText.Render(line.Time.Format("15:04:05")))
	}
	if line.Level != logtail.LevelNone {
		parts = append(parts, styles.LevelStyle(line.Level).Bold(true).Render(line.Level.String()))
	}
	parts = append(parts, styles.Text.Render(line.Message))
	return strings.Join(parts, " ")
}

func (m Model) renderLogs() string {
	styles := m.theme.Styles()
	bg := NewBgStyle(m.theme.Surface)

	follow := "off"
	if m.logState.follow {
		follow = "on"
	}
	level := "all"
	if m.logState.minLevel != logtail.LevelNone {
		level = m.logState.minLevel.String() + "+"
	}
	status := []string{
		bg.Render(fmt.Sprintf("%d lines", len(m.logState.raw)), styles.FaintText),
		bg.Render("level "+level, styles.MutedText),
		bg.Render("auto-tail "+follow, styles.MutedText),
		bg.Render(truncateMiddle(m.logPath, 60), styles.AccentText),
	}
	if m.logState.err != nil {
		status = append(status, bg.Render(truncate(m.logState.err.Error(), 60), styles.DangerText))
	}
	return m.logViewport.View() + "\n" + bg.FillLine(bg.Join(status, "  "), m.width)
}

// handleLogsKey processes keyboard input for the diagnostics view.
func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Diagnostics), key.Matches(msg, m.keys.ClearSearch):
		m.currentView = ViewSearch
		m.layout()
		return m, nil

	case key.Matches(msg, m.keys.QuitLetter):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true

	case key.Matches(msg, m.keys.CycleLevel):
		m.logState.minLevel = nextLevel(m.logState.minLevel)
		m.updateLogViewport()

	case key.Matches(msg, m.keys.Bottom):
		m.logState.follow = true
		m.logViewport.GotoBottom()
	case key.Matches(msg, m.keys.Top):
		m.logState.follow = false
		m.logViewport.GotoTop()
	case key.Matches(msg, m.keys.Down):
		m.logState.follow = false
		m.logViewport.LineDown(1)
	case key.Matches(msg, m.keys.Up):
		m.logState.follow = false
		m.logViewport.LineUp(1)
	case key.Matches(msg, m.keys.HalfPageDown):
		m.logState.follow = false
		m.logViewport.HalfViewDown()
	case key.Matches(msg, m.keys.HalfPageUp):
		m.logState.follow = false
		m.logViewport.HalfViewUp()
	case key.Matches(msg, m.keys.PageDown):
		m.logState.follow = false
		m.logViewport.ViewDown()
	case key.Matches(msg, m.keys.PageUp):
		m.logState.follow = false
		m.logViewport.ViewUp()
	}
	return m, nil
}

// nextLevel cycles the minimum level: all, info, warn, error.
func nextLevel(current logtail.Level) logtail.Level {
	switch current {
	case logtail.LevelNone:
		return logtail.LevelInfo
	case logtail.LevelInfo:
		return logtail.LevelWarn
	case logtail.LevelWarn:
		return logtail.LevelError
	default:
		return logtail.LevelNone
	}
}
