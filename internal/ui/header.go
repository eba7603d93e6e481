package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/cinefind/internal/search"
)

// renderHeader renders the status bar: logo, search state, trending health.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	bg := NewBgStyle(m.theme.Surface)

	parts := []string{bg.Render("cinefind", styles.Logo)}

	query := "Popular"
	if q := m.search.Query; q != "" {
		query = fmt.Sprintf("%q", truncate(q, 30))
	}

	switch m.search.Status {
	case search.StatusLoading:
		parts = append(parts, bg.Render("Searching "+query, styles.WarningText.Bold(true)))
	case search.StatusError:
		parts = append(parts, bg.Render("● ERROR", styles.DangerText))
	default:
		parts = append(parts,
			bg.Render("●", styles.SuccessText)+bg.Space()+
				bg.Render(query, styles.Text)+bg.Space()+
				bg.Render(fmt.Sprintf("%d movies", len(m.search.Movies)), styles.MutedText))
	}

	if m.trending.IsOffline() {
		parts = append(parts, bg.Render("COUNTER OFFLINE", styles.WarningText.Bold(true)))
	}

	if m.errorMsg != "" {
		parts = append(parts,
			bg.Render("!", styles.WarningText.Bold(true))+bg.Space()+
				bg.Render(m.errorMsg, styles.WarningText))
	}

	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Padding(0, 1).
		Width(m.width).
		MaxHeight(1).
		Render(bg.Join(parts, "  "))
}

// renderCommandBar renders the key hints for the active view and focus.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles()
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch {
	case m.currentView == ViewLogs:
		commands = []cmd{
			{"f", "Level"},
			{"j/k", "Scroll"},
			{"G", "Follow"},
			{"L", "Back"},
			{"?", "More"},
		}
	case m.focus == focusInput:
		commands = []cmd{
			{"type", "Search"},
			{"esc", "Clear"},
			{"tab", "Results"},
			{"ctrl+c", "Quit"},
		}
	default:
		trending := "Show trending"
		if m.prefs.TrendingVisible() {
			trending = "Hide trending"
		}
		commands = []cmd{
			{"/", "Search"},
			{"j/k", "Scroll"},
			{"t", trending},
			{"L", "Logs"},
			{"q", "Quit"},
			{"?", "More"},
		}
	}

	colon := bg.Render(":", styles.FaintText)
	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}
	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).MaxHeight(1).Render(strings.Join(segments, bg.Spaces(2)))
}
