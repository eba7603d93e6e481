package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/cinefind/internal/search"
	"github.com/five82/cinefind/internal/tmdb"
)

// handleInputKey routes keys while the search box has focus. Every change to
// the text is pushed to the debouncer.
func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.FocusResults):
		m.focus = focusResults
		m.input.Blur()
		return m, nil

	case key.Matches(msg, m.keys.ClearSearch):
		if m.input.Value() == "" {
			return m, nil
		}
		m.input.SetValue("")
		return m, m.pushQuery()
	}

	prev := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() == prev {
		return m, cmd
	}
	return m, tea.Batch(cmd, m.pushQuery())
}

// handleResultsKey routes keys while the result list has focus.
func (m Model) handleResultsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.FocusSearch), key.Matches(msg, m.keys.ClearSearch):
		m.focus = focusInput
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.QuitLetter):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.prefs.Theme = m.theme.Name
		m.savePrefs()
		m.refreshResults()

	case key.Matches(msg, m.keys.ToggleTrending):
		m.prefs = m.prefs.WithTrending(!m.prefs.TrendingVisible())
		m.savePrefs()
		m.layout()

	case key.Matches(msg, m.keys.Diagnostics):
		m.currentView = ViewLogs
		m.layout()
		return m, m.refreshLogs()

	case key.Matches(msg, m.keys.Down):
		m.results.LineDown(1)
	case key.Matches(msg, m.keys.Up):
		m.results.LineUp(1)
	case key.Matches(msg, m.keys.Top):
		m.results.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		m.results.GotoBottom()
	case key.Matches(msg, m.keys.HalfPageDown):
		m.results.HalfViewDown()
	case key.Matches(msg, m.keys.HalfPageUp):
		m.results.HalfViewUp()
	case key.Matches(msg, m.keys.PageDown):
		m.results.ViewDown()
	case key.Matches(msg, m.keys.PageUp):
		m.results.ViewUp()
	}
	return m, nil
}

// layout sizes the viewports for the current window and panels.
func (m *Model) layout() {
	if !m.ready {
		return
	}
	m.input.Width = maxInt(m.width-8, 10)

	// header + command bar + bordered input
	used := 2 + 3
	if m.trendingShown() {
		used++
	}
	m.results.Width = m.width
	m.results.Height = maxInt(m.height-used, 1)
	m.refreshResults()

	// header + command bar + status line
	m.logViewport.Width = m.width
	m.logViewport.Height = maxInt(m.height-3, 1)
	m.updateLogViewport()
}

// refreshResults re-renders the result area into its viewport.
func (m *Model) refreshResults() {
	if !m.ready {
		return
	}
	m.results.SetContent(m.renderResults(m.results.Width))
}

func (m Model) renderSearch() string {
	var b strings.Builder
	b.WriteString(m.renderInput())
	b.WriteString("\n")
	if m.trendingShown() {
		b.WriteString(m.renderTrending())
		b.WriteString("\n")
	}
	b.WriteString(m.results.View())
	return b.String()
}

func (m Model) renderInput() string {
	border := m.theme.Border
	if m.focus == focusInput {
		border = m.theme.BorderFocus
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(border)).
		Padding(0, 1).
		Width(maxInt(m.width-2, 1)).
		Render(m.input.View())
}

// renderResults applies the rendering precedence: spinner while loading,
// otherwise the error alert, otherwise one card per movie in API order.
func (m Model) renderResults(width int) string {
	styles := m.theme.Styles()

	switch m.search.Status {
	case search.StatusLoading:
		return m.spinner.View() + " " + styles.MutedText.Render("Loading movies...")
	case search.StatusError:
		return styles.Alert.Render(m.search.Message)
	}

	if len(m.search.Movies) == 0 {
		return styles.FaintText.Render("No movies found")
	}

	columns := clampInt(width/cardMinWidth, 1, maxCardColumns)
	colWidth := maxInt(width/columns, cardMinWidth/2)

	rows := make([]string, 0, len(m.search.Movies)/columns+1)
	for start := 0; start < len(m.search.Movies); start += columns {
		end := minInt(start+columns, len(m.search.Movies))
		cards := make([]string, 0, columns)
		for _, movie := range m.search.Movies[start:end] {
			cards = append(cards, m.renderCard(movie, colWidth))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	return strings.Join(rows, "\n")
}

// renderCard renders one movie summary: title, rating, language, year,
// a short overview and the poster URL.
func (m Model) renderCard(movie tmdb.Movie, width int) string {
	styles := m.theme.Styles()
	inner := maxInt(width-4, 8)

	title := strings.TrimSpace(movie.Title)
	if title == "" {
		title = "Untitled"
	}

	rating := "★ N/A"
	ratingStyle := styles.FaintText
	if movie.VoteAverage > 0 {
		rating = fmt.Sprintf("★ %.1f", movie.VoteAverage)
		ratingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.RatingColor(movie.VoteAverage)))
	}
	dot := styles.FaintText.Render(" • ")
	meta := ratingStyle.Render(rating) + dot +
		styles.MutedText.Render(languageLabel(movie.OriginalLanguage)) + dot +
		styles.MutedText.Render(movie.Year())

	lines := []string{
		styles.CardTitle.Render(truncate(title, inner)),
		meta,
	}
	if overview := truncate(movie.Overview, inner*2); overview != "" {
		lines = append(lines, styles.Text.Width(inner).Render(overview))
	}
	if poster := tmdb.PosterURL(movie.PosterPath, posterSize); poster != "" {
		lines = append(lines, styles.FaintText.Render(truncateMiddle(poster, inner)))
	} else {
		lines = append(lines, styles.FaintText.Render("no poster"))
	}

	return styles.Card.Width(width - 2).Render(strings.Join(lines, "\n"))
}

func (m Model) trendingShown() bool {
	return m.currentView == ViewSearch && m.prefs.TrendingVisible() && len(m.trending.Trending) > 0
}

// renderTrending renders the most searched terms on one line.
func (m Model) renderTrending() string {
	styles := m.theme.Styles()
	parts := []string{styles.Chip.Render("Trending")}
	for i, entry := range m.trending.Trending {
		parts = append(parts,
			styles.FaintText.Render(fmt.Sprintf("%d.", i+1))+" "+
				styles.Text.Render(entry.Term)+" "+
				styles.MutedText.Render(fmt.Sprintf("×%d", entry.Count)))
	}
	if m.trending.IsOffline() {
		parts = append(parts, styles.WarningText.Render("(stale)"))
	}
	line := strings.Join(parts, "  ")
	return lipgloss.NewStyle().MaxWidth(m.width).Render(line)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func clampInt(v, lo, hi int) int {
	return maxInt(lo, minInt(v, hi))
}
