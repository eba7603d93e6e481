package ui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/five82/cinefind/internal/logging"
	"github.com/five82/cinefind/internal/prefs"
	"github.com/five82/cinefind/internal/search"
	"github.com/five82/cinefind/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewSearch View = iota
	ViewLogs
)

type focusArea int

const (
	focusInput focusArea = iota
	focusResults
)

const searchPlaceholder = "Search through thousands of movies"

// Options configures the UI.
type Options struct {
	Context      context.Context
	Controller   *search.Controller
	Debouncer    *search.Debouncer
	Store        *state.Store
	Logger       *log.Logger
	LogPath      string
	Prefs        prefs.Prefs
	PrefsPath    string
	InitialQuery string
	RefreshTick  time.Duration
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Collaborators
	ctx        context.Context
	controller *search.Controller
	debouncer  *search.Debouncer
	store      *state.Store
	logger     *log.Logger
	logPath    string
	prefsPath  string
	tick       time.Duration
	keys       keyMap

	// UI state
	theme       Theme
	prefs       prefs.Prefs
	currentView View
	focus       focusArea
	width       int
	height      int
	ready       bool
	showHelp    bool
	errorMsg    string

	// Search
	input    textinput.Model
	spinner  spinner.Model
	results  viewport.Model
	search   search.State
	inflight search.Request
	lastTag  search.Tag

	// Trending
	trending state.Snapshot

	// Diagnostics
	logViewport viewport.Model
	logState    logState
}

// New creates the model and dispatches the initial fetch for the starting query.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	debouncer := opts.Debouncer
	if debouncer == nil {
		debouncer = search.NewDebouncer(0)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	tick := opts.RefreshTick
	if tick <= 0 {
		tick = DefaultUIInterval
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	userPrefs := opts.Prefs
	if userPrefs.Theme == "" {
		userPrefs.Theme = prefs.Default().Theme
	}

	input := textinput.New()
	input.Placeholder = searchPlaceholder
	input.Prompt = "> "
	input.CharLimit = 200
	input.SetValue(opts.InitialQuery)
	input.Focus()

	m := Model{
		ctx:         ctx,
		controller:  opts.Controller,
		debouncer:   debouncer,
		store:       opts.Store,
		logger:      logger,
		logPath:     opts.LogPath,
		prefsPath:   prefsPath,
		tick:        tick,
		keys:        DefaultKeyMap(),
		theme:       GetTheme(userPrefs.Theme),
		prefs:       userPrefs,
		currentView: ViewSearch,
		focus:       focusInput,
		input:       input,
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot)),
		results:     viewport.New(0, 0),
		logViewport: viewport.New(0, 0),
		logState:    logState{follow: true},
	}

	// The first query is committed without waiting for the debounce.
	debouncer.Prime(input.Value())
	m.inflight = m.controller.Begin(input.Value())
	m.search = m.controller.State()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		textinput.Blink,
		m.spinner.Tick,
		tickCmd(m.tick),
		fetchCmd(m.ctx, m.controller, m.inflight),
	}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.layout()
		return m, nil

	case search.SettleMsg:
		return m.handleSettle(msg)

	case resultMsg:
		return m.handleResult(search.Result(msg))

	case recordedMsg:
		return m, nil

	case spinner.TickMsg:
		// Let the spinner chain die while nothing is loading.
		if m.search.Status != search.StatusLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refreshResults()
		return m, cmd

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.trending = state.Snapshot(msg)
		m.layout()
		return m, nil

	case logLinesMsg:
		m.handleLogLines(msg)
		return m, nil
	}

	// Cursor blink and other input housekeeping.
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderHeader() + "\n" + m.renderCommandBar() + "\n" + m.renderContent()
}

func (m Model) renderContent() string {
	if m.currentView == ViewLogs {
		return m.renderLogs()
	}
	return m.renderSearch()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	if m.currentView == ViewLogs {
		return m.handleLogsKey(msg)
	}
	if m.focus == focusInput {
		return m.handleInputKey(msg)
	}
	return m.handleResultsKey(msg)
}

// handleSettle commits the debounced query and dispatches its fetch.
func (m Model) handleSettle(msg search.SettleMsg) (tea.Model, tea.Cmd) {
	query, ok := m.debouncer.Settle(msg.Tag)
	if !ok {
		return m, nil
	}
	m.inflight = m.controller.Begin(query)
	m.search = m.controller.State()
	m.refreshResults()
	return m, tea.Batch(fetchCmd(m.ctx, m.controller, m.inflight), m.spinner.Tick)
}

// handleResult applies a completed fetch and reports successful searches.
func (m Model) handleResult(res search.Result) (tea.Model, tea.Cmd) {
	if !m.controller.Resolve(res) {
		return m, nil
	}
	m.search = m.controller.State()
	m.results.GotoTop()
	m.refreshResults()
	if search.ShouldRecord(res) {
		return m, recordCmd(m.ctx, m.controller, res)
	}
	return m, nil
}

// handleTick processes the refresh tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{tickCmd(m.tick)}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	if m.currentView == ViewLogs && m.logState.follow {
		cmds = append(cmds, m.refreshLogs())
	}
	return m, tea.Batch(cmds...)
}

// pushQuery hands the current input value to the debouncer.
func (m *Model) pushQuery() tea.Cmd {
	m.lastTag = m.debouncer.Push(m.input.Value())
	return m.debouncer.Cmd(m.lastTag)
}

func (m *Model) savePrefs() {
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		m.logger.Warn("save preferences failed", "path", m.prefsPath, "err", err)
		m.errorMsg = "preferences not saved"
		return
	}
	m.errorMsg = ""
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type resultMsg search.Result

type recordedMsg struct{}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

func fetchCmd(ctx context.Context, c *search.Controller, req search.Request) tea.Cmd {
	return func() tea.Msg {
		return resultMsg(c.Fetch(ctx, req))
	}
}

func recordCmd(ctx context.Context, c *search.Controller, res search.Result) tea.Cmd {
	return func() tea.Msg {
		c.Record(ctx, res)
		return recordedMsg{}
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or ctx
// is cancelled.
func Run(opts Options) error {
	if opts.Controller == nil {
		return errors.New("ui: controller is required")
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
