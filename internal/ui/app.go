package ui

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/modedeck/internal/modes"
	"github.com/five82/modedeck/internal/modesync"
	"github.com/five82/modedeck/internal/prefs"
	"github.com/five82/modedeck/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewModes View = iota
	ViewLogs
)

// Options configures the UI.
type Options struct {
	Context    context.Context
	Store      *state.Store
	Dispatcher *modesync.Dispatcher
	Registry   *modesync.Registry
	LogFile    string
	PollTick   time.Duration
	ThemeName  string
	LastMode   string
	PrefsPath  string
	Logger     *slog.Logger
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx        context.Context
	store      *state.Store
	dispatcher *modesync.Dispatcher
	registry   *modesync.Registry
	logFile    string
	prefsPath  string
	pollTick   time.Duration
	logger     *slog.Logger

	keys        keyMap
	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool
	showHelp    bool

	modeOrder []modes.Type
	modeIdx   int
	selected  map[modes.Type]int

	snap   snapshot
	status string
	edit   *fieldEdit

	logViewport viewport.Model
	logLines    []string
	logErr      error
}

// snapshot is what the view needs from the store and dispatcher.
type snapshot struct {
	revision uint64
	lists    map[modes.Type]state.List
	link     state.Link
	failure  *modesync.Failure
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = time.Second
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	m := Model{
		ctx:         ctx,
		logger:      logger,
		store:       opts.Store,
		dispatcher:  opts.Dispatcher,
		registry:    opts.Registry,
		logFile:     opts.LogFile,
		prefsPath:   prefsPath,
		pollTick:    pollTick,
		keys:        DefaultKeyMap(),
		theme:       GetTheme(opts.ThemeName),
		currentView: ViewModes,
		selected:    make(map[modes.Type]int),
	}
	if m.store != nil {
		m.modeOrder = m.store.Modes()
	}
	for i, t := range m.modeOrder {
		if string(t) == opts.LastMode {
			m.modeIdx = i
		}
	}
	m.snap = m.takeSnapshot()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.pollTick)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.logViewport = viewport.New(m.width, m.logHeight())
		}
		m.ready = true
		m.logViewport.Width = m.width
		m.logViewport.Height = m.logHeight()
		m.updateLogViewport()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.snap = snapshot(msg)
		m.clampSelection()
		return m, nil

	case logLinesMsg:
		m.logLines = msg.lines
		m.logErr = msg.err
		m.updateLogViewport()
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if m.edit != nil {
		return m.handleEditKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.savePrefs()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()
		m.updateLogViewport()
		return m, nil

	case key.Matches(msg, m.keys.ToggleLogs):
		if m.currentView == ViewLogs {
			m.currentView = ViewModes
			return m, nil
		}
		m.currentView = ViewLogs
		return m, readLogsCmd(m.logFile)

	case key.Matches(msg, m.keys.Escape):
		m.currentView = ViewModes
		m.status = ""
		return m, nil

	case key.Matches(msg, m.keys.NextMode):
		m.cycleMode(1)
		return m, nil

	case key.Matches(msg, m.keys.PrevMode):
		m.cycleMode(-1)
		return m, nil
	}

	switch m.currentView {
	case ViewLogs:
		return m.handleLogsKey(msg)
	default:
		return m.handleModesKey(msg)
	}
}

func (m Model) handleModesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	mode := m.currentMode()
	count := len(m.snap.lists[mode].Entries)

	switch {
	case key.Matches(msg, m.keys.Down):
		if m.selected[mode] < count-1 {
			m.selected[mode]++
		}
	case key.Matches(msg, m.keys.Up):
		if m.selected[mode] > 0 {
			m.selected[mode]--
		}
	case key.Matches(msg, m.keys.Top):
		m.selected[mode] = 0
	case key.Matches(msg, m.keys.Bottom):
		if count > 0 {
			m.selected[mode] = count - 1
		}
	case key.Matches(msg, m.keys.ToggleActive):
		m.toggleActive()
	case key.Matches(msg, m.keys.EditPort):
		return m.beginEdit(modes.FieldListenPort)
	case key.Matches(msg, m.keys.EditHost):
		return m.beginEdit(modes.FieldListenHost)
	}
	return m, nil
}

func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Top):
		m.logViewport.GotoTop()
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.logViewport.GotoBottom()
		return m, nil
	}
	var cmd tea.Cmd
	m.logViewport, cmd = m.logViewport.Update(msg)
	return m, cmd
}

func (m Model) handleTick() (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{tickCmd(m.pollTick)}
	if m.store != nil {
		cmds = append(cmds, snapshotCmd(m))
	}
	if m.currentView == ViewLogs {
		cmds = append(cmds, readLogsCmd(m.logFile))
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) cycleMode(step int) {
	if len(m.modeOrder) == 0 {
		return
	}
	m.modeIdx = (m.modeIdx + step + len(m.modeOrder)) % len(m.modeOrder)
	m.status = ""
}

func (m Model) currentMode() modes.Type {
	if len(m.modeOrder) == 0 {
		return ""
	}
	return m.modeOrder[m.modeIdx]
}

func (m *Model) clampSelection() {
	for mode, idx := range m.selected {
		n := len(m.snap.lists[mode].Entries)
		switch {
		case n == 0:
			m.selected[mode] = 0
		case idx >= n:
			m.selected[mode] = n - 1
		}
	}
}

// takeSnapshot copies everything the view renders so View never touches
// the store.
func (m Model) takeSnapshot() snapshot {
	snap := snapshot{lists: make(map[modes.Type]state.List)}
	if m.store == nil {
		return snap
	}
	snap.revision = m.store.Revision()
	for _, t := range m.modeOrder {
		if l, ok := m.store.List(t); ok {
			snap.lists[t] = l
		}
	}
	snap.link = m.store.Link()
	if m.dispatcher != nil {
		if f, ok := m.dispatcher.LastFailure(); ok {
			snap.failure = &f
		}
	}
	return snap
}

// refresh re-reads the store after a local edit so the change shows up
// without waiting for the next tick.
func (m *Model) refresh() {
	m.snap = m.takeSnapshot()
	m.clampSelection()
}

func (m Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Save(m.prefsPath, prefs.Prefs{Theme: m.theme.Name, LastMode: string(m.currentMode())}); err != nil {
		m.logger.Debug("save prefs failed", "path", m.prefsPath, "err", err)
	}
}

// Messages

type tickMsg time.Time

type snapshotMsg snapshot

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func snapshotCmd(m Model) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(m.takeSnapshot())
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or the
// context is cancelled.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if err != nil && m.ctx.Err() != nil {
		return nil
	}
	return err
}
