// internal/ui/model.go
// Package ui is the terminal front end. It forwards every message to the
// view state coordinator and renders the coordinator's snapshots.
package ui

import (
	"path/filepath"
	"slices"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhath/ezlite/internal/config"
	"github.com/nhath/ezlite/internal/db"
	"github.com/nhath/ezlite/internal/logger"
	"github.com/nhath/ezlite/internal/viewstate"
)

// Focus is the widget receiving key presses
type Focus int

const (
	FocusBrowser Focus = iota
	FocusQuery
	FocusSetup
)

// Model is the bubbletea model of the browser
type Model struct {
	coord  *viewstate.Coordinator
	logger *logger.Logger
	keys   keyMap
	style  string

	spinner    spinner.Model
	query      textinput.Model
	setup      textinput.Model
	definition viewport.Model
	help       help.Model

	focus Focus
	snap  viewstate.Snapshot

	// popupErr is shown over everything until a key is pressed
	popupErr error
	setupErr error

	width, height int
}

// NewModel wraps a coordinator. log may be nil.
func NewModel(cfg *config.Config, coord *viewstate.Coordinator, log *logger.Logger) Model {
	InitStyles(cfg.Theme)
	if log == nil {
		log = logger.Discard()
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(accentColor)

	q := textinput.New()
	q.Placeholder = "SELECT * FROM ..."
	q.Prompt = "SQL> "
	q.PromptStyle = PromptStyle

	in := textinput.New()
	in.Placeholder = "path/to/database.db or sqlite:///abs/path.db"
	in.Prompt = "Open: "
	in.PromptStyle = PromptStyle

	return Model{
		coord:      coord,
		logger:     log,
		keys:       newKeyMap(cfg.Keys),
		style:      cfg.Theme.SyntaxStyle,
		spinner:    s,
		query:      q,
		setup:      in,
		definition: viewport.New(0, 0),
		help:       help.New(),
		snap:       coord.Snapshot(),
	}
}

// Init starts the coordinator and the spinner
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.coord.Init(), m.spinner.Tick)
}

// Update handles key presses itself and hands everything else to the coordinator
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case viewstate.ConnectionSetupRequiredMsg:
		m.setupErr = msg.Err
		m = m.focusSetup()

	case viewstate.ConnectionFailedMsg:
		m.setupErr = msg.Err
		m.popupErr = msg.Err
		m.logger.Warn("open database failed", "path", msg.Descriptor.Path, "error", msg.Err)
		m = m.focusSetup()

	case viewstate.QueryResultMsg:
		if msg.Err != nil {
			m.popupErr = msg.Err
		} else {
			m.popupErr = nil
		}
	}

	cmds = append(cmds, m.coord.Update(msg))
	m = m.sync()
	return m, tea.Batch(cmds...)
}

// send forwards an input message to the coordinator
func (m Model) send(msg tea.Msg) (Model, tea.Cmd) {
	cmd := m.coord.Update(msg)
	return m.sync(), cmd
}

// sync takes a fresh snapshot and resizes what depends on it
func (m Model) sync() Model {
	m.snap = m.coord.Snapshot()
	m.definition.Width = max(m.snap.GridWidth-2, 0)
	m.definition.Height = max(m.height-statusHeight-tabsHeight-2, 0)
	m.definition.SetContent(m.renderDefinition())
	m.query.Width = max(m.snap.GridWidth-8, 10)
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m.quit()
	}
	if m.popupErr != nil {
		m.popupErr = nil
		return m, nil
	}

	switch m.focus {
	case FocusSetup:
		return m.handleSetupKey(msg)
	case FocusQuery:
		return m.handleQueryKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Exit):
		return m.quit()

	case key.Matches(msg, m.keys.Refresh):
		return m.send(viewstate.RefreshMsg{})

	case key.Matches(msg, m.keys.NextView):
		return m.send(viewstate.ShowViewMsg{View: nextView(m.snap.View)})

	case key.Matches(msg, m.keys.NextTable):
		return m.moveTable(1)

	case key.Matches(msg, m.keys.PrevTable):
		return m.moveTable(-1)

	case key.Matches(msg, m.keys.NextConn):
		if d, ok := nextConnection(m.snap.Connections, m.snap.SelectedConnection); ok {
			return m.send(viewstate.SelectConnectionMsg{Descriptor: d})
		}
		return m, nil

	case key.Matches(msg, m.keys.GrowSidebar):
		return m.send(viewstate.ResizeSidebarMsg{Width: m.snap.SidebarWidth + 2})

	case key.Matches(msg, m.keys.ShrinkSidebar):
		return m.send(viewstate.ResizeSidebarMsg{Width: m.snap.SidebarWidth - 2})

	case key.Matches(msg, m.keys.Query):
		m.focus = FocusQuery
		m.query.SetValue(m.snap.LastQuery)
		m.query.CursorEnd()
		focusCmd := m.query.Focus()
		var cmd tea.Cmd
		m, cmd = m.send(viewstate.ShowViewMsg{View: viewstate.QueryView})
		return m, tea.Batch(focusCmd, cmd)

	case key.Matches(msg, m.keys.AddConn):
		return m.focusSetup(), textinput.Blink
	}

	if m.snap.View == viewstate.StructureView {
		var cmd tea.Cmd
		m.definition, cmd = m.definition.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleQueryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.focus = FocusBrowser
		m.query.Blur()
		return m, nil
	case tea.KeyEnter:
		sql := m.query.Value()
		if sql == "" {
			return m, nil
		}
		m.focus = FocusBrowser
		m.query.Blur()
		return m.send(viewstate.RunQueryMsg{SQL: sql})
	}

	var cmd tea.Cmd
	m.query, cmd = m.query.Update(msg)
	return m, cmd
}

func (m Model) handleSetupKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		if len(m.snap.Connections) == 0 {
			return m, nil
		}
		m.focus = FocusBrowser
		m.setup.Blur()
		return m, nil
	case tea.KeyEnter:
		d, err := descriptorFromInput(m.setup.Value())
		if err != nil {
			m.setupErr = err
			return m, nil
		}
		m.setupErr = nil
		m.focus = FocusBrowser
		m.setup.Blur()
		m.setup.Reset()
		return m.send(viewstate.AddConnectionMsg{Descriptor: d})
	}

	var cmd tea.Cmd
	m.setup, cmd = m.setup.Update(msg)
	return m, cmd
}

func (m Model) focusSetup() Model {
	m.focus = FocusSetup
	m.query.Blur()
	m.setup.Focus()
	return m
}

func (m Model) moveTable(step int) (tea.Model, tea.Cmd) {
	tables := m.snap.Tables
	if len(tables) == 0 {
		return m, nil
	}
	i := slices.IndexFunc(tables, func(t db.Table) bool { return t.Name == m.snap.SelectedTable })
	next := (i + step + len(tables)) % len(tables)
	if i < 0 {
		next = 0
	}
	return m.send(viewstate.SelectTableMsg{Table: tables[next].Name})
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.coord.Teardown()
	return m, tea.Quit
}

func nextView(v viewstate.View) viewstate.View {
	i := slices.Index(viewstate.Views, v)
	return viewstate.Views[(i+1)%len(viewstate.Views)]
}

func nextConnection(conns []db.Descriptor, selected *db.Descriptor) (db.Descriptor, bool) {
	if len(conns) == 0 {
		return db.Descriptor{}, false
	}
	if selected == nil {
		return conns[0], true
	}
	i := slices.IndexFunc(conns, func(d db.Descriptor) bool { return d.Key() == selected.Key() })
	next := conns[(i+1)%len(conns)]
	if next.Key() == selected.Key() {
		return db.Descriptor{}, false
	}
	return next, true
}

// descriptorFromInput turns what was typed in the setup prompt into a descriptor
func descriptorFromInput(input string) (db.Descriptor, error) {
	conn, err := config.ParseDSN("", input)
	if err != nil {
		return db.Descriptor{}, err
	}
	path, err := filepath.Abs(conn.Path)
	if err != nil {
		return db.Descriptor{}, err
	}
	return db.Descriptor{
		Name:     conn.Name,
		Driver:   db.SQLite,
		Path:     path,
		User:     conn.User,
		Password: conn.Password,
	}, nil
}
