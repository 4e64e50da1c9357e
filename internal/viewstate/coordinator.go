// Package viewstate decides which database is open, which table is shown,
// what has to be loaded for it and where refresh goes.
//
// The Coordinator runs inside a bubbletea program. Provider calls run as
// commands and come back as messages; state only changes in Update. Each
// load carries the session and table it was issued for, and results that no
// longer match are dropped when they arrive.
package viewstate

import (
	"log/slog"
	"path/filepath"
	"slices"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhath/ezlite/internal/db"
	"github.com/nhath/ezlite/internal/layout"
)

// Registry is the store of known connections
type Registry interface {
	List() ([]db.Descriptor, error)
	Add(d db.Descriptor) (db.Descriptor, error)
	Select(d db.Descriptor)
}

// FileWatcher reports changes to the open database file
type FileWatcher interface {
	Next() bool
	Close() error
}

// Options configure a Coordinator
type Options struct {
	Registry Registry
	Opener   db.Opener
	Layout   *layout.State
	Logger   *slog.Logger

	// PollInterval is the log refresh period, 5s when zero
	PollInterval time.Duration
	// QueryTimeout bounds every provider call, 30s when zero
	QueryTimeout time.Duration
	// Watch enables auto refresh when set
	Watch func(path string) (FileWatcher, error)
}

type session struct {
	seq        uint64
	descriptor db.Descriptor
	provider   db.Provider
	watcher    FileWatcher
}

// Coordinator owns the view state of the browser
type Coordinator struct {
	registry     Registry
	opener       db.Opener
	layout       *layout.State
	logger       *slog.Logger
	pollInterval time.Duration
	queryTimeout time.Duration
	watch        func(path string) (FileWatcher, error)

	state   State
	view    View
	loading bool
	loadSeq uint64
	// load that owns the flag during startup and session opening
	connLoad uint64

	connections  []db.Descriptor
	selectedConn *db.Descriptor
	pendingOpen  *db.Descriptor

	sessionSeq uint64
	session    *session

	databaseName string
	version      string
	tables       []db.Table
	logs         []db.LogEntry

	selectedTable  string
	preferredTable string
	columns        []db.Column
	rows           []Row
	definition     string

	queryResult *db.QueryResult
	lastQuery   string
	lastErr     error

	refresh RefreshSlot
	poller  *poller
}

// New returns a coordinator in the Uninitialized state
func New(opts Options) *Coordinator {
	c := &Coordinator{
		registry:     opts.Registry,
		opener:       opts.Opener,
		layout:       opts.Layout,
		logger:       opts.Logger,
		pollInterval: opts.PollInterval,
		queryTimeout: opts.QueryTimeout,
		watch:        opts.Watch,
	}
	if c.pollInterval <= 0 {
		c.pollInterval = 5 * time.Second
	}
	if c.queryTimeout <= 0 {
		c.queryTimeout = 30 * time.Second
	}
	if c.layout == nil {
		c.layout = layout.New(layout.Bounds{Sidebar: 30, Min: 15, Max: 60}, nil)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	c.logger = c.logger.With("component", "viewstate")
	return c
}

// Init starts listing the stored connections
func (c *Coordinator) Init() tea.Cmd {
	if c.state != Uninitialized {
		return nil
	}
	c.state = ConnectionsLoading
	c.connLoad = c.beginLoad()
	return c.listConnectionsCmd()
}

// Update applies one message and returns the work it started
func (c *Coordinator) Update(msg tea.Msg) tea.Cmd {
	if c.state == Teardown {
		return nil
	}

	switch msg := msg.(type) {
	case connectionsLoadedMsg:
		return c.handleConnections(msg)

	case ReloadConnectionsMsg:
		return c.listConnectionsCmd()

	case AddConnectionMsg:
		return c.addConnectionCmd(msg.Descriptor)

	case connectionAddedMsg:
		if msg.err != nil {
			c.logger.Warn("add connection failed", "name", msg.descriptor.Name, "error", msg.err)
			c.lastErr = msg.err
			return nil
		}
		c.lastErr = nil
		cmds := []tea.Cmd{c.listConnectionsCmd()}
		if c.session == nil && c.state != SessionOpening {
			cmds = append(cmds, c.switchConnection(msg.descriptor))
		}
		return tea.Batch(cmds...)

	case OpenFileMsg:
		return c.handleOpenFile(msg)

	case SelectConnectionMsg:
		return c.switchConnection(msg.Descriptor)

	case sessionOpenedMsg:
		return c.handleSessionOpened(msg)

	case initialLoadedMsg:
		return c.handleInitialLoad(msg)

	case SelectTableMsg:
		return c.selectTable(msg.Table)

	case tableLoadedMsg:
		c.handleTableLoaded(msg)
		return nil

	case RefreshMsg:
		return c.refresh.Invoke(func(action tea.Msg) tea.Cmd {
			if !c.canApply(action) {
				return nil
			}
			return c.apply(action, c.beginLoad())
		})

	case InstallRefreshMsg:
		c.refresh.Set(msg.Action)
		return nil

	case ShowViewMsg:
		c.showView(msg.View)
		return nil

	case RunQueryMsg:
		// Refresh re-runs the query; running it directly does not set the loading flag
		if c.canApply(msg) {
			c.refresh.Set(msg)
		}
		return c.apply(msg, 0)

	case queryDoneMsg:
		return c.handleQueryDone(msg)

	case logsLoadedMsg:
		c.endLoad(msg.load)
		if !c.current(msg.session) {
			return nil
		}
		if msg.err != nil {
			c.logger.Warn("fetch logs failed", "error", msg.err)
			return nil
		}
		c.logs = msg.logs
		return nil

	case actionDoneMsg:
		c.endLoad(msg.load)
		if msg.err != nil {
			c.logger.Warn("refresh action failed", "action", msg.name, "error", msg.err)
			c.lastErr = msg.err
		}
		return nil

	case pollTickMsg:
		return c.handlePollTick()

	case FileChangedMsg:
		return c.handleFileChanged(msg)

	case ResizeSidebarMsg:
		c.layout.ResizeSidebar(msg.Width)
		return nil

	case ResizeGridMsg:
		c.layout.ResizeGrid(msg.Width)
		return nil

	case tea.WindowSizeMsg:
		c.layout.ContainerResized(msg.Width, msg.Height)
		return nil
	}
	return nil
}

// Teardown stops the log poller and releases the open database. Later
// messages are ignored.
func (c *Coordinator) Teardown() {
	if c.state == Teardown {
		return
	}
	c.state = Teardown
	if c.poller != nil {
		c.poller.stop()
	}
	if s := c.session; s != nil {
		c.session = nil
		if s.watcher != nil {
			_ = s.watcher.Close()
		}
		if err := s.provider.Close(); err != nil {
			c.logger.Warn("close provider failed", "error", err)
		}
	}
	c.logger.Debug("teardown")
}

func (c *Coordinator) beginLoad() uint64 {
	c.loadSeq++
	c.loading = true
	return c.loadSeq
}

// endLoad clears the loading flag if load is still the latest load. Load 0
// never owns the flag.
func (c *Coordinator) endLoad(load uint64) {
	if load != 0 && load == c.loadSeq {
		c.loading = false
	}
}

// current reports whether a result issued for session seq may be committed
func (c *Coordinator) current(seq uint64) bool {
	return c.session != nil && c.session.seq == seq
}

func (c *Coordinator) handleConnections(msg connectionsLoadedMsg) tea.Cmd {
	if msg.err != nil {
		c.logger.Warn("connection registry unavailable", "error", msg.err)
	}
	c.connections = msg.descriptors

	// Only startup and the setup screen pick a connection on their own
	if c.state != ConnectionsLoading && c.state != NoConnections {
		return nil
	}

	if c.pendingOpen != nil {
		d := *c.pendingOpen
		c.pendingOpen = nil
		return c.switchConnection(d)
	}
	if len(c.connections) == 0 {
		c.state = NoConnections
		c.endLoad(c.connLoad)
		return emit(ConnectionSetupRequiredMsg{Err: msg.err})
	}
	return c.switchConnection(c.connections[0])
}

func (c *Coordinator) handleOpenFile(msg OpenFileMsg) tea.Cmd {
	d := db.Descriptor{Driver: db.SQLite, Path: msg.Path}
	if abs, err := filepath.Abs(msg.Path); err == nil && msg.Path != ":memory:" {
		d.Path = abs
	}
	d.Name = d.Base()
	if i := slices.IndexFunc(c.connections, func(known db.Descriptor) bool {
		return known.Key() == d.Key()
	}); i >= 0 {
		d = c.connections[i]
	}

	switch c.state {
	case Uninitialized, ConnectionsLoading:
		// Overrides the default choice once the list arrives
		c.pendingOpen = &d
		return nil
	default:
		return c.switchConnection(d)
	}
}

// switchConnection releases the current session and opens d
func (c *Coordinator) switchConnection(d db.Descriptor) tea.Cmd {
	c.registry.Select(d)
	release := c.releaseSession()

	c.sessionSeq++
	c.selectedConn = &d
	c.state = SessionOpening
	c.connLoad = c.beginLoad()
	c.logger.Info("opening database", "name", d.Name, "path", d.Path)
	return tea.Batch(release, c.openSessionCmd(c.sessionSeq, d))
}

// releaseSession drops everything loaded from the current session
func (c *Coordinator) releaseSession() tea.Cmd {
	s := c.session
	c.session = nil

	c.databaseName, c.version = "", ""
	c.tables, c.logs = nil, nil
	c.selectedTable, c.preferredTable = "", ""
	c.columns, c.rows, c.definition = nil, nil, ""
	c.queryResult, c.lastQuery = nil, ""
	c.refresh.Reset()

	if s == nil {
		return nil
	}
	return closeSessionCmd(s.provider, s.watcher)
}

func (c *Coordinator) handleSessionOpened(msg sessionOpenedMsg) tea.Cmd {
	if msg.session != c.sessionSeq {
		// superseded by a later selection
		if msg.err == nil {
			return closeSessionCmd(msg.provider, msg.watcher)
		}
		return nil
	}

	if msg.err != nil {
		c.logger.Error("open database failed", "name", msg.descriptor.Name, "error", msg.err)
		c.state = ConnectionsReady
		c.lastErr = msg.err
		c.endLoad(c.connLoad)
		return emit(ConnectionFailedMsg{Descriptor: msg.descriptor, Err: msg.err})
	}

	c.session = &session{
		seq:        msg.session,
		descriptor: msg.descriptor,
		provider:   msg.provider,
		watcher:    msg.watcher,
	}
	c.lastErr = nil
	c.state = InitialLoad

	cmds := []tea.Cmd{c.initialLoadCmd(msg.session, msg.provider)}
	if msg.watcher != nil {
		cmds = append(cmds, waitForChangeCmd(msg.session, msg.watcher, msg.descriptor.Path))
	}
	return tea.Batch(cmds...)
}

func (c *Coordinator) handleInitialLoad(msg initialLoadedMsg) tea.Cmd {
	if !c.current(msg.session) || c.state != InitialLoad {
		return nil
	}
	if msg.err != nil {
		c.logger.Warn("initial load incomplete", "error", msg.err)
	}

	// Nothing to show yet: no commit, and the loading flag stays as it is
	if len(msg.tables) == 0 {
		return nil
	}

	c.state = Ready
	target := msg.tables[0].Name
	if c.preferredTable != "" && containsTable(msg.tables, c.preferredTable) {
		target = c.preferredTable
	}
	c.preferredTable = ""
	c.tables = msg.tables

	cmds := []tea.Cmd{c.selectTable(target)}

	// in-memory and temporary databases have no file
	c.databaseName = c.session.descriptor.Name
	if len(msg.databases) > 0 && msg.databases[0] != "" {
		c.databaseName = filepath.Base(msg.databases[0])
	}
	c.version = msg.version
	c.logs = msg.logs

	if c.poller == nil {
		c.poller = newPoller(c.pollInterval)
		cmds = append(cmds, c.poller.tick())
	}
	c.endLoad(c.connLoad)
	return tea.Batch(cmds...)
}

// selectTable points refresh at name and loads it
func (c *Coordinator) selectTable(name string) tea.Cmd {
	switch c.state {
	case SessionOpening, InitialLoad:
		c.preferredTable = name
		return nil
	case Ready:
	default:
		return nil
	}
	if !containsTable(c.tables, name) {
		c.logger.Warn("select unknown table", "table", name)
		return nil
	}

	action := reloadTableMsg{table: name}
	c.refresh.Set(action)
	if name != c.selectedTable {
		c.columns, c.rows, c.definition = nil, nil, ""
	}
	c.selectedTable = name
	return c.loadTableCmd(c.session.seq, c.session.provider, name, c.beginLoad())
}

func (c *Coordinator) handleTableLoaded(msg tableLoadedMsg) {
	c.endLoad(msg.load)
	if !c.current(msg.session) || msg.table != c.selectedTable {
		c.logger.Debug("drop stale table load", "table", msg.table)
		return
	}
	if msg.err != nil {
		c.logger.Warn("table load incomplete", "table", msg.table, "error", msg.err)
	}

	c.columns = msg.columns
	c.rows = TransformRows(msg.values)
	c.definition = ""
	if len(msg.script) > 0 {
		c.definition = msg.script[0]
	}
}

// canApply reports whether action can run now. Custom actions do not need
// an open database.
func (c *Coordinator) canApply(action tea.Msg) bool {
	if _, ok := action.(CustomAction); ok {
		return true
	}
	return c.session != nil && c.state == Ready
}

// apply runs a refresh action. load owns the loading flag, 0 for none.
func (c *Coordinator) apply(action tea.Msg, load uint64) tea.Cmd {
	if a, ok := action.(CustomAction); ok {
		return c.runActionCmd(a, load)
	}

	s := c.session
	if s == nil || c.state != Ready {
		c.endLoad(load)
		if q, ok := action.(RunQueryMsg); ok {
			return emit(QueryResultMsg{SQL: q.SQL, Err: ErrNoSession})
		}
		return nil
	}

	switch a := action.(type) {
	case reloadTableMsg:
		if a.table != c.selectedTable {
			c.endLoad(load)
			return nil
		}
		c.rows = nil
		return c.loadTableCmd(s.seq, s.provider, a.table, load)

	case RunQueryMsg:
		c.lastQuery = a.SQL
		return c.runQueryCmd(s.seq, s.provider, a.SQL, load)

	case fetchLogsMsg:
		return c.fetchLogsCmd(s.seq, s.provider, load)
	}

	c.endLoad(load)
	return nil
}

func (c *Coordinator) handleQueryDone(msg queryDoneMsg) tea.Cmd {
	c.endLoad(msg.load)
	if !c.current(msg.session) {
		c.logger.Debug("dropping query outcome of a closed session", "sql", msg.sql)
		return nil
	}
	if msg.err != nil {
		c.logger.Info("query failed", "error", msg.err)
		return emit(QueryResultMsg{SQL: msg.sql, Err: msg.err})
	}
	c.queryResult = msg.result
	return emit(QueryResultMsg{SQL: msg.sql, Result: msg.result})
}

// showView points refresh at what the view displays
func (c *Coordinator) showView(v View) {
	c.view = v
	switch v {
	case ContentView, StructureView:
		if c.selectedTable != "" {
			c.refresh.Set(reloadTableMsg{table: c.selectedTable})
			return
		}
	case QueryView:
		if c.lastQuery != "" {
			c.refresh.Set(RunQueryMsg{SQL: c.lastQuery})
			return
		}
	case LogsView:
		c.refresh.Set(fetchLogsMsg{})
		return
	}
	c.refresh.Reset()
}

func (c *Coordinator) handlePollTick() tea.Cmd {
	if c.poller == nil || c.poller.stopped() {
		return nil
	}
	cmds := []tea.Cmd{c.poller.tick()}
	if s := c.session; s != nil && c.state == Ready {
		cmds = append(cmds, c.fetchLogsCmd(s.seq, s.provider, 0))
	}
	return tea.Batch(cmds...)
}

func (c *Coordinator) handleFileChanged(msg FileChangedMsg) tea.Cmd {
	s := c.session
	if !c.current(msg.session) || s.watcher == nil {
		return nil
	}
	next := waitForChangeCmd(s.seq, s.watcher, s.descriptor.Path)
	if c.state != Ready {
		return next
	}
	// A statement typed by the user is never re-run behind their back
	if _, ok := c.refresh.Current().(RunQueryMsg); ok {
		return next
	}
	c.logger.Debug("database changed on disk", "path", msg.Path)
	return tea.Batch(next, c.Update(RefreshMsg{}))
}

func containsTable(tables []db.Table, name string) bool {
	return slices.ContainsFunc(tables, func(t db.Table) bool { return t.Name == name })
}
