package viewstate

import (
	"context"

	"github.com/nhath/ezlite/internal/db"
)

// Inputs. The presentation layer sends these through the tea program.

// SelectConnectionMsg switches the active database
type SelectConnectionMsg struct {
	Descriptor db.Descriptor
}

// SelectTableMsg shows a table of the active database
type SelectTableMsg struct {
	Table string
}

// RefreshMsg re-runs whatever loaded the visible view
type RefreshMsg struct{}

// OpenFileMsg asks for a database file to be opened, e.g. from the command line
type OpenFileMsg struct {
	Path string
}

// AddConnectionMsg stores a new connection and opens it when nothing is open
type AddConnectionMsg struct {
	Descriptor db.Descriptor
}

// ReloadConnectionsMsg re-reads the stored connections
type ReloadConnectionsMsg struct{}

// RunQueryMsg executes SQL against the active database
type RunQueryMsg struct {
	SQL string
}

// ShowViewMsg makes a view visible and points refresh at it
type ShowViewMsg struct {
	View View
}

// InstallRefreshMsg makes a caller-supplied action the refresh action
type InstallRefreshMsg struct {
	Action CustomAction
}

// CustomAction is a refresh action supplied by a view
type CustomAction struct {
	Name string
	Run  func(ctx context.Context) error
}

// ResizeSidebarMsg sets the sidebar width, in cells
type ResizeSidebarMsg struct {
	Width int
}

// ResizeGridMsg sets the grid width, in cells
type ResizeGridMsg struct {
	Width int
}

// FileChangedMsg reports that the open database file was written by someone else
type FileChangedMsg struct {
	Path string

	session uint64
}

// Notifications. The coordinator emits these for the presentation layer.

// ConnectionSetupRequiredMsg is emitted when there is no connection to open
type ConnectionSetupRequiredMsg struct {
	// Err is set when the stored connections could not be read
	Err error
}

// ConnectionFailedMsg is emitted when a database could not be opened
type ConnectionFailedMsg struct {
	Descriptor db.Descriptor
	Err        error
}

// QueryResultMsg carries the outcome of a RunQueryMsg
type QueryResultMsg struct {
	SQL    string
	Result *db.QueryResult
	Err    error
}

// Internal completions.

type connectionsLoadedMsg struct {
	descriptors []db.Descriptor
	err         error
}

type connectionAddedMsg struct {
	descriptor db.Descriptor
	err        error
}

type sessionOpenedMsg struct {
	session    uint64
	descriptor db.Descriptor
	provider   db.Provider
	watcher    FileWatcher
	err        error
}

type initialLoadedMsg struct {
	session   uint64
	databases []string
	tables    []db.Table
	version   string
	logs      []db.LogEntry
	err       error
}

type tableLoadedMsg struct {
	session uint64
	load    uint64
	table   string
	script  []string
	columns []db.Column
	values  []db.RawRow
	err     error
}

type logsLoadedMsg struct {
	session uint64
	load    uint64
	logs    []db.LogEntry
	err     error
}

type queryDoneMsg struct {
	session uint64
	load    uint64
	sql     string
	result  *db.QueryResult
	err     error
}

type actionDoneMsg struct {
	load uint64
	name string
	err  error
}

type pollTickMsg struct{}

// Refresh actions stored in the RefreshSlot.

type reloadTableMsg struct {
	table string
}

type fetchLogsMsg struct{}
