package viewstate

import (
	"slices"

	"github.com/nhath/ezlite/internal/db"
)

// Snapshot is a read-only copy of what the coordinator holds
type Snapshot struct {
	State     State
	IsLoading bool
	View      View

	DatabaseName    string
	DatabaseVersion string
	Tables          []db.Table
	SelectedTable   string

	TableColumns    []db.Column
	Rows            []Row
	TableDefinition string

	Logs        []db.LogEntry
	QueryResult *db.QueryResult
	LastQuery   string

	SidebarWidth int
	GridWidth    int

	Connections        []db.Descriptor
	SelectedConnection *db.Descriptor

	LastError error
}

// Snapshot copies the current state for rendering
func (c *Coordinator) Snapshot() Snapshot {
	s := Snapshot{
		State:     c.state,
		IsLoading: c.loading,
		View:      c.view,

		DatabaseName:    c.databaseName,
		DatabaseVersion: c.version,
		Tables:          slices.Clone(c.tables),
		SelectedTable:   c.selectedTable,

		TableColumns:    slices.Clone(c.columns),
		Rows:            slices.Clone(c.rows),
		TableDefinition: c.definition,

		Logs:        slices.Clone(c.logs),
		QueryResult: c.queryResult,
		LastQuery:   c.lastQuery,

		Connections: slices.Clone(c.connections),
		LastError:   c.lastErr,
	}
	if c.selectedConn != nil {
		d := *c.selectedConn
		s.SelectedConnection = &d
	}

	dims := c.layout.Dims()
	s.SidebarWidth, s.GridWidth = dims.Sidebar, dims.Grid
	return s
}
