package viewstate

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/nhath/ezlite/internal/db"
)

// ErrNoSession is returned for work that needs an open database
var ErrNoSession = errors.New("no database is open")

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

func (c *Coordinator) withTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), c.queryTimeout)
}

// listConnectionsCmd reads the registry
func (c *Coordinator) listConnectionsCmd() tea.Cmd {
	registry := c.registry
	return func() tea.Msg {
		descs, err := registry.List()
		return connectionsLoadedMsg{descriptors: descs, err: err}
	}
}

// addConnectionCmd stores a descriptor in the registry
func (c *Coordinator) addConnectionCmd(d db.Descriptor) tea.Cmd {
	registry := c.registry
	return func() tea.Msg {
		added, err := registry.Add(d)
		return connectionAddedMsg{descriptor: added, err: err}
	}
}

// openSessionCmd resolves a provider, and a file watcher when enabled
func (c *Coordinator) openSessionCmd(seq uint64, d db.Descriptor) tea.Cmd {
	opener, watchFn := c.opener, c.watch
	ctx, cancel := c.withTimeout()
	return func() tea.Msg {
		defer cancel()

		provider, err := opener.Open(ctx, d)
		if err != nil {
			return sessionOpenedMsg{session: seq, descriptor: d, err: err}
		}

		msg := sessionOpenedMsg{session: seq, descriptor: d, provider: provider}
		if watchFn != nil && d.Path != "" && d.Path != ":memory:" {
			// a failed watch only disables auto refresh
			msg.watcher, _ = watchFn(d.Path)
		}
		return msg
	}
}

// closeSessionCmd releases a session's resources. Close blocks on
// in-flight statements, so it runs as a command.
func closeSessionCmd(provider db.Provider, watcher FileWatcher) tea.Cmd {
	return func() tea.Msg {
		if watcher != nil {
			_ = watcher.Close()
		}
		if provider != nil {
			_ = provider.Close()
		}
		return nil
	}
}

// initialLoadCmd runs the four initial calls concurrently and joins them.
// A failed call leaves its part empty.
func (c *Coordinator) initialLoadCmd(seq uint64, p db.Provider) tea.Cmd {
	ctx, cancel := c.withTimeout()
	return func() tea.Msg {
		defer cancel()

		msg := initialLoadedMsg{session: seq}
		var dbErr, tablesErr, versionErr, logsErr error

		var g errgroup.Group
		g.Go(func() error {
			msg.databases, dbErr = p.ListDatabases(ctx)
			return nil
		})
		g.Go(func() error {
			msg.tables, tablesErr = p.ListTables(ctx)
			return nil
		})
		g.Go(func() error {
			msg.version, versionErr = p.Version(ctx)
			return nil
		})
		g.Go(func() error {
			msg.logs, logsErr = p.Logs(ctx)
			return nil
		})
		_ = g.Wait()

		msg.err = db.JoinLoadErrors(map[string]error{
			"list_databases": dbErr,
			"list_tables":    tablesErr,
			"version":        versionErr,
			"logs":           logsErr,
		})
		return msg
	}
}

// loadTableCmd fetches the definition, columns and values of one table
func (c *Coordinator) loadTableCmd(seq uint64, p db.Provider, table string, load uint64) tea.Cmd {
	ctx, cancel := c.withTimeout()
	return func() tea.Msg {
		defer cancel()

		msg := tableLoadedMsg{session: seq, load: load, table: table}
		var scriptErr, columnsErr, valuesErr error

		var g errgroup.Group
		g.Go(func() error {
			msg.script, scriptErr = p.TableCreateScript(ctx, table)
			return nil
		})
		g.Go(func() error {
			msg.columns, columnsErr = p.TableColumns(ctx, table)
			return nil
		})
		g.Go(func() error {
			msg.values, valuesErr = p.TableValues(ctx, table)
			return nil
		})
		_ = g.Wait()

		msg.err = db.JoinLoadErrors(map[string]error{
			"table_create_script": scriptErr,
			"table_columns":       columnsErr,
			"table_values":        valuesErr,
		})
		return msg
	}
}

// fetchLogsCmd reads recent log entries. Poll ticks pass load 0.
func (c *Coordinator) fetchLogsCmd(seq uint64, p db.Provider, load uint64) tea.Cmd {
	ctx, cancel := c.withTimeout()
	return func() tea.Msg {
		defer cancel()
		logs, err := p.Logs(ctx)
		return logsLoadedMsg{session: seq, load: load, logs: logs, err: err}
	}
}

// runQueryCmd executes each statement in turn and keeps the last result.
// The first failing statement stops the run.
func (c *Coordinator) runQueryCmd(seq uint64, p db.Provider, sql string, load uint64) tea.Cmd {
	ctx, cancel := c.withTimeout()
	return func() tea.Msg {
		defer cancel()

		msg := queryDoneMsg{session: seq, load: load, sql: sql}
		statements := splitStatements(sql)
		if len(statements) == 0 {
			msg.err = db.WrapQueryError(errors.New("empty query"))
			return msg
		}
		for _, stmt := range statements {
			result, err := p.Execute(ctx, stmt)
			if err != nil {
				msg.err = err
				return msg
			}
			msg.result = result
		}
		return msg
	}
}

// runActionCmd runs a caller-supplied refresh action
func (c *Coordinator) runActionCmd(a CustomAction, load uint64) tea.Cmd {
	ctx, cancel := c.withTimeout()
	return func() tea.Msg {
		defer cancel()
		var err error
		if a.Run != nil {
			err = a.Run(ctx)
		}
		return actionDoneMsg{load: load, name: a.Name, err: err}
	}
}

// waitForChangeCmd blocks until the watched file changes
func waitForChangeCmd(seq uint64, w FileWatcher, path string) tea.Cmd {
	return func() tea.Msg {
		if !w.Next() {
			return nil
		}
		return FileChangedMsg{Path: path, session: seq}
	}
}
