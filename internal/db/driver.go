// internal/db/driver.go
package db

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// DriverType represents supported database types
type DriverType string

const (
	SQLite DriverType = "sqlite"
)

// Descriptor identifies one database connection. It is a value type and is
// never mutated once handed out; replace it instead.
type Descriptor struct {
	ID       string
	Name     string
	Driver   DriverType
	Path     string
	User     string
	Password string
}

// Key identifies the database a descriptor points at, independent of its ID and name.
func (d Descriptor) Key() string {
	return string(d.Driver) + ":" + d.Path
}

// Base returns the final path component of the database path.
func (d Descriptor) Base() string {
	if d.Path == "" {
		return ""
	}
	return filepath.Base(d.Path)
}

// Table is an entry of the table listing
type Table struct {
	Name string
}

// Column represents table column metadata
type Column struct {
	Name     string
	Type     string
	Nullable bool
	Default  string
	Key      string // PRI
}

// Field is one named value of a raw row, in column order.
type Field struct {
	Name  string
	Value any
}

// RawRow is a row as returned by the provider, fields kept in column order.
type RawRow []Field

// LogEntry is one statement the provider ran against the database.
type LogEntry struct {
	Query    string
	Time     time.Time
	Duration time.Duration
	Status   string // "success", "error"
	Error    string
}

// QueryResult contains query execution results
type QueryResult struct {
	Columns      []string
	Rows         [][]string
	ExecTime     time.Duration
	RowCount     int
	IsSelect     bool
	AffectedRows int64
}

// Provider is the data access object for one open database.
type Provider interface {
	ListDatabases(ctx context.Context) ([]string, error)
	ListTables(ctx context.Context) ([]Table, error)
	Version(ctx context.Context) (string, error)
	Logs(ctx context.Context) ([]LogEntry, error)
	TableCreateScript(ctx context.Context, table string) ([]string, error)
	TableColumns(ctx context.Context, table string) ([]Column, error)
	TableValues(ctx context.Context, table string) ([]RawRow, error)
	Execute(ctx context.Context, query string) (*QueryResult, error)
	Close() error
}

// Opener resolves a provider for a descriptor.
type Opener interface {
	Open(ctx context.Context, d Descriptor) (Provider, error)
}

// OpenerFunc adapts a function to Opener
type OpenerFunc func(ctx context.Context, d Descriptor) (Provider, error)

// Open calls f(ctx, d)
func (f OpenerFunc) Open(ctx context.Context, d Descriptor) (Provider, error) {
	return f(ctx, d)
}

// QueryLog stores the statements run by providers, per connection.
type QueryLog interface {
	Record(ctx context.Context, connection string, entry LogEntry) error
	Recent(ctx context.Context, connection string, limit int) ([]LogEntry, error)
}

// Options tune the providers created by NewOpener
type Options struct {
	RowLimit int
	LogLimit int
	Log      QueryLog
}

// NewOpener returns an Opener that creates providers by descriptor driver
func NewOpener(opts Options) Opener {
	return OpenerFunc(func(ctx context.Context, d Descriptor) (Provider, error) {
		switch d.Driver {
		case SQLite, "":
			return OpenSQLite(ctx, d, opts)
		default:
			return nil, WrapConnectionError(fmt.Errorf("unknown driver type: %s", d.Driver))
		}
	})
}

// isSelectLike reports whether a statement returns rows
func isSelectLike(query string) bool {
	trimmed := strings.TrimSpace(strings.ToUpper(query))
	for _, prefix := range []string{"SELECT", "WITH", "EXPLAIN", "PRAGMA", "VALUES"} {
		if strings.HasPrefix(trimmed, prefix) {
			return true
		}
	}
	return false
}

// executeQuery executes a query and returns results
func executeQuery(ctx context.Context, db *sql.DB, query string) (*QueryResult, error) {
	start := time.Now()
	if isSelectLike(query) {
		return executeSelect(ctx, db, query, start)
	}
	return executeDML(ctx, db, query, start)
}

// executeSelect executes a SELECT query
func executeSelect(ctx context.Context, db *sql.DB, query string, start time.Time) (*QueryResult, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, WrapQueryError(err)
	}
	defer rows.Close()

	columns, _ := rows.Columns()
	var results [][]string

	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, WrapQueryError(err)
		}

		row := make([]string, len(columns))
		for i, v := range values {
			row[i] = FormatValue(v)
		}
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, WrapQueryError(err)
	}

	return &QueryResult{
		Columns:  columns,
		Rows:     results,
		ExecTime: time.Since(start),
		RowCount: len(results),
		IsSelect: true,
	}, nil
}

// executeDML executes INSERT/UPDATE/DELETE queries
func executeDML(ctx context.Context, db *sql.DB, query string, start time.Time) (*QueryResult, error) {
	result, err := db.ExecContext(ctx, query)
	if err != nil {
		return nil, WrapQueryError(err)
	}
	affected, _ := result.RowsAffected()
	return &QueryResult{
		ExecTime:     time.Since(start),
		IsSelect:     false,
		AffectedRows: affected,
	}, nil
}

// FormatValue converts a scanned value to a string for display
func FormatValue(v any) string {
	if v == nil {
		return "NULL"
	}

	switch val := v.(type) {
	case []byte:
		return string(val)
	case bool:
		if val {
			return "true"
		}
		return "false"
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", v)
	}
}
