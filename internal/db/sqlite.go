// internal/db/sqlite.go
package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const defaultLogLimit = 200

// SQLiteProvider implements Provider for a single SQLite database file
type SQLiteProvider struct {
	db       *sql.DB
	conn     string
	rowLimit int
	logLimit int
	log      QueryLog
}

// OpenSQLite opens the database a descriptor points at. The file must already
// exist; a browser never creates databases as a side effect of selecting one.
func OpenSQLite(ctx context.Context, d Descriptor, opts Options) (*SQLiteProvider, error) {
	// Strip sqlite:// prefix if present
	path := strings.TrimPrefix(d.Path, "sqlite://")
	if path == "" {
		return nil, WrapConnectionError(fmt.Errorf("empty database path"))
	}
	if path != ":memory:" {
		if _, err := os.Stat(path); err != nil {
			return nil, WrapConnectionError(err)
		}
	}

	db, err := sql.Open("sqlite3", buildDSN(path, d.User, d.Password))
	if err != nil {
		return nil, WrapConnectionError(err)
	}
	if path == ":memory:" {
		// every pooled connection would get its own empty database
		db.SetMaxOpenConns(1)
	}

	// Apply SQLite pragmas for better performance and safety
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, WrapConnectionError(fmt.Errorf("pragma foreign_keys: %w", err))
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 10000"); err != nil {
		db.Close()
		return nil, WrapConnectionError(fmt.Errorf("pragma busy_timeout: %w", err))
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, WrapConnectionError(err)
	}

	logLimit := opts.LogLimit
	if logLimit <= 0 {
		logLimit = defaultLogLimit
	}
	return &SQLiteProvider{
		db:       db,
		conn:     d.Key(),
		rowLimit: opts.RowLimit,
		logLimit: logLimit,
		log:      opts.Log,
	}, nil
}

// buildDSN adds user authentication parameters when credentials are present
func buildDSN(path, user, password string) string {
	if user == "" || path == ":memory:" {
		return path
	}
	q := url.Values{}
	q.Set("_auth", "")
	q.Set("_auth_user", user)
	q.Set("_auth_pass", password)
	return "file:" + path + "?" + q.Encode()
}

// quoteIdent quotes an identifier for interpolation into SQL
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// record stores a statement in the query log; failures to record are not
// failures of the statement itself.
func (p *SQLiteProvider) record(ctx context.Context, query string, start time.Time, err error) {
	if p.log == nil {
		return
	}
	entry := LogEntry{
		Query:    query,
		Time:     start,
		Duration: time.Since(start),
		Status:   "success",
	}
	if err != nil {
		entry.Status = "error"
		entry.Error = err.Error()
	}
	_ = p.log.Record(context.WithoutCancel(ctx), p.conn, entry)
}

// Close closes the database connection
func (p *SQLiteProvider) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

// ListDatabases returns the files of the attached databases, main first
func (p *SQLiteProvider) ListDatabases(ctx context.Context) (files []string, err error) {
	const query = "PRAGMA database_list"
	defer func(start time.Time) { p.record(ctx, query, start, err) }(time.Now())

	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, WrapQueryError(err)
	}
	defer rows.Close()

	for rows.Next() {
		var seq int
		var name, file string
		if err := rows.Scan(&seq, &name, &file); err != nil {
			return nil, WrapQueryError(err)
		}
		files = append(files, file)
	}
	return files, rows.Err()
}

// ListTables returns the user tables ordered by name
func (p *SQLiteProvider) ListTables(ctx context.Context) (tables []Table, err error) {
	const query = "SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name"
	defer func(start time.Time) { p.record(ctx, query, start, err) }(time.Now())

	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, WrapQueryError(err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, WrapQueryError(err)
		}
		tables = append(tables, Table{Name: name})
	}
	return tables, rows.Err()
}

// Version returns the SQLite library version
func (p *SQLiteProvider) Version(ctx context.Context) (version string, err error) {
	const query = "SELECT sqlite_version()"
	defer func(start time.Time) { p.record(ctx, query, start, err) }(time.Now())

	if err := p.db.QueryRowContext(ctx, query).Scan(&version); err != nil {
		return "", WrapQueryError(err)
	}
	return version, nil
}

// Logs returns the most recent statements run on this database
func (p *SQLiteProvider) Logs(ctx context.Context) ([]LogEntry, error) {
	if p.log == nil {
		return nil, nil
	}
	return p.log.Recent(ctx, p.conn, p.logLimit)
}

// TableCreateScript returns the CREATE statement of a table
func (p *SQLiteProvider) TableCreateScript(ctx context.Context, table string) (scripts []string, err error) {
	const query = "SELECT sql FROM sqlite_master WHERE type='table' AND name = ?"
	defer func(start time.Time) { p.record(ctx, query, start, err) }(time.Now())

	rows, err := p.db.QueryContext(ctx, query, table)
	if err != nil {
		return nil, WrapQueryError(err)
	}
	defer rows.Close()

	for rows.Next() {
		var script sql.NullString
		if err := rows.Scan(&script); err != nil {
			return nil, WrapQueryError(err)
		}
		scripts = append(scripts, script.String)
	}
	return scripts, rows.Err()
}

// TableColumns returns detailed column metadata for a table
func (p *SQLiteProvider) TableColumns(ctx context.Context, table string) (columns []Column, err error) {
	const query = `SELECT cid, name, type, "notnull", dflt_value, pk FROM pragma_table_info(?)`
	defer func(start time.Time) { p.record(ctx, query, start, err) }(time.Now())

	rows, err := p.db.QueryContext(ctx, query, table)
	if err != nil {
		return nil, WrapQueryError(err)
	}
	defer rows.Close()

	for rows.Next() {
		var cid int
		var name string
		var dataType string
		var notNull int
		var dfltValue sql.NullString
		var pk int
		if err := rows.Scan(&cid, &name, &dataType, &notNull, &dfltValue, &pk); err != nil {
			return nil, WrapQueryError(err)
		}

		key := ""
		if pk > 0 {
			key = "PRI"
		}

		columns = append(columns, Column{
			Name:     name,
			Type:     dataType,
			Nullable: notNull == 0,
			Default:  dfltValue.String,
			Key:      key,
		})
	}
	return columns, rows.Err()
}

// TableValues returns the rows of a table with raw values in column order.
// BLOB values stay []byte so callers can tell them apart.
func (p *SQLiteProvider) TableValues(ctx context.Context, table string) (result []RawRow, err error) {
	query := "SELECT * FROM " + quoteIdent(table)
	var args []any
	if p.rowLimit > 0 {
		query += " LIMIT ?"
		args = append(args, p.rowLimit)
	}
	defer func(start time.Time) { p.record(ctx, query, start, err) }(time.Now())

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, WrapQueryError(err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, WrapQueryError(err)
	}
	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, WrapQueryError(err)
		}
		row := make(RawRow, len(columns))
		for i, name := range columns {
			row[i] = Field{Name: name, Value: values[i]}
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// Execute runs a query and returns results
func (p *SQLiteProvider) Execute(ctx context.Context, query string) (result *QueryResult, err error) {
	defer func(start time.Time) { p.record(ctx, query, start, err) }(time.Now())
	return executeQuery(ctx, p.db, query)
}
