// internal/history/store.go
package history

import (
	"context"
	"database/sql"
	"time"

	"github.com/adrg/xdg"
	_ "github.com/mattn/go-sqlite3"

	"github.com/nhath/ezlite/internal/db"
)

// Store persists the statements providers run, per connection
type Store struct {
	db *sql.DB
}

// NewStore opens the history store in the XDG data directory
func NewStore() (*Store, error) {
	dbPath, err := xdg.DataFile("ezlite/history.db")
	if err != nil {
		return nil, err
	}
	return Open(dbPath)
}

// Open opens (and creates if needed) a history store at path
func Open(dbPath string) (*Store, error) {
	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	// Providers record from several goroutines at once
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		conn.Close()
		return nil, err
	}

	// Create table and indexes
	_, err = conn.Exec(`
		CREATE TABLE IF NOT EXISTS query_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			connection TEXT NOT NULL,
			query TEXT NOT NULL,
			executed_at TIMESTAMP NOT NULL,
			duration_ns INTEGER NOT NULL,
			status TEXT NOT NULL,
			error_message TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_query_log_connection ON query_log(connection);
		CREATE INDEX IF NOT EXISTS idx_query_log_executed_at ON query_log(executed_at);
	`)
	if err != nil {
		conn.Close()
		return nil, err
	}

	store := &Store{db: conn}
	// Don't fail on cleanup error
	_ = store.cleanup()
	return store, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts a statement into the log of a connection
func (s *Store) Record(ctx context.Context, connection string, entry db.LogEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO query_log (connection, query, executed_at, duration_ns, status, error_message)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		connection,
		entry.Query,
		entry.Time.UTC(),
		int64(entry.Duration),
		entry.Status,
		entry.Error,
	)
	return err
}

// Recent returns the latest entries of a connection, newest first
func (s *Store) Recent(ctx context.Context, connection string, limit int) ([]db.LogEntry, error) {
	entries, err := s.List(ctx, connection, limit, 0)
	if err != nil {
		return nil, err
	}
	logs := make([]db.LogEntry, len(entries))
	for i := range entries {
		logs[i] = entries[i].LogEntry()
	}
	return logs, nil
}

// List returns paginated entries for a connection, newest first
func (s *Store) List(ctx context.Context, connection string, limit, offset int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, connection, query, executed_at, duration_ns, status, error_message
		FROM query_log
		WHERE connection = ?
		ORDER BY id DESC
		LIMIT ? OFFSET ?
	`, connection, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var durationNs int64
		var errMsg sql.NullString
		if err := rows.Scan(&e.ID, &e.Connection, &e.Query, &e.ExecutedAt,
			&durationNs, &e.Status, &errMsg); err != nil {
			return nil, err
		}
		e.Duration = time.Duration(durationNs)
		e.ErrorMessage = errMsg.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Count returns the total number of entries for a connection
func (s *Store) Count(ctx context.Context, connection string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM query_log WHERE connection = ?
	`, connection).Scan(&count)
	return count, err
}

// cleanup removes entries older than 90 days
func (s *Store) cleanup() error {
	_, err := s.db.Exec(`
		DELETE FROM query_log
		WHERE executed_at < ?
	`, time.Now().UTC().AddDate(0, 0, -90))
	return err
}
