// internal/history/entry.go
package history

import (
	"time"

	"github.com/nhath/ezlite/internal/db"
)

// Entry represents a single statement recorded for a connection
type Entry struct {
	ID           int64
	Connection   string
	Query        string
	ExecutedAt   time.Time
	Duration     time.Duration
	Status       string `json:"status"` // "success", "error"
	ErrorMessage string `json:"error_message,omitempty"`
}

// QueryPreview returns a truncated version of the query
func (e *Entry) QueryPreview(maxLen int) string {
	q := e.Query
	if len(q) > maxLen {
		return q[:maxLen-3] + "..."
	}
	return q
}

// LogEntry converts the stored entry to the provider log type
func (e *Entry) LogEntry() db.LogEntry {
	return db.LogEntry{
		Query:    e.Query,
		Time:     e.ExecutedAt,
		Duration: e.Duration,
		Status:   e.Status,
		Error:    e.ErrorMessage,
	}
}
