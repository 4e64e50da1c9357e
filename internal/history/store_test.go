package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhath/ezlite/internal/db"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreRecentNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	start := time.Now()
	for i, q := range []string{"SELECT 1", "SELECT 2", "SELECT 3"} {
		err := store.Record(ctx, "sqlite:a.db", db.LogEntry{
			Query:    q,
			Time:     start.Add(time.Duration(i) * time.Second),
			Duration: 1500 * time.Microsecond,
			Status:   "success",
		})
		require.NoError(t, err)
	}
	require.NoError(t, store.Record(ctx, "sqlite:b.db", db.LogEntry{Query: "SELECT 9", Time: start, Status: "success"}))

	logs, err := store.Recent(ctx, "sqlite:a.db", 2)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "SELECT 3", logs[0].Query)
	assert.Equal(t, "SELECT 2", logs[1].Query)
	assert.Equal(t, 1500*time.Microsecond, logs[0].Duration)

	count, err := store.Count(ctx, "sqlite:a.db")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestStoreRecordsErrors(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	require.NoError(t, store.Record(ctx, "c", db.LogEntry{
		Query:  "SELEC",
		Time:   time.Now(),
		Status: "error",
		Error:  "syntax error",
	}))

	entries, err := store.List(ctx, "c", 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "error", entries[0].Status)
	assert.Equal(t, "syntax error", entries[0].ErrorMessage)
}

func TestQueryPreview(t *testing.T) {
	e := Entry{Query: "SELECT * FROM a_very_long_table_name"}
	assert.Equal(t, "SELECT ...", e.QueryPreview(10))
	assert.Equal(t, e.Query, e.QueryPreview(100))
}
