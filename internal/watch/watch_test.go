package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nextWithin(w *Watcher, d time.Duration) bool {
	got := make(chan bool, 1)
	go func() { got <- w.Next() }()
	select {
	case ok := <-got:
		return ok
	case <-time.After(d):
		return false
	}
}

func TestWatcherReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.db")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0600))

	w, err := New(path, nil)
	require.NoError(t, err)
	defer w.Close()

	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte{byte('b' + i)}, 0600))
	}
	assert.True(t, nextWithin(w, 2*time.Second))
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.db")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0600))

	w, err := New(path, nil)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.db"), []byte("x"), 0600))
	assert.False(t, nextWithin(w, 5*Debounce))
}

func TestNextReturnsFalseAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.db")
	require.NoError(t, os.WriteFile(path, nil, 0600))

	w, err := New(path, nil)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	assert.False(t, w.Next())
}
