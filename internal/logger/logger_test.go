package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountsWarningsAndErrors(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, slog.LevelInfo)

	l.Debug("hidden")
	l.Info("hello", "table", "users")
	l.With("component", "poller").Warn("slow")
	l.Error("boom")

	warn, errs := l.Counts()
	assert.Equal(t, int64(1), warn)
	assert.Equal(t, int64(1), errs)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 3)
	var rec map[string]any
	require.NoError(t, json.Unmarshal(lines[1], &rec))
	assert.Equal(t, "slow", rec["msg"])
	assert.Equal(t, "poller", rec["component"])
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ezlite.log")
	l, err := New(Options{Debug: true, Path: path})
	require.NoError(t, err)

	l.Debug("debug line")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "debug line")
	assert.Equal(t, path, l.Path)
}

func TestDiscard(t *testing.T) {
	l := Discard()
	l.Error("ignored")
	assert.NoError(t, l.Close())
}
