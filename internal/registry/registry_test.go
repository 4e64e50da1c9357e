package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhath/ezlite/internal/db"
)

func TestListMissingFileIsEmpty(t *testing.T) {
	r := New(filepath.Join(t.TempDir(), "config.toml"))

	descs, err := r.List()
	require.NoError(t, err)
	assert.Empty(t, descs)
}

func TestListUnreadableConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("connections = [[[ not toml"), 0600))

	_, err := New(path).List()
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestAddThenList(t *testing.T) {
	r := New(filepath.Join(t.TempDir(), "config.toml"))

	added, err := r.Add(db.Descriptor{Path: "/data/a.db"})
	require.NoError(t, err)
	assert.NotEmpty(t, added.ID)
	assert.Equal(t, "a.db", added.Name)
	assert.Equal(t, db.SQLite, added.Driver)

	_, err = r.Add(db.Descriptor{Name: "b", Path: "/data/b.db"})
	require.NoError(t, err)

	descs, err := r.List()
	require.NoError(t, err)
	require.Len(t, descs, 2)
	assert.Equal(t, added, descs[0])
	assert.Equal(t, "b", descs[1].Name)
}

func TestAddRejectsDuplicateNames(t *testing.T) {
	r := New(filepath.Join(t.TempDir(), "config.toml"))

	_, err := r.Add(db.Descriptor{Name: "main", Path: "/data/a.db"})
	require.NoError(t, err)
	_, err = r.Add(db.Descriptor{Name: "main", Path: "/data/b.db"})
	assert.Error(t, err)

	_, err = r.Add(db.Descriptor{Name: "nopath"})
	assert.Error(t, err)
}

func TestSelectOnlyRecordsIntent(t *testing.T) {
	r := New(filepath.Join(t.TempDir(), "config.toml"))

	_, ok := r.Selected()
	assert.False(t, ok)

	d := db.Descriptor{Name: "x", Path: "/nowhere/x.db"}
	r.Select(d)
	got, ok := r.Selected()
	require.True(t, ok)
	assert.Equal(t, d, got)

	descs, err := r.List()
	require.NoError(t, err)
	assert.Empty(t, descs)
}
