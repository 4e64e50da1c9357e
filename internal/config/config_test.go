package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedKey(t *testing.T) {
	t.Helper()
	key := bytes.Repeat([]byte{7}, 32)
	prev := MasterKey
	MasterKey = func() ([]byte, error) { return key, nil }
	t.Cleanup(func() { MasterKey = prev })
}

func TestLoadFromCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ezlite", "config.toml")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.LogPollSeconds)
	assert.Equal(t, 30, cfg.Layout.SidebarWidth)
	assert.Empty(t, cfg.Connections)
	assert.Equal(t, path, cfg.Path())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestLoadFromBackfillsMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
default_connection = "main"

[[connections]]
id = "1"
name = "main"
driver = "sqlite"
path = "/tmp/main.db"
`), 0600))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "main", cfg.DefaultConnection)
	assert.Equal(t, 5, cfg.LogPollSeconds)
	assert.Equal(t, DefaultConfig().Keys, cfg.Keys)
	require.Len(t, cfg.Connections, 1)
	assert.Equal(t, "/tmp/main.db", cfg.Connections[0].Path)
}

func TestReadMissingFileFails(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestPasswordsAreEncryptedOnDisk(t *testing.T) {
	fixedKey(t)
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	require.NoError(t, cfg.AddConnection(Connection{ID: "1", Name: "secure", Driver: "sqlite", Path: "/tmp/s.db", User: "admin", Password: "hunter2"}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "hunter2")

	reloaded, err := Read(path)
	require.NoError(t, err)
	conn, err := reloaded.GetConnection("secure")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", conn.Password)
}

func TestAddConnectionRejectsDuplicates(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)

	require.NoError(t, cfg.AddConnection(Connection{Name: "a", Path: "a.db"}))
	assert.Error(t, cfg.AddConnection(Connection{Name: "a", Path: "b.db"}))
	require.NoError(t, cfg.DeleteConnection("a"))
	_, err = cfg.GetConnection("a")
	assert.Error(t, err)
}

func TestEncryptDecrypt(t *testing.T) {
	key := bytes.Repeat([]byte{1}, 32)
	enc, err := Encrypt("secret", key)
	require.NoError(t, err)
	assert.NotEqual(t, "secret", enc)

	dec, err := Decrypt(enc, key)
	require.NoError(t, err)
	assert.Equal(t, "secret", dec)

	_, err = Decrypt(enc, bytes.Repeat([]byte{2}, 32))
	assert.Error(t, err)
}

func TestParseDSN(t *testing.T) {
	tests := []struct {
		dsn      string
		name     string
		wantPath string
		wantUser string
		wantErr  bool
	}{
		{dsn: "/data/app.db", wantPath: "/data/app.db", name: "app.db"},
		{dsn: "sqlite:///data/app.db", wantPath: "/data/app.db", name: "app.db"},
		{dsn: "sqlite://admin:pw@/data/app.db", wantPath: "/data/app.db", wantUser: "admin", name: "app.db"},
		{dsn: "file:test.db?cache=shared", wantPath: "test.db", name: "test.db"},
		{dsn: "postgres://u@h/db", wantErr: true},
		{dsn: "sqlite://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.dsn, func(t *testing.T) {
			conn, err := ParseDSN("", tt.dsn)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPath, conn.Path)
			assert.Equal(t, tt.wantUser, conn.User)
			assert.Equal(t, tt.name, conn.Name)
			assert.Equal(t, "sqlite", conn.Driver)
		})
	}
}
