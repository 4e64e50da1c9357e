// internal/config/config.go
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
)

// MasterKey supplies the password encryption key. It is only called when a
// connection actually carries a password.
var MasterKey KeySource = KeyringMasterKey

// Config represents the application configuration
type Config struct {
	DefaultConnection   string       `toml:"default_connection"`
	LogPollSeconds      int          `toml:"log_poll_seconds"`
	QueryTimeoutSeconds int          `toml:"query_timeout_seconds"`
	RowLimit            int          `toml:"row_limit"`
	LogLimit            int          `toml:"log_limit"`
	WatchFiles          bool         `toml:"watch_files"`
	Layout              Layout       `toml:"layout"`
	Connections         []Connection `toml:"connections"`
	Theme               Theme        `toml:"theme_colors"`
	Keys                KeyMap       `toml:"keys"`

	path string
}

// Layout holds the sidebar geometry, in terminal cells
type Layout struct {
	SidebarWidth int `toml:"sidebar_width"`
	MinSidebar   int `toml:"min_sidebar"`
	MaxSidebar   int `toml:"max_sidebar"`
}

// Theme defines the color palette
type Theme struct {
	TextPrimary   string `toml:"text_primary"`
	TextSecondary string `toml:"text_secondary"`
	TextFaint     string `toml:"text_faint"`
	Accent        string `toml:"accent"`
	Success       string `toml:"success"`
	Error         string `toml:"error"`
	Highlight     string `toml:"highlight"`
	BorderColor   string `toml:"border_color"`
	SyntaxStyle   string `toml:"syntax_style"`
}

// KeyMap defines key bindings
type KeyMap struct {
	Refresh       []string `toml:"refresh"`
	Exit          []string `toml:"exit"`
	NextView      []string `toml:"next_view"`
	NextTable     []string `toml:"next_table"`
	PrevTable     []string `toml:"prev_table"`
	NextConn      []string `toml:"next_connection"`
	GrowSidebar   []string `toml:"grow_sidebar"`
	ShrinkSidebar []string `toml:"shrink_sidebar"`
}

// Connection is a stored database connection
type Connection struct {
	ID     string `toml:"id"`
	Name   string `toml:"name"`
	Driver string `toml:"driver"` // sqlite
	Path   string `toml:"path"`
	User   string `toml:"user,omitempty"`
	// Password is kept in memory for usage
	Password string `toml:"-"`
	// EncryptedPassword is the one persisted in the config file
	EncryptedPassword string `toml:"password,omitempty"`
}

// DefaultConfig returns a config with default values
func DefaultConfig() *Config {
	return &Config{
		LogPollSeconds:      5,
		QueryTimeoutSeconds: 30,
		RowLimit:            1000,
		LogLimit:            200,
		Layout: Layout{
			SidebarWidth: 30,
			MinSidebar:   15,
			MaxSidebar:   60,
		},
		Connections: []Connection{},
		Theme: Theme{
			// Nord
			TextPrimary:   "#D8DEE9",
			TextSecondary: "#81A1C1",
			TextFaint:     "#4C566A",
			Accent:        "#88C0D0",
			Success:       "#A3BE8C",
			Error:         "#BF616A",
			Highlight:     "#8FBCBB",
			BorderColor:   "#4C566A",
			SyntaxStyle:   "nord",
		},
		Keys: KeyMap{
			Refresh:       []string{"r", "ctrl+r"},
			Exit:          []string{"ctrl+c", "q"},
			NextView:      []string{"tab"},
			NextTable:     []string{"j", "down"},
			PrevTable:     []string{"k", "up"},
			NextConn:      []string{"c"},
			GrowSidebar:   []string{"]"},
			ShrinkSidebar: []string{"["},
		},
	}
}

// ConfigPath returns the XDG-compliant config file path
func ConfigPath() (string, error) {
	return xdg.ConfigFile("ezlite/config.toml")
}

// Load loads the config from the default location, creating it on first run
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom loads the config at path. A missing file yields (and writes) the defaults.
func LoadFrom(path string) (*Config, error) {
	cfg, err := Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		// First run: create default
		cfg = DefaultConfig()
		cfg.path = path
		if err := cfg.Save(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	if cfg.backfill() {
		// Persist defaults so user can see/edit them; in-memory defaults still apply if this fails
		_ = cfg.Save()
	}
	return cfg, nil
}

// Read decodes the config at path without creating or rewriting it
func Read(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}
	cfg.path = path

	if err := cfg.decryptPasswords(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// backfill populates defaults for missing fields, reporting whether anything changed
func (c *Config) backfill() bool {
	defaults := DefaultConfig()
	updated := false

	if c.LogPollSeconds <= 0 {
		c.LogPollSeconds = defaults.LogPollSeconds
		updated = true
	}
	if c.QueryTimeoutSeconds <= 0 {
		c.QueryTimeoutSeconds = defaults.QueryTimeoutSeconds
		updated = true
	}
	if c.LogLimit <= 0 {
		c.LogLimit = defaults.LogLimit
		updated = true
	}
	if c.Layout.MaxSidebar == 0 {
		c.Layout = defaults.Layout
		updated = true
	}
	if c.Theme.TextPrimary == "" {
		c.Theme = defaults.Theme
		updated = true
	}
	if len(c.Keys.Refresh) == 0 {
		c.Keys = defaults.Keys
		updated = true
	}
	return updated
}

func (c *Config) decryptPasswords() error {
	needsKey := false
	for _, conn := range c.Connections {
		if conn.EncryptedPassword != "" {
			needsKey = true
		}
	}
	if !needsKey {
		return nil
	}

	key, err := MasterKey()
	if err != nil {
		// Connections stay usable without their passwords
		return nil
	}
	for i := range c.Connections {
		if c.Connections[i].EncryptedPassword == "" {
			continue
		}
		if decrypted, err := Decrypt(c.Connections[i].EncryptedPassword, key); err == nil {
			c.Connections[i].Password = decrypted
		}
	}
	return nil
}

// Path returns the file the config was loaded from
func (c *Config) Path() string {
	return c.path
}

// Save writes the config to disk
func (c *Config) Save() error {
	path := c.path
	if path == "" {
		var err error
		if path, err = ConfigPath(); err != nil {
			return err
		}
		c.path = path
	}

	// Encrypt passwords before saving
	needsKey := false
	for _, conn := range c.Connections {
		if conn.Password != "" {
			needsKey = true
		}
	}
	if needsKey {
		key, err := MasterKey()
		if err != nil {
			return err
		}
		for i := range c.Connections {
			if c.Connections[i].Password == "" {
				continue
			}
			encrypted, err := Encrypt(c.Connections[i].Password, key)
			if err != nil {
				return err
			}
			c.Connections[i].EncryptedPassword = encrypted
		}
	}

	// Ensure directory exists with secure permissions
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	// Create/truncate file with secure permissions (owner read/write only)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(c)
}
