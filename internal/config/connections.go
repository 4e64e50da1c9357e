// internal/config/connections.go
package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// GetConnection retrieves a connection by name
func (c *Config) GetConnection(name string) (*Connection, error) {
	for i := range c.Connections {
		if c.Connections[i].Name == name {
			return &c.Connections[i], nil
		}
	}
	return nil, fmt.Errorf("connection not found: %s", name)
}

// AddConnection adds a new connection to the config and saves it
func (c *Config) AddConnection(conn Connection) error {
	for _, existing := range c.Connections {
		if existing.Name == conn.Name {
			return fmt.Errorf("connection already exists: %s", conn.Name)
		}
	}
	c.Connections = append(c.Connections, conn)
	return c.Save()
}

// DeleteConnection removes a connection from the config
func (c *Config) DeleteConnection(name string) error {
	for i := range c.Connections {
		if c.Connections[i].Name == name {
			c.Connections = append(c.Connections[:i], c.Connections[i+1:]...)
			return c.Save()
		}
	}
	return fmt.Errorf("connection not found: %s", name)
}

// DSN renders the connection as a URI for display
func (conn *Connection) DSN() string {
	switch conn.Driver {
	case "sqlite", "":
		if conn.User != "" {
			return fmt.Sprintf("sqlite://%s@%s", conn.User, conn.Path)
		}
		return fmt.Sprintf("sqlite://%s", conn.Path)
	default:
		return ""
	}
}

// ParseDSN parses a connection string or bare file path into a Connection.
// An empty name falls back to the file name.
func ParseDSN(name, dsn string) (Connection, error) {
	conn := Connection{Name: name, Driver: "sqlite"}

	switch {
	case strings.HasPrefix(dsn, "sqlite://"), strings.HasPrefix(dsn, "sqlite3://"):
		u, err := url.Parse(dsn)
		if err != nil {
			return conn, err
		}
		if u.User != nil {
			conn.User = u.User.Username()
			conn.Password, _ = u.User.Password()
		}
		// sqlite://rel/path.db parses "rel" as the host
		conn.Path = u.Host + u.Path
	case strings.HasPrefix(dsn, "file:"):
		conn.Path = strings.TrimPrefix(dsn, "file:")
		if i := strings.IndexByte(conn.Path, '?'); i >= 0 {
			conn.Path = conn.Path[:i]
		}
	case strings.Contains(dsn, "://"):
		return conn, fmt.Errorf("unsupported connection string: %s", dsn)
	default:
		conn.Path = dsn
	}

	if conn.Path == "" {
		return conn, fmt.Errorf("connection string has no file path: %s", dsn)
	}
	if conn.Name == "" {
		conn.Name = filepath.Base(conn.Path)
	}
	return conn, nil
}
