// internal/registry/registry.go
package registry

import (
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"github.com/google/uuid"

	"github.com/nhath/ezlite/internal/config"
	"github.com/nhath/ezlite/internal/db"
)

// ErrUnavailable reports that the stored connections could not be read
var ErrUnavailable = errors.New("connection registry unavailable")

// Registry holds the known connection descriptors. The list lives in the
// config file; the selection only lives in memory.
type Registry struct {
	path string

	mu       sync.Mutex
	selected *db.Descriptor
}

// New returns a registry backed by the config file at path
func New(path string) *Registry {
	return &Registry{path: path}
}

// List returns the stored descriptors in file order. A missing config file
// is an empty list.
func (r *Registry) List() ([]db.Descriptor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cfg, err := config.Read(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	descs := make([]db.Descriptor, 0, len(cfg.Connections))
	for _, conn := range cfg.Connections {
		descs = append(descs, toDescriptor(conn))
	}
	return descs, nil
}

// Add persists a new descriptor, assigning an ID when it has none
func (r *Registry) Add(d db.Descriptor) (db.Descriptor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if d.Path == "" {
		return d, fmt.Errorf("connection %q has no database path", d.Name)
	}
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.Driver == "" {
		d.Driver = db.SQLite
	}
	if d.Name == "" {
		d.Name = d.Base()
	}

	cfg, err := config.LoadFrom(r.path)
	if err != nil {
		return d, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if err := cfg.AddConnection(fromDescriptor(d)); err != nil {
		return d, err
	}
	return d, nil
}

// Select marks d as the intended connection. It does not open anything.
func (r *Registry) Select(d db.Descriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.selected = &d
}

// Selected returns the descriptor last passed to Select
func (r *Registry) Selected() (db.Descriptor, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.selected == nil {
		return db.Descriptor{}, false
	}
	return *r.selected, true
}

func toDescriptor(c config.Connection) db.Descriptor {
	driver := db.DriverType(c.Driver)
	if driver == "" {
		driver = db.SQLite
	}
	return db.Descriptor{
		ID:       c.ID,
		Name:     c.Name,
		Driver:   driver,
		Path:     c.Path,
		User:     c.User,
		Password: c.Password,
	}
}

func fromDescriptor(d db.Descriptor) config.Connection {
	return config.Connection{
		ID:       d.ID,
		Name:     d.Name,
		Driver:   string(d.Driver),
		Path:     d.Path,
		User:     d.User,
		Password: d.Password,
	}
}
