package viewstate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhath/ezlite/internal/db"
	"github.com/nhath/ezlite/internal/layout"
)

// fakeProvider serves canned data. A call whose key has a gate blocks
// until the gate is released.
type fakeProvider struct {
	path string

	mu        sync.Mutex
	databases []string
	tables    []db.Table
	columns   map[string][]db.Column
	values    map[string][]db.RawRow
	logs      []db.LogEntry
	fail      map[string]error
	gates     map[string]chan struct{}
	calls     map[string]int
	closed    bool
	execute   func(query string) (*db.QueryResult, error)
}

func newFakeProvider(path string, tables ...string) *fakeProvider {
	p := &fakeProvider{
		path:    path,
		columns: map[string][]db.Column{},
		values:  map[string][]db.RawRow{},
		fail:    map[string]error{},
		gates:   map[string]chan struct{}{},
		calls:   map[string]int{},
	}
	for _, name := range tables {
		p.tables = append(p.tables, db.Table{Name: name})
		p.columns[name] = []db.Column{{Name: "id", Type: "INTEGER", Key: "PRI"}, {Name: name + "_name", Type: "TEXT"}}
		p.values[name] = []db.RawRow{
			{{Name: "id", Value: int64(1)}, {Name: name + "_name", Value: name + "-1"}},
			{{Name: "id", Value: int64(2)}, {Name: name + "_name", Value: name + "-2"}},
		}
	}
	return p
}

// gate makes calls for key block until the returned function is called
func (p *fakeProvider) gate(key string) (release func()) {
	ch := make(chan struct{})
	p.mu.Lock()
	p.gates[key] = ch
	p.mu.Unlock()
	var once sync.Once
	return func() { once.Do(func() { close(ch) }) }
}

func (p *fakeProvider) enter(ctx context.Context, key string) error {
	p.mu.Lock()
	p.calls[key]++
	gate := p.gates[key]
	err := p.fail[key]
	p.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (p *fakeProvider) count(key string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[key]
}

func (p *fakeProvider) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	keys := make([]string, 0, len(p.calls))
	for key := range p.calls {
		keys = append(keys, key)
	}
	return keys
}

func (p *fakeProvider) resetCounts() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = map[string]int{}
}

func (p *fakeProvider) setLogs(logs []db.LogEntry) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.logs = logs
}

func (p *fakeProvider) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *fakeProvider) ListDatabases(ctx context.Context) ([]string, error) {
	if err := p.enter(ctx, "databases"); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.databases != nil {
		return p.databases, nil
	}
	return []string{p.path}, nil
}

func (p *fakeProvider) ListTables(ctx context.Context) ([]db.Table, error) {
	if err := p.enter(ctx, "tables"); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]db.Table(nil), p.tables...), nil
}

func (p *fakeProvider) Version(ctx context.Context) (string, error) {
	if err := p.enter(ctx, "version"); err != nil {
		return "", err
	}
	return "3.45.0", nil
}

func (p *fakeProvider) Logs(ctx context.Context) ([]db.LogEntry, error) {
	if err := p.enter(ctx, "logs"); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]db.LogEntry(nil), p.logs...), nil
}

func (p *fakeProvider) TableCreateScript(ctx context.Context, table string) ([]string, error) {
	if err := p.enter(ctx, "script:"+table); err != nil {
		return nil, err
	}
	return []string{fmt.Sprintf("CREATE TABLE %s (id INTEGER PRIMARY KEY)", table)}, nil
}

func (p *fakeProvider) TableColumns(ctx context.Context, table string) ([]db.Column, error) {
	if err := p.enter(ctx, "columns:"+table); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.columns[table], nil
}

func (p *fakeProvider) TableValues(ctx context.Context, table string) ([]db.RawRow, error) {
	if err := p.enter(ctx, "values:"+table); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.values[table], nil
}

func (p *fakeProvider) Execute(ctx context.Context, query string) (*db.QueryResult, error) {
	if err := p.enter(ctx, "execute"); err != nil {
		return nil, err
	}
	if p.execute != nil {
		return p.execute(query)
	}
	return &db.QueryResult{Columns: []string{"q"}, Rows: [][]string{{query}}, RowCount: 1, IsSelect: true}, nil
}

func (p *fakeProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// fakeOpener hands out providers by path
type fakeOpener struct {
	mu        sync.Mutex
	providers map[string]*fakeProvider
	gates     map[string]chan struct{}
	opened    []string
}

func newFakeOpener(providers ...*fakeProvider) *fakeOpener {
	o := &fakeOpener{providers: map[string]*fakeProvider{}, gates: map[string]chan struct{}{}}
	for _, p := range providers {
		o.providers[p.path] = p
	}
	return o
}

func (o *fakeOpener) gate(path string) (release func()) {
	ch := make(chan struct{})
	o.mu.Lock()
	o.gates[path] = ch
	o.mu.Unlock()
	var once sync.Once
	return func() { once.Do(func() { close(ch) }) }
}

func (o *fakeOpener) Open(ctx context.Context, d db.Descriptor) (db.Provider, error) {
	o.mu.Lock()
	o.opened = append(o.opened, d.Path)
	p, ok := o.providers[d.Path]
	gate := o.gates[d.Path]
	o.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if !ok {
		return nil, db.WrapConnectionError(fmt.Errorf("open %s: no such file", d.Path))
	}
	return p, nil
}

func (o *fakeOpener) openedPaths() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.opened...)
}

// fakeRegistry keeps descriptors in memory
type fakeRegistry struct {
	mu       sync.Mutex
	descs    []db.Descriptor
	err      error
	selected []db.Descriptor
}

func (r *fakeRegistry) List() ([]db.Descriptor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	return append([]db.Descriptor(nil), r.descs...), nil
}

func (r *fakeRegistry) Add(d db.Descriptor) (db.Descriptor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d.ID == "" {
		d.ID = fmt.Sprintf("id-%d", len(r.descs)+1)
	}
	for _, known := range r.descs {
		if known.Name == d.Name {
			return d, errors.New("connection already exists: " + d.Name)
		}
	}
	r.descs = append(r.descs, d)
	return d, nil
}

func (r *fakeRegistry) Select(d db.Descriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.selected = append(r.selected, d)
}

// fakeWatcher delivers changes pushed by the test
type fakeWatcher struct {
	changes chan struct{}
	done    chan struct{}
	closed  atomic.Bool
}

func newFakeWatcher() *fakeWatcher {
	return &fakeWatcher{changes: make(chan struct{}, 1), done: make(chan struct{})}
}

func (w *fakeWatcher) Next() bool {
	select {
	case <-w.done:
		return false
	case <-w.changes:
		return true
	}
}

func (w *fakeWatcher) Close() error {
	if w.closed.CompareAndSwap(false, true) {
		close(w.done)
	}
	return nil
}

func descriptor(path string) db.Descriptor {
	return db.Descriptor{ID: path, Name: path, Driver: db.SQLite, Path: path}
}

// harness plays the part of the tea program: commands run in goroutines
// and their messages are fed back through Update on the test goroutine.
type harness struct {
	t    *testing.T
	c    *Coordinator
	msgs chan tea.Msg
	seen []tea.Msg
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	if opts.PollInterval == 0 {
		opts.PollInterval = time.Hour
	}
	if opts.Layout == nil {
		width := 100
		opts.Layout = layout.New(layout.Bounds{Sidebar: 30, Min: 15, Max: 60}, func() (int, bool) { return width, true })
	}
	h := &harness{t: t, c: New(opts), msgs: make(chan tea.Msg, 1024)}
	t.Cleanup(h.c.Teardown)
	return h
}

func (h *harness) run(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	go func() {
		h.deliver(cmd())
	}()
}

func (h *harness) deliver(msg tea.Msg) {
	switch msg := msg.(type) {
	case nil:
	case tea.BatchMsg:
		for _, cmd := range msg {
			h.run(cmd)
		}
	default:
		h.msgs <- msg
	}
}

func (h *harness) init() {
	h.run(h.c.Init())
}

func (h *harness) send(msg tea.Msg) {
	h.run(h.c.Update(msg))
}

// until processes messages until cond holds. cond is also re-checked
// periodically since some conditions turn true without a message.
func (h *harness) until(cond func(s Snapshot) bool) Snapshot {
	h.t.Helper()
	timeout := time.After(3 * time.Second)
	for {
		if s := h.c.Snapshot(); cond(s) {
			return s
		}
		select {
		case msg := <-h.msgs:
			h.seen = append(h.seen, msg)
			h.send(msg)
		case <-time.After(5 * time.Millisecond):
		case <-timeout:
			h.t.Fatalf("condition not reached; state %s", h.c.Snapshot().State)
		}
	}
}

// drain processes messages for d
func (h *harness) drain(d time.Duration) {
	deadline := time.After(d)
	for {
		select {
		case msg := <-h.msgs:
			h.seen = append(h.seen, msg)
			h.send(msg)
		case <-deadline:
			return
		}
	}
}

func (h *harness) ready() Snapshot {
	h.t.Helper()
	return h.until(func(s Snapshot) bool {
		return s.State == Ready && !s.IsLoading && s.Rows != nil
	})
}

func seenOf[T any](h *harness) []T {
	var out []T
	for _, msg := range h.seen {
		if m, ok := msg.(T); ok {
			out = append(out, m)
		}
	}
	return out
}
