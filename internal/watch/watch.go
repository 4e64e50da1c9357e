// Package watch reports writes to a database file made by other processes.
package watch

import (
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Debounce is the quiet period that folds a burst of writes into one change
const Debounce = 100 * time.Millisecond

// Watcher watches a single file. SQLite rewrites its journal next to the
// database, so the parent directory is watched and events are filtered.
type Watcher struct {
	path    string
	names   map[string]struct{}
	watcher *fsnotify.Watcher
	logger  *slog.Logger

	changes chan struct{}
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

// New starts watching path
func New(path string, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		_ = fw.Close()
		return nil, err
	}

	base := filepath.Base(abs)
	w := &Watcher{
		path: abs,
		names: map[string]struct{}{
			base:          {},
			base + "-wal": {},
		},
		watcher: fw,
		logger:  logger,
		changes: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// Path returns the watched file
func (w *Watcher) Path() string {
	return w.path
}

// Next blocks until the file changes. It returns false once the watcher is closed.
func (w *Watcher) Next() bool {
	select {
	case <-w.done:
		return false
	case <-w.changes:
		return true
	}
}

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.watcher.Close()
		w.wg.Wait()
	})
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if _, ok := w.names[filepath.Base(event.Name)]; !ok {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(Debounce, func() {
				w.logger.Debug("database file changed", "file", event.Name)
				select {
				case w.changes <- struct{}{}:
				default:
					// a change is already pending
				}
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}
