package logger

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/adrg/xdg"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configure the file logger
type Options struct {
	Debug bool
	// Path defaults to $XDG_STATE_HOME/ezlite/ezlite.log
	Path string
}

// Logger is a slog logger writing JSON lines into a rotating file. It also
// counts warnings and errors for the status bar.
type Logger struct {
	*slog.Logger
	Path string

	writer *lumberjack.Logger
	warns  *atomic.Int64
	errs   *atomic.Int64
}

// DefaultPath returns the XDG state location of the log file
func DefaultPath() (string, error) {
	return xdg.StateFile("ezlite/ezlite.log")
}

// New opens the log file and returns a logger over it
func New(opts Options) (*Logger, error) {
	path := opts.Path
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}

	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}

	writer := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     7, // days
		Compress:   true,
	}

	l := newLogger(writer, level)
	l.Path = path
	l.writer = writer
	return l, nil
}

func newLogger(w io.Writer, level slog.Level) *Logger {
	h := &countingHandler{
		inner: slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}),
		warns: new(atomic.Int64),
		errs:  new(atomic.Int64),
	}
	return &Logger{Logger: slog.New(h), warns: h.warns, errs: h.errs}
}

// Discard returns a logger that drops everything
func Discard() *Logger {
	return newLogger(io.Discard, slog.LevelError+1)
}

// Counts returns the number of warnings and errors logged so far
func (l *Logger) Counts() (warn, err int64) {
	return l.warns.Load(), l.errs.Load()
}

// Close closes the log file
func (l *Logger) Close() error {
	if l.writer == nil {
		return nil
	}
	return l.writer.Close()
}

// countingHandler wraps another handler and counts WARN and ERROR records.
type countingHandler struct {
	inner slog.Handler
	warns *atomic.Int64
	errs  *atomic.Int64
}

func (h *countingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *countingHandler) Handle(ctx context.Context, r slog.Record) error {
	switch {
	case r.Level >= slog.LevelError:
		h.errs.Add(1)
	case r.Level >= slog.LevelWarn:
		h.warns.Add(1)
	}
	return h.inner.Handle(ctx, r)
}

func (h *countingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &countingHandler{inner: h.inner.WithAttrs(attrs), warns: h.warns, errs: h.errs}
}

func (h *countingHandler) WithGroup(name string) slog.Handler {
	return &countingHandler{inner: h.inner.WithGroup(name), warns: h.warns, errs: h.errs}
}
