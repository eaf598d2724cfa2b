// Package diag provides the diagnostic sink: an append-only JSON-lines log
// file that never touches stdout and never fails a request.
package diag

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"os"
	"sync"
)

// DefaultPath is the log file used when Options.Path is empty.
const DefaultPath = "camino-mcp.log"

// Options configures a Sink.
type Options struct {
	// Path is the log file. Empty means DefaultPath.
	Path string
	// Debug enables debug records in the file and mirrors errors to Stderr.
	Debug bool
	// Stderr receives the error mirror in debug mode. Defaults to os.Stderr.
	Stderr io.Writer
}

// Sink owns the log file and the logger writing to it.
type Sink struct {
	file   *os.File
	logger *slog.Logger
	once   sync.Once
}

// New opens the sink. If the file cannot be opened the sink still works; the
// file records are dropped.
func New(opts Options) *Sink {
	path := opts.Path
	if path == "" {
		path = DefaultPath
	}

	fileLevel := slog.LevelInfo
	if opts.Debug {
		fileLevel = slog.LevelDebug
	}

	s := &Sink{}

	var fileOut io.Writer = io.Discard
	if f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
		s.file = f
		fileOut = f
	}

	handlers := []slog.Handler{
		slog.NewJSONHandler(quietWriter{fileOut}, &slog.HandlerOptions{Level: fileLevel}),
	}

	if opts.Debug {
		stderr := opts.Stderr
		if stderr == nil {
			stderr = os.Stderr
		}
		handlers = append(handlers,
			slog.NewTextHandler(quietWriter{stderr}, &slog.HandlerOptions{Level: slog.LevelError}))
	}

	s.logger = slog.New(fanout(handlers))
	return s
}

// Logger returns the structured logger backed by the sink.
func (s *Sink) Logger() *slog.Logger {
	return s.logger
}

// StdLogger adapts the sink for libraries that want a *log.Logger. Lines are
// recorded at error level.
func (s *Sink) StdLogger() *log.Logger {
	return slog.NewLogLogger(s.logger.Handler(), slog.LevelError)
}

// Close releases the log file. It is safe to call more than once.
func (s *Sink) Close() error {
	var err error
	s.once.Do(func() {
		if s.file != nil {
			err = s.file.Close()
		}
	})
	return err
}

// quietWriter reports every write as successful.
type quietWriter struct {
	w io.Writer
}

func (q quietWriter) Write(p []byte) (int, error) {
	_, _ = q.w.Write(p)
	return len(p), nil
}

// fanout sends each record to every handler that accepts its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			if err := h.Handle(ctx, r.Clone()); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
