package wire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mithrel/tabnote/internal/config"
	"github.com/mithrel/tabnote/internal/kv"
	"github.com/mithrel/tabnote/internal/notes"
	"github.com/mithrel/tabnote/internal/theme"
)

// App aggregates the major services for easy injection.
type App struct {
	Cfg   config.Config
	Log   *slog.Logger
	KV    kv.Store
	Notes *notes.Store
	Theme *theme.Flag

	mu      sync.Mutex
	notices []notes.Notice
	logOut  io.Closer
	closed  bool
}

// Option tweaks BuildApp.
type Option func(*buildOptions)

type buildOptions struct {
	logWriter  io.Writer
	systemDark func() bool
}

// WithLogWriter sends logs to w instead of the configured log file.
func WithLogWriter(w io.Writer) Option {
	return func(o *buildOptions) { o.logWriter = w }
}

// WithSystemDark overrides terminal background detection.
func WithSystemDark(f func() bool) Option {
	return func(o *buildOptions) { o.systemDark = f }
}

// BuildApp wires dependencies with the provided config and loads the notes.
func BuildApp(ctx context.Context, cfg config.Config, opts ...Option) (*App, error) {
	bo := buildOptions{systemDark: theme.SystemDark}
	for _, o := range opts {
		o(&bo)
	}

	app := &App{Cfg: cfg}
	w := bo.logWriter
	if w == nil {
		f, err := openLogFile(cfg.LogFile)
		if err != nil {
			return nil, err
		}
		w, app.logOut = f, f
	}
	app.Log = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))

	store, err := kv.Open(ctx, cfg.StorageURL)
	if err != nil {
		app.closeLog()
		return nil, err
	}
	app.KV = store
	app.Log.Debug("storage opened", "url", cfg.StorageURL)

	app.Notes = notes.New(ctx, store, notes.Options{
		Keys:     notes.Keys{Notes: cfg.NotesKey, Active: cfg.ActiveKey},
		Debounce: cfg.AutosaveDelay,
		Logger:   app.Log,
		Notify:   app.collect,
	})
	if err := app.Notes.Load(); err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("load notes: %w", err)
	}

	app.Theme, err = theme.Load(ctx, store, cfg.ThemeKey, bo.systemDark, nil)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	return app, nil
}

// collect records notices raised before a front end attaches its own notifier.
func (a *App) collect(n notes.Notice) {
	a.Log.Info("notice", "kind", n.Kind.String(), "text", n.Text)
	a.mu.Lock()
	a.notices = append(a.notices, n)
	a.mu.Unlock()
}

// DrainNotices returns and clears the notices collected so far.
func (a *App) DrainNotices() []notes.Notice {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := a.notices
	a.notices = nil
	return out
}

// Close writes any pending edit and releases storage and the log file.
// Calls after the first are no-ops.
func (a *App) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	a.mu.Unlock()
	var errs []error
	if a.Notes != nil {
		errs = append(errs, a.Notes.Flush())
	}
	if a.KV != nil {
		errs = append(errs, a.KV.Close())
	}
	a.closeLog()
	return errors.Join(errs...)
}

func (a *App) closeLog() {
	if a.logOut != nil {
		_ = a.logOut.Close()
		a.logOut = nil
	}
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	return f, nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
