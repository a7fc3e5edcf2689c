package reload

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"git.home.luguber.info/inful/siteplan/internal/config"
	ferrors "git.home.luguber.info/inful/siteplan/internal/foundation/errors"
	"git.home.luguber.info/inful/siteplan/internal/logfields"
	"git.home.luguber.info/inful/siteplan/internal/metrics"
	"git.home.luguber.info/inful/siteplan/internal/retry"
)

// DefaultDebounce is how long the watcher waits for a burst of file events
// to settle before reloading.
const DefaultDebounce = 250 * time.Millisecond

// LoadFunc loads a configuration document. config.Load satisfies it.
type LoadFunc func(path string, opts ...config.Option) (*config.Result, error)

// Watcher reloads the configuration when its file changes.
type Watcher struct {
	configPath  string
	holder      *Holder
	debounce    time.Duration
	logger      *slog.Logger
	recorder    metrics.Recorder
	load        LoadFunc
	loadOptions []config.Option
	retry       retry.Policy

	mu sync.Mutex // serializes Reload
}

// Option customizes a Watcher.
type Option func(*Watcher)

func WithDebounce(d time.Duration) Option    { return func(w *Watcher) { w.debounce = d } }
func WithLogger(l *slog.Logger) Option       { return func(w *Watcher) { w.logger = l } }
func WithRecorder(r metrics.Recorder) Option { return func(w *Watcher) { w.recorder = r } }
func WithLoadFunc(fn LoadFunc) Option        { return func(w *Watcher) { w.load = fn } }
func WithRetryPolicy(p retry.Policy) Option  { return func(w *Watcher) { w.retry = p } }
func WithLoadOptions(o ...config.Option) Option {
	return func(w *Watcher) { w.loadOptions = append(w.loadOptions, o...) }
}

// NewWatcher prepares a watcher for configPath that publishes into holder.
func NewWatcher(configPath string, holder *Holder, opts ...Option) (*Watcher, error) {
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, ferrors.FileSystemError("failed to resolve config path").
			WithCause(err).
			WithContext("path", configPath).
			Build()
	}
	w := &Watcher{
		configPath: absPath,
		holder:     holder,
		debounce:   DefaultDebounce,
		logger:     slog.Default(),
		recorder:   metrics.NoopRecorder{},
		load:       config.Load,
		retry:      retry.DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(w)
	}
	if err := w.retry.Validate(); err != nil {
		return nil, ferrors.ConfigError("invalid reload retry policy").
			WithCause(err).
			WithContext("mode", string(w.retry.Mode)).
			Build()
	}
	return w, nil
}

// Run watches until ctx is canceled.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return ferrors.ReloadError("failed to create file watcher").WithCause(err).Build()
	}
	defer func() {
		if cerr := fsw.Close(); cerr != nil {
			w.logger.Error("Error closing file watcher", logfields.Error(cerr))
		}
	}()

	// Watch the directory containing the config file (more reliable than
	// watching the file, which editors replace on save).
	configDir := filepath.Dir(w.configPath)
	if err := fsw.Add(configDir); err != nil {
		return ferrors.ReloadError(fmt.Sprintf("failed to watch config directory %s", configDir)).
			WithCause(err).
			Build()
	}
	w.logger.Info("Starting configuration watcher", logfields.ConfigPath(w.configPath))

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Stopping configuration watcher")
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("Config change detected", "file", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			pending = timer.C

		case <-pending:
			pending = nil
			// Failures are logged and counted inside Reload.
			_, _ = w.Reload(ctx)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Config watcher error", logfields.Error(err))
		}
	}
}

// relevant filters events down to the config file and its .env files.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	name := filepath.Base(event.Name)
	if name != filepath.Base(w.configPath) && !slices.Contains([]string{".env", ".env.local"}, name) {
		return false
	}
	switch {
	case event.Has(fsnotify.Write), event.Has(fsnotify.Create), event.Has(fsnotify.Rename):
		return true
	case event.Has(fsnotify.Remove):
		w.logger.Warn("Config file removed", "file", event.Name)
		return false
	default:
		return false
	}
}

// transient reports load failures worth retrying: editors that save by
// rename leave the path missing for a moment.
func transient(err error) bool {
	return ferrors.CategoryOf(err) == ferrors.CategoryFileSystem
}

// Reload loads the configuration, retrying transient file errors, and
// publishes it when it differs from the current result.
func (w *Watcher) Reload(ctx context.Context) (metrics.ReloadOutcome, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	log := w.logger.With(logfields.ReloadID(uuid.NewString()), logfields.ConfigPath(w.configPath))
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return metrics.ReloadFailed, err
	}
	var next *config.Result
	err := w.retry.Do(ctx, transient, func() (err error) {
		next, err = w.load(w.configPath, w.loadOptions...)
		if err != nil && transient(err) {
			log.Debug("Config file not readable yet, retrying", logfields.Error(err))
		}
		return err
	})
	if err != nil {
		w.recorder.IncReload(metrics.ReloadFailed)
		log.Warn("Reload failed, keeping previous configuration", logfields.Error(err), logfields.Since(start))
		return metrics.ReloadFailed, err
	}

	if prev := w.holder.Current(); prev != nil && prev.Snapshot == next.Snapshot {
		w.recorder.IncReload(metrics.ReloadUnchanged)
		log.Debug("Configuration unchanged", logfields.Snapshot(next.Snapshot))
		return metrics.ReloadUnchanged, nil
	}

	w.holder.Swap(next)
	w.recorder.IncReload(metrics.ReloadApplied)
	log.Info("Configuration reloaded", logfields.Snapshot(next.Snapshot), logfields.Since(start))
	return metrics.ReloadApplied, nil
}
