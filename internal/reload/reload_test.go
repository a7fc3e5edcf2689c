package reload

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/siteplan/internal/config"
	ferrors "git.home.luguber.info/inful/siteplan/internal/foundation/errors"
	"git.home.luguber.info/inful/siteplan/internal/metrics"
	"git.home.luguber.info/inful/siteplan/internal/retry"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func writeSite(t *testing.T, path, title string) {
	t.Helper()
	doc := "site:\n  title: " + title + "\n  sidebar:\n    - {text: Home, link: /}\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
}

func setup(t *testing.T, title string) (string, *Holder) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "siteplan.yaml")
	writeSite(t, path, title)
	res, err := config.Load(path, config.WithEnv(nil))
	require.NoError(t, err)
	return path, NewHolder(res)
}

type reloadCounter struct {
	mu       sync.Mutex
	outcomes []metrics.ReloadOutcome
}

func (r *reloadCounter) ObserveResolveDuration(string, time.Duration) {}
func (r *reloadCounter) IncResolveResult(string, metrics.ResultLabel) {}
func (r *reloadCounter) SetRoutes(int)                                {}

func (r *reloadCounter) IncReload(o metrics.ReloadOutcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, o)
}

func TestHolderSwapNotifiesSubscribers(t *testing.T) {
	h := NewHolder(nil)
	assert.Nil(t, h.Current())

	var calls []string
	h.OnChange(func(prev, next *config.Result) {
		assert.Nil(t, prev)
		calls = append(calls, "first:"+next.Snapshot)
	})
	h.OnChange(func(_, next *config.Result) { calls = append(calls, "second:"+next.Snapshot) })

	prev := h.Swap(&config.Result{Snapshot: "a"})
	assert.Nil(t, prev)
	assert.Equal(t, "a", h.Current().Snapshot)
	assert.Equal(t, []string{"first:a", "second:a"}, calls)
}

func TestReloadOutcomes(t *testing.T) {
	path, holder := setup(t, "one")
	rec := &reloadCounter{}
	w, err := NewWatcher(path, holder,
		WithLogger(quiet),
		WithRecorder(rec),
		WithLoadOptions(config.WithEnv(nil)))
	require.NoError(t, err)
	ctx := context.Background()

	outcome, err := w.Reload(ctx)
	require.NoError(t, err)
	assert.Equal(t, metrics.ReloadUnchanged, outcome)

	writeSite(t, path, "two")
	outcome, err = w.Reload(ctx)
	require.NoError(t, err)
	assert.Equal(t, metrics.ReloadApplied, outcome)
	assert.Equal(t, "two", holder.Current().SiteMeta.Title)

	require.NoError(t, os.WriteFile(path, []byte("site: {sidebar: [{text: A}]}"), 0o644))
	outcome, err = w.Reload(ctx)
	require.Error(t, err)
	assert.Equal(t, metrics.ReloadFailed, outcome)
	assert.Equal(t, "two", holder.Current().SiteMeta.Title, "a failed reload keeps the previous result")

	assert.Equal(t, []metrics.ReloadOutcome{metrics.ReloadUnchanged, metrics.ReloadApplied, metrics.ReloadFailed}, rec.outcomes)
}

func TestNewWatcherRejectsInvalidRetryPolicy(t *testing.T) {
	path, holder := setup(t, "one")
	for _, p := range []retry.Policy{
		{},
		{Mode: "jitter", Initial: time.Millisecond, Max: time.Second},
		{Mode: retry.BackoffFixed, Initial: time.Millisecond, Max: time.Second, MaxRetries: -1},
	} {
		_, err := NewWatcher(path, holder, WithLogger(quiet), WithRetryPolicy(p))
		require.Error(t, err, "%+v", p)
		assert.Equal(t, ferrors.CategoryConfig, ferrors.CategoryOf(err))
	}
}

func TestReloadRetriesMissingFile(t *testing.T) {
	path, holder := setup(t, "one")
	var loads atomic.Int32
	w, err := NewWatcher(path, holder,
		WithLogger(quiet),
		WithRetryPolicy(retry.NewPolicy("fixed", time.Millisecond, time.Millisecond, 2)),
		WithLoadFunc(func(p string, opts ...config.Option) (*config.Result, error) {
			if loads.Add(1) == 1 {
				return nil, ferrors.FileSystemError("config file not found").Build()
			}
			return &config.Result{Snapshot: "renamed"}, nil
		}))
	require.NoError(t, err)

	outcome, err := w.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, metrics.ReloadApplied, outcome)
	assert.Equal(t, int32(2), loads.Load())
	assert.Equal(t, "renamed", holder.Current().Snapshot)
}

func TestReloadDoesNotRetryInvalidDocuments(t *testing.T) {
	path, holder := setup(t, "one")
	require.NoError(t, os.WriteFile(path, []byte("site: {sidebar: [{text: A}]}"), 0o644))
	var loads atomic.Int32
	w, err := NewWatcher(path, holder, WithLogger(quiet), WithLoadFunc(func(p string, opts ...config.Option) (*config.Result, error) {
		loads.Add(1)
		return config.Load(p, opts...)
	}))
	require.NoError(t, err)

	_, err = w.Reload(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(1), loads.Load())
}

func TestReloadHonorsCanceledContext(t *testing.T) {
	path, holder := setup(t, "one")
	var loads atomic.Int32
	w, err := NewWatcher(path, holder, WithLogger(quiet), WithLoadFunc(func(string, ...config.Option) (*config.Result, error) {
		loads.Add(1)
		return nil, errors.New("unexpected load")
	}))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = w.Reload(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, loads.Load())
}

func TestRunReloadsOnWrite(t *testing.T) {
	path, holder := setup(t, "one")
	changes := make(chan string, 16)
	holder.OnChange(func(_, next *config.Result) { changes <- next.SiteMeta.Title })

	w, err := NewWatcher(path, holder,
		WithLogger(quiet),
		WithDebounce(20*time.Millisecond),
		WithLoadOptions(config.WithEnv(nil)))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher a moment to register the directory.
	time.Sleep(50 * time.Millisecond)
	for _, title := range []string{"burst-1", "burst-2", "final"} {
		writeSite(t, path, title)
	}

	require.Eventually(t, func() bool {
		return holder.Current().SiteMeta.Title == "final"
	}, 5*time.Second, 10*time.Millisecond)

	// Unrelated files in the directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), "notes.txt"), []byte("x"), 0o644))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop after cancel")
	}

	close(changes)
	var seen []string
	for title := range changes {
		seen = append(seen, title)
	}
	require.NotEmpty(t, seen)
	assert.Equal(t, "final", seen[len(seen)-1])
}

func TestRunFailsForMissingDirectory(t *testing.T) {
	w, err := NewWatcher(filepath.Join(t.TempDir(), "gone", "siteplan.yaml"), NewHolder(nil), WithLogger(quiet))
	require.NoError(t, err)
	err = w.Run(context.Background())
	require.Error(t, err)
}

func TestPollerReloadsWithoutEvents(t *testing.T) {
	path, holder := setup(t, "one")
	w, err := NewWatcher(path, holder, WithLogger(quiet), WithLoadOptions(config.WithEnv(nil)))
	require.NoError(t, err)

	p, err := NewPoller(w, 20*time.Millisecond)
	require.NoError(t, err)
	p.Start()
	t.Cleanup(func() { _ = p.Stop() })

	writeSite(t, path, "polled")
	require.Eventually(t, func() bool {
		return holder.Current().SiteMeta.Title == "polled"
	}, 5*time.Second, 10*time.Millisecond)
}
