package commands

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/siteplan/internal/config"
	ferrors "git.home.luguber.info/inful/siteplan/internal/foundation/errors"
	"git.home.luguber.info/inful/siteplan/internal/logfields"
	"git.home.luguber.info/inful/siteplan/internal/metrics"
	"git.home.luguber.info/inful/siteplan/internal/reload"
	"git.home.luguber.info/inful/siteplan/internal/retry"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	MetricsAddr string        `name:"metrics-addr" help:"Serve Prometheus metrics on this address (for example :9090)"`
	Debounce    time.Duration `help:"Quiet period before a change is reloaded" default:"250ms"`
	Poll        time.Duration `help:"Also reload on this interval, for filesystems without change events (0 disables)" default:"0s"`

	RetryMode     string        `name:"retry-mode" help:"Backoff between attempts to reload a file that is briefly missing" enum:"fixed,linear,exponential" default:"linear"`
	RetryMax      int           `name:"retry-max" help:"Retries after a failed reload attempt" default:"2"`
	RetryDelay    time.Duration `name:"retry-delay" help:"Base delay between reload attempts" default:"100ms"`
	RetryMaxDelay time.Duration `name:"retry-max-delay" help:"Upper bound for the delay between reload attempts" default:"1s"`
}

func (w *WatchCmd) retryPolicy() (retry.Policy, error) {
	if w.RetryMax < 0 {
		return retry.Policy{}, ferrors.ConfigError("--retry-max cannot be negative").
			WithContext("retry_max", w.RetryMax).
			Build()
	}
	p := retry.NewPolicy(w.RetryMode, w.RetryDelay, w.RetryMaxDelay, w.RetryMax)
	if err := p.Validate(); err != nil {
		return retry.Policy{}, ferrors.WrapError(err, ferrors.CategoryConfig, "invalid retry flags").Build()
	}
	return p, nil
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return w.run(ctx, g, root)
}

func (w *WatchCmd) run(ctx context.Context, g *Global, root *CLI) error {
	log := g.logger()
	policy, err := w.retryPolicy()
	if err != nil {
		return err
	}
	reg := prom.NewRegistry()
	var recorder metrics.Recorder = metrics.NoopRecorder{}
	if w.MetricsAddr != "" {
		recorder = metrics.NewPrometheusRecorder(reg)
	}

	initial, err := load(g, root, config.WithRecorder(recorder))
	if err != nil {
		return err
	}
	if err := writeSummary(g.out(), initial); err != nil {
		return err
	}

	holder := reload.NewHolder(initial)
	holder.OnChange(func(_, next *config.Result) {
		if err := writeSummary(g.out(), next); err != nil {
			log.Warn("Failed to print summary", logfields.Error(err))
		}
	})

	watcher, err := reload.NewWatcher(root.Config, holder,
		reload.WithDebounce(w.Debounce),
		reload.WithLogger(log),
		reload.WithRecorder(recorder),
		reload.WithRetryPolicy(policy),
		reload.WithLoadOptions(loadOptions(g, root, config.WithRecorder(recorder))...))
	if err != nil {
		return err
	}

	if w.Poll > 0 {
		poller, err := reload.NewPoller(watcher, w.Poll)
		if err != nil {
			return ferrors.WrapError(err, ferrors.CategoryReload, "failed to start poller").Build()
		}
		poller.Start()
		defer func() {
			if err := poller.Stop(); err != nil {
				log.Warn("Poller shutdown failed", logfields.Error(err))
			}
		}()
	}

	var srv *http.Server
	srvErr := make(chan error, 1)
	if w.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.HTTPHandler(reg))
		srv = &http.Server{Addr: w.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			log.Info("Serving metrics", logfields.Addr(w.MetricsAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				srvErr <- err
			}
		}()
	}

	watchCtx, stop := context.WithCancel(ctx)
	defer stop()
	watchErr := make(chan error, 1)
	go func() { watchErr <- watcher.Run(watchCtx) }()

	var runErr error
	select {
	case runErr = <-watchErr:
	case err := <-srvErr:
		runErr = ferrors.WrapError(err, ferrors.CategoryInternal, "metrics server failed").
			WithContext("addr", w.MetricsAddr).
			Build()
		stop()
		<-watchErr
	}

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("Metrics server shutdown failed", logfields.Error(err))
		}
	}
	log.Info("Watch stopped")
	return runErr
}
