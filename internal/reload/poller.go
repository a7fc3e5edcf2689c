package reload

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/siteplan/internal/logfields"
)

// Poller reloads on a fixed interval. It backs up the file watcher on
// filesystems that do not deliver change events, such as network mounts.
type Poller struct {
	scheduler gocron.Scheduler
	watcher   *Watcher
}

// NewPoller schedules w.Reload every interval. Nothing runs until Start.
func NewPoller(w *Watcher, interval time.Duration) (*Poller, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	p := &Poller{scheduler: s, watcher: w}

	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(p.poll),
		gocron.WithName("config-poll"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("failed to create poll job: %w", err)
	}
	return p, nil
}

// Start begins polling.
func (p *Poller) Start() {
	p.watcher.logger.Info("Starting configuration poller")
	p.scheduler.Start()
}

// Stop shuts the scheduler down and waits for a running poll to finish.
func (p *Poller) Stop() error {
	p.watcher.logger.Info("Stopping configuration poller")
	return p.scheduler.Shutdown()
}

func (p *Poller) poll() {
	// Failures are logged and counted inside Reload.
	if _, err := p.watcher.Reload(context.Background()); err != nil {
		p.watcher.logger.Debug("Poll did not apply a new configuration", logfields.Error(err))
	}
}
