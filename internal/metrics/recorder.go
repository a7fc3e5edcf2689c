package metrics

import "time"

// ResultLabel enumerates resolution results for counters.
type ResultLabel string

const (
	ResultOK    ResultLabel = "ok"
	ResultError ResultLabel = "error"
)

// ReloadOutcome enumerates what a live reload attempt did.
type ReloadOutcome string

const (
	ReloadApplied   ReloadOutcome = "applied"
	ReloadUnchanged ReloadOutcome = "unchanged"
	ReloadFailed    ReloadOutcome = "failed"
)

// Component names used as label values.
const (
	ComponentSite   = "site"
	ComponentBundle = "bundle"
)

// Recorder defines observability hooks for resolution and reload metrics.
// Implementations must be safe for concurrent use.
type Recorder interface {
	ObserveResolveDuration(component string, d time.Duration)
	IncResolveResult(component string, result ResultLabel)
	IncReload(outcome ReloadOutcome)
	SetRoutes(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveResolveDuration(string, time.Duration) {}
func (NoopRecorder) IncResolveResult(string, ResultLabel)         {}
func (NoopRecorder) IncReload(ReloadOutcome)                      {}
func (NoopRecorder) SetRoutes(int)                                {}
