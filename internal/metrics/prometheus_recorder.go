package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "siteplan"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	resolveDuration *prom.HistogramVec
	resolveResults  *prom.CounterVec
	reloads         *prom.CounterVec
	routes          prom.Gauge
}

// NewPrometheusRecorder constructs the collectors and registers them on reg.
// A nil reg gets a private registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		resolveDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "resolve_duration_seconds",
			Help:      "Duration of resolving one configuration component",
			Buckets:   prom.DefBuckets,
		}, []string{"component"}),
		resolveResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "resolve_results_total",
			Help:      "Resolution results by component and outcome",
		}, []string{"component", "result"}),
		reloads: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "reloads_total",
			Help:      "Live reload attempts by outcome",
		}, []string{"outcome"}),
		routes: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "routes",
			Help:      "Number of sidebar routes in the current plan",
		}),
	}
	reg.MustRegister(pr.resolveDuration, pr.resolveResults, pr.reloads, pr.routes)
	return pr
}

func (p *PrometheusRecorder) ObserveResolveDuration(component string, d time.Duration) {
	if p == nil {
		return
	}
	p.resolveDuration.WithLabelValues(component).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncResolveResult(component string, result ResultLabel) {
	if p == nil {
		return
	}
	p.resolveResults.WithLabelValues(component, string(result)).Inc()
}

func (p *PrometheusRecorder) IncReload(outcome ReloadOutcome) {
	if p == nil {
		return
	}
	p.reloads.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) SetRoutes(n int) {
	if p == nil {
		return
	}
	p.routes.Set(float64(n))
}
