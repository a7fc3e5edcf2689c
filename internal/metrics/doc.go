// Package metrics provides the observability hooks for configuration
// resolution and live reload.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so nothing needs a nil check:
//
//	loader options:  config.WithRecorder(metrics.NewPrometheusRecorder(reg))
//	watch command:   http.Handle("/metrics", metrics.HTTPHandler(reg))
//
// Resolvers themselves never record; the loader times each component
// ("site", "bundle") around the resolver call.
package metrics
