package config

import (
	"io"
	"log/slog"
	"maps"

	"git.home.luguber.info/inful/siteplan/internal/metrics"
)

// MaxDocumentSize caps the bytes read from a configuration document.
const MaxDocumentSize = 5 << 20

type options struct {
	expand   bool
	env      map[string]string
	baseDir  string
	logger   *slog.Logger
	recorder metrics.Recorder
}

// Option customizes a Load or LoadBytes call.
type Option func(*options)

func newOptions(opts []Option) *options {
	o := &options{
		expand:   true,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		recorder: metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithEnv replaces the process environment and .env files as the source of
// ${NAME} expansions.
func WithEnv(vars map[string]string) Option {
	return func(o *options) {
		o.env = maps.Clone(vars)
		if o.env == nil {
			o.env = map[string]string{}
		}
	}
}

// WithoutEnvExpansion leaves ${NAME} references untouched.
func WithoutEnvExpansion() Option {
	return func(o *options) { o.expand = false }
}

// WithBaseDir anchors relative output and static directories. Load
// defaults it to the directory of the configuration file.
func WithBaseDir(dir string) Option {
	return func(o *options) { o.baseDir = dir }
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(o *options) {
		if r != nil {
			o.recorder = r
		}
	}
}
