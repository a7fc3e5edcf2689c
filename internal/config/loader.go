package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	ferrors "git.home.luguber.info/inful/siteplan/internal/foundation/errors"
	"git.home.luguber.info/inful/siteplan/internal/logfields"
	"git.home.luguber.info/inful/siteplan/internal/metrics"
	"git.home.luguber.info/inful/siteplan/internal/nav"
	"git.home.luguber.info/inful/siteplan/internal/pipeline"
	"git.home.luguber.info/inful/siteplan/internal/schema"
)

// Result is a fully resolved configuration. Site and Plan are nil when the
// document has no such section.
type Result struct {
	Site     *nav.Resolved
	SiteMeta Site
	Plan     *pipeline.BuildPlan
	Source   string
	Format   Format
	// Snapshot is a SHA-256 over the resolved content.
	Snapshot string
}

// Load reads, expands, decodes and resolves the document at path.
func Load(path string, opts ...Option) (*Result, error) {
	o := newOptions(opts)

	format, ok := FormatFromPath(path)
	if !ok {
		return nil, ferrors.ConfigError("unsupported configuration file extension").
			WithContext("path", path).
			WithContext("supported", ".yaml, .yml, .toml, .json, .cue, .hcl").
			Build()
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, ferrors.FileSystemError("cannot access configuration file").
			WithCause(err).
			WithContext("path", path).
			Build()
	}
	if info.IsDir() {
		return nil, ferrors.FileSystemError("configuration path is a directory").
			WithContext("path", path).
			Build()
	}
	if info.Size() > MaxDocumentSize {
		return nil, tooLarge(info.Size())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ferrors.FileSystemError("cannot read configuration file").
			WithCause(err).
			WithContext("path", path).
			Build()
	}

	dir := filepath.Dir(path)
	if o.baseDir == "" {
		if abs, err := filepath.Abs(dir); err == nil {
			o.baseDir = abs
		} else {
			o.baseDir = dir
		}
	}
	if o.expand && o.env == nil {
		lookup, err := dotenvLookup(dir)
		if err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "cannot read .env file").
				WithContext("dir", dir).
				Build()
		}
		return load(data, format, path, o, lookup)
	}
	return load(data, format, path, o, mapLookup(o.env))
}

// LoadBytes resolves an in-memory document. Only WithEnv supplies
// variables here; the process environment is not consulted.
func LoadBytes(data []byte, format Format, opts ...Option) (*Result, error) {
	o := newOptions(opts)
	return load(data, format, "<bytes>", o, mapLookup(o.env))
}

func load(data []byte, format Format, source string, o *options, lookup func(string) (string, bool)) (*Result, error) {
	if len(data) > MaxDocumentSize {
		return nil, tooLarge(int64(len(data)))
	}
	log := o.logger.With(logfields.ConfigPath(source), logfields.Format(string(format)))

	if o.expand {
		var missing []string
		data, missing = expandEnv(data, lookup)
		for _, name := range missing {
			log.Debug("Environment variable not set, expanded to empty string", "name", name)
		}
	}

	tree, err := decode(data, format, source)
	if err != nil {
		return nil, err
	}
	siteTree, bundleTree, err := sections(tree)
	if err != nil {
		return nil, err
	}

	res := &Result{Source: source, Format: format}
	if siteTree != nil {
		if err := timed(o, metrics.ComponentSite, func() error {
			meta, in, err := decodeSite(siteTree)
			if err != nil {
				return err
			}
			res.SiteMeta = meta
			res.Site, err = nav.Resolve(in)
			return err
		}); err != nil {
			return nil, fmt.Errorf("site: %w", err)
		}
		log.Debug("Resolved site",
			logfields.Routes(res.Site.Routes().Len()),
			slog.Int("nav_routes", res.Site.NavRoutes().Len()))
	}
	if bundleTree != nil {
		if err := timed(o, metrics.ComponentBundle, func() error {
			in, err := decodeBundle(bundleTree, o.baseDir)
			if err != nil {
				return err
			}
			res.Plan, err = pipeline.Resolve(in)
			return err
		}); err != nil {
			return nil, fmt.Errorf("bundle: %w", err)
		}
		log.Debug("Resolved bundle",
			logfields.Rules(len(res.Plan.Rules())),
			logfields.Plugins(len(res.Plan.Plugins())))
	}

	res.Snapshot = res.snapshot()
	if res.Site != nil {
		o.recorder.SetRoutes(res.Site.Routes().Len())
	}
	log.Debug("Configuration loaded", logfields.Snapshot(res.Snapshot))
	return res, nil
}

func timed(o *options, component string, fn func() error) error {
	start := time.Now()
	err := fn()
	o.recorder.ObserveResolveDuration(component, time.Since(start))
	if err != nil {
		o.recorder.IncResolveResult(component, metrics.ResultError)
		return err
	}
	o.recorder.IncResolveResult(component, metrics.ResultOK)
	return nil
}

func tooLarge(n int64) error {
	return schema.Errorf("", "document is %d bytes, the limit is %d", n, MaxDocumentSize)
}
