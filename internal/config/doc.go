// Package config loads a siteplan document and resolves it into a
// navigation plan and a build plan.
//
// A document has two optional top-level sections, at least one of which
// must be present:
//
//	site:    title, description, base, nav, sidebar, rewrites, srcExclude
//	bundle:  mode, entry, output, devServer, module.rules, plugins
//
// The same shape is accepted as YAML, TOML, JSON, CUE or HCL. Every format
// is decoded into a generic tree first, so schema errors carry the same
// paths regardless of the source syntax. Resolution is fail-fast: the
// site is resolved before the bundle and the first error is returned.
package config
