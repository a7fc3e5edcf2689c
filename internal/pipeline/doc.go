// Package pipeline resolves a bundler configuration (mode, entry, output,
// per-file-type transform rules, plugins, dev server) into an immutable
// BuildPlan.
//
// Order is part of the contract: rules, the handlers inside each rule and
// plugins come out exactly as declared. Whether a handler chain runs first
// to last or last to first is the bundler's convention and is not decided
// here.
package pipeline
