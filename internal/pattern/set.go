package pattern

import (
	"fmt"
	"strings"
)

// CompileError identifies which pattern of a set failed to compile.
type CompileError struct {
	Index   int
	Pattern string
	Err     error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("pattern %d (%q): %v", e.Index, e.Pattern, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

// Set is an order-independent union of globs.
type Set struct {
	globs []*Glob
}

// CompileSet compiles every pattern; the first failure is returned.
func CompileSet(patterns []string) (*Set, error) {
	s := &Set{globs: make([]*Glob, 0, len(patterns))}
	for i, p := range patterns {
		g, err := CompileGlob(p)
		if err != nil {
			return nil, &CompileError{Index: i, Pattern: p, Err: err}
		}
		s.globs = append(s.globs, g)
	}
	return s, nil
}

// Match reports whether p, or any directory containing it, matches any glob.
func (s *Set) Match(p string) bool {
	if s == nil || len(s.globs) == 0 {
		return false
	}
	parts := split(p)
	for i := 1; i <= len(parts); i++ {
		candidate := strings.Join(parts[:i], "/")
		for _, g := range s.globs {
			if g.Match(candidate) {
				return true
			}
		}
	}
	return false
}

// Patterns returns the patterns as written, in declaration order.
func (s *Set) Patterns() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.globs))
	for i, g := range s.globs {
		out[i] = g.raw
	}
	return out
}

// Len returns the number of patterns.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.globs)
}
