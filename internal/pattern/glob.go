package pattern

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Glob is a compiled path glob.
type Glob struct {
	raw      string
	expr     string
	basename bool
}

// CompileGlob validates and compiles raw.
func CompileGlob(raw string) (*Glob, error) {
	p := strings.TrimSpace(raw)
	if p == "" {
		return nil, errors.New("empty pattern")
	}
	p = strings.TrimPrefix(p, "./")
	p = strings.TrimPrefix(p, "/")
	p = strings.TrimSuffix(p, "/")
	if p == "" {
		return nil, fmt.Errorf("pattern %q matches no path", raw)
	}
	if strings.Contains(p, "//") {
		return nil, fmt.Errorf("pattern %q contains an empty segment", raw)
	}
	if !doublestar.ValidatePattern(p) {
		return nil, fmt.Errorf("pattern %q: %w", raw, doublestar.ErrBadPattern)
	}

	return &Glob{
		raw:      raw,
		expr:     p,
		basename: !strings.Contains(p, "/") && p != "**",
	}, nil
}

// String returns the pattern as written.
func (g *Glob) String() string { return g.raw }

// Match reports whether the whole of p matches the glob. A glob without a
// slash is tested against the last segment only.
func (g *Glob) Match(p string) bool {
	parts := split(p)
	if len(parts) == 0 {
		return false
	}
	subject := strings.Join(parts, "/")
	if g.basename {
		subject = parts[len(parts)-1]
	}
	// The pattern was validated in CompileGlob, so Match cannot fail.
	ok, _ := doublestar.Match(g.expr, subject)
	return ok
}

// split cleans p and returns its segments; "", "." and "/" have none.
func split(p string) []string {
	p = strings.TrimPrefix(path.Clean("/"+strings.TrimSpace(p)), "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// Clean normalizes a source-relative path the way globs see it:
// slash separated, no leading "./" or "/", no trailing "/".
func Clean(p string) string {
	return strings.Join(split(p), "/")
}
