// Package schema checks decoded configuration documents against the shape
// siteplan expects and reports violations as *Error values carrying the
// dotted path of the offending node (for example "sidebar[0].items[2].link").
package schema

import (
	"fmt"

	ferrors "git.home.luguber.info/inful/siteplan/internal/foundation/errors"
)

// Error reports a field that is missing, mistyped or otherwise malformed
// relative to the expected shape.
type Error struct {
	Path   Path
	Reason string
}

func (e *Error) Error() string {
	if e.Path == "" {
		return "schema: " + e.Reason
	}
	return fmt.Sprintf("schema: %s: %s", e.Path, e.Reason)
}

// Category routes schema errors for the CLI adapter.
func (e *Error) Category() ferrors.ErrorCategory { return ferrors.CategorySchema }

// Errorf builds an *Error at path.
func Errorf(path Path, format string, args ...any) *Error {
	return &Error{Path: path, Reason: fmt.Sprintf(format, args...)}
}

// Path is a dotted field path with bracketed list indices.
type Path string

// Field returns the path of a named child.
func (p Path) Field(name string) Path {
	if p == "" {
		return Path(name)
	}
	return p + "." + Path(name)
}

// Index returns the path of a list element.
func (p Path) Index(i int) Path {
	return Path(fmt.Sprintf("%s[%d]", p, i))
}

func (p Path) String() string { return string(p) }
