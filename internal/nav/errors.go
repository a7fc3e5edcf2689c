package nav

import (
	"fmt"
	"strings"

	ferrors "git.home.luguber.info/inful/siteplan/internal/foundation/errors"
)

// DuplicateRouteError reports an internal link that appears twice in one forest.
type DuplicateRouteError struct {
	Forest string
	Route  string
	First  []string
	Second []string
}

func (e *DuplicateRouteError) Error() string {
	return fmt.Sprintf("%s: duplicate route %q: %q and %q",
		e.Forest, e.Route, strings.Join(e.First, " > "), strings.Join(e.Second, " > "))
}

func (e *DuplicateRouteError) Category() ferrors.ErrorCategory {
	return ferrors.CategoryNavigation
}

// ConflictingRewriteError reports two distinct sources rewritten to one destination.
type ConflictingRewriteError struct {
	Destination string
	Sources     [2]string
}

func (e *ConflictingRewriteError) Error() string {
	return fmt.Sprintf("rewrites %q and %q both map to %q", e.Sources[0], e.Sources[1], e.Destination)
}

func (e *ConflictingRewriteError) Category() ferrors.ErrorCategory {
	return ferrors.CategoryNavigation
}
