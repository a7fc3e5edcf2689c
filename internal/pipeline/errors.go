package pipeline

import (
	"fmt"

	ferrors "git.home.luguber.info/inful/siteplan/internal/foundation/errors"
)

// InvalidPortError reports a dev server port outside [1, 65535].
type InvalidPortError struct {
	Port int
}

func (e *InvalidPortError) Error() string {
	return fmt.Sprintf("devServer.port %d is outside [%d, %d]", e.Port, minPort, maxPort)
}

func (e *InvalidPortError) Category() ferrors.ErrorCategory { return ferrors.CategoryPipeline }

// EmptyRuleError reports a transform rule without handlers.
type EmptyRuleError struct {
	Index int
	Test  string
}

func (e *EmptyRuleError) Error() string {
	return fmt.Sprintf("module.rules[%d] (test %s) has no handlers", e.Index, e.Test)
}

func (e *EmptyRuleError) Category() ferrors.ErrorCategory { return ferrors.CategoryPipeline }
