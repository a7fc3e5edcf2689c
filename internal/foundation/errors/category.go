package errors

// ErrorCategory names the kind of failure. It decides the CLI exit code.
type ErrorCategory string

const (
	// CategorySchema covers fields missing or mistyped relative to the expected shape.
	CategorySchema     ErrorCategory = "schema"
	CategoryNavigation ErrorCategory = "navigation"
	CategoryPipeline   ErrorCategory = "pipeline"
	CategoryConfig     ErrorCategory = "config"
	CategoryFileSystem ErrorCategory = "filesystem"
	CategoryReload     ErrorCategory = "reload"
	CategoryInternal   ErrorCategory = "internal"
)

var exitCodes = map[ErrorCategory]int{
	CategorySchema:     2,
	CategoryNavigation: 3,
	CategoryPipeline:   4,
	CategoryConfig:     7,
	CategoryInternal:   10,
	CategoryFileSystem: 11,
	CategoryReload:     12,
}

// ExitCode returns the process exit code for the category; unknown
// categories exit with 1.
func (c ErrorCategory) ExitCode() int {
	if code, ok := exitCodes[c]; ok {
		return code
	}
	return 1
}

// Severity tells the CLI how loudly to report a failure.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning" // the previous state stays in effect
)
