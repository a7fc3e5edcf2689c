package errors

import (
	stderrors "errors"
	"fmt"
	"maps"
	"slices"
)

// Categorized is implemented by every error that can be routed by category.
// The typed resolution errors in nav, pipeline and schema implement it.
type Categorized interface {
	error
	Category() ErrorCategory
}

// ClassifiedError is a failure without a typed counterpart, such as an
// unreadable file or an unknown format, carrying a category and context.
type ClassifiedError struct {
	category ErrorCategory
	severity Severity
	message  string
	cause    error
	context  map[string]any
}

func (e *ClassifiedError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.category, e.message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.category, e.message)
}

func (e *ClassifiedError) Unwrap() error           { return e.cause }
func (e *ClassifiedError) Category() ErrorCategory { return e.category }
func (e *ClassifiedError) Severity() Severity      { return e.severity }
func (e *ClassifiedError) Message() string         { return e.message }

// ContextKeys lists the context keys in sorted order.
func (e *ClassifiedError) ContextKeys() []string {
	return slices.Sorted(maps.Keys(e.context))
}

// ContextValue returns one context value.
func (e *ClassifiedError) ContextValue(key string) (any, bool) {
	v, ok := e.context[key]
	return v, ok
}

// AsClassified finds the first ClassifiedError in the chain.
func AsClassified(err error) (*ClassifiedError, bool) {
	var classified *ClassifiedError
	if stderrors.As(err, &classified) {
		return classified, true
	}
	return nil, false
}

// CategoryOf returns the category of the first categorized error in the chain,
// or CategoryInternal when nothing in the chain carries one.
func CategoryOf(err error) ErrorCategory {
	var c Categorized
	if stderrors.As(err, &c) {
		return c.Category()
	}
	return CategoryInternal
}

// ErrorBuilder assembles a ClassifiedError.
type ErrorBuilder struct {
	err ClassifiedError
}

// NewError starts a builder for category.
func NewError(category ErrorCategory, message string) *ErrorBuilder {
	return &ErrorBuilder{err: ClassifiedError{
		category: category,
		severity: SeverityError,
		message:  message,
		context:  map[string]any{},
	}}
}

// WrapError starts a builder whose cause is err.
func WrapError(err error, category ErrorCategory, message string) *ErrorBuilder {
	return NewError(category, message).WithCause(err)
}

func ConfigError(message string) *ErrorBuilder     { return NewError(CategoryConfig, message) }
func FileSystemError(message string) *ErrorBuilder { return NewError(CategoryFileSystem, message) }
func InternalError(message string) *ErrorBuilder   { return NewError(CategoryInternal, message) }

// ReloadError reports a failed live reload. Reload failures keep the
// previous result, so they are warnings.
func ReloadError(message string) *ErrorBuilder {
	return NewError(CategoryReload, message).Warning()
}

func (b *ErrorBuilder) WithCause(err error) *ErrorBuilder {
	b.err.cause = err
	return b
}

func (b *ErrorBuilder) WithContext(key string, value any) *ErrorBuilder {
	b.err.context[key] = value
	return b
}

func (b *ErrorBuilder) Warning() *ErrorBuilder {
	b.err.severity = SeverityWarning
	return b
}

// Build returns the error. The builder may be reused; later changes do not
// leak into errors already built.
func (b *ErrorBuilder) Build() *ClassifiedError {
	err := b.err
	err.context = maps.Clone(b.err.context)
	return &err
}
