// Package errors provides the classified error primitives shared by siteplan.
//
// Resolution failures are typed per package (nav, pipeline, schema) and only
// need to report a Category to be routed here. Failures that have no typed
// counterpart (unreadable file, unknown format) are built with the fluent
// ErrorBuilder:
//
//	err := errors.FileSystemError("read config").
//		WithContext("path", path).
//		WithCause(readErr).
//		Build()
//
// The CLI adapter turns any of them into an exit code and a readable message.
package errors
