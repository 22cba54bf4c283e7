// Package errs holds the error taxonomy shared by the transform packages.
// Package-specific sentinels wrap one of these so callers can match either.
package errs

import "errors"

var (
	// ErrInvalidArgument marks input that violates a precondition: wrong
	// lengths, unknown action codes, malformed values.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrMissingField marks a required observation field that is absent.
	ErrMissingField = errors.New("missing field")
)
