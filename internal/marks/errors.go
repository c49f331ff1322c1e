package marks

import "errors"

var (
	// ErrNotFound reports a missing semester, subject, or assessment.
	ErrNotFound = errors.New("not found")

	// ErrValidation reports malformed or missing required input. The stored
	// state is never touched when a validation error is returned.
	ErrValidation = errors.New("invalid input")
)
