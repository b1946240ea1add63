package service

import (
	"errors"
	"fmt"
)

// Sentinel kinds for engine errors. The HTTP layer maps these to status
// codes; everything else surfaces as an internal error.
var (
	// ErrValidation marks a bad or missing request parameter.
	ErrValidation = errors.New("invalid request parameter")

	// ErrComputation marks an unexpected pipeline state such as a rank
	// gap in a scored pool.
	ErrComputation = errors.New("computation failed")
)

// ValidationError is a validation failure tied to one request field. It
// matches ErrValidation under errors.Is; the HTTP layer surfaces Field
// in the error body.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalidf(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
