package api

import (
	"errors"
	"fmt"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
)

// ParamError is a rejected query parameter. It matches ErrBadRequest
// under errors.Is and names the offending parameter for the error body.
type ParamError struct {
	Name    string
	Message string
	cause   error
}

func (e *ParamError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *ParamError) Unwrap() error { return ErrBadRequest }

// NewParam builds a ParamError for the named query parameter.
func NewParam(name, message string) error {
	return &ParamError{Name: name, Message: message}
}

// WrapParam builds a ParamError carrying an underlying cause.
func WrapParam(name, message string, cause error) error {
	return &ParamError{Name: name, Message: message, cause: cause}
}

// Wrap annotates an error with an operation context.
func Wrap(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
