package apperr

import (
	"errors"
	"fmt"
)

// ValidationError indicates missing or invalid required input. Nothing was mutated.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// ParseError indicates malformed input for a whole-table operation such as
// file intake or formula evaluation.
type ParseError struct {
	Op  string
	Err error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("parse %s failed", e.Op)
	}
	return fmt.Sprintf("parse %s: %v", e.Op, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ExternalServiceError wraps a failed call to a collaborator (quota, AI,
// payment, remote fetch).
type ExternalServiceError struct {
	Service string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s unavailable, please try again: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

func Validation(field, msg string) error { return &ValidationError{Field: field, Message: msg} }

func Parse(op string, err error) error { return &ParseError{Op: op, Err: err} }

func Parsef(op, format string, args ...any) error {
	return &ParseError{Op: op, Err: fmt.Errorf(format, args...)}
}

func External(service string, err error) error {
	return &ExternalServiceError{Service: service, Err: err}
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsParse(err error) bool {
	var p *ParseError
	return errors.As(err, &p)
}

func IsExternal(err error) bool {
	var x *ExternalServiceError
	return errors.As(err, &x)
}
