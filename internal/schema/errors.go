package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoProcedureSelected is returned when a valuation is submitted without any
// procedure flag set.
var ErrNoProcedureSelected = errors.New("no valuation procedure selected")

// Kind separates input that could not be read at all from input that was read
// but breaks a rule.
type Kind int

// Validation error kinds.
const (
	// KindInvalid is a semantic violation such as a negative area.
	KindInvalid Kind = iota
	// KindMalformed is a structural problem such as a string where a number belongs.
	KindMalformed
)

func (k Kind) String() string {
	if k == KindMalformed {
		return "malformed"
	}
	return "invalid"
}

// ValidationError describes one offending field.
type ValidationError struct {
	Err    error
	Field  string
	Reason string
	Kind   Kind
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidationErrors collects every offending field of one input.
type ValidationErrors struct {
	Errors []*ValidationError
}

func (e *ValidationErrors) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fieldErr := range e.Errors {
		parts = append(parts, fieldErr.Error())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Unwrap exposes the individual field errors to errors.Is and errors.As.
func (e *ValidationErrors) Unwrap() []error {
	out := make([]error, len(e.Errors))
	for i, fieldErr := range e.Errors {
		out[i] = fieldErr
	}
	return out
}

// Malformed reports whether any field error is structural.
func (e *ValidationErrors) Malformed() bool {
	for _, fieldErr := range e.Errors {
		if fieldErr.Kind == KindMalformed {
			return true
		}
	}
	return false
}

// Field returns the error recorded for the named field, if any.
func (e *ValidationErrors) Field(name string) *ValidationError {
	for _, fieldErr := range e.Errors {
		if fieldErr.Field == name {
			return fieldErr
		}
	}
	return nil
}

func (e *ValidationErrors) add(fieldErr *ValidationError) {
	e.Errors = append(e.Errors, fieldErr)
}

func (e *ValidationErrors) orNil() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}
