// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Storage errors.
	ErrNotFound           = errors.New("not found")
	ErrStorageCorrupted   = errors.New("stored state corrupted")
	ErrStorageUnavailable = errors.New("storage unavailable")

	// Remote service errors.
	ErrEmptyResponse = errors.New("empty response from remote service")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// UserMessage returns the message meant for end users, or fallback when err
// carries none.
func UserMessage(err error, fallback string) string {
	var userErr *UserError
	if errors.As(err, &userErr) && userErr.UserMessage != "" {
		return userErr.UserMessage
	}
	return fallback
}

// ConfigurationError is a deployment fault such as a missing credential.
// It is fatal and never retried.
type ConfigurationError struct {
	Err     error
	Setting string
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration error (%s): %v", e.Setting, e.Err)
	}
	return fmt.Sprintf("configuration error (%s)", e.Setting)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// NewConfigurationError reports a missing or invalid setting.
func NewConfigurationError(setting string, err error) error {
	if err == nil {
		err = ErrMissingConfig
	}
	return &ConfigurationError{Setting: setting, Err: err}
}

// TransportError means the remote reasoning service could not be reached or
// answered with a non-success status.
type TransportError struct {
	Err        error
	Provider   string
	StatusCode int
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s request failed (status %d): %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ExtractionError means no JSON object could be located in a model reply.
type ExtractionError struct {
	Raw    string
	Reason string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to extract JSON object: %s", e.Reason)
}

// SchemaError describes the first place where a model reply violated the
// declared output contract.
type SchemaError struct {
	Path     string
	Expected string
	Actual   string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema violation at %s: expected %s, got %s", e.Path, e.Expected, e.Actual)
}

// StorageError wraps a failed history read or write. Callers treat it as
// non-fatal.
type StorageError struct {
	Err error
	Op  string
	Key string
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsDownstream reports whether err originates from the remote service or from
// its reply rather than from caller input.
func IsDownstream(err error) bool {
	var (
		transportErr  *TransportError
		extractionErr *ExtractionError
		schemaErr     *SchemaError
	)
	return errors.As(err, &transportErr) ||
		errors.As(err, &extractionErr) ||
		errors.As(err, &schemaErr)
}
