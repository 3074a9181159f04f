package apperrors

import (
	"errors"
	"fmt"
)

// Common application errors
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrUpstream      = errors.New("upstream failure")
	ErrDatabaseError = errors.New("database error")
	ErrInternalError = errors.New("internal error")
)

// ValidationError represents input validation errors
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// Is allows error comparison using errors.Is
func (e ValidationError) Is(target error) bool {
	return errors.Is(target, ErrInvalidInput)
}

// UpstreamError represents a failure of an external collaborator, such as
// the walks-manager mirror. The report as a whole fails; there are no
// partial results.
type UpstreamError struct {
	Service    string
	StatusCode int
	Message    string
}

func (e UpstreamError) Error() string {
	return fmt.Sprintf("%s error (status %d): %s", e.Service, e.StatusCode, e.Message)
}

// Is allows error comparison using errors.Is
func (e UpstreamError) Is(target error) bool {
	return errors.Is(target, ErrUpstream)
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
