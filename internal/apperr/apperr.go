// Package apperr defines the error taxonomy shared by the adapters, the
// interview state machine and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
)

// ConfigurationError reports a missing or invalid setting. It is fatal at startup.
type ConfigurationError struct {
	Setting string
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s: %s", e.Setting, e.Message)
}

// Configuration creates a ConfigurationError for the named setting.
func Configuration(setting, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Setting: setting, Message: fmt.Sprintf(format, args...)}
}

// ServiceError reports a failed call to an external service (chat completion,
// transcription or speech synthesis).
type ServiceError struct {
	Service   string
	Op        string
	Retryable bool
	Cause     error
}

func (e *ServiceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s %s: %v", e.Service, e.Op, e.Cause)
	}
	return fmt.Sprintf("%s %s failed", e.Service, e.Op)
}

func (e *ServiceError) Unwrap() error { return e.Cause }

// Service wraps cause as a retryable ServiceError. A nil cause yields nil.
func Service(service, op string, cause error) error {
	if cause == nil {
		return nil
	}
	var se *ServiceError
	if errors.As(cause, &se) {
		return cause
	}
	return &ServiceError{Service: service, Op: op, Retryable: true, Cause: cause}
}

// Permanent marks a ServiceError that retrying cannot fix (e.g. a rejected credential).
func Permanent(service, op string, cause error) error {
	return &ServiceError{Service: service, Op: op, Cause: cause}
}

// ParseError reports a model response that could not be decoded. Raw keeps
// the response verbatim so callers can fall back to it.
type ParseError struct {
	Raw   string
	Cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse model response: %v", e.Cause)
}

func (e *ParseError) Unwrap() error { return e.Cause }

// IsRetryable reports whether err carries a retryable ServiceError.
func IsRetryable(err error) bool {
	var se *ServiceError
	return errors.As(err, &se) && se.Retryable
}
