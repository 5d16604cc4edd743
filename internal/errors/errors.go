// internal/errors/errors.go
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ValidationError is returned when caller input is malformed.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// InvalidRepoFormat is returned when a repository string is not in 'owner/name' format.
func InvalidRepoFormat(repo string) *ValidationError {
	return &ValidationError{
		Field:   "repository",
		Message: fmt.Sprintf("%q, expected 'owner/name'", repo),
	}
}

// NotFoundError is returned when a referenced record does not exist.
type NotFoundError struct {
	Resource string
	ID       any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %v not found", e.Resource, e.ID)
}

// PreconditionError is returned when an operation needs state that is absent.
type PreconditionError struct {
	Message string
}

func (e *PreconditionError) Error() string {
	return e.Message
}

// ProcessError is returned when a local subprocess fails or cannot be started.
type ProcessError struct {
	Command  string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ProcessError) Error() string {
	msg := fmt.Sprintf("%s failed", e.Command)
	if e.ExitCode != 0 {
		msg += fmt.Sprintf(" (exit code %d)", e.ExitCode)
	}
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	} else if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProcessError) Unwrap() error { return e.Err }

// UpstreamError is returned when the GitHub API (or another remote service) answers
// with a non-2xx status or cannot be reached. Status is 0 for transport failures.
type UpstreamError struct {
	Status  int
	Message string
	Err     error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.Status != 0 && e.Message != "":
		return fmt.Sprintf("upstream API error: %d %s", e.Status, e.Message)
	case e.Status != 0:
		return fmt.Sprintf("upstream API error: %d %s", e.Status, http.StatusText(e.Status))
	case e.Err != nil:
		return fmt.Sprintf("upstream request failed: %v", e.Err)
	default:
		return "upstream request failed: " + e.Message
	}
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// ConfigError is returned when a component is used without the configuration it needs.
type ConfigError struct {
	Key     string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Key == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Key, e.Message)
}

// UnauthorizedError is returned when a request carries no valid session token.
type UnauthorizedError struct {
	Message string
}

func (e *UnauthorizedError) Error() string {
	return e.Message
}

// HTTPStatus maps an error from this module's taxonomy to the status code the
// HTTP surface answers with.
func HTTPStatus(err error) int {
	var (
		validationErr   *ValidationError
		notFoundErr     *NotFoundError
		preconditionErr *PreconditionError
		processErr      *ProcessError
		upstreamErr     *UpstreamError
		configErr       *ConfigError
		unauthErr       *UnauthorizedError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case stderrors.As(err, &validationErr):
		return http.StatusBadRequest
	case stderrors.As(err, &unauthErr):
		return http.StatusUnauthorized
	case stderrors.As(err, &notFoundErr):
		return http.StatusNotFound
	case stderrors.As(err, &preconditionErr):
		return http.StatusPreconditionFailed
	case stderrors.As(err, &upstreamErr):
		return http.StatusBadGateway
	case stderrors.As(err, &configErr):
		return http.StatusServiceUnavailable
	case stderrors.As(err, &processErr):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
