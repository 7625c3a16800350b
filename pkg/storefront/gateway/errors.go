package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrTimeout is returned when a request exceeds the client timeout.
	ErrTimeout = errors.New("gateway: request timed out")
	// ErrNetwork is returned when the server could not be reached.
	ErrNetwork = errors.New("gateway: network error")
	// ErrUnauthorized is matched by any 401 response. The stored token is
	// cleared before it is returned.
	ErrUnauthorized = errors.New("gateway: unauthorized")
)

// APIError is a non-2xx response decoded from the error envelope.
type APIError struct {
	Status  int
	Code    string
	Message string
	Details any
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("gateway: %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("gateway: %d: %s", e.Status, e.Message)
}

func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

func (e *APIError) retryable() bool {
	return e.Status >= http.StatusInternalServerError || e.Status == http.StatusTooManyRequests
}

type transportError struct {
	kind error
	err  error
}

func (e *transportError) Error() string {
	return fmt.Sprintf("%s: %v", e.kind, e.err)
}

func (e *transportError) Unwrap() []error {
	return []error{e.kind, e.err}
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

func isRetryable(err error) bool {
	if errors.Is(err, ErrTimeout) || errors.Is(err, ErrNetwork) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.retryable()
	}
	return false
}
