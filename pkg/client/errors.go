package client

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned when the token is missing, expired or revoked
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound is returned when the product or favorite does not exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidRequest is returned when the server rejected the input
	ErrInvalidRequest = errors.New("invalid request")

	// ErrTransient is returned for network failures, timeouts and 409/429/5xx
	ErrTransient = errors.New("temporarily unavailable")

	// ErrSessionClosed is returned after logout
	ErrSessionClosed = errors.New("session closed")
)

// APIError is a non-2xx response. It matches one of the sentinels above
// via errors.Is.
type APIError struct {
	Status  int
	Code    string
	Message string
	kind    error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d %s: %s", e.Status, e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.kind
}

func kindForStatus(status int) error {
	switch {
	case status == 401 || status == 403:
		return ErrUnauthorized
	case status == 404:
		return ErrNotFound
	case status == 400 || status == 422:
		return ErrInvalidRequest
	default:
		return ErrTransient
	}
}
