package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCategory signals an unknown or duplicated category tag.
	ErrInvalidCategory = errors.New("invalid category")
	// ErrEmptyQuery signals an empty or whitespace-only query text.
	ErrEmptyQuery = errors.New("empty query text")
	// ErrQueryTooLong signals query text above the length limit.
	ErrQueryTooLong = errors.New("query too long")

	// ErrReadTimeout signals that the backend accepted the connection but
	// did not deliver a full response within the attempt timeout.
	ErrReadTimeout = errors.New("read timeout")
	// ErrConnectTimeout signals that the connection to the backend could not
	// be established within the connect timeout.
	ErrConnectTimeout = errors.New("connect timeout")
	// ErrBackendFailure signals a non-timeout backend failure. Never retried.
	ErrBackendFailure = errors.New("backend failure")

	// ErrAnswerProviderError signals an answer provider (LLM) failure.
	ErrAnswerProviderError = errors.New("answer provider error")
)

// BackendError wraps ErrBackendFailure with the failure's classification.
type BackendError struct {
	// Kind is one of "connect", "http_status", "encode", "decode", "network".
	Kind string
	Err  error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s (%s): %v", ErrBackendFailure.Error(), e.Kind, e.Err)
}

func (e *BackendError) Unwrap() error { return ErrBackendFailure }

// NewBackendError creates a classified backend failure.
func NewBackendError(kind string, err error) error {
	return &BackendError{Kind: kind, Err: err}
}
