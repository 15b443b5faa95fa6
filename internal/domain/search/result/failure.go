package result

import (
	"context"
	"errors"

	"github.com/pai-oys/orda-service/internal/domain"
)

// FailureKind classifies why a category's resolution gave up.
type FailureKind string

// Failure kind constants.
const (
	KindReadTimeout    FailureKind = "read_timeout"
	KindConnectTimeout FailureKind = "connect_timeout"
	// KindBackend covers every non-timeout backend failure.
	KindBackend FailureKind = "backend_error"
	// KindCancelled marks resolutions aborted by the caller's context.
	KindCancelled FailureKind = "cancelled"
)

// Failure is the terminal error marker attached to an exhausted category.
type Failure struct {
	kind   FailureKind
	detail string
}

// NewFailure creates a failure marker.
func NewFailure(kind FailureKind, detail string) Failure {
	return Failure{kind: kind, detail: detail}
}

// ClassifyFailure maps a resolution error to its failure marker.
func ClassifyFailure(err error) Failure {
	switch {
	case err == nil:
		return Failure{}
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		return Failure{kind: KindCancelled, detail: err.Error()}
	case errors.Is(err, domain.ErrReadTimeout):
		return Failure{kind: KindReadTimeout, detail: err.Error()}
	case errors.Is(err, domain.ErrConnectTimeout):
		return Failure{kind: KindConnectTimeout, detail: err.Error()}
	default:
		return Failure{kind: KindBackend, detail: err.Error()}
	}
}

// Kind returns the failure classification.
func (f Failure) Kind() FailureKind { return f.kind }

// Detail returns the human-readable failure detail.
func (f Failure) Detail() string { return f.detail }
