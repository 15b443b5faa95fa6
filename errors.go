package orda

import "github.com/pai-oys/orda-service/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidCategory     = domain.ErrInvalidCategory
	ErrEmptyQuery          = domain.ErrEmptyQuery
	ErrQueryTooLong        = domain.ErrQueryTooLong
	ErrReadTimeout         = domain.ErrReadTimeout
	ErrConnectTimeout      = domain.ErrConnectTimeout
	ErrBackendFailure      = domain.ErrBackendFailure
	ErrAnswerProviderError = domain.ErrAnswerProviderError
)
