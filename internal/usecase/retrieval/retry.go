package retrieval

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/pai-oys/orda-service/internal/domain"
	"github.com/pai-oys/orda-service/internal/domain/search/query"
	"github.com/pai-oys/orda-service/internal/domain/search/result"
)

// backoffBase is the wait after the first transient failure; it doubles
// after each further failure (1s, 2s, 4s, ...). Attempt timeouts grow
// linearly, backoff geometrically: independent knobs.
const backoffBase = time.Second

// Resolve drives one category to a terminal outcome: up to MaxRetries
// attempts with growing timeouts, backoff between transient failures,
// immediate exhaustion on anything non-transient. Never returns an error;
// failure is reported inside the CategoryResult.
func (s *Service) Resolve(ctx context.Context, sq query.SubQuery) result.CategoryResult {
	cat := sq.Category()
	var lastErr error

	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return result.NewExhausted(cat, sq.Limit(), attempt-1, result.ClassifyFailure(err))
		}

		if attempt > 1 {
			if err := s.clock.Sleep(ctx, backoffBase<<(attempt-2)); err != nil {
				return result.NewExhausted(cat, sq.Limit(), attempt-1, result.ClassifyFailure(err))
			}
		}

		timeout := s.baseTimeout * time.Duration(attempt)
		attemptStart := s.clock.Now()
		items, err := s.searcher.Execute(ctx, sq, timeout)
		s.logger.Debug("search attempt",
			zap.String("category", cat.String()),
			zap.Int("attempt", attempt),
			zap.Duration("timeout", timeout),
			zap.Duration("elapsed", s.clock.Now().Sub(attemptStart)),
			zap.String("outcome", outcomeLabel(err)),
		)
		if err == nil {
			return result.NewCategoryResult(cat, items, sq.Limit(), attempt)
		}
		lastErr = err

		// The caller's own deadline or cancellation ends resolution now, even
		// when the transport classified the failure as an attempt timeout.
		if ctx.Err() != nil {
			return result.NewExhausted(cat, sq.Limit(), attempt, result.ClassifyFailure(ctx.Err()))
		}

		if !transient(err) {
			return result.NewExhausted(cat, sq.Limit(), attempt, result.ClassifyFailure(err))
		}
	}

	return result.NewExhausted(cat, sq.Limit(), s.maxRetries, result.ClassifyFailure(lastErr))
}

// transient reports whether another attempt could reasonably succeed.
func transient(err error) bool {
	return errors.Is(err, domain.ErrReadTimeout) || errors.Is(err, domain.ErrConnectTimeout)
}

func outcomeLabel(err error) string {
	if err == nil {
		return "success"
	}
	return string(result.ClassifyFailure(err).Kind())
}
