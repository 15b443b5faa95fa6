package retrieval

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pai-oys/orda-service/internal/domain/search/query"
	"github.com/pai-oys/orda-service/internal/domain/search/result"
)

// Batched resolution policy for targets above the single-request ceiling.
const (
	batchSize  = 6
	batchPause = 2 * time.Second
)

// resolveBatched resolves one category. Targets at or below the backend's
// dependable single-request ceiling go through one Resolve; bigger targets
// are split into batches with varied phrasing, deduplicated by title, with a
// pause between batches so the backend is not hammered. Each batch carries
// full retry semantics; a failed batch is skipped, not fatal.
func (s *Service) resolveBatched(ctx context.Context, sq query.SubQuery, target int) result.CategoryResult {
	if target <= query.MaxTopK {
		return s.Resolve(ctx, sq)
	}

	cat := sq.Category()
	batches := (target + batchSize - 1) / batchSize

	var (
		items       []result.Item
		seen        = make(map[string]struct{})
		attempts    int
		lastFailure result.Failure
		anyFailure  bool
	)

	for batch := 0; batch < batches; batch++ {
		want := batchSize
		if rest := target - len(items); rest < want {
			want = rest
		}

		bsq := sq.WithText(variant(sq.Text(), batch)).WithLimit(want)
		res := s.Resolve(ctx, bsq)
		attempts += res.Attempts()

		if f, failed := res.Failure(); failed {
			lastFailure, anyFailure = f, true
			if f.Kind() == result.KindCancelled {
				break
			}
			continue // skip this batch, the next phrasing may fare better
		}

		for _, it := range res.Items() {
			if _, dup := seen[it.Title()]; dup {
				continue
			}
			seen[it.Title()] = struct{}{}
			items = append(items, it)
		}

		if len(items) >= target {
			break
		}
		// Enough coverage after three batches; stop before the caller's
		// patience runs out.
		if batch >= 2 && len(items) >= target/2 {
			break
		}

		if batch < batches-1 {
			if err := s.clock.Sleep(ctx, batchPause); err != nil {
				break
			}
		}
	}

	if len(items) == 0 && anyFailure {
		return result.NewExhausted(cat, target, attempts, lastFailure)
	}
	if len(items) > target {
		items = items[:target]
	}
	return result.NewCategoryResult(cat, items, target, attempts)
}

// variant rephrases the query between batches so the backend's nearest
// neighbours differ: batch 0 keeps the text, later ones swap 추천 for
// 명소 리스트 / 베스트 N. Text without 추천 passes through unchanged.
func variant(text string, batch int) string {
	switch {
	case batch == 0:
		return text
	case batch == 1:
		return strings.ReplaceAll(text, "추천", "명소 리스트")
	default:
		return strings.ReplaceAll(text, "추천", fmt.Sprintf("베스트 %d", batch+1))
	}
}
