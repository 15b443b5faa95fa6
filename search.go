package orda

import (
	"context"
	"fmt"
	"time"

	"github.com/pai-oys/orda-service/internal/domain/search/category"
	"github.com/pai-oys/orda-service/internal/domain/search/plan"
	"github.com/pai-oys/orda-service/internal/domain/search/query"
	"github.com/pai-oys/orda-service/internal/domain/search/result"
)

// SearchBuilder is a fluent builder for fan-out searches.
type SearchBuilder struct {
	client *Client

	text     string
	cats     []Category
	topK     int
	duration string
}

// Search starts a fan-out search for the given query text. Without
// further options every category is searched with the default count.
func (c *Client) Search(text string) *SearchBuilder {
	return &SearchBuilder{client: c, text: text}
}

// Categories narrows the fan-out to the given categories.
// Request order is preserved in the result.
func (b *SearchBuilder) Categories(cats ...Category) *SearchBuilder {
	b.cats = cats
	return b
}

// TopK sets the per-category result count (1..20).
func (b *SearchBuilder) TopK(k int) *SearchBuilder {
	b.topK = k
	return b
}

// ForTrip sizes each category from the trip duration ("3박4일", "2일")
// instead of a flat count. Takes precedence over TopK.
func (b *SearchBuilder) ForTrip(duration string) *SearchBuilder {
	b.duration = duration
	return b
}

// Do runs the fan-out and returns one outcome per requested category.
// A category that exhausts its retries is reported inside its outcome,
// not as a call error.
func (b *SearchBuilder) Do(ctx context.Context) (res SearchResult, err error) {
	start := time.Now()
	defer func() { b.client.obs.observeRetrieval("search", start, res.Outcomes, err) }()

	cats := make([]category.Category, 0, len(b.cats))
	for _, c := range b.cats {
		cats = append(cats, category.Category(c))
	}
	if len(cats) == 0 {
		cats = category.All()
	}

	q, err := query.New(b.text, cats)
	if err != nil {
		return SearchResult{}, fmt.Errorf("search: %w", err)
	}

	var agg result.AggregateResult
	if b.duration != "" {
		agg, err = b.client.retrSvc.SearchPlanned(ctx, q, plan.ForDuration(b.duration))
	} else {
		agg, err = b.client.retrSvc.SearchTopK(ctx, q, b.topK)
	}
	if err != nil {
		return SearchResult{}, fmt.Errorf("search: %w", err)
	}

	return fromAggregate(&agg), nil
}
