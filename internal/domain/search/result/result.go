package result

import (
	"time"

	"github.com/pai-oys/orda-service/internal/domain/search/category"
)

// Item is a single backend record.
type Item struct {
	id       string
	title    string
	score    float64
	address  string
	label    string
	content  string
	metadata map[string]string
}

// NewItem creates a result item.
func NewItem(
	id, title string, score float64,
	address, label, content string,
	metadata map[string]string,
) Item {
	return Item{
		id: id, title: title, score: score,
		address: address, label: label, content: content,
		metadata: metadata,
	}
}

// ID returns the record identifier.
func (i *Item) ID() string { return i.id }

// Title returns the record title (place name).
func (i *Item) Title() string { return i.title }

// Score returns the relevance score.
func (i *Item) Score() float64 { return i.score }

// Address returns the place address, if the backend sent one.
func (i *Item) Address() string { return i.address }

// Label returns the backend's own category label for the record.
func (i *Item) Label() string { return i.label }

// Content returns the record body text.
func (i *Item) Content() string { return i.content }

// Metadata returns arbitrary extra fields from the backend.
func (i *Item) Metadata() map[string]string { return i.metadata }

// CategoryResult is the terminal outcome of one category's resolution.
// Immutable once produced.
type CategoryResult struct {
	cat      category.Category
	items    []Item
	limit    int
	attempts int
	failure  *Failure
}

// NewCategoryResult creates a settled successful outcome.
func NewCategoryResult(cat category.Category, items []Item, limit, attempts int) CategoryResult {
	return CategoryResult{cat: cat, items: items, limit: limit, attempts: attempts}
}

// NewExhausted creates a terminal failure outcome with empty items.
func NewExhausted(cat category.Category, limit, attempts int, failure Failure) CategoryResult {
	return CategoryResult{cat: cat, limit: limit, attempts: attempts, failure: &failure}
}

// Category returns the category tag.
func (r *CategoryResult) Category() category.Category { return r.cat }

// Items returns the ordered result items.
func (r *CategoryResult) Items() []Item { return r.items }

// Limit returns the result count that was requested from the backend.
func (r *CategoryResult) Limit() int { return r.limit }

// Attempts returns how many attempts the resolution made.
func (r *CategoryResult) Attempts() int { return r.attempts }

// Exhausted reports whether the resolution gave up without results.
func (r *CategoryResult) Exhausted() bool { return r.failure != nil }

// Failure returns the terminal failure marker, if any.
func (r *CategoryResult) Failure() (Failure, bool) {
	if r.failure == nil {
		return Failure{}, false
	}
	return *r.failure, true
}

// AggregateResult is the complete per-category output of one search.
// The category set always equals the input query's category set exactly.
type AggregateResult struct {
	categories []category.Category
	results    map[category.Category]CategoryResult
	elapsed    time.Duration
	anyFailed  bool
}

// Aggregate merges terminal category results into a single snapshot.
// Pure: idempotent, no I/O. Each category's items are re-clamped to its own
// requested limit (the backend is not trusted to honor top_k exactly).
func Aggregate(results []CategoryResult, elapsed time.Duration) AggregateResult {
	agg := AggregateResult{
		categories: make([]category.Category, 0, len(results)),
		results:    make(map[category.Category]CategoryResult, len(results)),
		elapsed:    elapsed,
	}
	for _, r := range results {
		if r.limit > 0 && len(r.items) > r.limit {
			clamped := make([]Item, r.limit)
			copy(clamped, r.items[:r.limit])
			r.items = clamped
		}
		agg.categories = append(agg.categories, r.cat)
		agg.results[r.cat] = r
		if r.Exhausted() {
			agg.anyFailed = true
		}
	}
	return agg
}

// Categories returns the category tags in query order.
func (a *AggregateResult) Categories() []category.Category {
	out := make([]category.Category, len(a.categories))
	copy(out, a.categories)
	return out
}

// Get returns the terminal result for a category.
func (a *AggregateResult) Get(cat category.Category) (CategoryResult, bool) {
	r, ok := a.results[cat]
	return r, ok
}

// Elapsed returns the wall time from first dispatch to last settlement.
func (a *AggregateResult) Elapsed() time.Duration { return a.elapsed }

// AnyFailed reports whether at least one category exhausted its attempts.
func (a *AggregateResult) AnyFailed() bool { return a.anyFailed }

// TotalItems returns the item count across all categories.
func (a *AggregateResult) TotalItems() int {
	n := 0
	for _, r := range a.results {
		n += len(r.items)
	}
	return n
}
