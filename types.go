package orda

import (
	"time"

	"github.com/pai-oys/orda-service/internal/domain/search/category"
	"github.com/pai-oys/orda-service/internal/domain/search/result"
)

// Category identifies one retrieval domain.
type Category string

// The four categories a trip query fans out over.
const (
	Lodging    = Category(category.Lodging)
	Attraction = Category(category.Attraction)
	Food       = Category(category.Food)
	Event      = Category(category.Event)
)

// Place is a single retrieved record.
type Place struct {
	ID       string
	Name     string
	Score    float64
	Address  string
	Label    string
	Content  string
	Metadata map[string]string
}

// CategoryOutcome is the terminal result of one category's retrieval.
type CategoryOutcome struct {
	Category Category
	Places   []Place
	Attempts int
	// Failed marks a category whose retry budget ran out. FailureKind then
	// holds read_timeout, connect_timeout, backend_error or cancelled.
	Failed        bool
	FailureKind   string
	FailureDetail string
}

// SearchResult is the fan-out outcome: one entry per requested category,
// in request order.
type SearchResult struct {
	Outcomes  []CategoryOutcome
	AnyFailed bool
	Elapsed   time.Duration
}

// Get returns the outcome for a category.
func (r *SearchResult) Get(cat Category) (CategoryOutcome, bool) {
	for _, o := range r.Outcomes {
		if o.Category == cat {
			return o, true
		}
	}
	return CategoryOutcome{}, false
}

// Answer is a generated itinerary.
type Answer struct {
	Text string
	// Partial marks answers built from an incomplete retrieval.
	Partial bool
	// Sources are the retrieved places the itinerary drew from, in
	// category order.
	Sources          []CategoryOutcome
	RetrievalElapsed time.Duration
}

func fromAggregate(agg *result.AggregateResult) SearchResult {
	cats := agg.Categories()
	outcomes := make([]CategoryOutcome, 0, len(cats))
	for _, cat := range cats {
		res, _ := agg.Get(cat)
		outcomes = append(outcomes, fromCategoryResult(&res))
	}

	return SearchResult{
		Outcomes:  outcomes,
		AnyFailed: agg.AnyFailed(),
		Elapsed:   agg.Elapsed(),
	}
}

func fromCategoryResult(res *result.CategoryResult) CategoryOutcome {
	places := make([]Place, 0, len(res.Items()))
	for _, it := range res.Items() {
		places = append(places, Place{
			ID:       it.ID(),
			Name:     it.Title(),
			Score:    it.Score(),
			Address:  it.Address(),
			Label:    it.Label(),
			Content:  it.Content(),
			Metadata: it.Metadata(),
		})
	}

	out := CategoryOutcome{
		Category: Category(res.Category()),
		Places:   places,
		Attempts: res.Attempts(),
	}
	if f, ok := res.Failure(); ok {
		out.Failed = true
		out.FailureKind = string(f.Kind())
		out.FailureDetail = f.Detail()
	}

	return out
}
