package query

import (
	"fmt"
	"strings"

	"github.com/pai-oys/orda-service/internal/domain"
	"github.com/pai-oys/orda-service/internal/domain/search/category"
	"github.com/pai-oys/orda-service/internal/domain/search/mode"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed query text length.
	MaxQueryLength = 4096
	DefaultTopK    = 5
	// MaxTopK is the largest per-request result count the backend answers
	// reliably; bigger targets go through batched resolution.
	MaxTopK = 20
)

// Query is a validated user query: raw text plus the ordered category set.
// Created once per user turn, never mutated.
type Query struct {
	text       string
	categories []category.Category
}

// New validates and normalizes a user query.
// An empty category set is allowed and makes the search a no-op.
// Duplicate and unknown tags are rejected.
func New(text string, categories []category.Category) (Query, error) {
	if strings.TrimSpace(text) == "" {
		return Query{}, domain.ErrEmptyQuery
	}
	if len(text) > MaxQueryLength {
		return Query{}, fmt.Errorf("%w (max %d chars)", domain.ErrQueryTooLong, MaxQueryLength)
	}

	seen := make(map[category.Category]struct{}, len(categories))
	cats := make([]category.Category, 0, len(categories))
	for _, c := range categories {
		if !c.IsValid() {
			return Query{}, fmt.Errorf("%w: %q", domain.ErrInvalidCategory, c)
		}
		if _, dup := seen[c]; dup {
			return Query{}, fmt.Errorf("%w: duplicate category %q", domain.ErrInvalidCategory, c)
		}
		seen[c] = struct{}{}
		cats = append(cats, c)
	}

	return Query{text: text, categories: cats}, nil
}

// Text returns the raw user query text.
func (q *Query) Text() string { return q.text }

// Categories returns the ordered category set as a copy.
func (q *Query) Categories() []category.Category {
	out := make([]category.Category, len(q.categories))
	copy(out, q.categories)
	return out
}

// SubQuery is a category-specific expansion of a user query.
// One per category per query; immutable; discarded after resolution.
type SubQuery struct {
	cat        category.Category
	text       string
	limit      int
	searchMode mode.Mode
}

// Per-category search keywords appended to the raw text so the backend's
// nearest neighbours land in the right domain (제주도 + domain terms).
var keywords = map[category.Category]string{
	category.Lodging:    "제주도 숙소 호텔",
	category.Attraction: "제주도 관광지",
	category.Food:       "제주도 맛집",
	category.Event:      "제주도 행사 축제",
}

// Build derives the SubQuery for one category. Deterministic and pure.
// Defaults: limit=5, clamped to 1..20; mode is always similarity.
func Build(text string, cat category.Category, limit int) (SubQuery, error) {
	if strings.TrimSpace(text) == "" {
		return SubQuery{}, domain.ErrEmptyQuery
	}
	if !cat.IsValid() {
		return SubQuery{}, fmt.Errorf("%w: %q", domain.ErrInvalidCategory, cat)
	}
	if limit <= 0 {
		limit = DefaultTopK
	}
	if limit > MaxTopK {
		limit = MaxTopK
	}

	return SubQuery{
		cat:        cat,
		text:       text + " " + keywords[cat],
		limit:      limit,
		searchMode: mode.Similarity,
	}, nil
}

// WithText returns a copy of the sub-query carrying different query text.
// Used by batched resolution to vary the phrasing between batches.
func (s SubQuery) WithText(text string) SubQuery {
	s.text = text
	return s
}

// WithLimit returns a copy of the sub-query with a different result count,
// clamped the same way Build clamps.
func (s SubQuery) WithLimit(limit int) SubQuery {
	if limit <= 0 {
		limit = DefaultTopK
	}
	if limit > MaxTopK {
		limit = MaxTopK
	}
	s.limit = limit
	return s
}

// Category returns the category tag.
func (s SubQuery) Category() category.Category { return s.cat }

// Text returns the expanded query text sent to the backend.
func (s SubQuery) Text() string { return s.text }

// Limit returns the requested result count.
func (s SubQuery) Limit() int { return s.limit }

// Mode returns the search strategy.
func (s SubQuery) Mode() mode.Mode { return s.searchMode }
