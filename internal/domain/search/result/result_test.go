package result

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/pai-oys/orda-service/internal/domain"
	"github.com/pai-oys/orda-service/internal/domain/search/category"
)

func makeItems(t *testing.T, n int) []Item {
	t.Helper()
	items := make([]Item, n)
	for i := range items {
		items[i] = NewItem(
			fmt.Sprintf("place-%d", i), fmt.Sprintf("장소 %d", i), 0.9-float64(i)*0.01,
			"제주특별자치도 제주시", "관광지", "설명", nil,
		)
	}
	return items
}

func TestAggregate_ExactCategorySet(t *testing.T) {
	results := []CategoryResult{
		NewCategoryResult(category.Lodging, makeItems(t, 3), 5, 1),
		NewCategoryResult(category.Attraction, makeItems(t, 5), 5, 1),
		NewExhausted(category.Food, 5, 3, NewFailure(KindReadTimeout, "read timeout")),
		NewCategoryResult(category.Event, nil, 5, 1),
	}

	agg := Aggregate(results, 250*time.Millisecond)

	want := []category.Category{category.Lodging, category.Attraction, category.Food, category.Event}
	if !reflect.DeepEqual(agg.Categories(), want) {
		t.Errorf("Categories() = %v, want %v", agg.Categories(), want)
	}
	for _, c := range want {
		if _, ok := agg.Get(c); !ok {
			t.Errorf("category %q missing from aggregate", c)
		}
	}
	if _, ok := agg.Get("hotel"); ok {
		t.Error("aggregate contains a category that was never requested")
	}
	// Пустой список у упавшей категории — ключ всё равно присутствует.
	food, _ := agg.Get(category.Food)
	if len(food.Items()) != 0 || !food.Exhausted() {
		t.Errorf("exhausted category: items=%d exhausted=%v", len(food.Items()), food.Exhausted())
	}
}

func TestAggregate_AnyFailed(t *testing.T) {
	ok := NewCategoryResult(category.Food, makeItems(t, 2), 5, 1)
	bad := NewExhausted(category.Event, 5, 1, NewFailure(KindBackend, "http_status"))

	if agg := Aggregate([]CategoryResult{ok}, 0); agg.AnyFailed() {
		t.Error("AnyFailed() = true with no failures")
	}
	if agg := Aggregate([]CategoryResult{ok, bad}, 0); !agg.AnyFailed() {
		t.Error("AnyFailed() = false with an exhausted category")
	}
}

func TestAggregate_ReclampsToRequestedLimit(t *testing.T) {
	// Backend returned more than requested.
	over := NewCategoryResult(category.Attraction, makeItems(t, 9), 5, 1)
	agg := Aggregate([]CategoryResult{over}, 0)

	got, _ := agg.Get(category.Attraction)
	if len(got.Items()) != 5 {
		t.Fatalf("items after clamp = %d, want 5", len(got.Items()))
	}
	if got.Items()[0].ID() != "place-0" || got.Items()[4].ID() != "place-4" {
		t.Error("clamp did not keep the first top_k items in order")
	}
}

func TestAggregate_Idempotent(t *testing.T) {
	results := []CategoryResult{
		NewCategoryResult(category.Lodging, makeItems(t, 7), 5, 2),
		NewExhausted(category.Food, 5, 3, NewFailure(KindConnectTimeout, "connect timeout")),
	}
	a := Aggregate(results, time.Second)
	b := Aggregate(results, time.Second)

	if !reflect.DeepEqual(a.Categories(), b.Categories()) {
		t.Error("Categories() differ between identical Aggregate calls")
	}
	for _, c := range a.Categories() {
		ra, _ := a.Get(c)
		rb, _ := b.Get(c)
		if !reflect.DeepEqual(ra.Items(), rb.Items()) {
			t.Errorf("%s: items differ between identical Aggregate calls", c)
		}
	}
	if a.AnyFailed() != b.AnyFailed() || a.Elapsed() != b.Elapsed() {
		t.Error("aggregate flags differ between identical Aggregate calls")
	}
}

func TestAggregate_Empty(t *testing.T) {
	agg := Aggregate(nil, 0)
	if len(agg.Categories()) != 0 || agg.AnyFailed() || agg.TotalItems() != 0 {
		t.Errorf("empty aggregate not empty: %+v", agg)
	}
}

func TestAggregate_TotalItems(t *testing.T) {
	agg := Aggregate([]CategoryResult{
		NewCategoryResult(category.Lodging, makeItems(t, 3), 5, 1),
		NewCategoryResult(category.Food, makeItems(t, 8), 5, 1), // clamped to 5
	}, 0)
	if agg.TotalItems() != 8 {
		t.Errorf("TotalItems() = %d, want 8", agg.TotalItems())
	}
}

func TestCategoryResult_Failure(t *testing.T) {
	ok := NewCategoryResult(category.Food, nil, 5, 1)
	if _, has := ok.Failure(); has || ok.Exhausted() {
		t.Error("successful result reports a failure")
	}

	bad := NewExhausted(category.Food, 5, 3, NewFailure(KindReadTimeout, "deadline"))
	f, has := bad.Failure()
	if !has || !bad.Exhausted() {
		t.Fatal("exhausted result does not report a failure")
	}
	if f.Kind() != KindReadTimeout || f.Detail() != "deadline" {
		t.Errorf("failure = %q/%q", f.Kind(), f.Detail())
	}
	if bad.Attempts() != 3 {
		t.Errorf("Attempts() = %d, want 3", bad.Attempts())
	}
}

func TestClassifyFailure(t *testing.T) {
	cases := []struct {
		err  error
		want FailureKind
	}{
		{fmt.Errorf("attempt 3: %w", domain.ErrReadTimeout), KindReadTimeout},
		{fmt.Errorf("dial: %w", domain.ErrConnectTimeout), KindConnectTimeout},
		{domain.NewBackendError("http_status", errors.New("unexpected status 500")), KindBackend},
		{errors.New("json: cannot unmarshal"), KindBackend},
		{context.Canceled, KindCancelled},
		{context.DeadlineExceeded, KindCancelled},
		{fmt.Errorf("request: %w", context.Canceled), KindCancelled},
	}
	for _, tc := range cases {
		if got := ClassifyFailure(tc.err).Kind(); got != tc.want {
			t.Errorf("ClassifyFailure(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
