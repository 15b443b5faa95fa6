package searchcache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/pai-oys/orda-service/internal/db"
	"github.com/pai-oys/orda-service/internal/domain/search/category"
	"github.com/pai-oys/orda-service/internal/domain/search/query"
	"github.com/pai-oys/orda-service/internal/domain/search/result"
)

type mockSearcher struct {
	items []result.Item
	err   error
	calls int
}

func (m *mockSearcher) Execute(
	_ context.Context, _ query.SubQuery, _ time.Duration,
) ([]result.Item, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.items, nil
}

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

func newTestCachedSearcher(t *testing.T, inner *mockSearcher) (*CachedSearcher, *mockKVStore) {
	t.Helper()
	ms := &mockKVStore{}
	cs := New(inner, ms, 10*time.Minute, nil, zap.NewNop())
	return cs, ms
}

func testSub(t *testing.T, text string, limit int) query.SubQuery {
	t.Helper()
	sq, err := query.Build(text, category.Food, limit)
	if err != nil {
		t.Fatalf("query.Build: %v", err)
	}
	return sq
}

func testItems(n int) []result.Item {
	items := make([]result.Item, n)
	for i := range items {
		items[i] = result.NewItem(
			"", "맛집", 0.8, "제주시", "식당", "본문", map[string]string{"area": "제주"},
		)
	}
	return items
}
