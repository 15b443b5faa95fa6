package searchcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/pai-oys/orda-service/internal/db"
	"github.com/pai-oys/orda-service/internal/domain"
	"github.com/pai-oys/orda-service/internal/domain/search/query"
	"github.com/pai-oys/orda-service/internal/domain/search/result"
)

// keySpace is the cache's segment under the service-wide key prefix.
// domain.KeyPrefix is read per call so a config override set in main is
// picked up.
const keySpace = "search_cache:"

// searcher is the consumer interface for the decorated backend (ISP).
type searcher interface {
	Execute(ctx context.Context, sq query.SubQuery, timeout time.Duration) ([]result.Item, error)
}

// store is the consumer interface for the cache backend (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedSearcher caches per-category search results in a key-value store.
// The cache is strictly best-effort: any store failure degrades to a plain
// backend call, never to a request failure.
type CachedSearcher struct {
	inner      searcher
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner searcher,
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedSearcher {
	return &CachedSearcher{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Execute returns cached items or calls the inner searcher.
// Only non-empty successful answers are cached; failures never are, so a
// backend outage does not poison later requests.
func (c *CachedSearcher) Execute(
	ctx context.Context, sq query.SubQuery, timeout time.Duration,
) ([]result.Item, error) {
	key := c.cacheKey(sq)

	if items, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return items, nil
	}

	c.incCache("miss")

	items, err := c.inner.Execute(ctx, sq, timeout)
	if err != nil {
		return nil, err
	}

	if len(items) > 0 {
		c.putToCache(ctx, key, items)
	}
	return items, nil
}

func (c *CachedSearcher) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

// cacheKey hashes everything that shapes the backend answer: category, mode,
// limit and the expanded query text. The attempt timeout is not part of the
// key, it changes patience, not results.
func (c *CachedSearcher) cacheKey(sq query.SubQuery) string {
	h := sha256.Sum256([]byte(
		sq.Category().String() + "|" + string(sq.Mode()) + "|" + strconv.Itoa(sq.Limit()) + "|" + sq.Text(),
	))
	return domain.KeyPrefix + keySpace + hex.EncodeToString(h[:])
}

func (c *CachedSearcher) getFromCache(ctx context.Context, key string) ([]result.Item, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached results", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}

	items, err := decodeItems(data)
	if err != nil {
		c.logger.Warn("Failed to parse cached results", zap.String("key", key), zap.Error(err))
		return nil, false
	}

	return items, true
}

func (c *CachedSearcher) putToCache(ctx context.Context, key string, items []result.Item) {
	data, err := encodeItems(items)
	if err != nil {
		c.logger.Warn("Failed to encode results for cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache results", zap.String("key", key), zap.Error(err))
	}
}
