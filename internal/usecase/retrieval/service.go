package retrieval

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pai-oys/orda-service/internal/domain/search/category"
	"github.com/pai-oys/orda-service/internal/domain/search/plan"
	"github.com/pai-oys/orda-service/internal/domain/search/query"
	"github.com/pai-oys/orda-service/internal/domain/search/result"
	"github.com/pai-oys/orda-service/internal/metrics"
)

// Default retry policy.
const (
	DefaultBaseTimeout = 30 * time.Second
	DefaultMaxRetries  = 3
)

// Config holds the retry and fan-out policy. All knobs are explicit;
// nothing is read from ambient globals.
type Config struct {
	// BaseTimeout is the first attempt's budget; attempt n gets BaseTimeout * n.
	BaseTimeout time.Duration
	// MaxRetries bounds attempts per category, counting the first one.
	MaxRetries int
	// TopK is the per-category result count for plain Search.
	TopK int
}

// Service is the fan-out retrieval scheduler with per-category retry.
type Service struct {
	searcher    Searcher
	clock       Clock
	logger      *zap.Logger
	baseTimeout time.Duration
	maxRetries  int
	topK        int
}

// New creates a retrieval service. Zero config fields fall back to defaults.
func New(searcher Searcher, cfg Config) *Service {
	if cfg.BaseTimeout <= 0 {
		cfg.BaseTimeout = DefaultBaseTimeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.TopK <= 0 {
		cfg.TopK = query.DefaultTopK
	}
	return &Service{
		searcher:    searcher,
		clock:       systemClock{},
		logger:      zap.NewNop(),
		baseTimeout: cfg.BaseTimeout,
		maxRetries:  cfg.MaxRetries,
		topK:        cfg.TopK,
	}
}

// WithClock returns a copy of the service driven by the given clock.
func (s *Service) WithClock(c Clock) *Service {
	cp := *s
	cp.clock = c
	return &cp
}

// WithLogger returns a copy of the service that records attempt-level
// debug events through the given logger.
func (s *Service) WithLogger(l *zap.Logger) *Service {
	cp := *s
	cp.logger = l
	return &cp
}

// Search resolves every category of the query concurrently and returns one
// aggregate over exactly the query's category set. Partial failure is a
// successful response; only structural errors fail the call.
func (s *Service) Search(ctx context.Context, q query.Query) (result.AggregateResult, error) {
	return s.SearchTopK(ctx, q, 0)
}

// SearchTopK is Search with a per-call result count override; 0 keeps the
// configured default.
func (s *Service) SearchTopK(ctx context.Context, q query.Query, topK int) (result.AggregateResult, error) {
	if topK <= 0 {
		topK = s.topK
	}
	return s.run(ctx, q, func(category.Category) int { return topK })
}

// SearchPlanned is Search with per-category result counts taken from the
// trip plan instead of the flat TopK.
func (s *Service) SearchPlanned(ctx context.Context, q query.Query, p plan.Plan) (result.AggregateResult, error) {
	return s.run(ctx, q, func(c category.Category) int {
		if n := p.Count(c); n > 0 {
			return n
		}
		return s.topK
	})
}

type subTarget struct {
	sq     query.SubQuery
	target int
}

func (s *Service) run(
	ctx context.Context, q query.Query, countFor func(category.Category) int,
) (result.AggregateResult, error) {
	start := s.clock.Now()
	cats := q.Categories()

	// Build every sub-query first: a structural error fails the whole search
	// before any network activity.
	subs := make([]subTarget, len(cats))
	for i, cat := range cats {
		target := countFor(cat)
		sq, err := query.Build(q.Text(), cat, target)
		if err != nil {
			return result.AggregateResult{}, fmt.Errorf("build %s sub-query: %w", cat, err)
		}
		subs[i] = subTarget{sq: sq, target: target}
	}

	// One goroutine per category, each writing its own slot. Categories never
	// block or cancel each other; the join waits for every terminal outcome.
	results := make([]result.CategoryResult, len(subs))
	var wg sync.WaitGroup
	for i, st := range subs {
		wg.Add(1)
		go func(i int, st subTarget) {
			defer wg.Done()
			results[i] = s.resolveBatched(ctx, st.sq, st.target)
		}(i, st)
	}
	wg.Wait()

	elapsed := s.clock.Now().Sub(start)
	agg := result.Aggregate(results, elapsed)

	status := "ok"
	if agg.AnyFailed() {
		status = "partial"
	}
	metrics.SearchesTotal.WithLabelValues(status).Inc()
	metrics.SearchDuration.Observe(elapsed.Seconds())

	return agg, nil
}
