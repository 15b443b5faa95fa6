package orda

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	dbRedis "github.com/pai-oys/orda-service/internal/db/redis"
	"github.com/pai-oys/orda-service/internal/metrics"
	"github.com/pai-oys/orda-service/internal/repository/searchcache"
	openaiGen "github.com/pai-oys/orda-service/internal/transport/openai"
	"github.com/pai-oys/orda-service/internal/transport/vectordb"
	chatuc "github.com/pai-oys/orda-service/internal/usecase/chat"
	retrievaluc "github.com/pai-oys/orda-service/internal/usecase/retrieval"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultCacheTTL         = 10 * time.Minute
)

// Client is the orda SDK entry point.
type Client struct {
	store   *dbRedis.Store
	backend *vectordb.Client
	retrSvc *retrievaluc.Service
	chatSvc *chatuc.Service
	obs     *observer
}

// New creates a Client for the given backend.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.backendURL == "" {
		return nil, errors.New("orda: backend URL required (use WithBackend)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	// Internal packages log through zap; the public surface stays silent
	// and reports through the op-level observer instead.
	backend := vectordb.NewClient(&vectordb.Config{
		BaseURL:        cfg.backendURL,
		ConnectTimeout: cfg.connectTimeout,
		Logger:         zap.NewNop(),
	})

	var store *dbRedis.Store
	var searcher retrievaluc.Searcher = backend
	if len(cfg.cacheAddrs) > 0 {
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.cacheAddrs,
			Password: cfg.cachePassword,
		})
		if err != nil {
			return nil, fmt.Errorf("orda: create cache store: %w", err)
		}
		if err := store.WaitForReady(context.Background(), defaultReadinessTimeout); err != nil {
			store.Close()
			return nil, fmt.Errorf("orda: cache not ready: %w", err)
		}

		ttl := cfg.cacheTTL
		if ttl <= 0 {
			ttl = defaultCacheTTL
		}
		searcher = searchcache.New(backend, store, ttl, metrics.SearchCacheTotal, zap.NewNop())
	}

	retrSvc := retrievaluc.New(searcher, retrievaluc.Config{
		BaseTimeout: cfg.baseTimeout,
		MaxRetries:  cfg.maxRetries,
		TopK:        cfg.topK,
	})

	var chatSvc *chatuc.Service
	if cfg.answer.APIKey != "" {
		chatSvc = chatuc.New(retrSvc, newGenerator(cfg.answer), chatuc.Config{})
	}

	return &Client{
		store:   store,
		backend: backend,
		retrSvc: retrSvc,
		chatSvc: chatSvc,
		obs:     obs,
	}, nil
}

func newGenerator(p AnswerProvider) *openaiGen.Generator {
	if p.BaseURL == "" {
		p.BaseURL = "https://api.upstage.ai/v1"
	}
	if p.Model == "" {
		p.Model = "solar-pro"
	}
	if p.Name == "" {
		p.Name = "upstage"
	}

	return openaiGen.NewGenerator(&openaiGen.Config{
		APIKey:   p.APIKey,
		BaseURL:  p.BaseURL,
		Model:    p.Model,
		Provider: p.Name,
		Logger:   zap.NewNop(),
	})
}

// Close releases the cache connection, if any.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks backend connectivity, and cache connectivity when a cache
// is configured.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err := c.backend.Probe(ctx); err != nil {
		return fmt.Errorf("ping backend: %w", err)
	}
	if c.store != nil {
		if err := c.store.Ping(ctx); err != nil {
			return fmt.Errorf("ping cache: %w", err)
		}
	}
	return nil
}

// Chat retrieves places for the message and generates an itinerary answer.
// duration is free text like "3박4일"; empty assumes a three-day trip.
func (c *Client) Chat(ctx context.Context, message, duration string) (ans Answer, err error) {
	start := time.Now()
	defer func() { c.obs.observeRetrieval("chat", start, ans.Sources, err) }()

	if c.chatSvc == nil {
		return Answer{}, errors.New("orda: answer provider not configured (use WithAnswerProvider)")
	}

	out, err := c.chatSvc.Ask(ctx, message, duration)
	if err != nil {
		return Answer{}, fmt.Errorf("chat: %w", err)
	}

	return Answer{
		Text:             out.Text,
		Partial:          out.Partial,
		Sources:          fromAggregate(&out.Retrieved).Outcomes,
		RetrievalElapsed: out.RetrievalElapsed,
	}, nil
}
