package orda

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	backendURL     string
	connectTimeout time.Duration

	cacheAddrs    []string
	cachePassword string
	cacheTTL      time.Duration

	baseTimeout time.Duration
	maxRetries  int
	topK        int

	answer AnswerProvider

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// AnswerProvider configures the LLM behind Chat. Any OpenAI-compatible
// chat completion endpoint works.
type AnswerProvider struct {
	APIKey  string
	BaseURL string // default: https://api.upstage.ai/v1
	Model   string // default: solar-pro
	Name    string // metric label, default: "upstage"
}

// WithBackend sets the vector search endpoint URL,
// e.g. http://localhost:8000/api/v1/search. Required.
func WithBackend(url string) Option {
	return optionFunc(func(c *clientConfig) {
		c.backendURL = url
	})
}

// WithConnectTimeout bounds TCP connection establishment to the backend.
// Default: 10s.
func WithConnectTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.connectTimeout = d
	})
}

// WithRedisCache caches successful category results in a Redis instance.
func WithRedisCache(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheAddrs = []string{addr}
		c.cachePassword = password
	})
}

// WithCacheTTL sets how long cached category results live.
// Default: 10 minutes.
func WithCacheTTL(ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheTTL = ttl
	})
}

// WithRetryPolicy sets the per-attempt base timeout (attempt n waits
// base*n) and the attempt budget per category.
// Defaults: 30s base, 3 attempts.
func WithRetryPolicy(baseTimeout time.Duration, maxRetries int) Option {
	return optionFunc(func(c *clientConfig) {
		c.baseTimeout = baseTimeout
		c.maxRetries = maxRetries
	})
}

// WithTopK sets the default per-category result count. Default: 5.
func WithTopK(k int) Option {
	return optionFunc(func(c *clientConfig) {
		c.topK = k
	})
}

// WithAnswerProvider enables Chat by configuring the answer LLM.
func WithAnswerProvider(p AnswerProvider) Option {
	return optionFunc(func(c *clientConfig) {
		c.answer = p
	})
}

// WithLogger enables structured logging for client operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers client metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
