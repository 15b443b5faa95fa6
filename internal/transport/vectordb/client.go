package vectordb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/pai-oys/orda-service/internal/domain"
	"github.com/pai-oys/orda-service/internal/domain/search/mode"
	"github.com/pai-oys/orda-service/internal/domain/search/query"
	"github.com/pai-oys/orda-service/internal/domain/search/result"
	"github.com/pai-oys/orda-service/internal/metrics"
)

// Default network policy.
const (
	DefaultConnectTimeout = 10 * time.Second
	DefaultProbeTimeout   = 10 * time.Second

	defaultMaxIdleConnsPerHost = 8
)

// Config holds the vector search backend settings.
type Config struct {
	// BaseURL is the full search endpoint URL, e.g. http://host:8000/api/v1/search.
	BaseURL string
	// ConnectTimeout bounds TCP connection establishment only. The full
	// round-trip budget is the per-attempt timeout passed to Execute.
	ConnectTimeout time.Duration
	// ProbeTimeout bounds the Probe round trip.
	ProbeTimeout        time.Duration
	MaxIdleConnsPerHost int
	Logger              *zap.Logger
}

// Client talks to the vector search backend over HTTP.
// One Execute call makes exactly one POST; retry policy lives in the caller.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	probeTimeout time.Duration
	logger       *zap.Logger
}

// NewClient creates a backend client with a pooled transport.
func NewClient(cfg *Config) *Client {
	connectTimeout := cfg.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = DefaultConnectTimeout
	}
	probeTimeout := cfg.ProbeTimeout
	if probeTimeout <= 0 {
		probeTimeout = DefaultProbeTimeout
	}
	maxIdle := cfg.MaxIdleConnsPerHost
	if maxIdle <= 0 {
		maxIdle = defaultMaxIdleConnsPerHost
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	transport := &http.Transport{
		DialContext:         (&net.Dialer{Timeout: connectTimeout}).DialContext,
		MaxIdleConnsPerHost: maxIdle,
	}

	// No http.Client.Timeout: the per-attempt budget arrives via context.
	return &Client{
		baseURL:      cfg.BaseURL,
		httpClient:   &http.Client{Transport: transport},
		probeTimeout: probeTimeout,
		logger:       log,
	}
}

// searchRequest is the backend wire request.
type searchRequest struct {
	Query      string `json:"query"`
	TopK       int    `json:"top_k"`
	SearchType string `json:"search_type"`
}

// recordDTO is one backend record. The backend names the title field
// inconsistently across collections ("name" for places, "title" for events).
type recordDTO struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Title    string            `json:"title"`
	Score    float64           `json:"score"`
	Address  string            `json:"address"`
	Category string            `json:"category"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata"`
}

func (r recordDTO) toItem() result.Item {
	title := r.Name
	if title == "" {
		title = r.Title
	}
	return result.NewItem(r.ID, title, r.Score, r.Address, r.Category, r.Content, r.Metadata)
}

// Execute runs one search attempt against the backend. The timeout bounds the
// whole round trip including the body read. Failures are classified:
//
//   - domain.ErrReadTimeout: connected, but no full response within timeout
//   - domain.ErrConnectTimeout: connection not established in time
//   - domain.ErrBackendFailure: everything else (refused, bad status, bad body)
//
// Caller cancellation passes through as context.Canceled.
func (c *Client) Execute(ctx context.Context, sq query.SubQuery, timeout time.Duration) ([]result.Item, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cat := sq.Category().String()

	body, err := json.Marshal(searchRequest{
		Query:      sq.Text(),
		TopK:       sq.Limit(),
		SearchType: string(sq.Mode()),
	})
	if err != nil {
		return nil, domain.NewBackendError("encode", err)
	}

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, domain.NewBackendError("network", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		classified := classify(err, timeout)
		metrics.BackendRequestsTotal.WithLabelValues(cat, statusLabel(classified)).Inc()
		c.logger.Debug("backend request failed",
			zap.String("category", cat),
			zap.Duration("elapsed", duration),
			zap.Error(classified))
		return nil, classified
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.BackendRequestsTotal.WithLabelValues(cat, "error").Inc()
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, domain.NewBackendError("http_status",
			fmt.Errorf("unexpected status %d: %s", resp.StatusCode, bytes.TrimSpace(detail)))
	}

	var records []recordDTO
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		// The body read can also hit the attempt deadline.
		if errors.Is(err, context.DeadlineExceeded) {
			metrics.BackendRequestsTotal.WithLabelValues(cat, "read_timeout").Inc()
			return nil, fmt.Errorf("response cut off after %v: %w", timeout, domain.ErrReadTimeout)
		}
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		metrics.BackendRequestsTotal.WithLabelValues(cat, "error").Inc()
		return nil, domain.NewBackendError("decode", err)
	}

	items := make([]result.Item, 0, len(records))
	for _, rec := range records {
		items = append(items, rec.toItem())
	}

	metrics.BackendRequestsTotal.WithLabelValues(cat, "success").Inc()
	metrics.BackendRequestDuration.WithLabelValues(cat).Observe(duration.Seconds())

	return items, nil
}

// Probe checks backend availability with a minimal single-record query.
func (c *Client) Probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()

	body, err := json.Marshal(searchRequest{
		Query:      "제주도",
		TopK:       1,
		SearchType: string(mode.Similarity),
	})
	if err != nil {
		return fmt.Errorf("backend probe: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("backend probe: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backend probe: %w", classify(err, c.probeTimeout))
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("backend probe: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// classify maps a raw transport error to the domain failure taxonomy.
func classify(err error, timeout time.Duration) error {
	// Caller cancellation is not a backend failure; pass it through.
	if errors.Is(err, context.Canceled) {
		return err
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		if opErr.Timeout() {
			return fmt.Errorf("connection not established: %w", domain.ErrConnectTimeout)
		}
		return domain.NewBackendError("connect", err)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("no response within %v: %w", timeout, domain.ErrReadTimeout)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("no response within %v: %w", timeout, domain.ErrReadTimeout)
	}

	return domain.NewBackendError("network", err)
}

func statusLabel(err error) string {
	switch {
	case errors.Is(err, domain.ErrReadTimeout):
		return "read_timeout"
	case errors.Is(err, domain.ErrConnectTimeout):
		return "connect_timeout"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	default:
		return "error"
	}
}
