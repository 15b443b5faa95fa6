package orda

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// sdkMetrics holds prometheus metrics registered for the client.
type sdkMetrics struct {
	operations       *prometheus.CounterVec
	duration         *prometheus.HistogramVec
	categoryFailures *prometheus.CounterVec
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	m := &sdkMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orda",
			Subsystem: "sdk",
			Name:      "operations_total",
			Help:      "Total client operations by type and status (ok, partial, error).",
		}, []string{"operation", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "orda",
			Subsystem: "sdk",
			Name:      "operation_duration_seconds",
			Help:      "Client operation duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		categoryFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orda",
			Subsystem: "sdk",
			Name:      "category_failures_total",
			Help:      "Categories that exhausted their retries, by failure kind.",
		}, []string{"category", "kind"}),
	}
	if err := registerOrReuse(reg, &m.operations); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.categoryFailures); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers a collector or reuses an existing one.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	if err := reg.Register(*c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			existing, ok := are.ExistingCollector.(T)
			if !ok {
				return fmt.Errorf("orda: metric already registered with incompatible type: %T", are.ExistingCollector)
			}
			*c = existing
			return nil
		}
		return fmt.Errorf("orda: register metric: %w", err)
	}
	return nil
}

// observer provides logging and metrics for client operations.
type observer struct {
	logger  *slog.Logger
	metrics *sdkMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	var m *sdkMetrics
	if reg != nil {
		var err error
		m, err = newSDKMetrics(reg)
		if err != nil {
			return nil, err
		}
	}
	return &observer{logger: logger, metrics: m}, nil
}

// observe records a flat success-or-failure operation.
func (o *observer) observe(op string, start time.Time, err error) {
	o.record(op, start, nil, err)
}

// observeRetrieval records a retrieval-backed operation. A fan-out where
// some category exhausted its retries counts as "partial" rather than "ok",
// and each failed category is counted by failure kind.
func (o *observer) observeRetrieval(op string, start time.Time, outcomes []CategoryOutcome, err error) {
	o.record(op, start, outcomes, err)
}

func (o *observer) record(op string, start time.Time, outcomes []CategoryOutcome, err error) {
	if o == nil {
		return
	}
	dur := time.Since(start)

	failed := failedCategories(outcomes)
	status := "ok"
	switch {
	case err != nil:
		status = "error"
	case len(failed) > 0:
		status = "partial"
	}

	if o.metrics != nil {
		o.metrics.operations.WithLabelValues(op, status).Inc()
		o.metrics.duration.WithLabelValues(op).Observe(dur.Seconds())
		for _, out := range outcomes {
			if out.Failed {
				o.metrics.categoryFailures.WithLabelValues(string(out.Category), out.FailureKind).Inc()
			}
		}
	}

	if o.logger == nil {
		return
	}
	switch status {
	case "error":
		o.logger.Warn("operation failed",
			"op", op,
			"duration", dur,
			"error", err,
		)
	case "partial":
		o.logger.Warn("operation degraded",
			"op", op,
			"duration", dur,
			"failed_categories", failed,
		)
	default:
		o.logger.Debug("operation completed",
			"op", op,
			"duration", dur,
		)
	}
}

func failedCategories(outcomes []CategoryOutcome) []string {
	var cats []string
	for _, out := range outcomes {
		if out.Failed {
			cats = append(cats, string(out.Category))
		}
	}
	return cats
}
