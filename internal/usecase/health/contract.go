package health

import "context"

// BackendProber checks vector search backend availability.
type BackendProber interface {
	Probe(ctx context.Context) error
}

// CachePinger checks cache availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// AnswerChecker checks answer provider availability.
type AnswerChecker interface {
	HealthCheck(ctx context.Context) error
}
