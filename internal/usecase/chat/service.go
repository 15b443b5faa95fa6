package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/pai-oys/orda-service/internal/domain/search/category"
	"github.com/pai-oys/orda-service/internal/domain/search/plan"
	"github.com/pai-oys/orda-service/internal/domain/search/query"
	"github.com/pai-oys/orda-service/internal/domain/search/result"
)

// DefaultAnswerTimeout bounds the generation call. Itinerary completions are
// slow; a stuck provider should still not hold the request forever.
const DefaultAnswerTimeout = 60 * time.Second

// Config holds the chat policy.
type Config struct {
	AnswerTimeout time.Duration
}

// Service turns a free-form travel question into an itinerary answer:
// fan-out retrieval over all categories, then one generation call over the
// collected places.
type Service struct {
	retriever     Retriever
	generator     AnswerGenerator
	answerTimeout time.Duration
}

// New creates a chat service. Zero config fields fall back to defaults.
func New(retriever Retriever, generator AnswerGenerator, cfg Config) *Service {
	if cfg.AnswerTimeout <= 0 {
		cfg.AnswerTimeout = DefaultAnswerTimeout
	}
	return &Service{
		retriever:     retriever,
		generator:     generator,
		answerTimeout: cfg.AnswerTimeout,
	}
}

// Answer is the chat response plus retrieval diagnostics.
type Answer struct {
	Text string
	// Partial reports that at least one category came back empty-handed;
	// the itinerary was built from what survived.
	Partial bool
	// Retrieved is the aggregate the prompt drew from, so callers can show
	// the places behind the answer.
	Retrieved result.AggregateResult
	// RetrievalElapsed is the wall time the fan-out search took.
	RetrievalElapsed time.Duration
}

// Ask retrieves places for the message across every category, sized by the
// trip duration, and asks the generator for an itinerary built from them.
func (s *Service) Ask(ctx context.Context, message, duration string) (Answer, error) {
	q, err := query.New(message, category.All())
	if err != nil {
		return Answer{}, err
	}
	p := plan.ForDuration(duration)

	agg, err := s.retriever.SearchPlanned(ctx, q, p)
	if err != nil {
		return Answer{}, fmt.Errorf("retrieve places: %w", err)
	}

	prompt := buildPrompt(message, duration, p.Days(), &agg)

	genCtx, cancel := context.WithTimeout(ctx, s.answerTimeout)
	defer cancel()

	text, err := s.generator.Generate(genCtx, prompt)
	if err != nil {
		return Answer{}, fmt.Errorf("generate answer: %w", err)
	}

	return Answer{
		Text:             text,
		Partial:          agg.AnyFailed(),
		Retrieved:        agg,
		RetrievalElapsed: agg.Elapsed(),
	}, nil
}
