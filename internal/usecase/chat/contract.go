package chat

import (
	"context"

	"github.com/pai-oys/orda-service/internal/domain/search/plan"
	"github.com/pai-oys/orda-service/internal/domain/search/query"
	"github.com/pai-oys/orda-service/internal/domain/search/result"
)

// Retriever runs the fan-out search that collects itinerary material.
type Retriever interface {
	SearchPlanned(ctx context.Context, q query.Query, p plan.Plan) (result.AggregateResult, error)
}

// AnswerGenerator produces the final itinerary text from a prompt.
type AnswerGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
