package chi

import (
	"github.com/pai-oys/orda-service/internal/domain/search/result"
	healthuc "github.com/pai-oys/orda-service/internal/usecase/health"
)

// Machine-readable error codes returned in the error envelope.
const (
	codeBadRequest          = "bad_request"
	codeValidationFailed    = "validation_failed"
	codeUnauthorized        = "unauthorized"
	codeNotImplemented      = "not_implemented"
	codeAnswerProviderError = "answer_provider_error"
	codeInternalError       = "internal_error"
)

// errorResponse is the uniform error envelope of every non-2xx reply.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// searchRequest is the body of POST /api/v1/search.
type searchRequest struct {
	Query string `json:"query"`
	// Categories limits the fan-out; empty means all four.
	Categories []string `json:"categories,omitempty"`
	// TopK overrides the configured per-category result count.
	TopK int `json:"top_k,omitempty"`
	// Duration, when set, sizes each category from the trip length
	// ("3박4일", "2일") and takes precedence over TopK.
	Duration string `json:"duration,omitempty"`
}

// chatRequest is the body of POST /api/v1/chat.
type chatRequest struct {
	Message  string `json:"message"`
	Duration string `json:"duration,omitempty"`
}

type itemResponse struct {
	ID       string            `json:"id,omitempty"`
	Title    string            `json:"title"`
	Score    float64           `json:"score"`
	Address  string            `json:"address,omitempty"`
	Label    string            `json:"label,omitempty"`
	Content  string            `json:"content,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type failureResponse struct {
	Kind   string `json:"kind"`
	Detail string `json:"detail,omitempty"`
}

// categoryResponse is the terminal outcome of one category: either the
// retrieved items or the failure that exhausted its retry budget.
type categoryResponse struct {
	Items    []itemResponse   `json:"items"`
	Attempts int              `json:"attempts"`
	Failure  *failureResponse `json:"failure,omitempty"`
}

type searchResponse struct {
	Results   map[string]categoryResponse `json:"results"`
	AnyFailed bool                        `json:"any_failed"`
	ElapsedMs int64                       `json:"elapsed_ms"`
}

type chatResponse struct {
	Answer string `json:"answer"`
	// Partial marks answers built from an incomplete retrieval.
	Partial bool `json:"partial"`
	// Sources lists the retrieved places the answer drew from, per category.
	Sources            map[string]categoryResponse `json:"sources"`
	RetrievalElapsedMs int64                       `json:"retrieval_elapsed_ms"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func aggregateToResponse(agg *result.AggregateResult) searchResponse {
	return searchResponse{
		Results:   categoriesToResponse(agg),
		AnyFailed: agg.AnyFailed(),
		ElapsedMs: agg.Elapsed().Milliseconds(),
	}
}

func categoriesToResponse(agg *result.AggregateResult) map[string]categoryResponse {
	results := make(map[string]categoryResponse, len(agg.Categories()))
	for _, cat := range agg.Categories() {
		res, _ := agg.Get(cat)
		results[cat.String()] = categoryToResponse(&res)
	}
	return results
}

func categoryToResponse(res *result.CategoryResult) categoryResponse {
	items := make([]itemResponse, 0, len(res.Items()))
	for _, it := range res.Items() {
		items = append(items, itemResponse{
			ID:       it.ID(),
			Title:    it.Title(),
			Score:    it.Score(),
			Address:  it.Address(),
			Label:    it.Label(),
			Content:  it.Content(),
			Metadata: it.Metadata(),
		})
	}

	out := categoryResponse{Items: items, Attempts: res.Attempts()}
	if f, ok := res.Failure(); ok {
		out.Failure = &failureResponse{Kind: string(f.Kind()), Detail: f.Detail()}
	}

	return out
}

func healthToResponse(report *healthuc.Report) healthResponse {
	checks := make(map[string]string, len(report.Checks))
	for name, res := range report.Checks {
		checks[name] = string(res)
	}

	return healthResponse{Status: string(report.Status), Checks: checks}
}
