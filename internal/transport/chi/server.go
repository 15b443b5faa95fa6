// Package chi exposes the retrieval and chat use cases over HTTP.
//
// Every non-2xx reply carries the uniform error envelope, and domain
// sentinels are mapped to statuses in one place (handleDomainError) so
// handlers stay free of status-code ladders.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pai-oys/orda-service/internal/domain"
	"github.com/pai-oys/orda-service/internal/domain/search/category"
	"github.com/pai-oys/orda-service/internal/domain/search/plan"
	"github.com/pai-oys/orda-service/internal/domain/search/query"
	"github.com/pai-oys/orda-service/internal/domain/search/result"
	logpkg "github.com/pai-oys/orda-service/internal/logger"
	chatuc "github.com/pai-oys/orda-service/internal/usecase/chat"
	healthuc "github.com/pai-oys/orda-service/internal/usecase/health"
	retrievaluc "github.com/pai-oys/orda-service/internal/usecase/retrieval"
)

// errorHandler writes a response for errors it recognizes and reports
// whether it did. Handlers are tried in order; the first hit wins.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if errors.Is(err, sentinel) {
			writeError(w, status, code, msg)
			return true
		}
		return false
	}
}

// Server routes HTTP requests to the use cases.
type Server struct {
	retrieval *retrievaluc.Service
	chat      *chatuc.Service
	health    *healthuc.Service
	logger    *zap.Logger

	errorHandlers []errorHandler
}

// NewServer creates the HTTP server. chat can be nil when no answer
// provider is configured; its endpoint then replies 501.
func NewServer(retrieval *retrievaluc.Service, chat *chatuc.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	s := &Server{
		retrieval: retrieval,
		chat:      chat,
		health:    health,
		logger:    logger,
	}

	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidCategory, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrEmptyQuery, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrQueryTooLong, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrAnswerProviderError, http.StatusBadGateway, codeAnswerProviderError),
	}

	return s
}

// Routes mounts all handlers on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/api/v1/search", s.Search)
	r.Post("/api/v1/chat", s.Chat)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics().ServeHTTP)
}

// Search runs the category fan-out and returns one result per requested
// category. Partial backend failure is still a 200; each category carries
// its own failure marker.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.TopK < 0 || req.TopK > query.MaxTopK {
		writeError(w, http.StatusBadRequest, codeValidationFailed,
			"top_k must be between 1 and 20")
		return
	}

	q, err := query.New(req.Query, categoriesFromRequest(req.Categories))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	var agg result.AggregateResult
	if req.Duration != "" {
		agg, err = s.retrieval.SearchPlanned(r.Context(), q, plan.ForDuration(req.Duration))
	} else {
		agg, err = s.retrieval.SearchTopK(r.Context(), q, req.TopK)
	}
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, aggregateToResponse(&agg))
}

// Chat retrieves places for the message and asks the answer provider for
// an itinerary built from them.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	if s.chat == nil {
		writeError(w, http.StatusNotImplemented, codeNotImplemented,
			"answer provider is not configured")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	ans, err := s.chat.Ask(r.Context(), req.Message, req.Duration)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Answer:             ans.Text,
		Partial:            ans.Partial,
		Sources:            categoriesToResponse(&ans.Retrieved),
		RetrievalElapsedMs: ans.RetrievalElapsed.Milliseconds(),
	})
}

// HealthCheck reports component health: 200 when everything answers, 503
// otherwise.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthToResponse(&report))
}

// Metrics exposes the Prometheus scrape endpoint.
func (s *Server) Metrics() http.Handler {
	return promhttp.Handler()
}

// categoriesFromRequest maps the wire tags onto domain categories; an
// empty list means the full fan-out. Unknown tags pass through here and
// fail query validation.
func categoriesFromRequest(raw []string) []category.Category {
	if len(raw) == 0 {
		return category.All()
	}

	cats := make([]category.Category, len(raw))
	for i, c := range raw {
		cats[i] = category.Category(c)
	}

	return cats
}

// reqLogger picks the request-scoped logger injected by the middleware so
// error lines carry the request ID, falling back to the server-wide one.
func (s *Server) reqLogger(r *http.Request) *zap.Logger {
	if l, ok := logpkg.FromContext(r.Context()); ok {
		return l
	}
	return s.logger
}

// handleDomainError maps a use-case error onto an HTTP response. Errors
// no handler recognizes become an opaque 500.
func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	msg := safeDomainMessage(err)

	log := s.reqLogger(r)
	log.Warn("domain error", zap.Error(err))

	for _, handle := range s.errorHandlers {
		if handle(w, err, msg) {
			return
		}
	}

	log.Error("unhandled domain error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}

// safeDomainMessage returns the error text only for known domain
// sentinels so internal details never leak to clients.
func safeDomainMessage(err error) string {
	safe := []error{
		domain.ErrInvalidCategory,
		domain.ErrEmptyQuery,
		domain.ErrQueryTooLong,
		domain.ErrAnswerProviderError,
	}

	for _, sentinel := range safe {
		if errors.Is(err, sentinel) {
			return err.Error()
		}
	}

	return "internal error"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
