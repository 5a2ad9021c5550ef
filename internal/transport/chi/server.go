// Package chi is the HTTP transport: request decoding, error mapping and
// routing for the retrieval API.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/oriole-ai/oriole/internal/domain"
	healthuc "github.com/oriole-ai/oriole/internal/usecase/health"
)

// Error codes returned in the response body.
const (
	codeBadRequest       = "bad_request"
	codeValidationFailed = "validation_failed"
	codeBackendError     = "backend_error"
	codeProviderError    = "provider_error"
	codeInternalError    = "internal_error"
)

// AskService answers a query with ranked documents.
type AskService interface {
	Ask(ctx context.Context, query string, topK int) ([]domain.RankedDocument, error)
}

// HealthService reports component health.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the retrieval pipeline over HTTP.
type Server struct {
	ask           AskService
	health        HealthService
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(ask AskService, health HealthService, logger *zap.Logger) *Server {
	s := &Server{
		ask:    ask,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrEmptyQuery, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrSearchBackendError, http.StatusBadGateway, codeBackendError),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeProviderError),
		sentinelHandler(domain.ErrLLMProviderError, http.StatusBadGateway, codeProviderError),
	}
	return s
}

// Mount registers the API routes on r.
func (s *Server) Mount(r chi.Router) {
	r.Post("/ask", s.HandleAsk)
	r.Get("/health", s.HandleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
}

type askRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

type askResponse struct {
	Documents []documentEntry `json:"documents"`
}

type documentEntry struct {
	DocID     string  `json:"doc_id"`
	FilePath  string  `json:"file_path,omitempty"`
	FileType  string  `json:"file_type,omitempty"`
	TextChunk string  `json:"text_chunk"`
	Score     float64 `json:"score"`
}

// HandleAsk handles POST /ask.
func (s *Server) HandleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	ranked, err := s.ask.Ask(r.Context(), req.Query, req.TopK)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	resp := askResponse{Documents: make([]documentEntry, len(ranked))}
	for i, d := range ranked {
		score := d.Score
		if d.Reranked {
			score = d.RerankScore
		}
		resp.Documents[i] = documentEntry{
			DocID:     d.ID,
			FilePath:  d.FilePath,
			FileType:  d.FileType,
			TextChunk: d.Text,
			Score:     score,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// HandleHealth handles GET /health.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for name, result := range report.Checks {
		checks[name] = string(result)
	}

	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, healthResponse{Status: string(report.Status), Checks: checks})
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, context.Canceled) && r.Context().Err() != nil {
		// client went away; nothing useful to write
		return
	}

	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}

// safeDomainMessage never leaks wrapped internals to clients: only known
// sentinel texts pass through.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrEmptyQuery,
		domain.ErrSearchBackendError,
		domain.ErrEmbeddingProviderError,
		domain.ErrLLMProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}
