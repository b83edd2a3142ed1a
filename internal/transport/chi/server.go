package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/convsearch/internal/domain"
	"github.com/kailas-cloud/convsearch/internal/domain/search/result"
	conversationuc "github.com/kailas-cloud/convsearch/internal/usecase/conversation"
	healthuc "github.com/kailas-cloud/convsearch/internal/usecase/health"
)

const invalidPayloadMessage = "Invalid JSON payload"

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// ConversationSearcher runs the search-with-history pipeline.
type ConversationSearcher interface {
	Handle(ctx context.Context, req conversationuc.Request) (conversationuc.Response, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Server serves the conversational search HTTP API.
type Server struct {
	conversations ConversationSearcher
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(conversations ConversationSearcher, health HealthChecker, logger *zap.Logger) *Server {
	s := &Server{
		conversations: conversations,
		health:        health,
		logger:        logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrIndexRequired, http.StatusBadRequest),
		stepErrorHandler,
	}
	return s
}

// SearchHistory handles POST /ai_search_history.
func (s *Server) SearchHistory(w http.ResponseWriter, r *http.Request) {
	req, err := decodeSearchHistoryRequest(r.Body)
	if err != nil {
		s.logger.Debug("invalid request body", zap.Error(err))
		writeError(w, http.StatusBadRequest, invalidPayloadMessage)
		return
	}

	resp, err := s.conversations.Handle(r.Context(), conversationuc.Request{
		ConversationID:        req.ConversationID,
		Message:               req.Conversation,
		IndexToSearch:         req.IndexToSearch,
		Fields:                req.Fields,
		SemanticConfiguration: req.SemanticConfiguration,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	results := resp.Results
	if results == nil {
		results = []result.Document{}
	}
	writeJSON(w, http.StatusOK, searchHistoryResponse{Results: results})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a plain-text error body without a trailing newline.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(message))
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, sentinel.Error())
		return true
	}
}

// stepErrorHandler renders a failed pipeline step with its public message.
func stepErrorHandler(w http.ResponseWriter, err error) bool {
	var se *domain.StepError
	if !errors.As(err, &se) {
		return false
	}
	writeError(w, http.StatusInternalServerError, se.Error())
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}
