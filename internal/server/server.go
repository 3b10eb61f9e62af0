// Package server exposes the answering service over HTTP.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"devopsrag/internal/apperr"
	"devopsrag/internal/config"
	"devopsrag/internal/domain"
)

// Answerer is the server-facing subset of the RAG service.
type Answerer interface {
	Answer(ctx context.Context, query string) (domain.Answer, error)
	DocumentCount() int
}

// Server handles the query and health endpoints.
type Server struct {
	svc    Answerer
	azure  config.AzureConfig
	logger *slog.Logger
}

// New creates a server around the answering service. The Azure config is only
// used for health reporting; secrets are reported as present/absent booleans.
func New(svc Answerer, azure config.AzureConfig, logger *slog.Logger) *Server {
	return &Server{svc: svc, azure: azure, logger: logger}
}

// Handler returns the routed HTTP handler with request logging attached.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/query", s.handleQuery)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	return s.withRequestLog(mux)
}

type queryRequest struct {
	Query string `json:"query"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query must not be empty"})
		return
	}
	answer, err := s.svc.Answer(r.Context(), req.Query)
	if err != nil {
		status := apperr.StatusOf(err)
		s.logger.Error("query failed",
			"request_id", requestID(r.Context()),
			"kind", apperr.KindOf(err).String(),
			"status", status,
			"error", err)
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, answer)
}

type healthResponse struct {
	Status    string      `json:"status"`
	Documents int         `json:"documents"`
	Azure     azureHealth `json:"azure"`
}

type azureHealth struct {
	EmbeddingURLConfigured bool `json:"embedding_url_configured"`
	ChatURLConfigured      bool `json:"chat_url_configured"`
	APIKeyConfigured       bool `json:"api_key_configured"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Documents: s.svc.DocumentCount(),
		Azure: azureHealth{
			EmbeddingURLConfigured: s.azure.EmbeddingURL != "",
			ChatURLConfigured:      s.azure.ChatURL != "",
			APIKeyConfigured:       s.azure.APIKey != "",
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type ctxKey int

const requestIDKey ctxKey = 0

func requestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r.WithContext(ctx))
		s.logger.Info("request",
			"request_id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}
