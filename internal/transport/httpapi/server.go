package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/qdoctor/agent/internal/core"
	"github.com/qdoctor/agent/pkg/log"
)

// Pipeline is the part of the orchestrator the HTTP boundary needs.
type Pipeline interface {
	Handle(ctx context.Context, q core.Query) (core.FinalResponse, error)
}

type askRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

type askResponse struct {
	Response       string   `json:"response"`
	ContextSources []string `json:"context_sources"`
	Error          string   `json:"error,omitempty"`
}

// Server exposes the pipeline over HTTP. It implements srv.Service.
type Server struct {
	pipeline Pipeline
	srv      *http.Server
	logger   zerolog.Logger
}

func NewServer(ctx context.Context, pipeline Pipeline, addr string) *Server {
	s := &Server{
		pipeline: pipeline,
		logger:   *log.FromCtx(ctx),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/ask", s.handleAsk)
	mux.HandleFunc("/v1/health", s.handleHealth)

	s.srv = &http.Server{
		Addr:         addr,
		Handler:      s.requestLogging(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
	}
	return s
}

func (s *Server) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Str("addr", s.srv.Addr).Msg("http server listening")

	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeAsk(w, http.StatusMethodNotAllowed, askResponse{Error: "method not allowed"})
		return
	}

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAsk(w, http.StatusBadRequest, askResponse{Error: "invalid JSON body"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeAsk(w, http.StatusBadRequest, askResponse{Error: "message is required"})
		return
	}
	if strings.TrimSpace(req.SessionID) == "" {
		writeAsk(w, http.StatusBadRequest, askResponse{Error: "sessionId is required"})
		return
	}

	resp, err := s.pipeline.Handle(r.Context(), core.Query{
		Text:       req.Message,
		SessionID:  req.SessionID,
		ReceivedAt: time.Now().UTC(),
	})
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	writeAsk(w, http.StatusOK, askResponse{
		Response:       resp.Text,
		ContextSources: resp.Sources,
	})
}

// writeFailure maps pipeline failure classes to HTTP responses. Guardrail
// rejections are designed soft failures: stable text, status 200. Raw error
// text never reaches the client.
func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrValidationRejected):
		writeAsk(w, http.StatusOK, askResponse{
			Response: core.MsgValidationRejected,
			Error:    "validation_rejected",
		})
	case errors.Is(err, core.ErrClient):
		writeAsk(w, http.StatusBadRequest, askResponse{Error: "invalid request"})
	case errors.Is(err, core.ErrOverloaded):
		writeAsk(w, http.StatusTooManyRequests, askResponse{Error: "too many requests, retry later"})
	case errors.Is(err, core.ErrUpstreamTimeout), errors.Is(err, core.ErrUpstream):
		writeAsk(w, http.StatusBadGateway, askResponse{Error: "upstream model unavailable"})
	default:
		log.FromCtx(r.Context()).Error().Err(err).Msg("pipeline failed")
		writeAsk(w, http.StatusInternalServerError, askResponse{
			Response: core.MsgInternalError,
			Error:    "internal_error",
		})
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": core.AgentVersion,
	})
}

// writeAsk keeps the response contract stable: context_sources is always an
// array, never null.
func writeAsk(w http.ResponseWriter, status int, resp askResponse) {
	if resp.ContextSources == nil {
		resp.ContextSources = []string{}
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		ctx := s.logger.WithContext(r.Context())
		next.ServeHTTP(rec, r.WithContext(ctx))

		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request handled")
	})
}
