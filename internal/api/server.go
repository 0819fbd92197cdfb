// Package api exposes the estimation engine over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/longshot/internal/engine"
)

const maxPromptBytes = 4096

// Server is the headless HTTP API for probability estimation.
type Server struct {
	httpServer *http.Server
	engine     *engine.Engine
	logger     logrus.FieldLogger
}

// NewServer registers the estimation routes and returns a server ready to
// start on addr.
func NewServer(addr string, eng *engine.Engine, logger logrus.FieldLogger) *Server {
	s := &Server{
		engine: eng,
		logger: logger.WithField("component", "api"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/estimate", s.handleEstimate)
	mux.HandleFunc("GET /v1/estimate", s.handleEstimateQuery)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.logging(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start begins listening for HTTP requests. It blocks until the server
// encounters an error or is shut down.
func (s *Server) Start() error {
	s.logger.WithField("addr", s.httpServer.Addr).Info("API server starting")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests within the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("API server shutting down")
	return s.httpServer.Shutdown(ctx)
}

type estimateRequest struct {
	Prompt string `json:"prompt"`
}

// handleEstimate prices a hypothetical posted as JSON.
// POST /v1/estimate {"prompt": "..."}
func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxPromptBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	var req estimateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	s.respond(w, r, req.Prompt)
}

// handleEstimateQuery prices a hypothetical from the query string.
// GET /v1/estimate?q=...
func (s *Server) handleEstimateQuery(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, r.URL.Query().Get("q"))
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, prompt string) {
	if strings.TrimSpace(prompt) == "" {
		writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	est := s.engine.Estimate(r.Context(), prompt)
	writeJSON(w, http.StatusOK, est)
}

// logging wraps the mux with per-request structured logging.
func (s *Server) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"duration_ms": time.Since(start).Milliseconds(),
		}).Debug("Request handled")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
