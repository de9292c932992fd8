// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package api exposes the pipeline and the research stage over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/pdiddy/article-engine/internal/pipeline"
	"github.com/pdiddy/article-engine/pkg/types"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 64 << 10

// Error codes returned in error bodies.
const (
	CodeValidation     = "validation_error"
	CodeInvalidJSON    = "invalid_json"
	CodeResearchFailed = "research_failed"
	CodeInternal       = "internal_error"
)

// Pipeline runs a full orchestration.
type Pipeline interface {
	Run(ctx context.Context, req pipeline.Request) (*types.OrchestrationResult, error)
}

// Researcher runs the research stage alone.
type Researcher interface {
	Run(ctx context.Context, topic string) (*types.ResearchResult, error)
}

type Server struct {
	pipeline Pipeline
	research Researcher
	log      *zap.Logger
}

func NewServer(p Pipeline, r Researcher, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{pipeline: p, research: r, log: log}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.health)
	r.Post("/api/pipeline", s.runPipeline)
	r.Post("/api/research", s.runResearch)

	return r
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type researchRequest struct {
	Topic string `json:"topic"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

// runPipeline answers 200 for every pipeline status; only a malformed
// request is an HTTP error.
func (s *Server) runPipeline(w http.ResponseWriter, r *http.Request) {
	var req pipeline.Request
	if err := decodeBody(w, r, &req); err != nil {
		writeJSON(w, errorBody{Error: err.Error(), Code: CodeInvalidJSON}, http.StatusBadRequest)
		return
	}

	res, err := s.pipeline.Run(r.Context(), req)
	if err != nil {
		var ve *pipeline.ValidationError
		if errors.As(err, &ve) {
			writeJSON(w, errorBody{Error: ve.Error(), Code: CodeValidation}, http.StatusBadRequest)
			return
		}
		s.log.Error("pipeline run failed", zap.Error(err))
		writeJSON(w, errorBody{Error: "internal error", Code: CodeInternal}, http.StatusInternalServerError)
		return
	}
	writeJSON(w, res, http.StatusOK)
}

func (s *Server) runResearch(w http.ResponseWriter, r *http.Request) {
	var req researchRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeJSON(w, errorBody{Error: err.Error(), Code: CodeInvalidJSON}, http.StatusBadRequest)
		return
	}
	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		writeJSON(w, errorBody{Error: "invalid topic: topic is required", Code: CodeValidation}, http.StatusBadRequest)
		return
	}

	res, err := s.research.Run(r.Context(), topic)
	if err != nil {
		s.log.Warn("research failed", zap.String("topic", topic), zap.Error(err))
		writeJSON(w, errorBody{Error: err.Error(), Code: CodeResearchFailed}, http.StatusBadGateway)
		return
	}
	writeJSON(w, res, http.StatusOK)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decoding request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, value any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(value)
}

// requestLogger logs one line per request with its chi request id.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Info("request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)))
	})
}

// ListenAndServe serves handler on addr until ctx is cancelled, then shuts
// down gracefully within shutdownTimeout.
func ListenAndServe(ctx context.Context, addr string, handler http.Handler, shutdownTimeout time.Duration, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	log.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	<-errCh
	return nil
}
