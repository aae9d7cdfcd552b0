// Package server exposes the survey pipeline over HTTP and WebSocket.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"iconograph/internal/logging"
	"iconograph/internal/stats"
	"iconograph/internal/survey"
)

// QueryPipeline is the slice of the survey pipeline the server needs.
type QueryPipeline interface {
	ProcessQuery(ctx context.Context, query string) (*survey.QueryResult, error)
}

// Server handles API requests.
type Server struct {
	pipeline QueryPipeline
	tracker  *stats.Tracker
	logger   *zap.Logger
	httpSrv  *http.Server
}

// New creates a server bound to addr.
func New(addr string, pipeline QueryPipeline, tracker *stats.Tracker, logger *zap.Logger) *Server {
	s := &Server{
		pipeline: pipeline,
		tracker:  tracker,
		logger:   logger,
	}
	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Route("/api", func(r chi.Router) {
		r.Post("/query", s.handleQuery)
		r.Get("/stats", s.handleStats)
		r.Get("/ws", s.handleWS)
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
		})
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"message": "Welcome to the narrative art explorer",
		})
	})

	return r
}

// ListenAndServe blocks serving requests until the listener fails or
// Shutdown is called.
func (s *Server) ListenAndServe() error {
	logging.Server("listening on %s", s.httpSrv.Addr)
	err := s.httpSrv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Query is required"})
		return
	}
	query := r.FormValue("query")

	result, err := s.pipeline.ProcessQuery(r.Context(), query)
	if err != nil {
		if errors.Is(err, survey.ErrEmptyQuery) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Query is required"})
			return
		}
		s.logger.Error("query processing failed",
			zap.String("query", query),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to process query"})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	writeJSON(w, http.StatusOK, struct {
		stats.Snapshot
		TopQueries []stats.QueryCount `json:"topQueries"`
	}{
		Snapshot:   snap,
		TopQueries: s.tracker.TopQueries(10),
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.ServerError("write response: %v", err)
	}
}
