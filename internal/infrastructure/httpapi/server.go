// Package httpapi exposes persisted validation results over a read-only
// JSON API.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"OpportunityValidator/internal/domain"
	"OpportunityValidator/internal/ports"
)

// Comparer ranks stored results.
type Comparer interface {
	CompareOpportunities(ctx context.Context, results []domain.ValidationResult) (domain.Comparison, error)
	RecommendNext(ctx context.Context, results []domain.ValidationResult) (domain.ValidationResult, error)
}

// Server serves stored validation results.
type Server struct {
	reader   ports.ResultReader
	comparer Comparer
	logger   *slog.Logger
	router   *chi.Mux
}

// NewServer builds the router.
func NewServer(reader ports.ResultReader, comparer Comparer, logger *slog.Logger) *Server {
	s := &Server{
		reader:   reader,
		comparer: comparer,
		logger:   logger,
		router:   chi.NewRouter(),
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.logRequests)

	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/opportunities", s.handleList)
	s.router.Get("/opportunities/{name}", s.handleGet)
	s.router.Get("/rankings", s.handleRankings)
	s.router.Get("/recommendation", s.handleRecommendation)

	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http api listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	results, err := s.reader.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
		return
	}
	result, err := s.reader.Load(r.Context(), name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleRankings(w http.ResponseWriter, r *http.Request) {
	results, err := s.reader.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	comparison, err := s.comparer.CompareOpportunities(r.Context(), results)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comparison)
}

func (s *Server) handleRecommendation(w http.ResponseWriter, r *http.Request) {
	results, err := s.reader.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	best, err := s.comparer.RecommendNext(r.Context(), results)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, best)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
	default:
		s.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request", "method", r.Method, "path", r.URL.Path,
			"status", ww.Status(), "duration", time.Since(start), "request_id", middleware.GetReqID(r.Context()))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
