// Package http exposes a read-only inspection API over a checkpoint store.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/aretw0/firebreak/internal/logging"
	"github.com/aretw0/firebreak/pkg/domain"
	"github.com/aretw0/firebreak/pkg/dsl"
	"github.com/aretw0/firebreak/pkg/ports"
)

// RunSummary is one entry of GET /runs.
type RunSummary struct {
	RunID     string           `json:"run_id"`
	Next      string           `json:"next"`
	Status    domain.RunStatus `json:"status"`
	Steps     int              `json:"steps"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Server serves checkpoints. It never writes to the store.
type Server struct {
	Store   ports.CheckpointStore
	Graph   *dsl.Graph
	Metrics http.Handler
	Version string
	Logger  *slog.Logger
}

// Option configures the handler.
type Option func(*Server)

// WithGraph enables GET /graph.
func WithGraph(g *dsl.Graph) Option {
	return func(s *Server) { s.Graph = g }
}

// WithMetrics mounts h at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) { s.Metrics = h }
}

// WithVersion sets the version reported by GET /info.
func WithVersion(v string) Option {
	return func(s *Server) { s.Version = v }
}

// WithLogger sets the logger used for request failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.Logger = l
		}
	}
}

// NewHandler creates the HTTP handler for store.
func NewHandler(store ports.CheckpointStore, opts ...Option) http.Handler {
	s := &Server{
		Store:   store,
		Version: "dev",
		Logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/runs", s.ListRuns)
	r.Get("/runs/{runID}", s.GetRun)
	if s.Graph != nil {
		r.Get("/graph", s.GetGraph)
	}
	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics)
	}
	return r
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "firebreak",
		"version": s.Version,
	})
}

// ListRuns handles GET /runs.
func (s *Server) ListRuns(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Store.List(r.Context())
	if err != nil {
		s.fail(w, "list runs failed", err)
		return
	}

	out := make([]RunSummary, 0, len(ids))
	for _, id := range ids {
		cp, err := s.Store.Load(r.Context(), id)
		if errors.Is(err, domain.ErrRunNotFound) {
			continue
		}
		if err != nil {
			s.fail(w, "load run failed", err)
			return
		}
		out = append(out, RunSummary{
			RunID:     id,
			Next:      cp.Next,
			Status:    cp.Status,
			Steps:     cp.Steps,
			UpdatedAt: cp.UpdatedAt,
		})
	}
	s.writeJSON(w, http.StatusOK, out)
}

// GetRun handles GET /runs/{runID}.
func (s *Server) GetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "runID")
	cp, err := s.Store.Load(r.Context(), id)
	if errors.Is(err, domain.ErrRunNotFound) {
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "run not found"})
		return
	}
	if err != nil {
		s.fail(w, "load run failed", err)
		return
	}
	s.writeJSON(w, http.StatusOK, cp)
}

// GetGraph handles GET /graph.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"entry":  s.Graph.Entry(),
		"stages": s.Graph.Names(),
		"edges":  s.Graph.Edges(),
	})
}

func (s *Server) fail(w http.ResponseWriter, msg string, err error) {
	s.Logger.Error(msg, "err", err)
	s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("response encode failed", "err", err)
	}
}
