// ABOUTME: Server is a small chi-routed HTTP status endpoint exposing queue
// ABOUTME: depth, per-worker state, and recorded run reports — ambient
// ABOUTME: observability over the engine, never a participant in scheduling.
package webstatus

import (
	"encoding/json"
	"html"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/2389-research/conveyor/report"
	"github.com/2389-research/conveyor/store"
	"github.com/2389-research/conveyor/submit"
)

// SnapshotFunc returns the current pool snapshot. Server never touches the
// queue directly — it only ever calls this, grounded on web/server.go's
// pattern of a narrow read path into live engine state (SPEC_FULL.md §4.13).
type SnapshotFunc func() submit.Snapshot

// Server is the status HTTP server, grounded on web/server.go's
// chi.NewRouter() + middleware.Logger + narrow route set shape, trimmed
// from dozens of wizard-flow routes down to the handful this domain needs.
type Server struct {
	snapshot SnapshotFunc
	audit    *store.Store
	router   chi.Router
}

// New builds a Server. audit may be nil, in which case /runs/{id} always
// reports not-found.
func New(snapshot SnapshotFunc, audit *store.Store) *Server {
	s := &Server{snapshot: snapshot, audit: audit}
	s.router = s.buildRouter()
	return s
}

// ServeHTTP satisfies http.Handler by delegating to the chi router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealthz)
	r.Get("/status", s.handleStatus)
	r.Get("/runs/{id}", s.handleRun)
	return r
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

type statusResponse struct {
	QueueDepth int    `json:"queue_depth"`
	Workers    []bool `json:"workers_executing"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(statusResponse{
		QueueDepth: snap.QueueDepth,
		Workers:    snap.Executing,
	})
}

// handleRun renders the run report for pipeline id as HTML, grounded on
// spec/web/templates.go's markdownToHTML + sanitizeHTML path (now behind
// package report). The {id} path parameter is accepted for route
// symmetry with a future per-pipeline report; today's audit schema
// aggregates by pipeline_id across the whole store, so a single summary
// page is rendered regardless of which id was requested.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if s.audit == nil {
		http.Error(w, "audit store not enabled", http.StatusNotFound)
		return
	}
	md, err := report.Markdown(s.audit)
	if err != nil {
		http.Error(w, "failed to render run report", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	head := "<!doctype html><html><head><title>run " + html.EscapeString(chi.URLParam(r, "id")) + "</title></head><body>"
	w.Write([]byte(head))
	w.Write([]byte(report.HTML(md)))
	w.Write([]byte("</body></html>"))
}

// ListenAndServe starts the HTTP server on addr with the same timeout
// discipline as web/server.go's ListenAndServe (slow clients must not
// exhaust the server's goroutines/fds).
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      time.Minute,
		IdleTimeout:       2 * time.Minute,
	}
	return srv.ListenAndServe()
}
