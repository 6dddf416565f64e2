// Package gateway exposes the requirements pipeline over HTTP.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/elicit-dev/elicit/internal/archive"
	"github.com/elicit-dev/elicit/internal/events"
	"github.com/elicit-dev/elicit/internal/pipeline"
	"github.com/elicit-dev/elicit/internal/tasks"
)

// TaskHistory provides read access to archived finished tasks.
// *archive.Archive satisfies it.
type TaskHistory interface {
	Get(ctx context.Context, id string) (archive.Entry, error)
	Recent(ctx context.Context, limit int) ([]archive.Entry, error)
}

// Server is the elicit gateway HTTP server.
type Server struct {
	httpServer *http.Server
	registry   *tasks.Registry
	bus        *events.Bus
	history    TaskHistory
	host       string
	port       int
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithHistory serves archived task history from the given store.
func WithHistory(h TaskHistory) ServerOption {
	return func(s *Server) { s.history = h }
}

// NewServer creates a new gateway server.
func NewServer(registry *tasks.Registry, bus *events.Bus, host string, port int, opts ...ServerOption) *Server {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	s := &Server{
		registry: registry,
		bus:      bus,
		host:     host,
		port:     port,
	}
	for _, opt := range opts {
		opt(s)
	}

	r.Get("/api/health", s.handleHealth)
	r.Get("/api/events", s.handleEvents)

	// API: requirements
	r.Post("/api/requirements", s.handleSubmit)
	r.Get("/api/requirements/history", s.handleHistory)
	r.Get("/api/requirements/history/{id}", s.handleHistoryEntry)
	r.Get("/api/requirements/{id}/status", s.handleStatus)
	r.Get("/api/requirements/{id}/result", s.handleResult)

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", host, port),
		Handler: r,
	}

	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins listening. It blocks until the server is stopped.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	slog.Info("elicit gateway listening", "addr", ln.Addr().String())
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

type submitRequest struct {
	InitialRequirements string `json:"initial_requirements"`
}

type submitResponse struct {
	TaskID  string `json:"task_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.InitialRequirements == "" {
		http.Error(w, "initial_requirements is required", http.StatusBadRequest)
		return
	}

	id, err := s.registry.Submit(r.Context(), req.InitialRequirements)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusAccepted, submitResponse{
		TaskID:  id,
		Status:  string(tasks.StatusStarted),
		Message: "Multi-agent requirement generation process has been initiated",
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	task, err := s.registry.Status(id)
	if errors.Is(err, tasks.ErrNotFound) {
		http.Error(w, "task not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	results, err := s.registry.Results(id)
	if errors.Is(err, tasks.ErrNotFound) {
		http.Error(w, "task not found", http.StatusNotFound)
		return
	}
	if errors.Is(err, tasks.ErrNotReady) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// formatted defaults to true, matching what document-oriented
	// clients expect.
	formatted := r.URL.Query().Get("formatted") != "false"
	if formatted {
		writeJSON(w, http.StatusOK, pipeline.FormatResults(results))
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		http.Error(w, "task history is not configured", http.StatusServiceUnavailable)
		return
	}

	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		fmt.Sscanf(limitStr, "%d", &limit)
	}

	entries, err := s.history.Recent(r.Context(), limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []archive.Entry{}
	}

	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleHistoryEntry(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		http.Error(w, "task history is not configured", http.StatusServiceUnavailable)
		return
	}

	id := chi.URLParam(r, "id")

	entry, err := s.history.Get(r.Context(), id)
	if errors.Is(err, archive.ErrNotFound) {
		http.Error(w, "archived task not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limitStr := r.URL.Query().Get("limit")
	limit := 50
	if limitStr != "" {
		fmt.Sscanf(limitStr, "%d", &limit)
	}

	history := s.bus.History(limit)

	// Format timestamps nicely
	type eventJSON struct {
		ID        string             `json:"id"`
		TaskID    string             `json:"task_id,omitempty"`
		Type      string             `json:"type"`
		Timestamp string             `json:"timestamp"`
		Source    events.EventSource `json:"source"`
		Payload   map[string]any     `json:"payload"`
	}

	result := make([]eventJSON, len(history))
	for i, e := range history {
		result[i] = eventJSON{
			ID:        e.ID,
			TaskID:    e.TaskID,
			Type:      string(e.Type),
			Timestamp: e.Timestamp.Format(time.RFC3339Nano),
			Source:    e.Source,
			Payload:   e.Payload,
		}
	}

	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
