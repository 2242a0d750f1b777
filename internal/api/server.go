// Package api exposes a single editor session over HTTP. Every mutating
// request is translated into an editor action and dispatched through the
// session's undo history.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/shipyard/internal/catalog"
	"github.com/cory-johannsen/shipyard/internal/editor"
	"github.com/cory-johannsen/shipyard/internal/observability"
	"github.com/cory-johannsen/shipyard/internal/project"
)

// Server is the HTTP API for one planner session. The catalog is shared
// read-only; the history is guarded by mu.
type Server struct {
	catalog *catalog.Catalog
	reducer *editor.Reducer
	store   project.Store
	logger  *zap.Logger
	router  chi.Router

	// NewID issues instance IDs for placement requests.
	NewID func() string

	mu      sync.Mutex
	history editor.History
}

// NewServer creates a Server editing h against cat. store may be nil, in
// which case the project persistence routes respond 501.
//
// Precondition: cat and logger must be non-nil.
func NewServer(cat *catalog.Catalog, h editor.History, store project.Store, logger *zap.Logger) *Server {
	s := &Server{
		catalog: cat,
		reducer: editor.NewReducer(cat),
		store:   store,
		logger:  logger,
		router:  chi.NewRouter(),
		NewID:   uuid.NewString,
		history: h,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(observability.RequestLogger(s.logger))
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/catalog", s.handleCatalog)
		r.Get("/catalog/{id}", s.handleStructure)

		r.Get("/state", s.handleState)
		r.Post("/can-place", s.handleCanPlace)
		r.Post("/place", s.handlePlace)
		r.Post("/move", s.handleMove)
		r.Post("/select", s.handleSelect)
		r.Post("/erase", s.handleErase)
		r.Post("/erase-rect", s.handleEraseRect)
		r.Post("/delete", s.handleDelete)
		r.Post("/clear", s.handleClear)
		r.Post("/undo", s.handleUndo)
		r.Post("/redo", s.handleRedo)
		r.Put("/view", s.handleView)

		r.Route("/layers", func(r chi.Router) {
			r.Post("/", s.handleAddLayer)
			r.Patch("/{id}", s.handleUpdateLayer)
			r.Delete("/{id}", s.handleRemoveLayer)
			r.Post("/{id}/assign", s.handleAssignLayer)
		})
		r.Route("/groups", func(r chi.Router) {
			r.Post("/", s.handleCreateGroup)
			r.Delete("/{id}", s.handleUngroup)
			r.Post("/{id}/select", s.handleSelectGroup)
		})

		r.Post("/project/new", s.handleNewProject)
		r.Post("/project/preset", s.handlePreset)
		r.Route("/projects", func(r chi.Router) {
			r.Get("/", s.handleListProjects)
			r.Post("/", s.handleSaveProject)
			r.Post("/{key}/load", s.handleLoadProject)
			r.Delete("/{key}", s.handleDeleteProject)
		})
	})
}

// pinger is implemented by project stores backed by a remote database.
type pinger interface {
	Ping(ctx context.Context) error
}

// handleHealth reports 503 when the project store is unreachable.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if p, ok := s.store.(pinger); ok {
		if err := p.Ping(r.Context()); err != nil {
			s.logger.Warn("health check failed", zap.Error(err))
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// History returns the current session history.
func (s *Server) History() editor.History {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history
}

// dispatch applies actions in order under the session lock and writes the
// resulting state.
func (s *Server) dispatch(w http.ResponseWriter, actions ...editor.Action) {
	s.dispatchFunc(w, func(editor.Model) []editor.Action { return actions })
}

// dispatchFunc builds actions from the current model and applies them under
// the session lock. A rejected non-view action stops the remaining actions.
// When nothing changed and at least one non-view action was requested the
// response is 409 with the unchanged state.
func (s *Server) dispatchFunc(w http.ResponseWriter, build func(editor.Model) []editor.Action) {
	s.mu.Lock()
	actions := build(s.history.Current)
	changed, undoable := false, false
	for _, a := range actions {
		var ok bool
		s.history, ok = s.history.Dispatch(s.reducer, a)
		changed = changed || ok
		undoable = undoable || a.Kind() != editor.KindView
		s.logger.Debug("dispatch",
			zap.String("kind", a.Kind().String()),
			zap.Bool("changed", ok),
		)
		if !ok && a.Kind() != editor.KindView {
			break
		}
	}
	state := toState(s.reducer.Engine(), s.history, changed)
	s.mu.Unlock()

	status := http.StatusOK
	if !changed && undoable {
		status = http.StatusConflict
	}
	respondJSON(w, status, state)
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// decode reads a JSON request body into v, rejecting unknown fields.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}
