package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/cory-johannsen/shipyard/internal/catalog"
	"github.com/cory-johannsen/shipyard/internal/editor"
	"github.com/cory-johannsen/shipyard/internal/layout"
	"github.com/cory-johannsen/shipyard/internal/planner"
	"github.com/cory-johannsen/shipyard/internal/project"
)

type placementRequest struct {
	Structure string `json:"structure"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Rotation  int    `json:"rotation"`
	Layer     string `json:"layer,omitempty"`
	Exclude   string `json:"exclude,omitempty"`
}

type pointRequest struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type rectRequest struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

type idsRequest struct {
	IDs []string `json:"ids"`
}

type nameRequest struct {
	Name string `json:"name"`
}

type gridRequest struct {
	Name   string `json:"name,omitempty"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type layerUpdateRequest struct {
	Name    *string `json:"name,omitempty"`
	Visible *bool   `json:"visible,omitempty"`
	Locked  *bool   `json:"locked,omitempty"`
	Active  *bool   `json:"active,omitempty"`
}

type viewRequest struct {
	Tool     *string  `json:"tool,omitempty"`
	Zoom     *float64 `json:"zoom,omitempty"`
	ShowGrid *bool    `json:"show_grid,omitempty"`
	Preview  *string  `json:"preview,omitempty"`
	Rotate   bool     `json:"rotate,omitempty"`
}

func (s *Server) handleCatalog(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, toCatalog(s.catalog))
}

func (s *Server) handleStructure(w http.ResponseWriter, r *http.Request) {
	def, ok := s.catalog.Definition(chi.URLParam(r, "id"))
	if !ok {
		respondError(w, http.StatusNotFound, "structure not found")
		return
	}
	rot := layout.Rotate0
	if q := r.URL.Query().Get("rotation"); q != "" {
		deg, err := strconv.Atoi(q)
		if err == nil {
			rot, err = layout.ParseRotation(deg)
		}
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid rotation "+strconv.Quote(q))
			return
		}
	}
	respondJSON(w, http.StatusOK, toStructure(def, rot))
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	h := s.History()
	respondJSON(w, http.StatusOK, toState(s.reducer.Engine(), h, false))
}

func (s *Server) handleCanPlace(w http.ResponseWriter, r *http.Request) {
	var req placementRequest
	if !decode(w, r, &req) {
		return
	}
	rot, err := layout.ParseRotation(req.Rotation)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	def, ok := s.catalog.Definition(req.Structure)
	if !ok {
		respondError(w, http.StatusNotFound, "structure not found")
		return
	}
	m := s.History().Current
	valid := s.reducer.Engine().CanPlace(m.Grid, m.Instances, def, req.X, req.Y, rot, req.Exclude)
	respondJSON(w, http.StatusOK, map[string]bool{"valid": valid})
}

func (s *Server) handlePlace(w http.ResponseWriter, r *http.Request) {
	var req placementRequest
	if !decode(w, r, &req) {
		return
	}
	rot, err := layout.ParseRotation(req.Rotation)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, ok := s.catalog.Definition(req.Structure); !ok {
		respondError(w, http.StatusNotFound, "structure not found")
		return
	}
	s.dispatch(w, editor.Place{Instance: planner.Instance{
		ID:           s.NewID(),
		DefinitionID: req.Structure,
		X:            req.X,
		Y:            req.Y,
		Rotation:     rot,
		LayerID:      req.Layer,
	}})
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DX int `json:"dx"`
		DY int `json:"dy"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.dispatch(w, editor.MoveSelected{DX: req.DX, DY: req.DY})
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req idsRequest
	if !decode(w, r, &req) {
		return
	}
	s.dispatch(w, editor.SetSelection{IDs: req.IDs})
}

func (s *Server) handleErase(w http.ResponseWriter, r *http.Request) {
	var req pointRequest
	if !decode(w, r, &req) {
		return
	}
	s.dispatch(w, editor.EraseAt{Point: layout.Point{X: req.X, Y: req.Y}})
}

func (s *Server) handleEraseRect(w http.ResponseWriter, r *http.Request) {
	var req rectRequest
	if !decode(w, r, &req) {
		return
	}
	s.dispatch(w, editor.EraseInRect{Rect: layout.Rect{X: req.X, Y: req.Y, W: req.W, H: req.H}})
}

func (s *Server) handleDelete(w http.ResponseWriter, _ *http.Request) {
	s.dispatch(w, editor.DeleteSelected{})
}

func (s *Server) handleClear(w http.ResponseWriter, _ *http.Request) {
	s.dispatch(w, editor.ClearAll{})
}

func (s *Server) handleUndo(w http.ResponseWriter, _ *http.Request) {
	s.dispatch(w, editor.Undo{})
}

func (s *Server) handleRedo(w http.ResponseWriter, _ *http.Request) {
	s.dispatch(w, editor.Redo{})
}

// handleView applies each field present in the request as a separate view
// action. View actions never touch the undo stacks.
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	var req viewRequest
	if !decode(w, r, &req) {
		return
	}
	var tool editor.Tool
	if req.Tool != nil {
		tool = editor.Tool(*req.Tool)
		switch tool {
		case editor.ToolSelect, editor.ToolPlace, editor.ToolErase, editor.ToolPan:
		default:
			respondError(w, http.StatusBadRequest, "unknown tool "+strconv.Quote(*req.Tool))
			return
		}
	}
	s.dispatchFunc(w, func(m editor.Model) []editor.Action {
		var actions []editor.Action
		if req.Tool != nil {
			actions = append(actions, editor.SetTool{Tool: tool})
		}
		if req.Zoom != nil {
			actions = append(actions, editor.SetZoom{Zoom: *req.Zoom})
		}
		if req.ShowGrid != nil && *req.ShowGrid != m.View.ShowGrid {
			actions = append(actions, editor.ToggleGrid{})
		}
		if req.Preview != nil {
			actions = append(actions, editor.SetPreview{DefinitionID: *req.Preview})
		}
		if req.Rotate {
			actions = append(actions, editor.RotatePreview{})
		}
		return actions
	})
}

func (s *Server) handleAddLayer(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if !decode(w, r, &req) {
		return
	}
	id := catalog.NameToID(req.Name)
	if id == "" {
		respondError(w, http.StatusBadRequest, "layer name must contain a letter or digit")
		return
	}
	s.dispatch(w, editor.AddLayer{Layer: editor.Layer{ID: id, Name: req.Name, Visible: true}})
}

// handleUpdateLayer changes name, visibility and lock as one history step.
// Active changes only the view and is skipped when the update is rejected.
func (s *Server) handleUpdateLayer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req layerUpdateRequest
	if !decode(w, r, &req) {
		return
	}
	if _, ok := s.History().Current.Layer(id); !ok {
		respondError(w, http.StatusNotFound, "layer not found")
		return
	}
	var actions []editor.Action
	if req.Name != nil || req.Visible != nil || req.Locked != nil {
		actions = append(actions, editor.UpdateLayer{LayerID: id, Name: req.Name, Visible: req.Visible, Locked: req.Locked})
	}
	if req.Active != nil && *req.Active {
		actions = append(actions, editor.SetActiveLayer{LayerID: id})
	}
	s.dispatch(w, actions...)
}

func (s *Server) handleRemoveLayer(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, editor.RemoveLayer{LayerID: chi.URLParam(r, "id")})
}

func (s *Server) handleAssignLayer(w http.ResponseWriter, r *http.Request) {
	var req idsRequest
	if !decode(w, r, &req) {
		return
	}
	s.dispatch(w, editor.AssignLayer{IDs: req.IDs, LayerID: chi.URLParam(r, "id")})
}

// handleCreateGroup groups the current selection.
func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if !decode(w, r, &req) {
		return
	}
	id := catalog.NameToID(req.Name)
	if id == "" {
		id = s.NewID()
	}
	s.dispatchFunc(w, func(m editor.Model) []editor.Action {
		return []editor.Action{editor.CreateGroup{Group: editor.Group{ID: id, Name: req.Name, Members: m.Selected}}}
	})
}

func (s *Server) handleUngroup(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, editor.Ungroup{GroupID: chi.URLParam(r, "id")})
}

func (s *Server) handleSelectGroup(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, editor.SelectGroup{GroupID: chi.URLParam(r, "id")})
}

func (s *Server) handleNewProject(w http.ResponseWriter, r *http.Request) {
	var req gridRequest
	if !decode(w, r, &req) {
		return
	}
	grid := planner.Grid{Width: req.Width, Height: req.Height}
	if !grid.Valid() {
		respondError(w, http.StatusBadRequest, "grid dimensions must be positive")
		return
	}
	if req.Name == "" {
		req.Name = "untitled"
	}
	s.dispatch(w, editor.NewProject{Name: req.Name, Grid: grid})
}

func (s *Server) handlePreset(w http.ResponseWriter, r *http.Request) {
	var req gridRequest
	if !decode(w, r, &req) {
		return
	}
	grid := planner.Grid{Width: req.Width, Height: req.Height}
	if !grid.Valid() {
		respondError(w, http.StatusBadRequest, "grid dimensions must be positive")
		return
	}
	s.dispatch(w, editor.ChangePreset{Grid: grid})
}

func (s *Server) requireStore(w http.ResponseWriter) bool {
	if s.store == nil {
		respondError(w, http.StatusNotImplemented, "no project store configured")
		return false
	}
	return true
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	keys, err := s.store.List(r.Context())
	if err != nil {
		s.logger.Error("listing projects", zap.Error(err))
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string][]string{"projects": keys})
}

func (s *Server) handleSaveProject(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	p := s.History().Current.Project()
	if err := s.store.Save(r.Context(), p); err != nil {
		s.logger.Error("saving project", zap.String("key", p.Key()), zap.Error(err))
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.logger.Info("project saved",
		zap.String("key", p.Key()),
		zap.Int("instances", len(p.Instances)),
	)
	respondJSON(w, http.StatusCreated, map[string]string{"key": p.Key()})
}

func (s *Server) handleLoadProject(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	key := chi.URLParam(r, "key")
	p, err := s.store.Load(r.Context(), key)
	if errors.Is(err, project.ErrNotFound) {
		respondError(w, http.StatusNotFound, "project not found")
		return
	}
	if err != nil {
		s.logger.Error("loading project", zap.String("key", key), zap.Error(err))
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.dispatch(w, editor.LoadProject{Project: p})
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	key := chi.URLParam(r, "key")
	err := s.store.Delete(r.Context(), key)
	if errors.Is(err, project.ErrNotFound) {
		respondError(w, http.StatusNotFound, "project not found")
		return
	}
	if err != nil {
		s.logger.Error("deleting project", zap.String("key", key), zap.Error(err))
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
