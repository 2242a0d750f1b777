package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/shipyard/internal/api"
	"github.com/cory-johannsen/shipyard/internal/catalog"
	"github.com/cory-johannsen/shipyard/internal/editor"
	"github.com/cory-johannsen/shipyard/internal/planner"
	"github.com/cory-johannsen/shipyard/internal/project"
)

const catalogYAML = `
catalog:
  categories:
    - name: Bridge
      structures:
        - id: console
          name: Console
          color: "#3498db"
          layout:
            width: 1
            height: 2
            tiles:
              - {x: 0, y: 0, type: construction, walk_cost: 1}
              - {x: 0, y: 1, type: access, walk_cost: 1}
    - name: Hull
      structures:
        - id: wall
          name: Wall
          size: [1, 1]
`

type state struct {
	Name      string `json:"name"`
	Instances []struct {
		ID        string `json:"id"`
		Structure string `json:"structure"`
		X         int    `json:"x"`
		Y         int    `json:"y"`
		Rotation  int    `json:"rotation"`
		Layer     string `json:"layer"`
		Tiles     []struct {
			X    int    `json:"x"`
			Y    int    `json:"y"`
			Type string `json:"type"`
		} `json:"tiles"`
	} `json:"instances"`
	Layers []struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Visible bool   `json:"visible"`
		Locked  bool   `json:"locked"`
	} `json:"layers"`
	Groups   []struct{ ID string } `json:"groups"`
	Selected []string              `json:"selected"`
	View     struct {
		Zoom        float64 `json:"zoom"`
		ShowGrid    bool    `json:"show_grid"`
		ActiveLayer string  `json:"active_layer"`
	} `json:"view"`
	CanUndo bool `json:"can_undo"`
	CanRedo bool `json:"can_redo"`
	Changed bool `json:"changed"`
}

func newServer(t *testing.T, store project.Store) *api.Server {
	t.Helper()
	cat, err := catalog.LoadFromBytes([]byte(catalogYAML))
	require.NoError(t, err)
	h := editor.NewHistory(editor.NewModel("Scout", planner.Grid{Width: 10, Height: 10}), editor.DefaultHistoryLimit)
	srv := api.NewServer(cat, h, store, zap.NewNop())
	n := 0
	srv.NewID = func() string {
		n++
		return fmt.Sprintf("i%d", n)
	}
	return srv
}

func do(t *testing.T, srv http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(method, path, &buf))
	return rec
}

func decodeState(t *testing.T, rec *httptest.ResponseRecorder) state {
	t.Helper()
	var s state
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&s))
	return s
}

func TestHealthz(t *testing.T) {
	rec := do(t, newServer(t, nil), http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

// pingStore is a project store whose database health is controlled by err.
type pingStore struct {
	project.Store
	err error
}

func (p pingStore) Ping(context.Context) error { return p.err }

func TestHealthz_PingsStore(t *testing.T) {
	rec := do(t, newServer(t, pingStore{}), http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, newServer(t, pingStore{err: fmt.Errorf("connection refused")}), http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"unavailable","error":"connection refused"}`, rec.Body.String())
}

func TestCatalog(t *testing.T) {
	srv := newServer(t, nil)
	rec := do(t, srv, http.MethodGet, "/api/catalog", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var cats []struct {
		Name       string `json:"name"`
		Structures []struct {
			ID string `json:"id"`
		} `json:"structures"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&cats))
	require.Len(t, cats, 2)
	assert.Equal(t, "Bridge", cats[0].Name)
	assert.Equal(t, "console", cats[0].Structures[0].ID)

	rec = do(t, srv, http.MethodGet, "/api/catalog/console?rotation=90", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var def struct {
		Size struct{ W, H int } `json:"size"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&def))
	assert.Equal(t, 2, def.Size.W, "rotation swaps the footprint")
	assert.Equal(t, 1, def.Size.H)

	assert.Equal(t, http.StatusNotFound, do(t, srv, http.MethodGet, "/api/catalog/nope", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, srv, http.MethodGet, "/api/catalog/console?rotation=45", nil).Code)
}

func TestPlaceUndoRedo(t *testing.T) {
	srv := newServer(t, nil)

	rec := do(t, srv, http.MethodPost, "/api/place", map[string]any{"structure": "console", "x": 2, "y": 3})
	require.Equal(t, http.StatusOK, rec.Code)
	s := decodeState(t, rec)
	require.Len(t, s.Instances, 1)
	assert.Equal(t, "i1", s.Instances[0].ID)
	assert.Equal(t, editor.DefaultLayerID, s.Instances[0].Layer)
	assert.Len(t, s.Instances[0].Tiles, 2)
	assert.True(t, s.Changed)
	assert.True(t, s.CanUndo)

	// Overlapping the console body is rejected.
	rec = do(t, srv, http.MethodPost, "/api/place", map[string]any{"structure": "wall", "x": 2, "y": 3})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Len(t, decodeState(t, rec).Instances, 1)

	rec = do(t, srv, http.MethodPost, "/api/undo", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	s = decodeState(t, rec)
	assert.Empty(t, s.Instances)
	assert.False(t, s.CanUndo)
	assert.True(t, s.CanRedo)

	rec = do(t, srv, http.MethodPost, "/api/redo", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeState(t, rec).Instances, 1)

	assert.Equal(t, http.StatusConflict, do(t, srv, http.MethodPost, "/api/redo", nil).Code)
}

func TestPlace_BadRequests(t *testing.T) {
	srv := newServer(t, nil)
	assert.Equal(t, http.StatusBadRequest,
		do(t, srv, http.MethodPost, "/api/place", map[string]any{"structure": "wall", "rotation": 45}).Code)
	assert.Equal(t, http.StatusNotFound,
		do(t, srv, http.MethodPost, "/api/place", map[string]any{"structure": "nope"}).Code)
	assert.Equal(t, http.StatusBadRequest,
		do(t, srv, http.MethodPost, "/api/place", map[string]any{"structure": "wall", "bogus": 1}).Code)
}

func TestCanPlace(t *testing.T) {
	srv := newServer(t, nil)
	do(t, srv, http.MethodPost, "/api/place", map[string]any{"structure": "wall", "x": 0, "y": 0})

	check := func(body map[string]any) bool {
		rec := do(t, srv, http.MethodPost, "/api/can-place", body)
		require.Equal(t, http.StatusOK, rec.Code)
		var res map[string]bool
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
		return res["valid"]
	}
	assert.False(t, check(map[string]any{"structure": "wall", "x": 0, "y": 0}))
	assert.True(t, check(map[string]any{"structure": "wall", "x": 0, "y": 0, "exclude": "i1"}))
	assert.True(t, check(map[string]any{"structure": "console", "x": 9, "y": 8}))
	assert.False(t, check(map[string]any{"structure": "console", "x": 9, "y": 9}))
}

func TestSelectMoveDelete(t *testing.T) {
	srv := newServer(t, nil)
	do(t, srv, http.MethodPost, "/api/place", map[string]any{"structure": "wall", "x": 0, "y": 0})
	do(t, srv, http.MethodPost, "/api/place", map[string]any{"structure": "wall", "x": 5, "y": 5})

	s := decodeState(t, do(t, srv, http.MethodPost, "/api/select", map[string]any{"ids": []string{"i1", "ghost"}}))
	assert.Equal(t, []string{"i1"}, s.Selected)

	rec := do(t, srv, http.MethodPost, "/api/move", map[string]any{"dx": 1, "dy": 2})
	require.Equal(t, http.StatusOK, rec.Code)
	s = decodeState(t, rec)
	assert.Equal(t, 1, s.Instances[0].X)
	assert.Equal(t, 2, s.Instances[0].Y)

	// Moving onto the other wall is rejected.
	assert.Equal(t, http.StatusConflict, do(t, srv, http.MethodPost, "/api/move", map[string]any{"dx": 4, "dy": 3}).Code)

	s = decodeState(t, do(t, srv, http.MethodPost, "/api/delete", nil))
	require.Len(t, s.Instances, 1)
	assert.Equal(t, "i2", s.Instances[0].ID)
	assert.Empty(t, s.Selected)
}

func TestErase(t *testing.T) {
	srv := newServer(t, nil)
	do(t, srv, http.MethodPost, "/api/place", map[string]any{"structure": "console", "x": 0, "y": 0})
	do(t, srv, http.MethodPost, "/api/place", map[string]any{"structure": "wall", "x": 5, "y": 5})

	// The console access tile is not part of its body.
	assert.Equal(t, http.StatusConflict, do(t, srv, http.MethodPost, "/api/erase", map[string]any{"x": 0, "y": 1}).Code)
	s := decodeState(t, do(t, srv, http.MethodPost, "/api/erase", map[string]any{"x": 0, "y": 0}))
	require.Len(t, s.Instances, 1)

	s = decodeState(t, do(t, srv, http.MethodPost, "/api/erase-rect", map[string]any{"x": 4, "y": 4, "w": 3, "h": 3}))
	assert.Empty(t, s.Instances)

	s = decodeState(t, do(t, srv, http.MethodPost, "/api/undo", nil))
	assert.Len(t, s.Instances, 1)
	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodPost, "/api/clear", nil).Code)
}

func TestView(t *testing.T) {
	srv := newServer(t, nil)
	rec := do(t, srv, http.MethodPut, "/api/view", map[string]any{"zoom": 100.0, "show_grid": false, "tool": "place"})
	require.Equal(t, http.StatusOK, rec.Code)
	s := decodeState(t, rec)
	assert.Equal(t, editor.MaxZoom, s.View.Zoom)
	assert.False(t, s.View.ShowGrid)
	assert.False(t, s.CanUndo, "view changes are not undoable")

	assert.Equal(t, http.StatusBadRequest, do(t, srv, http.MethodPut, "/api/view", map[string]any{"tool": "laser"}).Code)
}

func TestLayers(t *testing.T) {
	srv := newServer(t, nil)
	rec := do(t, srv, http.MethodPost, "/api/layers", map[string]any{"name": "Hull Plating"})
	require.Equal(t, http.StatusOK, rec.Code)
	s := decodeState(t, rec)
	require.Len(t, s.Layers, 2)
	assert.Equal(t, "hull_plating", s.Layers[1].ID)

	s = decodeState(t, do(t, srv, http.MethodPatch, "/api/layers/hull_plating", map[string]any{"active": true}))
	assert.Equal(t, "hull_plating", s.View.ActiveLayer)

	s = decodeState(t, do(t, srv, http.MethodPost, "/api/place", map[string]any{"structure": "wall", "x": 1, "y": 1}))
	assert.Equal(t, "hull_plating", s.Instances[0].Layer)

	s = decodeState(t, do(t, srv, http.MethodPatch, "/api/layers/hull_plating", map[string]any{"locked": true}))
	assert.True(t, s.Layers[1].Locked)
	assert.Equal(t, http.StatusConflict,
		do(t, srv, http.MethodPost, "/api/erase", map[string]any{"x": 1, "y": 1}).Code, "locked layer is not interactive")

	s = decodeState(t, do(t, srv, http.MethodPost, "/api/layers/default/assign", map[string]any{"ids": []string{"i1"}}))
	assert.Equal(t, editor.DefaultLayerID, s.Instances[0].Layer)

	assert.Equal(t, http.StatusNotFound, do(t, srv, http.MethodPatch, "/api/layers/nope", map[string]any{"locked": true}).Code)
	assert.Equal(t, http.StatusConflict, do(t, srv, http.MethodDelete, "/api/layers/default", nil).Code)

	s = decodeState(t, do(t, srv, http.MethodDelete, "/api/layers/hull_plating", nil))
	assert.Len(t, s.Layers, 1)
	assert.Equal(t, editor.DefaultLayerID, s.View.ActiveLayer)
	assert.Len(t, s.Instances, 1)
}

func TestLayers_UpdateIsOneUndoStep(t *testing.T) {
	srv := newServer(t, nil)
	do(t, srv, http.MethodPost, "/api/layers", map[string]any{"name": "Deck"})
	past := len(srv.History().Past)

	s := decodeState(t, do(t, srv, http.MethodPatch, "/api/layers/deck", map[string]any{"visible": false, "locked": true}))
	assert.False(t, s.Layers[1].Visible)
	assert.True(t, s.Layers[1].Locked)
	assert.Len(t, srv.History().Past, past+1)

	s = decodeState(t, do(t, srv, http.MethodPost, "/api/undo", nil))
	assert.True(t, s.Layers[1].Visible)
	assert.False(t, s.Layers[1].Locked)

	rec := do(t, srv, http.MethodPatch, "/api/layers/deck", map[string]any{"name": "", "visible": false, "active": true})
	assert.Equal(t, http.StatusConflict, rec.Code)
	s = decodeState(t, rec)
	assert.Equal(t, "Deck", s.Layers[1].Name)
	assert.True(t, s.Layers[1].Visible, "a rejected rename leaves visibility alone")
	assert.Equal(t, editor.DefaultLayerID, s.View.ActiveLayer)
}

func TestGroups(t *testing.T) {
	srv := newServer(t, nil)
	do(t, srv, http.MethodPost, "/api/place", map[string]any{"structure": "wall", "x": 0, "y": 0})
	do(t, srv, http.MethodPost, "/api/place", map[string]any{"structure": "wall", "x": 1, "y": 0})

	// Grouping an empty selection is rejected.
	assert.Equal(t, http.StatusConflict, do(t, srv, http.MethodPost, "/api/groups", map[string]any{"name": "Aft"}).Code)

	do(t, srv, http.MethodPost, "/api/select", map[string]any{"ids": []string{"i1", "i2"}})
	s := decodeState(t, do(t, srv, http.MethodPost, "/api/groups", map[string]any{"name": "Aft"}))
	require.Len(t, s.Groups, 1)
	assert.Equal(t, "aft", s.Groups[0].ID)

	do(t, srv, http.MethodPost, "/api/select", map[string]any{"ids": []string{}})
	s = decodeState(t, do(t, srv, http.MethodPost, "/api/groups/aft/select", nil))
	assert.ElementsMatch(t, []string{"i1", "i2"}, s.Selected)

	s = decodeState(t, do(t, srv, http.MethodDelete, "/api/groups/aft", nil))
	assert.Empty(t, s.Groups)
	assert.Len(t, s.Instances, 2)
}

func TestProjectLifecycle(t *testing.T) {
	store, err := project.NewFileStore(t.TempDir())
	require.NoError(t, err)
	srv := newServer(t, store)

	do(t, srv, http.MethodPost, "/api/place", map[string]any{"structure": "wall", "x": 9, "y": 9})
	rec := do(t, srv, http.MethodPost, "/api/projects", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"key":"scout"}`, rec.Body.String())

	rec = do(t, srv, http.MethodGet, "/api/projects", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"projects":["scout"]}`, rec.Body.String())

	s := decodeState(t, do(t, srv, http.MethodPost, "/api/project/new", map[string]any{"name": "Blank", "width": 5, "height": 5}))
	assert.Equal(t, "Blank", s.Name)
	assert.Empty(t, s.Instances)
	assert.False(t, s.CanUndo)

	s = decodeState(t, do(t, srv, http.MethodPost, "/api/projects/scout/load", nil))
	assert.Equal(t, "Scout", s.Name)
	require.Len(t, s.Instances, 1)

	s = decodeState(t, do(t, srv, http.MethodPost, "/api/project/preset", map[string]any{"width": 5, "height": 5}))
	assert.Empty(t, s.Instances, "instance at (9,9) no longer fits")

	assert.Equal(t, http.StatusNoContent, do(t, srv, http.MethodDelete, "/api/projects/scout", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, srv, http.MethodDelete, "/api/projects/scout", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, srv, http.MethodPost, "/api/projects/scout/load", nil).Code)

	list, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestProjects_NoStore(t *testing.T) {
	srv := newServer(t, nil)
	assert.Equal(t, http.StatusNotImplemented, do(t, srv, http.MethodGet, "/api/projects", nil).Code)
	assert.Equal(t, http.StatusNotImplemented, do(t, srv, http.MethodPost, "/api/projects", nil).Code)
	assert.Equal(t, http.StatusBadRequest,
		do(t, srv, http.MethodPost, "/api/project/new", map[string]any{"width": 0, "height": 5}).Code)
}

func TestHistoryAccessor(t *testing.T) {
	srv := newServer(t, nil)
	do(t, srv, http.MethodPost, "/api/place", map[string]any{"structure": "wall", "x": 0, "y": 0})
	h := srv.History()
	assert.Len(t, h.Current.Instances, 1)
	assert.True(t, h.CanUndo())
}
