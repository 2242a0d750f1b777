package editor

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/shipyard/internal/catalog"
	"github.com/cory-johannsen/shipyard/internal/layout"
	"github.com/cory-johannsen/shipyard/internal/planner"
	"github.com/cory-johannsen/shipyard/internal/project"
)

type defMap map[string]*catalog.StructureDefinition

func (d defMap) Definition(id string) (*catalog.StructureDefinition, bool) {
	def, ok := d[id]
	return def, ok
}

func testDefs() defMap {
	return defMap{
		"wall":  {ID: "wall", Name: "Wall"},
		"crate": {ID: "crate", Name: "Crate", Size: layout.Size{W: 2, H: 2}},
	}
}

func newTestHistory() (History, *Reducer) {
	return NewHistory(NewModel("test", planner.Grid{Width: 20, Height: 15}), 0), NewReducer(testDefs())
}

func place(id, def string, x, y int) Place {
	return Place{Instance: planner.Instance{ID: id, DefinitionID: def, X: x, Y: y}}
}

func mustDispatch(t *testing.T, h History, r *Reducer, a Action) History {
	t.Helper()
	next, ok := h.Dispatch(r, a)
	require.True(t, ok, "action %T rejected", a)
	return next
}

func TestHistory_UndoRedoRoundTrip(t *testing.T) {
	h, r := newTestHistory()
	h = mustDispatch(t, h, r, place("a", "wall", 0, 0))
	h = mustDispatch(t, h, r, place("b", "wall", 2, 0))
	h = mustDispatch(t, h, r, place("c", "wall", 4, 0))
	assert.Len(t, h.Past, 3)

	h = mustDispatch(t, h, r, Undo{})
	h = mustDispatch(t, h, r, Undo{})
	assert.Len(t, h.Current.Instances, 1)
	assert.Len(t, h.Past, 1)
	assert.Len(t, h.Future, 2)

	h = mustDispatch(t, h, r, Redo{})
	assert.Len(t, h.Current.Instances, 2)
	assert.Len(t, h.Past, 2)
	assert.Len(t, h.Future, 1)
	assert.Equal(t, "b", h.Current.Instances[1].ID)
}

func TestHistory_EmptyStacksAreNoOps(t *testing.T) {
	h, r := newTestHistory()
	next, ok := h.Dispatch(r, Undo{})
	assert.False(t, ok)
	assert.Equal(t, h, next)
	next, ok = h.Dispatch(r, Redo{})
	assert.False(t, ok)
	assert.Equal(t, h, next)
}

func TestHistory_CapsPast(t *testing.T) {
	h := NewHistory(NewModel("big", planner.Grid{Width: 40, Height: 40}), 0)
	r := NewReducer(testDefs())
	for i := 0; i < 1000; i++ {
		h = mustDispatch(t, h, r, place(fmt.Sprintf("w%d", i), "wall", i%40, (i/40)%25))
		require.LessOrEqual(t, len(h.Past), DefaultHistoryLimit)
	}
	assert.Len(t, h.Past, DefaultHistoryLimit)
	assert.Len(t, h.Current.Instances, 1000)

	// The oldest surviving snapshot is the state before the 951st placement.
	assert.Len(t, h.Past[0].Instances, 950)
}

func TestHistory_CustomLimit(t *testing.T) {
	h := NewHistory(NewModel("small", planner.Grid{Width: 10, Height: 10}), 3)
	r := NewReducer(testDefs())
	for i := 0; i < 5; i++ {
		h = mustDispatch(t, h, r, place(fmt.Sprintf("w%d", i), "wall", i, 0))
	}
	assert.Len(t, h.Past, 3)
	for h.CanUndo() {
		h, _ = h.Undo()
	}
	assert.Len(t, h.Current.Instances, 2)
}

func TestHistory_NewActionClearsFuture(t *testing.T) {
	h, r := newTestHistory()
	h = mustDispatch(t, h, r, place("a", "wall", 0, 0))
	h = mustDispatch(t, h, r, place("b", "wall", 1, 0))
	h = mustDispatch(t, h, r, Undo{})
	require.True(t, h.CanRedo())

	h = mustDispatch(t, h, r, place("c", "wall", 5, 5))
	assert.False(t, h.CanRedo())
	assert.Len(t, h.Past, 2)
}

func TestHistory_ViewActionsLeaveStacks(t *testing.T) {
	h, r := newTestHistory()
	h = mustDispatch(t, h, r, place("a", "wall", 0, 0))
	h = mustDispatch(t, h, r, place("b", "wall", 1, 0))
	h = mustDispatch(t, h, r, Undo{})
	past, future := len(h.Past), len(h.Future)

	for _, a := range []Action{
		SetTool{Tool: ToolErase},
		SetZoom{Zoom: 2},
		ToggleGrid{},
		SetExpanded{Category: "Hull", Expanded: true},
		SetSelection{IDs: []string{"a"}},
		SetHover{Point: &layout.Point{X: 3, Y: 3}},
		SetSelectionRect{Rect: &layout.Rect{W: 2, H: 2}},
		SetPreview{DefinitionID: "crate"},
		RotatePreview{},
	} {
		h = mustDispatch(t, h, r, a)
	}
	assert.Len(t, h.Past, past)
	assert.Len(t, h.Future, future)

	v := h.Current.View
	assert.Equal(t, ToolErase, v.Tool)
	assert.Equal(t, 2.0, v.Zoom)
	assert.False(t, v.ShowGrid)
	assert.True(t, v.Expanded["Hull"])
	assert.Equal(t, []string{"a"}, h.Current.Selected)
	assert.Equal(t, layout.Rotate90, v.PreviewRotation)
	assert.Equal(t, "crate", v.PreviewDef)
}

func TestHistory_ResetClearsStacks(t *testing.T) {
	h, r := newTestHistory()
	h = mustDispatch(t, h, r, place("a", "wall", 0, 0))
	h = mustDispatch(t, h, r, place("b", "wall", 1, 0))
	h = mustDispatch(t, h, r, Undo{})

	h = mustDispatch(t, h, r, NewProject{Name: "fresh", Grid: planner.Grid{Width: 8, Height: 8}})
	assert.Empty(t, h.Past)
	assert.Empty(t, h.Future)
	assert.Empty(t, h.Current.Instances)
	assert.Equal(t, "fresh", h.Current.Name)

	_, ok := h.Dispatch(r, NewProject{Name: "bad"})
	assert.False(t, ok, "zero grid is rejected")
}

func TestHistory_RejectedActionDoesNotPush(t *testing.T) {
	h, r := newTestHistory()
	h = mustDispatch(t, h, r, place("a", "crate", 0, 0))

	next, ok := h.Dispatch(r, place("b", "wall", 1, 1))
	assert.False(t, ok)
	assert.Len(t, next.Past, 1)

	next, ok = h.Dispatch(r, MoveSelected{DX: 1})
	assert.False(t, ok, "nothing selected")
	assert.Len(t, next.Past, 1)

	next, ok = h.Dispatch(r, EraseAt{Point: layout.Point{X: 10, Y: 10}})
	assert.False(t, ok)
	assert.Len(t, next.Past, 1)
}

func TestHistory_DispatchDoesNotShareStacks(t *testing.T) {
	h, r := newTestHistory()
	h = mustDispatch(t, h, r, place("a", "wall", 0, 0))
	h = mustDispatch(t, h, r, place("b", "wall", 1, 0))
	base := h

	left := mustDispatch(t, base, r, place("c", "wall", 2, 0))
	right := mustDispatch(t, base, r, place("d", "wall", 3, 0))
	assert.Len(t, base.Past, 2)
	assert.Len(t, base.Current.Instances, 2)
	assert.Equal(t, "c", left.Current.Instances[2].ID)
	assert.Equal(t, "d", right.Current.Instances[2].ID)
	assert.Len(t, left.Past[1].Instances, 1)
}

func TestHistory_UndoClearsSelection(t *testing.T) {
	h, r := newTestHistory()
	h = mustDispatch(t, h, r, place("a", "wall", 0, 0))
	h = mustDispatch(t, h, r, place("b", "wall", 1, 0))
	h = mustDispatch(t, h, r, SetSelection{IDs: []string{"a", "b"}})

	h = mustDispatch(t, h, r, Undo{})
	assert.Empty(t, h.Current.Selected)
	h = mustDispatch(t, h, r, SetSelection{IDs: []string{"a"}})
	h = mustDispatch(t, h, r, Redo{})
	assert.Empty(t, h.Current.Selected)
}

func TestHistory_MoveAndDeleteSelection(t *testing.T) {
	h, r := newTestHistory()
	h = mustDispatch(t, h, r, place("a", "wall", 0, 0))
	h = mustDispatch(t, h, r, place("b", "wall", 1, 0))
	h = mustDispatch(t, h, r, place("c", "crate", 10, 10))
	h = mustDispatch(t, h, r, SetSelection{IDs: []string{"a", "b", "ghost"}})
	assert.Equal(t, []string{"a", "b"}, h.Current.Selected)

	h = mustDispatch(t, h, r, MoveSelected{DX: 2, DY: 3})
	s := h.Current.State()
	a, _ := s.Find("a")
	b, _ := s.Find("b")
	assert.Equal(t, layout.Point{X: 2, Y: 3}, a.Origin())
	assert.Equal(t, layout.Point{X: 3, Y: 3}, b.Origin())

	h = mustDispatch(t, h, r, DeleteSelected{})
	assert.Len(t, h.Current.Instances, 1)
	assert.Empty(t, h.Current.Selected)

	h = mustDispatch(t, h, r, Undo{})
	assert.Len(t, h.Current.Instances, 3)
}

func TestLayers_LockAndVisibility(t *testing.T) {
	h, r := newTestHistory()
	h = mustDispatch(t, h, r, AddLayer{Layer: Layer{ID: "hull", Name: "Hull", Visible: true}})
	h = mustDispatch(t, h, r, SetActiveLayer{LayerID: "hull"})
	h = mustDispatch(t, h, r, place("a", "wall", 0, 0))
	assert.Equal(t, "hull", h.Current.Instances[0].LayerID)

	h = mustDispatch(t, h, r, SetLayerLocked{LayerID: "hull", Locked: true})
	_, ok := h.Dispatch(r, EraseAt{Point: layout.Point{}})
	assert.False(t, ok, "locked instances are not erasable")
	_, ok = h.Dispatch(r, place("b", "wall", 5, 5))
	assert.False(t, ok, "cannot place onto a locked layer")
	_, ok = h.Dispatch(r, SetLayerLocked{LayerID: "hull", Locked: true})
	assert.False(t, ok, "unchanged layer is a no-op")

	h = mustDispatch(t, h, r, SetLayerLocked{LayerID: "hull", Locked: false})
	h = mustDispatch(t, h, r, SetLayerVisible{LayerID: "hull", Visible: false})
	_, ok = h.Dispatch(r, EraseInRect{Rect: layout.Rect{W: 3, H: 3}})
	assert.False(t, ok, "hidden instances are not erasable")

	h = mustDispatch(t, h, r, Undo{})
	h = mustDispatch(t, h, r, EraseInRect{Rect: layout.Rect{W: 3, H: 3}})
	assert.Empty(t, h.Current.Instances)
}

func TestLayers_RemoveRenameAssign(t *testing.T) {
	h, r := newTestHistory()
	h = mustDispatch(t, h, r, AddLayer{Layer: Layer{ID: "deck", Name: "Deck", Visible: true}})
	_, ok := h.Dispatch(r, AddLayer{Layer: Layer{ID: "deck"}})
	assert.False(t, ok)

	h = mustDispatch(t, h, r, place("a", "wall", 0, 0))
	h = mustDispatch(t, h, r, place("b", "wall", 1, 0))
	h = mustDispatch(t, h, r, AssignLayer{IDs: []string{"b"}, LayerID: "deck"})
	h = mustDispatch(t, h, r, RenameLayer{LayerID: "deck", Name: "Lower Deck"})
	l, _ := h.Current.Layer("deck")
	assert.Equal(t, "Lower Deck", l.Name)

	h = mustDispatch(t, h, r, SetActiveLayer{LayerID: "deck"})
	h = mustDispatch(t, h, r, RemoveLayer{LayerID: "deck"})
	assert.Len(t, h.Current.Instances, 1)
	assert.Equal(t, "a", h.Current.Instances[0].ID)
	assert.Equal(t, DefaultLayerID, h.Current.View.ActiveLayer)

	_, ok = h.Dispatch(r, RemoveLayer{LayerID: DefaultLayerID})
	assert.False(t, ok)
	_, ok = h.Dispatch(r, SetActiveLayer{LayerID: "deck"})
	assert.False(t, ok)
}

func TestGroups(t *testing.T) {
	h, r := newTestHistory()
	h = mustDispatch(t, h, r, place("a", "wall", 0, 0))
	h = mustDispatch(t, h, r, place("b", "wall", 1, 0))
	h = mustDispatch(t, h, r, CreateGroup{Group: Group{ID: "g", Name: "Pair", Members: []string{"a", "b", "ghost"}}})
	require.Len(t, h.Current.Groups, 1)
	assert.Equal(t, []string{"a", "b"}, h.Current.Groups[0].Members)

	h = mustDispatch(t, h, r, SelectGroup{GroupID: "g"})
	assert.Equal(t, []string{"a", "b"}, h.Current.Selected)

	h = mustDispatch(t, h, r, EraseAt{Point: layout.Point{X: 0, Y: 0}})
	assert.Equal(t, []string{"b"}, h.Current.Groups[0].Members)
	assert.Equal(t, []string{"b"}, h.Current.Selected)

	h = mustDispatch(t, h, r, Ungroup{GroupID: "g"})
	assert.Empty(t, h.Current.Groups)
	_, ok := h.Dispatch(r, Ungroup{GroupID: "g"})
	assert.False(t, ok)

	h = mustDispatch(t, h, r, ClearAll{})
	assert.Empty(t, h.Current.Instances)
	_, ok = h.Dispatch(r, ClearAll{})
	assert.False(t, ok)
}

func TestChangePreset_DropsOutOfBounds(t *testing.T) {
	h, r := newTestHistory()
	h = mustDispatch(t, h, r, place("a", "wall", 0, 0))
	h = mustDispatch(t, h, r, place("b", "crate", 8, 8))
	h = mustDispatch(t, h, r, CreateGroup{Group: Group{ID: "g", Members: []string{"a", "b"}}})

	h = mustDispatch(t, h, r, ChangePreset{Grid: planner.Grid{Width: 9, Height: 9}})
	require.Len(t, h.Current.Instances, 1)
	assert.Equal(t, "a", h.Current.Instances[0].ID)
	assert.Equal(t, []string{"a"}, h.Current.Groups[0].Members)
	assert.Empty(t, h.Past)
}

func TestProject_RoundTrip(t *testing.T) {
	h, r := newTestHistory()
	h = mustDispatch(t, h, r, AddLayer{Layer: Layer{ID: "hull", Name: "Hull", Visible: true, Locked: true}})
	h = mustDispatch(t, h, r, place("a", "crate", 3, 3))
	h = mustDispatch(t, h, r, CreateGroup{Group: Group{ID: "g", Name: "Cargo", Members: []string{"a"}}})

	p := h.Current.Project()
	require.NoError(t, p.Validate())

	loaded := mustDispatch(t, NewHistory(NewModel("other", planner.Grid{Width: 1, Height: 1}), 0), r, LoadProject{Project: p})
	assert.True(t, h.Current.Snapshot().Equal(loaded.Current.Snapshot()))
	assert.Equal(t, h.Current.Grid, loaded.Current.Grid)
	assert.Equal(t, h.Current.Name, loaded.Current.Name)
}

func TestLoadProject_DropsCollisions(t *testing.T) {
	_, r := newTestHistory()
	p := &project.Project{
		Name: "hand edited",
		Grid: planner.Grid{Width: 10, Height: 10},
		Instances: []planner.Instance{
			{ID: "a", DefinitionID: "crate", X: 0, Y: 0},
			{ID: "b", DefinitionID: "wall", X: 1, Y: 1},
			{ID: "c", DefinitionID: "wall", X: 5, Y: 5},
		},
		Groups: []project.Group{{ID: "g", Members: []string{"b"}}},
	}
	h := mustDispatch(t, NewHistory(NewModel("x", planner.Grid{Width: 1, Height: 1}), 0), r, LoadProject{Project: p})
	assert.Len(t, h.Current.Instances, 2)
	assert.Empty(t, h.Current.Groups)
	assert.Len(t, h.Current.Layers, 1)
	assert.Equal(t, DefaultLayerID, h.Current.Instances[0].LayerID)

	_, ok := h.Dispatch(r, LoadProject{})
	assert.False(t, ok)
}

func TestSetZoom_Clamps(t *testing.T) {
	h, r := newTestHistory()
	h = mustDispatch(t, h, r, SetZoom{Zoom: 100})
	assert.Equal(t, MaxZoom, h.Current.View.Zoom)
	h = mustDispatch(t, h, r, SetZoom{Zoom: 0.01})
	assert.Equal(t, MinZoom, h.Current.View.Zoom)
	_, ok := h.Dispatch(r, SetZoom{Zoom: -1})
	assert.False(t, ok)
	_, ok = h.Dispatch(r, SetTool{Tool: "lasso"})
	assert.False(t, ok)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "view", SetTool{}.Kind().String())
	assert.Equal(t, "undoable", Place{}.Kind().String())
	assert.Equal(t, "reset", NewProject{}.Kind().String())
	assert.Equal(t, "control", Undo{}.Kind().String())
}

// TestHistory_Invariants drives random action sequences and checks that the
// history stays bounded and the committed state never contains a collision.
func TestHistory_Invariants(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		r := NewReducer(testDefs())
		h := NewHistory(NewModel("prop", planner.Grid{Width: 8, Height: 8}), 5)
		steps := rapid.IntRange(1, 80).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			var a Action
			switch rapid.IntRange(0, 6).Draw(t, "op") {
			case 0, 1:
				a = Place{Instance: planner.Instance{
					ID:           fmt.Sprintf("i%d", i),
					DefinitionID: rapid.SampledFrom([]string{"wall", "crate"}).Draw(t, "def"),
					X:            rapid.IntRange(-1, 8).Draw(t, "x"),
					Y:            rapid.IntRange(-1, 8).Draw(t, "y"),
					Rotation:     rapid.SampledFrom(layout.Rotations).Draw(t, "rot"),
				}}
			case 2:
				ids := make([]string, 0, len(h.Current.Instances))
				for _, inst := range h.Current.Instances {
					ids = append(ids, inst.ID)
				}
				a = SetSelection{IDs: ids}
			case 3:
				a = MoveSelected{DX: rapid.IntRange(-2, 2).Draw(t, "dx"), DY: rapid.IntRange(-2, 2).Draw(t, "dy")}
			case 4:
				a = EraseAt{Point: layout.Point{X: rapid.IntRange(0, 7).Draw(t, "ex"), Y: rapid.IntRange(0, 7).Draw(t, "ey")}}
			case 5:
				a = Undo{}
			default:
				a = Redo{}
			}
			h, _ = h.Dispatch(r, a)

			if len(h.Past) > 5 {
				t.Fatalf("past grew to %d", len(h.Past))
			}
			s := h.Current.State()
			for _, inst := range s.Instances {
				def, _ := testDefs().Definition(inst.DefinitionID)
				if !r.Engine().CanPlace(s.Grid, s.Instances, def, inst.X, inst.Y, inst.Rotation, inst.ID) {
					t.Fatalf("instance %s invalid after %T", inst.ID, a)
				}
			}
		}
	})
}

func TestUpdateLayer_OneStepAllOrNothing(t *testing.T) {
	h, r := newTestHistory()
	h = mustDispatch(t, h, r, AddLayer{Layer: Layer{ID: "deck", Name: "Deck", Visible: true}})
	past := len(h.Past)

	hidden, locked := false, true
	h = mustDispatch(t, h, r, UpdateLayer{LayerID: "deck", Visible: &hidden, Locked: &locked})
	assert.Len(t, h.Past, past+1)
	l, _ := h.Current.Layer("deck")
	assert.False(t, l.Visible)
	assert.True(t, l.Locked)

	empty, shown := "", true
	_, ok := h.Dispatch(r, UpdateLayer{LayerID: "deck", Name: &empty, Visible: &shown})
	assert.False(t, ok, "an empty name rejects every field")
	_, ok = h.Dispatch(r, UpdateLayer{LayerID: "missing", Visible: &shown})
	assert.False(t, ok)

	h = mustDispatch(t, h, r, Undo{})
	l, _ = h.Current.Layer("deck")
	assert.True(t, l.Visible)
	assert.False(t, l.Locked)
}
