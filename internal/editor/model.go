// Package editor provides the planner application model, the typed action set
// submitted by UI layers, and the undo/redo history that wraps every state
// transition.
package editor

import (
	"slices"

	"github.com/cory-johannsen/shipyard/internal/layout"
	"github.com/cory-johannsen/shipyard/internal/planner"
)

// DefaultLayerID is the layer every new project starts with.
const DefaultLayerID = "default"

// Tool names the active editing tool.
type Tool string

// Editing tools.
const (
	ToolSelect Tool = "select"
	ToolPlace  Tool = "place"
	ToolErase  Tool = "erase"
	ToolPan    Tool = "pan"
)

// Layer is an organizational layer. Instances on hidden or locked layers are
// not interactive.
type Layer struct {
	ID      string
	Name    string
	Visible bool
	Locked  bool
}

// Group names a set of instances that are selected together.
type Group struct {
	ID      string
	Name    string
	Members []string
}

// View holds view-only state. It never enters the undo history.
type View struct {
	Tool     Tool
	Zoom     float64
	ShowGrid bool
	// Expanded records which catalog categories are expanded in the palette.
	Expanded      map[string]bool
	Hover         *layout.Point
	SelectionRect *layout.Rect
	// ActiveLayer receives newly placed instances.
	ActiveLayer string
	// PreviewDef and PreviewRotation describe the placement ghost.
	PreviewDef      string
	PreviewRotation layout.Rotation
}

// Model is the full application state.
type Model struct {
	Name      string
	Grid      planner.Grid
	Instances []planner.Instance
	Layers    []Layer
	Groups    []Group
	// Selected lists the IDs of the currently selected instances.
	Selected []string
	View     View
}

// NewModel returns an empty project model on a grid of the given size.
//
// Postcondition: The model has exactly one visible, unlocked default layer.
func NewModel(name string, grid planner.Grid) Model {
	return Model{
		Name:   name,
		Grid:   grid,
		Layers: []Layer{{ID: DefaultLayerID, Name: "Default", Visible: true}},
		View: View{
			Tool:        ToolSelect,
			Zoom:        1,
			ShowGrid:    true,
			ActiveLayer: DefaultLayerID,
		},
	}
}

// State returns the collision-relevant part of the model.
func (m Model) State() planner.State {
	return planner.State{Grid: m.Grid, Instances: m.Instances}
}

// Layer returns the layer with the given ID.
//
// Postcondition: Returns (layer, true) if found, or (Layer{}, false) otherwise.
func (m Model) Layer(id string) (Layer, bool) {
	for _, l := range m.Layers {
		if l.ID == id {
			return l, true
		}
	}
	return Layer{}, false
}

// Interactive reports whether inst is on a visible, unlocked layer. Instances
// on an unknown layer are treated as interactive.
func (m Model) Interactive(inst planner.Instance) bool {
	l, ok := m.Layer(inst.LayerID)
	if !ok {
		return true
	}
	return l.Visible && !l.Locked
}

// Snapshot is the undoable subset of a Model: instances and organizational
// metadata. Snapshots own their slices and are never modified after capture.
type Snapshot struct {
	Instances []planner.Instance
	Layers    []Layer
	Groups    []Group
}

// Snapshot captures the undoable subset of m.
func (m Model) Snapshot() Snapshot {
	return Snapshot{Instances: m.Instances, Layers: m.Layers, Groups: m.Groups}.clone()
}

// Restore returns m with its undoable subset replaced by s and the selection cleared.
func (m Model) Restore(s Snapshot) Model {
	restored := s.clone()
	m.Instances = restored.Instances
	m.Layers = restored.Layers
	m.Groups = restored.Groups
	m.Selected = nil
	if _, ok := m.Layer(m.View.ActiveLayer); !ok && len(m.Layers) > 0 {
		m.View.ActiveLayer = m.Layers[0].ID
	}
	return m
}

func (s Snapshot) clone() Snapshot {
	groups := make([]Group, len(s.Groups))
	for i, g := range s.Groups {
		groups[i] = Group{ID: g.ID, Name: g.Name, Members: slices.Clone(g.Members)}
	}
	return Snapshot{
		Instances: slices.Clone(s.Instances),
		Layers:    slices.Clone(s.Layers),
		Groups:    groups,
	}
}

// Equal reports whether two snapshots hold the same undoable state.
func (s Snapshot) Equal(o Snapshot) bool {
	return slices.Equal(s.Instances, o.Instances) &&
		slices.Equal(s.Layers, o.Layers) &&
		slices.EqualFunc(s.Groups, o.Groups, func(a, b Group) bool {
			return a.ID == b.ID && a.Name == b.Name && slices.Equal(a.Members, b.Members)
		})
}
