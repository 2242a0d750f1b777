package editor

import (
	"github.com/cory-johannsen/shipyard/internal/layout"
	"github.com/cory-johannsen/shipyard/internal/planner"
	"github.com/cory-johannsen/shipyard/internal/project"
)

// Kind classifies how an action interacts with the undo history.
type Kind int

const (
	// KindView actions change view-only state and never touch the history.
	KindView Kind = iota
	// KindUndoable actions change instances or organization and are recorded.
	KindUndoable
	// KindReset actions replace the project and clear the history.
	KindReset
	// KindControl actions navigate the history itself.
	KindControl
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindView:
		return "view"
	case KindUndoable:
		return "undoable"
	case KindReset:
		return "reset"
	case KindControl:
		return "control"
	default:
		return "unknown"
	}
}

// Action is a typed state transition. The set is closed: only this package
// defines actions.
type Action interface {
	Kind() Kind
	apply(r *Reducer, m Model) (Model, bool)
}

type viewAction struct{}

func (viewAction) Kind() Kind { return KindView }

type undoableAction struct{}

func (undoableAction) Kind() Kind { return KindUndoable }

type resetAction struct{}

func (resetAction) Kind() Kind { return KindReset }

// Reset actions.

// NewProject starts an empty project.
type NewProject struct {
	resetAction
	Name string
	Grid planner.Grid
}

// LoadProject replaces the model with a saved project.
type LoadProject struct {
	resetAction
	Project *project.Project
}

// ChangePreset switches the grid size, keeping the instances that still fit.
type ChangePreset struct {
	resetAction
	Grid planner.Grid
}

// View actions.

// SetTool selects the active editing tool.
type SetTool struct {
	viewAction
	Tool Tool
}

// SetZoom sets the view zoom, clamped to [MinZoom, MaxZoom].
type SetZoom struct {
	viewAction
	Zoom float64
}

// ToggleGrid shows or hides the grid overlay.
type ToggleGrid struct {
	viewAction
}

// SetExpanded expands or collapses a catalog category in the palette.
type SetExpanded struct {
	viewAction
	Category string
	Expanded bool
}

// SetSelection replaces the selection. Unknown IDs are dropped.
type SetSelection struct {
	viewAction
	IDs []string
}

// SelectGroup replaces the selection with the members of a group.
type SelectGroup struct {
	viewAction
	GroupID string
}

// SetHover records the hovered grid cell; nil clears it.
type SetHover struct {
	viewAction
	Point *layout.Point
}

// SetSelectionRect records the rubber-band rectangle; nil clears it.
type SetSelectionRect struct {
	viewAction
	Rect *layout.Rect
}

// SetPreview chooses the definition shown as the placement ghost.
type SetPreview struct {
	viewAction
	DefinitionID string
}

// RotatePreview advances the placement ghost rotation by 90 degrees.
type RotatePreview struct {
	viewAction
}

// SetActiveLayer chooses the layer that receives new instances.
type SetActiveLayer struct {
	viewAction
	LayerID string
}

// Undoable actions.

// Place adds an instance. An empty LayerID places onto the active layer.
type Place struct {
	undoableAction
	Instance planner.Instance
}

// MoveSelected translates the interactive selected instances.
type MoveSelected struct {
	undoableAction
	DX, DY int
}

// EraseAt removes interactive instances covering a point.
type EraseAt struct {
	undoableAction
	Point layout.Point
}

// EraseInRect removes interactive instances intersecting a rectangle.
type EraseInRect struct {
	undoableAction
	Rect layout.Rect
}

// DeleteSelected removes the interactive selected instances.
type DeleteSelected struct {
	undoableAction
}

// AddLayer appends a layer.
type AddLayer struct {
	undoableAction
	Layer Layer
}

// RemoveLayer removes a layer together with its instances. The default layer
// cannot be removed.
type RemoveLayer struct {
	undoableAction
	LayerID string
}

// RenameLayer renames a layer.
type RenameLayer struct {
	undoableAction
	LayerID string
	Name    string
}

// SetLayerVisible shows or hides a layer.
type SetLayerVisible struct {
	undoableAction
	LayerID string
	Visible bool
}

// SetLayerLocked locks or unlocks a layer.
type SetLayerLocked struct {
	undoableAction
	LayerID string
	Locked  bool
}

// UpdateLayer changes any of a layer's name, visibility and lock in one
// history step. Nil fields are left alone; an empty name rejects the whole
// update.
type UpdateLayer struct {
	undoableAction
	LayerID string
	Name    *string
	Visible *bool
	Locked  *bool
}

// AssignLayer moves instances onto a layer.
type AssignLayer struct {
	undoableAction
	IDs     []string
	LayerID string
}

// CreateGroup adds a group of existing instances.
type CreateGroup struct {
	undoableAction
	Group Group
}

// Ungroup removes a group, leaving its members in place.
type Ungroup struct {
	undoableAction
	GroupID string
}

// ClearAll removes every instance and group.
type ClearAll struct {
	undoableAction
}

// Control actions.

// Undo restores the most recent past snapshot.
type Undo struct{}

// Kind implements Action.
func (Undo) Kind() Kind { return KindControl }

func (Undo) apply(_ *Reducer, m Model) (Model, bool) { return m, false }

// Redo restores the most recent future snapshot.
type Redo struct{}

// Kind implements Action.
func (Redo) Kind() Kind { return KindControl }

func (Redo) apply(_ *Reducer, m Model) (Model, bool) { return m, false }
