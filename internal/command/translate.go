package command

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/cory-johannsen/shipyard/internal/catalog"
	"github.com/cory-johannsen/shipyard/internal/editor"
	"github.com/cory-johannsen/shipyard/internal/layout"
	"github.com/cory-johannsen/shipyard/internal/planner"
)

// ErrNotAction is returned for commands handled by the shell itself, such as
// save, list or help.
var ErrNotAction = errors.New("command has no editor action")

// ErrUsage wraps argument errors; the message carries the command usage.
var ErrUsage = errors.New("usage")

// Translator converts parsed commands into editor actions.
type Translator struct {
	// NewID issues instance IDs.
	NewID func() string
}

// NewTranslator creates a Translator that issues random UUID instance IDs.
func NewTranslator() *Translator {
	return &Translator{NewID: uuid.NewString}
}

func usage(cmd *Command, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrUsage, cmd.Usage, fmt.Sprintf(format, args...))
}

func ints(cmd *Command, args []string) ([]int, error) {
	out := make([]int, len(args))
	for i, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil {
			return nil, usage(cmd, "%q is not an integer", a)
		}
		out[i] = n
	}
	return out, nil
}

func exactly(cmd *Command, args []string, n int) error {
	if len(args) != n {
		return usage(cmd, "expected %d arguments, got %d", n, len(args))
	}
	return nil
}

// Action builds the editor action for cmd with the parsed input. The current
// model supplies context such as the selection and the preview rotation.
//
// Postcondition: Returns a non-nil action, or ErrNotAction for shell-local
// commands, or an error wrapping ErrUsage for malformed arguments.
func (t *Translator) Action(cmd *Command, in ParseResult, m editor.Model) (editor.Action, error) {
	args := in.Args
	switch cmd.Handler {
	case HandlerPlace:
		if len(args) != 3 && len(args) != 4 {
			return nil, usage(cmd, "expected 3 or 4 arguments, got %d", len(args))
		}
		n, err := ints(cmd, args[1:])
		if err != nil {
			return nil, err
		}
		rot := m.View.PreviewRotation
		if len(n) == 3 {
			if rot, err = layout.ParseRotation(n[2]); err != nil {
				return nil, usage(cmd, "%v", err)
			}
		}
		return editor.Place{Instance: planner.Instance{
			ID:           t.NewID(),
			DefinitionID: args[0],
			X:            n[0],
			Y:            n[1],
			Rotation:     rot,
		}}, nil

	case HandlerMove:
		if err := exactly(cmd, args, 2); err != nil {
			return nil, err
		}
		d, err := ints(cmd, args)
		if err != nil {
			return nil, err
		}
		return editor.MoveSelected{DX: d[0], DY: d[1]}, nil

	case HandlerErase:
		if err := exactly(cmd, args, 2); err != nil {
			return nil, err
		}
		p, err := ints(cmd, args)
		if err != nil {
			return nil, err
		}
		return editor.EraseAt{Point: layout.Point{X: p[0], Y: p[1]}}, nil

	case HandlerEraseRect:
		if err := exactly(cmd, args, 4); err != nil {
			return nil, err
		}
		r, err := ints(cmd, args)
		if err != nil {
			return nil, err
		}
		return editor.EraseInRect{Rect: layout.Rect{X: r[0], Y: r[1], W: r[2], H: r[3]}}, nil

	case HandlerDelete:
		return editor.DeleteSelected{}, nil
	case HandlerClear:
		return editor.ClearAll{}, nil

	case HandlerSelect:
		return editor.SetSelection{IDs: args}, nil
	case HandlerSelectGroup:
		if err := exactly(cmd, args, 1); err != nil {
			return nil, err
		}
		return editor.SelectGroup{GroupID: args[0]}, nil
	case HandlerGroup:
		name := in.Rest(0)
		if name == "" {
			return nil, usage(cmd, "missing group name")
		}
		if len(m.Selected) == 0 {
			return nil, usage(cmd, "nothing selected")
		}
		return editor.CreateGroup{Group: editor.Group{
			ID:      t.idFor(name),
			Name:    name,
			Members: m.Selected,
		}}, nil
	case HandlerUngroup:
		if err := exactly(cmd, args, 1); err != nil {
			return nil, err
		}
		return editor.Ungroup{GroupID: args[0]}, nil

	case HandlerLayerAdd:
		name := in.Rest(0)
		if name == "" {
			return nil, usage(cmd, "missing layer name")
		}
		return editor.AddLayer{Layer: editor.Layer{ID: t.idFor(name), Name: name, Visible: true}}, nil
	case HandlerLayerRemove:
		if err := exactly(cmd, args, 1); err != nil {
			return nil, err
		}
		return editor.RemoveLayer{LayerID: args[0]}, nil
	case HandlerLayerRename:
		if len(args) < 2 {
			return nil, usage(cmd, "expected a layer and a name")
		}
		return editor.RenameLayer{LayerID: args[0], Name: in.Rest(1)}, nil
	case HandlerLayerShow, HandlerLayerHide:
		if err := exactly(cmd, args, 1); err != nil {
			return nil, err
		}
		return editor.SetLayerVisible{LayerID: args[0], Visible: cmd.Handler == HandlerLayerShow}, nil
	case HandlerLayerLock, HandlerLayerUnlock:
		if err := exactly(cmd, args, 1); err != nil {
			return nil, err
		}
		return editor.SetLayerLocked{LayerID: args[0], Locked: cmd.Handler == HandlerLayerLock}, nil
	case HandlerLayerUse:
		if err := exactly(cmd, args, 1); err != nil {
			return nil, err
		}
		return editor.SetActiveLayer{LayerID: args[0]}, nil
	case HandlerAssign:
		if len(args) < 2 {
			return nil, usage(cmd, "expected a layer and at least one instance")
		}
		return editor.AssignLayer{LayerID: args[0], IDs: args[1:]}, nil

	case HandlerTool:
		if err := exactly(cmd, args, 1); err != nil {
			return nil, err
		}
		return editor.SetTool{Tool: editor.Tool(args[0])}, nil
	case HandlerZoom:
		if err := exactly(cmd, args, 1); err != nil {
			return nil, err
		}
		z, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return nil, usage(cmd, "%q is not a number", args[0])
		}
		return editor.SetZoom{Zoom: z}, nil
	case HandlerGrid:
		return editor.ToggleGrid{}, nil
	case HandlerRotate:
		return editor.RotatePreview{}, nil
	case HandlerPreview:
		if err := exactly(cmd, args, 1); err != nil {
			return nil, err
		}
		return editor.SetPreview{DefinitionID: args[0]}, nil
	case HandlerExpand, HandlerCollapse:
		category := in.Rest(0)
		if category == "" {
			return nil, usage(cmd, "missing category")
		}
		return editor.SetExpanded{Category: category, Expanded: cmd.Handler == HandlerExpand}, nil

	case HandlerUndo:
		return editor.Undo{}, nil
	case HandlerRedo:
		return editor.Redo{}, nil
	case HandlerNew:
		if len(args) < 2 {
			return nil, usage(cmd, "expected width and height")
		}
		wh, err := ints(cmd, args[:2])
		if err != nil {
			return nil, err
		}
		name := "untitled"
		if len(args) > 2 {
			name = in.Rest(2)
		}
		return editor.NewProject{Name: name, Grid: planner.Grid{Width: wh[0], Height: wh[1]}}, nil
	case HandlerPreset:
		if err := exactly(cmd, args, 2); err != nil {
			return nil, err
		}
		wh, err := ints(cmd, args)
		if err != nil {
			return nil, err
		}
		return editor.ChangePreset{Grid: planner.Grid{Width: wh[0], Height: wh[1]}}, nil
	}
	return nil, ErrNotAction
}

// idFor derives a readable ID from a name, falling back to a generated one.
func (t *Translator) idFor(name string) string {
	if id := catalog.NameToID(name); id != "" {
		return id
	}
	return t.NewID()
}
