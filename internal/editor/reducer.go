package editor

import (
	"slices"

	"github.com/cory-johannsen/shipyard/internal/planner"
	"github.com/cory-johannsen/shipyard/internal/project"
)

// Zoom bounds for SetZoom.
const (
	MinZoom = 0.25
	MaxZoom = 8.0
)

// Reducer applies actions to a Model through the placement engine.
type Reducer struct {
	engine *planner.Engine
}

// NewReducer creates a Reducer that resolves definitions through defs.
//
// Precondition: defs must not be nil.
func NewReducer(defs planner.Definitions) *Reducer {
	return &Reducer{engine: planner.NewEngine(defs)}
}

// Engine returns the placement engine used by the reducer.
func (r *Reducer) Engine() *planner.Engine {
	return r.engine
}

// Apply applies a to m without recording history.
//
// Postcondition: Returns (next, true) if the action was accepted, or (m, false)
// if it was rejected. m is never modified.
func (r *Reducer) Apply(m Model, a Action) (Model, bool) {
	return a.apply(r, m)
}

// withInstances returns m with instances replaced and stale references to
// removed instances pruned from the selection and from groups.
func withInstances(m Model, instances []planner.Instance) Model {
	live := make(map[string]bool, len(instances))
	for _, inst := range instances {
		live[inst.ID] = true
	}
	m.Instances = instances

	selected := make([]string, 0, len(m.Selected))
	for _, id := range m.Selected {
		if live[id] {
			selected = append(selected, id)
		}
	}
	m.Selected = selected

	groups := make([]Group, 0, len(m.Groups))
	for _, g := range m.Groups {
		members := make([]string, 0, len(g.Members))
		for _, id := range g.Members {
			if live[id] {
				members = append(members, id)
			}
		}
		if len(members) > 0 {
			groups = append(groups, Group{ID: g.ID, Name: g.Name, Members: members})
		}
	}
	m.Groups = groups
	return m
}

// rebuild re-places instances in order on grid, dropping any that no longer
// fit. Later instances lose to earlier ones.
func (r *Reducer) rebuild(grid planner.Grid, instances []planner.Instance) []planner.Instance {
	s := planner.State{Grid: grid}
	for _, inst := range instances {
		s, _ = r.engine.Place(s, inst)
	}
	return s.Instances
}

func (a NewProject) apply(_ *Reducer, m Model) (Model, bool) {
	if !a.Grid.Valid() {
		return m, false
	}
	next := NewModel(a.Name, a.Grid)
	next.View.Expanded = m.View.Expanded
	return next, true
}

func (a LoadProject) apply(r *Reducer, m Model) (Model, bool) {
	if a.Project == nil || !a.Project.Grid.Valid() {
		return m, false
	}
	next := FromProject(a.Project)
	next.View.Expanded = m.View.Expanded
	return withInstances(next, r.rebuild(next.Grid, next.Instances)), true
}

func (a ChangePreset) apply(r *Reducer, m Model) (Model, bool) {
	if !a.Grid.Valid() {
		return m, false
	}
	m.Grid = a.Grid
	return withInstances(m, r.rebuild(a.Grid, m.Instances)), true
}

func (a SetTool) apply(_ *Reducer, m Model) (Model, bool) {
	switch a.Tool {
	case ToolSelect, ToolPlace, ToolErase, ToolPan:
		m.View.Tool = a.Tool
		return m, true
	default:
		return m, false
	}
}

func (a SetZoom) apply(_ *Reducer, m Model) (Model, bool) {
	if a.Zoom <= 0 {
		return m, false
	}
	m.View.Zoom = min(max(a.Zoom, MinZoom), MaxZoom)
	return m, true
}

func (ToggleGrid) apply(_ *Reducer, m Model) (Model, bool) {
	m.View.ShowGrid = !m.View.ShowGrid
	return m, true
}

func (a SetExpanded) apply(_ *Reducer, m Model) (Model, bool) {
	expanded := make(map[string]bool, len(m.View.Expanded)+1)
	for k, v := range m.View.Expanded {
		expanded[k] = v
	}
	expanded[a.Category] = a.Expanded
	m.View.Expanded = expanded
	return m, true
}

func (a SetSelection) apply(_ *Reducer, m Model) (Model, bool) {
	s := m.State()
	selected := make([]string, 0, len(a.IDs))
	for _, id := range a.IDs {
		if _, ok := s.Find(id); ok && !slices.Contains(selected, id) {
			selected = append(selected, id)
		}
	}
	m.Selected = selected
	return m, true
}

func (a SelectGroup) apply(r *Reducer, m Model) (Model, bool) {
	for _, g := range m.Groups {
		if g.ID == a.GroupID {
			return SetSelection{IDs: g.Members}.apply(r, m)
		}
	}
	return m, false
}

func (a SetHover) apply(_ *Reducer, m Model) (Model, bool) {
	m.View.Hover = a.Point
	return m, true
}

func (a SetSelectionRect) apply(_ *Reducer, m Model) (Model, bool) {
	m.View.SelectionRect = a.Rect
	return m, true
}

func (a SetPreview) apply(_ *Reducer, m Model) (Model, bool) {
	m.View.PreviewDef = a.DefinitionID
	return m, true
}

func (RotatePreview) apply(_ *Reducer, m Model) (Model, bool) {
	m.View.PreviewRotation = m.View.PreviewRotation.Next()
	return m, true
}

func (a SetActiveLayer) apply(_ *Reducer, m Model) (Model, bool) {
	if _, ok := m.Layer(a.LayerID); !ok {
		return m, false
	}
	m.View.ActiveLayer = a.LayerID
	return m, true
}

func (a Place) apply(r *Reducer, m Model) (Model, bool) {
	inst := a.Instance
	if inst.LayerID == "" {
		inst.LayerID = m.View.ActiveLayer
	}
	if _, ok := m.Layer(inst.LayerID); !ok || !m.Interactive(inst) {
		return m, false
	}
	next, ok := r.engine.Place(m.State(), inst)
	if !ok {
		return m, false
	}
	m.Instances = next.Instances
	return m, true
}

// interactiveSelection returns the selected IDs whose instances are interactive.
func interactiveSelection(m Model) []string {
	s := m.State()
	ids := make([]string, 0, len(m.Selected))
	for _, id := range m.Selected {
		if inst, ok := s.Find(id); ok && m.Interactive(inst) {
			ids = append(ids, id)
		}
	}
	return ids
}

func (a MoveSelected) apply(r *Reducer, m Model) (Model, bool) {
	next, ok := r.engine.MoveSelected(m.State(), interactiveSelection(m), a.DX, a.DY)
	if !ok {
		return m, false
	}
	m.Instances = next.Instances
	return m, true
}

func (a EraseAt) apply(r *Reducer, m Model) (Model, bool) {
	next, ok := r.engine.EraseAt(m.State(), a.Point, m.Interactive)
	if !ok {
		return m, false
	}
	return withInstances(m, next.Instances), true
}

func (a EraseInRect) apply(r *Reducer, m Model) (Model, bool) {
	next, ok := r.engine.EraseInRect(m.State(), a.Rect, m.Interactive)
	if !ok {
		return m, false
	}
	return withInstances(m, next.Instances), true
}

func (DeleteSelected) apply(r *Reducer, m Model) (Model, bool) {
	next, ok := r.engine.DeleteSelected(m.State(), m.Selected, m.Interactive)
	if !ok {
		return m, false
	}
	return withInstances(m, next.Instances), true
}

func (a AddLayer) apply(_ *Reducer, m Model) (Model, bool) {
	if a.Layer.ID == "" {
		return m, false
	}
	if _, exists := m.Layer(a.Layer.ID); exists {
		return m, false
	}
	m.Layers = append(slices.Clone(m.Layers), a.Layer)
	return m, true
}

// updateLayer applies fn to the layer with the given ID.
func updateLayer(m Model, id string, fn func(*Layer)) (Model, bool) {
	i := slices.IndexFunc(m.Layers, func(l Layer) bool { return l.ID == id })
	if i < 0 {
		return m, false
	}
	layers := slices.Clone(m.Layers)
	fn(&layers[i])
	if layers[i] == m.Layers[i] {
		return m, false
	}
	m.Layers = layers
	return m, true
}

func (a RemoveLayer) apply(_ *Reducer, m Model) (Model, bool) {
	if a.LayerID == DefaultLayerID {
		return m, false
	}
	if _, ok := m.Layer(a.LayerID); !ok {
		return m, false
	}
	m.Layers = slices.DeleteFunc(slices.Clone(m.Layers), func(l Layer) bool { return l.ID == a.LayerID })
	kept := make([]planner.Instance, 0, len(m.Instances))
	for _, inst := range m.Instances {
		if inst.LayerID != a.LayerID {
			kept = append(kept, inst)
		}
	}
	if m.View.ActiveLayer == a.LayerID {
		m.View.ActiveLayer = DefaultLayerID
	}
	return withInstances(m, kept), true
}

func (a RenameLayer) apply(_ *Reducer, m Model) (Model, bool) {
	if a.Name == "" {
		return m, false
	}
	return updateLayer(m, a.LayerID, func(l *Layer) { l.Name = a.Name })
}

func (a SetLayerVisible) apply(_ *Reducer, m Model) (Model, bool) {
	return updateLayer(m, a.LayerID, func(l *Layer) { l.Visible = a.Visible })
}

func (a SetLayerLocked) apply(_ *Reducer, m Model) (Model, bool) {
	return updateLayer(m, a.LayerID, func(l *Layer) { l.Locked = a.Locked })
}

func (a UpdateLayer) apply(_ *Reducer, m Model) (Model, bool) {
	if a.Name != nil && *a.Name == "" {
		return m, false
	}
	return updateLayer(m, a.LayerID, func(l *Layer) {
		if a.Name != nil {
			l.Name = *a.Name
		}
		if a.Visible != nil {
			l.Visible = *a.Visible
		}
		if a.Locked != nil {
			l.Locked = *a.Locked
		}
	})
}

func (a AssignLayer) apply(_ *Reducer, m Model) (Model, bool) {
	if _, ok := m.Layer(a.LayerID); !ok {
		return m, false
	}
	instances := slices.Clone(m.Instances)
	changed := false
	for i := range instances {
		if slices.Contains(a.IDs, instances[i].ID) && instances[i].LayerID != a.LayerID {
			instances[i].LayerID = a.LayerID
			changed = true
		}
	}
	if !changed {
		return m, false
	}
	m.Instances = instances
	return m, true
}

func (a CreateGroup) apply(_ *Reducer, m Model) (Model, bool) {
	if a.Group.ID == "" || slices.ContainsFunc(m.Groups, func(g Group) bool { return g.ID == a.Group.ID }) {
		return m, false
	}
	s := m.State()
	members := make([]string, 0, len(a.Group.Members))
	for _, id := range a.Group.Members {
		if _, ok := s.Find(id); ok && !slices.Contains(members, id) {
			members = append(members, id)
		}
	}
	if len(members) == 0 {
		return m, false
	}
	m.Groups = append(slices.Clone(m.Groups), Group{ID: a.Group.ID, Name: a.Group.Name, Members: members})
	return m, true
}

func (a Ungroup) apply(_ *Reducer, m Model) (Model, bool) {
	i := slices.IndexFunc(m.Groups, func(g Group) bool { return g.ID == a.GroupID })
	if i < 0 {
		return m, false
	}
	m.Groups = slices.Delete(slices.Clone(m.Groups), i, i+1)
	return m, true
}

func (ClearAll) apply(_ *Reducer, m Model) (Model, bool) {
	if len(m.Instances) == 0 && len(m.Groups) == 0 {
		return m, false
	}
	return withInstances(m, nil), true
}

// Project returns the persisted form of m.
func (m Model) Project() *project.Project {
	s := m.Snapshot()
	p := &project.Project{
		Name:      m.Name,
		Grid:      m.Grid,
		Instances: s.Instances,
	}
	for _, l := range s.Layers {
		p.Layers = append(p.Layers, project.Layer(l))
	}
	for _, g := range s.Groups {
		p.Groups = append(p.Groups, project.Group(g))
	}
	return p
}

// FromProject builds a model from a persisted project without revalidating
// placements. Use the LoadProject action to load through the engine.
//
// Postcondition: The model always contains the default layer.
func FromProject(p *project.Project) Model {
	m := NewModel(p.Name, p.Grid)
	if len(p.Layers) > 0 {
		m.Layers = nil
		for _, l := range p.Layers {
			m.Layers = append(m.Layers, Layer(l))
		}
		if _, ok := m.Layer(DefaultLayerID); !ok {
			m.Layers = append([]Layer{{ID: DefaultLayerID, Name: "Default", Visible: true}}, m.Layers...)
		}
	}
	m.Instances = slices.Clone(p.Instances)
	for i := range m.Instances {
		if m.Instances[i].LayerID == "" {
			m.Instances[i].LayerID = DefaultLayerID
		}
	}
	for _, g := range p.Groups {
		m.Groups = append(m.Groups, Group{ID: g.ID, Name: g.Name, Members: slices.Clone(g.Members)})
	}
	return m
}
