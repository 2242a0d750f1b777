package api

import (
	"github.com/cory-johannsen/shipyard/internal/catalog"
	"github.com/cory-johannsen/shipyard/internal/editor"
	"github.com/cory-johannsen/shipyard/internal/layout"
	"github.com/cory-johannsen/shipyard/internal/planner"
)

type tileJSON struct {
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Type     string `json:"type"`
	WalkCost int    `json:"walk_cost"`
}

type sizeJSON struct {
	W int `json:"w"`
	H int `json:"h"`
}

type structureJSON struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Category string     `json:"category"`
	Color    string     `json:"color,omitempty"`
	Size     sizeJSON   `json:"size"`
	Rotation int        `json:"rotation"`
	Tiles    []tileJSON `json:"tiles,omitempty"`
}

type categoryJSON struct {
	Name       string          `json:"name"`
	Structures []structureJSON `json:"structures"`
}

type instanceJSON struct {
	ID        string     `json:"id"`
	Structure string     `json:"structure"`
	X         int        `json:"x"`
	Y         int        `json:"y"`
	Rotation  int        `json:"rotation"`
	Layer     string     `json:"layer"`
	Tiles     []tileJSON `json:"tiles"`
}

type layerJSON struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Visible bool   `json:"visible"`
	Locked  bool   `json:"locked"`
}

type groupJSON struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

type viewJSON struct {
	Tool            string  `json:"tool"`
	Zoom            float64 `json:"zoom"`
	ShowGrid        bool    `json:"show_grid"`
	ActiveLayer     string  `json:"active_layer"`
	PreviewDef      string  `json:"preview,omitempty"`
	PreviewRotation int     `json:"preview_rotation"`
}

type stateJSON struct {
	Name      string         `json:"name"`
	Grid      sizeJSON       `json:"grid"`
	Instances []instanceJSON `json:"instances"`
	Layers    []layerJSON    `json:"layers"`
	Groups    []groupJSON    `json:"groups"`
	Selected  []string       `json:"selected"`
	View      viewJSON       `json:"view"`
	CanUndo   bool           `json:"can_undo"`
	CanRedo   bool           `json:"can_redo"`
	Changed   bool           `json:"changed"`
}

func toTiles(tiles []layout.Tile) []tileJSON {
	out := make([]tileJSON, len(tiles))
	for i, t := range tiles {
		out[i] = tileJSON{X: t.X, Y: t.Y, Type: t.Type.String(), WalkCost: t.WalkCost}
	}
	return out
}

func toStructure(d *catalog.StructureDefinition, r layout.Rotation) structureJSON {
	size := layout.RotateSize(d.Footprint(), r)
	s := structureJSON{
		ID:       d.ID,
		Name:     d.Name,
		Category: d.Category,
		Color:    d.Color,
		Size:     sizeJSON{W: size.W, H: size.H},
		Rotation: int(r),
	}
	if d.Layout != nil {
		s.Tiles = toTiles(d.Layout.Place(r, layout.Point{}))
	}
	return s
}

func toCatalog(c *catalog.Catalog) []categoryJSON {
	out := make([]categoryJSON, 0, len(c.Categories()))
	for _, cat := range c.Categories() {
		cj := categoryJSON{Name: cat.Name, Structures: make([]structureJSON, len(cat.Structures))}
		for i, d := range cat.Structures {
			cj.Structures[i] = toStructure(d, layout.Rotate0)
		}
		out = append(out, cj)
	}
	return out
}

func toInstance(e *planner.Engine, inst planner.Instance) instanceJSON {
	return instanceJSON{
		ID:        inst.ID,
		Structure: inst.DefinitionID,
		X:         inst.X,
		Y:         inst.Y,
		Rotation:  int(inst.Rotation),
		Layer:     inst.LayerID,
		Tiles:     toTiles(e.Tiles(inst)),
	}
}

func toState(e *planner.Engine, h editor.History, changed bool) stateJSON {
	m := h.Current
	s := stateJSON{
		Name:      m.Name,
		Grid:      sizeJSON{W: m.Grid.Width, H: m.Grid.Height},
		Instances: make([]instanceJSON, len(m.Instances)),
		Layers:    make([]layerJSON, len(m.Layers)),
		Groups:    make([]groupJSON, len(m.Groups)),
		Selected:  append([]string{}, m.Selected...),
		View: viewJSON{
			Tool:            string(m.View.Tool),
			Zoom:            m.View.Zoom,
			ShowGrid:        m.View.ShowGrid,
			ActiveLayer:     m.View.ActiveLayer,
			PreviewDef:      m.View.PreviewDef,
			PreviewRotation: int(m.View.PreviewRotation),
		},
		CanUndo: h.CanUndo(),
		CanRedo: h.CanRedo(),
		Changed: changed,
	}
	for i, inst := range m.Instances {
		s.Instances[i] = toInstance(e, inst)
	}
	for i, l := range m.Layers {
		s.Layers[i] = layerJSON{ID: l.ID, Name: l.Name, Visible: l.Visible, Locked: l.Locked}
	}
	for i, g := range m.Groups {
		s.Groups[i] = groupJSON{ID: g.ID, Name: g.Name, Members: append([]string{}, g.Members...)}
	}
	return s
}
