package render

import (
	"fmt"
	"slices"
	"strings"

	"github.com/cory-johannsen/shipyard/internal/catalog"
	"github.com/cory-johannsen/shipyard/internal/editor"
	"github.com/cory-johannsen/shipyard/internal/layout"
	"github.com/cory-johannsen/shipyard/internal/planner"
)

// Renderer formats planner state as terminal text. With color disabled the
// output is plain ASCII.
type Renderer struct {
	catalog *catalog.Catalog
	engine  *planner.Engine
	color   bool
}

// New creates a Renderer resolving structures through cat.
//
// Precondition: cat must not be nil.
func New(cat *catalog.Catalog, color bool) *Renderer {
	return &Renderer{catalog: cat, engine: planner.NewEngine(cat), color: color}
}

func (r *Renderer) style(code, text string) string {
	if !r.color || code == "" {
		return text
	}
	return Colorize(code, text)
}

type cell struct {
	ch   byte
	rank int
	code string
}

// Grid draws the ship grid. Body tiles show the upper-cased first letter of
// the structure ID, access tiles '+', blocked tiles 'x', empty cells '.' (or
// blank with the grid overlay off). Instances on hidden layers are omitted.
func (r *Renderer) Grid(m editor.Model) string {
	empty := byte('.')
	if !m.View.ShowGrid {
		empty = ' '
	}
	cells := make([][]cell, m.Grid.Height)
	for y := range cells {
		cells[y] = make([]cell, m.Grid.Width)
		for x := range cells[y] {
			cells[y][x] = cell{ch: empty}
		}
	}

	for _, inst := range m.Instances {
		l, ok := m.Layer(inst.LayerID)
		if ok && !l.Visible {
			continue
		}
		body := r.bodyStyle(m, inst, l.Locked)
		for _, t := range r.engine.Tiles(inst) {
			if !m.Grid.Contains(t.Pos()) {
				continue
			}
			var c cell
			switch t.Type {
			case layout.Construction:
				c = cell{ch: initial(inst.DefinitionID), rank: 3, code: body}
			case layout.Blocked:
				c = cell{ch: 'x', rank: 2, code: Red}
			default:
				c = cell{ch: '+', rank: 1, code: Cyan}
			}
			if c.rank > cells[t.Y][t.X].rank {
				cells[t.Y][t.X] = c
			}
		}
	}

	var b strings.Builder
	b.WriteString("    ")
	for x := 0; x < m.Grid.Width; x++ {
		b.WriteByte(byte('0' + x%10))
	}
	b.WriteByte('\n')
	for y, row := range cells {
		fmt.Fprintf(&b, "%3d ", y)
		for _, c := range row {
			if c.rank == 0 {
				b.WriteString(r.style(BrightBlack, string(c.ch)))
				continue
			}
			b.WriteString(r.style(c.code, string(c.ch)))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func (r *Renderer) bodyStyle(m editor.Model, inst planner.Instance, locked bool) string {
	switch {
	case slices.Contains(m.Selected, inst.ID):
		return Reverse
	case locked:
		return Dim
	}
	if def, ok := r.catalog.Definition(inst.DefinitionID); ok {
		if code, ok := HexColor(def.Color); ok {
			return code
		}
	}
	return White
}

func initial(id string) byte {
	if id == "" {
		return '?'
	}
	c := id[0]
	if c >= 'a' && c <= 'z' {
		c -= 'a' - 'A'
	}
	return c
}

// Catalog lists categories and their structures. Categories collapsed in the
// view show only their size.
func (r *Renderer) Catalog(expanded map[string]bool) string {
	var b strings.Builder
	for _, cat := range r.catalog.Categories() {
		b.WriteString(r.style(BrightYellow, fmt.Sprintf("%s (%d)", cat.Name, len(cat.Structures))))
		b.WriteByte('\n')
		if open, set := expanded[cat.Name]; set && !open {
			continue
		}
		for _, d := range cat.Structures {
			size := d.Footprint()
			fmt.Fprintf(&b, "  %s %s %dx%d\n",
				r.style(BrightCyan, fmt.Sprintf("%-20s", d.ID)), fmt.Sprintf("%-24s", d.Name), size.W, size.H)
		}
	}
	return b.String()
}

// Instances lists placed structures in placement order; selected instances
// are marked with '*'.
func (r *Renderer) Instances(m editor.Model) string {
	if len(m.Instances) == 0 {
		return r.style(Dim, "No structures placed.") + "\n"
	}
	var b strings.Builder
	for _, inst := range m.Instances {
		mark := " "
		if slices.Contains(m.Selected, inst.ID) {
			mark = r.style(Bold, "*")
		}
		name := inst.DefinitionID
		if def, ok := r.catalog.Definition(inst.DefinitionID); ok {
			name = def.Name
		}
		fmt.Fprintf(&b, "%s %-36s %-20s (%d,%d) %3d %s\n",
			mark, inst.ID, name, inst.X, inst.Y, int(inst.Rotation), inst.LayerID)
	}
	return b.String()
}

// Layers lists the layers; the active layer is marked with '>'.
func (r *Renderer) Layers(m editor.Model) string {
	var b strings.Builder
	for _, l := range m.Layers {
		mark := " "
		if l.ID == m.View.ActiveLayer {
			mark = r.style(Green, ">")
		}
		var flags []string
		if !l.Visible {
			flags = append(flags, "hidden")
		}
		if l.Locked {
			flags = append(flags, "locked")
		}
		line := fmt.Sprintf("%s %-16s %s", mark, l.ID, l.Name)
		if len(flags) > 0 {
			line += " " + r.style(Yellow, "["+strings.Join(flags, ",")+"]")
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

// Status summarizes the session in one line.
func (r *Renderer) Status(h editor.History) string {
	m := h.Current
	return fmt.Sprintf("%s %dx%d | %d structures | undo %d redo %d | layer %s | tool %s | rotation %d",
		r.style(Bold, m.Name), m.Grid.Width, m.Grid.Height, len(m.Instances),
		len(h.Past), len(h.Future), m.View.ActiveLayer, m.View.Tool, int(m.View.PreviewRotation))
}
