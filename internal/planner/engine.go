package planner

import (
	"slices"

	"github.com/cory-johannsen/shipyard/internal/catalog"
	"github.com/cory-johannsen/shipyard/internal/layout"
)

// Engine validates and applies placement commands. It holds the catalog as a
// read-only dependency and keeps no other state; every method is a pure
// function of its arguments.
type Engine struct {
	defs Definitions
}

// NewEngine creates an Engine that resolves definitions through defs.
//
// Precondition: defs must not be nil.
func NewEngine(defs Definitions) *Engine {
	return &Engine{defs: defs}
}

// definition resolves an instance's definition, substituting a layout-less
// placeholder (DefaultSize footprint) for unknown IDs so that stale
// references still occupy space.
func (e *Engine) definition(id string) *catalog.StructureDefinition {
	if d, ok := e.defs.Definition(id); ok {
		return d
	}
	return &catalog.StructureDefinition{ID: id}
}

// footprint returns the absolute typed tiles of def rotated by r at origin at.
// Layout-less definitions cover their whole rotated rectangle with solid tiles.
func footprint(def *catalog.StructureDefinition, at layout.Point, r layout.Rotation) []layout.Tile {
	if def.Layout != nil {
		return def.Layout.Place(r, at)
	}
	size := layout.RotateSize(def.Footprint(), r)
	tiles := make([]layout.Tile, 0, size.W*size.H)
	for y := 0; y < size.H; y++ {
		for x := 0; x < size.W; x++ {
			tiles = append(tiles, layout.Tile{X: at.X + x, Y: at.Y + y, Type: layout.Construction, WalkCost: 1})
		}
	}
	return tiles
}

// Tiles returns the absolute typed tiles occupied by inst.
func (e *Engine) Tiles(inst Instance) []layout.Tile {
	return footprint(e.definition(inst.DefinitionID), inst.Origin(), inst.Rotation)
}

// inBounds reports whether def rotated by r at (x, y) lies inside the grid.
func inBounds(grid Grid, def *catalog.StructureDefinition, x, y int, r layout.Rotation, tiles []layout.Tile) bool {
	size := layout.RotateSize(def.Footprint(), r)
	if x < 0 || y < 0 || x+size.W > grid.Width || y+size.H > grid.Height {
		return false
	}
	for _, t := range tiles {
		if !grid.Contains(t.Pos()) {
			return false
		}
	}
	return true
}

// fits reports whether def rotated by r at (x, y) is inside the grid and does
// not collide with any instance in existing for which skip returns false.
func (e *Engine) fits(grid Grid, existing []Instance, def *catalog.StructureDefinition, x, y int, r layout.Rotation, skip func(Instance) bool) bool {
	if def == nil || !r.Valid() {
		return false
	}
	candidate := footprint(def, layout.Point{X: x, Y: y}, r)
	if !inBounds(grid, def, x, y, r, candidate) {
		return false
	}

	// Position -> whether the candidate tile there is an access tile.
	access := make(map[layout.Point]bool, len(candidate))
	for _, t := range candidate {
		access[t.Pos()] = t.Type == layout.Access
	}

	for _, inst := range existing {
		if skip(inst) {
			continue
		}
		for _, t := range e.Tiles(inst) {
			candAccess, shared := access[t.Pos()]
			if !shared {
				continue
			}
			if !(candAccess && t.Type == layout.Access) {
				return false
			}
		}
	}
	return true
}

// CanPlace reports whether def can be placed at (x, y) with rotation r.
//
// The rotated footprint must lie inside the grid, and no position may be
// shared with another instance unless both tiles there are access tiles.
// The instance with ID excludeID is ignored; pass "" to check against all.
//
// Postcondition: Returns false for a nil definition or an invalid rotation.
func (e *Engine) CanPlace(grid Grid, existing []Instance, def *catalog.StructureDefinition, x, y int, r layout.Rotation, excludeID string) bool {
	return e.fits(grid, existing, def, x, y, r, func(inst Instance) bool {
		return excludeID != "" && inst.ID == excludeID
	})
}

// Place adds inst to s if it can be placed against the current state.
//
// Postcondition: Returns (next, true) with inst appended, or (s, false) if the
// definition is unknown, the ID is empty or taken, or placement is invalid.
// s is never modified.
func (e *Engine) Place(s State, inst Instance) (State, bool) {
	if inst.ID == "" {
		return s, false
	}
	if _, taken := s.Find(inst.ID); taken {
		return s, false
	}
	def, ok := e.defs.Definition(inst.DefinitionID)
	if !ok {
		return s, false
	}
	if !e.CanPlace(s.Grid, s.Instances, def, inst.X, inst.Y, inst.Rotation, "") {
		return s, false
	}
	next := State{Grid: s.Grid, Instances: append(slices.Clone(s.Instances), inst)}
	return next, true
}

// MoveSelected translates every selected instance by (dx, dy).
//
// Each moved instance is validated against non-selected instances only;
// selected instances keep their relative arrangement and may not block each
// other. The move is atomic: if any selected instance would leave the grid or
// collide, nothing moves.
//
// Postcondition: Returns (next, true) if at least one instance moved, or
// (s, false) otherwise. s is never modified.
func (e *Engine) MoveSelected(s State, selected []string, dx, dy int) (State, bool) {
	if (dx == 0 && dy == 0) || len(selected) == 0 {
		return s, false
	}
	sel := make(map[string]bool, len(selected))
	for _, id := range selected {
		sel[id] = true
	}
	skip := func(inst Instance) bool { return sel[inst.ID] }

	moved := 0
	for _, inst := range s.Instances {
		if !sel[inst.ID] {
			continue
		}
		def := e.definition(inst.DefinitionID)
		if !e.fits(s.Grid, s.Instances, def, inst.X+dx, inst.Y+dy, inst.Rotation, skip) {
			return s, false
		}
		moved++
	}
	if moved == 0 {
		return s, false
	}

	next := State{Grid: s.Grid, Instances: slices.Clone(s.Instances)}
	for i := range next.Instances {
		if sel[next.Instances[i].ID] {
			next.Instances[i].X += dx
			next.Instances[i].Y += dy
		}
	}
	return next, true
}

// body returns the positions of inst that count for hit testing. Access tiles
// are shared clearance and are excluded.
func (e *Engine) body(inst Instance) []layout.Point {
	tiles := e.Tiles(inst)
	out := make([]layout.Point, 0, len(tiles))
	for _, t := range tiles {
		if t.Type != layout.Access {
			out = append(out, t.Pos())
		}
	}
	return out
}

// remove returns s without the instances matched by drop.
func remove(s State, drop func(Instance) bool) (State, bool) {
	kept := make([]Instance, 0, len(s.Instances))
	for _, inst := range s.Instances {
		if !drop(inst) {
			kept = append(kept, inst)
		}
	}
	if len(kept) == len(s.Instances) {
		return s, false
	}
	return State{Grid: s.Grid, Instances: kept}, true
}

// EraseAt removes every interactive instance whose body covers p.
//
// Postcondition: Returns (next, true) if anything was removed, or (s, false).
func (e *Engine) EraseAt(s State, p layout.Point, interactive Interactive) (State, bool) {
	return remove(s, func(inst Instance) bool {
		return interactive(inst) && slices.Contains(e.body(inst), p)
	})
}

// EraseInRect removes every interactive instance whose body intersects r.
//
// Postcondition: Returns (next, true) if anything was removed, or (s, false).
func (e *Engine) EraseInRect(s State, r layout.Rect, interactive Interactive) (State, bool) {
	if r.Empty() {
		return s, false
	}
	return remove(s, func(inst Instance) bool {
		if !interactive(inst) {
			return false
		}
		return slices.ContainsFunc(e.body(inst), r.Contains)
	})
}

// DeleteSelected removes every selected instance that is interactive.
//
// Postcondition: Returns (next, true) if anything was removed, or (s, false).
func (e *Engine) DeleteSelected(s State, selected []string, interactive Interactive) (State, bool) {
	if len(selected) == 0 {
		return s, false
	}
	return remove(s, func(inst Instance) bool {
		return slices.Contains(selected, inst.ID) && interactive(inst)
	})
}
