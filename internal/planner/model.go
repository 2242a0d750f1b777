// Package planner implements the collision and placement engine: it validates
// and applies place, move, and erase commands against the set of structure
// instances placed on a ship grid.
package planner

import (
	"github.com/cory-johannsen/shipyard/internal/catalog"
	"github.com/cory-johannsen/shipyard/internal/layout"
)

// Grid is the ship build area, covering [0,Width) × [0,Height).
type Grid struct {
	Width  int
	Height int
}

// Valid reports whether both grid dimensions are positive.
func (g Grid) Valid() bool {
	return g.Width > 0 && g.Height > 0
}

// Contains reports whether p lies inside the grid.
func (g Grid) Contains(p layout.Point) bool {
	return p.X >= 0 && p.X < g.Width && p.Y >= 0 && p.Y < g.Height
}

// Instance is a structure placed on the grid. It references its definition by
// ID only; the definition is resolved through the catalog on read.
type Instance struct {
	// ID uniquely identifies the instance within a project.
	ID string
	// DefinitionID references a catalog.StructureDefinition.
	DefinitionID string
	// X is the grid column of the rotated footprint's top-left corner.
	X int
	// Y is the grid row of the rotated footprint's top-left corner.
	Y int
	// Rotation is fixed at placement time.
	Rotation layout.Rotation
	// LayerID names the organizational layer the instance belongs to.
	LayerID string
}

// Origin returns the instance position as a point.
func (i Instance) Origin() layout.Point {
	return layout.Point{X: i.X, Y: i.Y}
}

// State is the collision-relevant part of the planner model.
type State struct {
	Grid      Grid
	Instances []Instance
}

// Find returns the instance with the given ID.
//
// Postcondition: Returns (instance, true) if found, or (Instance{}, false) otherwise.
func (s State) Find(id string) (Instance, bool) {
	for _, inst := range s.Instances {
		if inst.ID == id {
			return inst, true
		}
	}
	return Instance{}, false
}

// Definitions resolves structure definitions by ID. *catalog.Catalog satisfies it.
type Definitions interface {
	Definition(id string) (*catalog.StructureDefinition, bool)
}

// Interactive reports whether an instance may be erased or deleted. The
// layer collaborator decides this from visibility and lock state.
type Interactive func(Instance) bool

// AllInteractive treats every instance as interactive.
func AllInteractive(Instance) bool { return true }
