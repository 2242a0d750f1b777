// Package catalog provides the read-only structure catalog: normalized
// structure definitions grouped into categories and indexed by ID.
package catalog

import (
	"fmt"

	"github.com/cory-johannsen/shipyard/internal/layout"
)

// DefaultCategory is the bucket for structures whose category cannot be resolved.
const DefaultCategory = "Uncategorized"

// DefaultSize is the footprint used when a structure declares no size.
var DefaultSize = layout.Size{W: 1, H: 1}

// StructureDefinition describes a placeable structure. Definitions are shared
// by every placed instance and must not be mutated after the catalog is built.
type StructureDefinition struct {
	// ID uniquely identifies the structure within the catalog.
	ID string
	// Name is the display name.
	Name string
	// Category is the name of the category this structure is listed under.
	Category string
	// Size is the declared fallback footprint, used when Layout is nil.
	Size layout.Size
	// Color is a display hint for rendering collaborators (e.g. "#7f8c8d").
	Color string
	// Layout is the normalized tile layout; nil means coarse rectangle collision.
	Layout *layout.Layout
}

// Footprint returns the unrotated footprint size of the structure.
//
// Postcondition: Returns the layout bounds if present, otherwise the declared
// size, otherwise DefaultSize.
func (d *StructureDefinition) Footprint() layout.Size {
	if d.Layout != nil {
		return d.Layout.Size()
	}
	if d.Size.W > 0 && d.Size.H > 0 {
		return d.Size
	}
	return DefaultSize
}

// Category is a named, ordered group of structure definitions.
type Category struct {
	Name       string
	Structures []*StructureDefinition
}

// Catalog holds all structure definitions indexed by ID.
type Catalog struct {
	categories []*Category
	byID       map[string]*StructureDefinition
}

// New builds a Catalog from the given categories.
//
// Precondition: categories and their structures must be non-nil.
// Postcondition: Returns a Catalog, or an error on an empty or duplicate ID or
// an invalid layout.
func New(categories []*Category) (*Catalog, error) {
	c := &Catalog{
		categories: categories,
		byID:       make(map[string]*StructureDefinition),
	}
	for _, cat := range categories {
		for _, d := range cat.Structures {
			if d.ID == "" {
				return nil, fmt.Errorf("category %q: structure ID must not be empty", cat.Name)
			}
			if _, exists := c.byID[d.ID]; exists {
				return nil, fmt.Errorf("duplicate structure ID %q", d.ID)
			}
			if d.Layout != nil {
				if err := d.Layout.Validate(); err != nil {
					return nil, fmt.Errorf("structure %q: %w", d.ID, err)
				}
			}
			c.byID[d.ID] = d
		}
	}
	return c, nil
}

// Definition returns the structure definition with the given ID.
//
// Postcondition: Returns (def, true) if found, or (nil, false) otherwise.
func (c *Catalog) Definition(id string) (*StructureDefinition, bool) {
	d, ok := c.byID[id]
	return d, ok
}

// Categories returns the catalog categories in display order.
func (c *Catalog) Categories() []*Category {
	return c.categories
}

// All returns every definition in display order.
//
// Postcondition: len(result) == c.Len().
func (c *Catalog) All() []*StructureDefinition {
	out := make([]*StructureDefinition, 0, len(c.byID))
	for _, cat := range c.categories {
		out = append(out, cat.Structures...)
	}
	return out
}

// Len returns the number of definitions in the catalog.
func (c *Catalog) Len() int {
	return len(c.byID)
}
