package descriptor

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/shipyard/internal/catalog"
	"github.com/cory-johannsen/shipyard/internal/layout"
)

// Parse parses a structure descriptor YAML document.
//
// Precondition: data must be valid YAML.
// Postcondition: returns a non-nil Descriptor or a non-nil error.
func Parse(data []byte) (*Descriptor, error) {
	var d Descriptor
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parsing structure descriptor: %w", err)
	}
	if len(d.Size) != 0 && len(d.Size) != 2 {
		return nil, fmt.Errorf("structure descriptor %q: size must have two elements, got %d", d.Name, len(d.Size))
	}
	return &d, nil
}

// Convert turns a descriptor into a raw structure for catalog assembly.
// defaultCategory is used when the descriptor names none.
func Convert(d *Descriptor, defaultCategory string) catalog.RawStructure {
	rs := catalog.RawStructure{
		ID:       d.ID,
		Name:     d.Name,
		Category: d.Category,
		Color:    d.Color,
	}
	if rs.Category == "" {
		rs.Category = defaultCategory
	}
	if len(d.Size) == 2 {
		rs.Size = layout.Size{W: d.Size[0], H: d.Size[1]}
	}
	for _, t := range d.Tiles {
		rs.Tiles = append(rs.Tiles, layout.RawTile{
			X:           t.X,
			Y:           t.Y,
			ElementType: layout.ElementType(t.Element),
			WalkCost:    t.WalkCost,
		})
	}
	for _, l := range d.Linked {
		rs.Linked = append(rs.Linked, layout.RawLinked{X: l.X, Y: l.Y})
	}
	for _, r := range d.Restrictions {
		rs.Restrictions = append(rs.Restrictions, layout.RawRestriction{
			Kind: layout.RestrictionKind(r.Kind),
			X:    r.X,
			Y:    r.Y,
			W:    r.W,
			H:    r.H,
		})
	}
	return rs
}
