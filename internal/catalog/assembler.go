package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cory-johannsen/shipyard/internal/layout"
)

// RawStructure is one fully-decoded structure as produced by an extraction
// source, before normalization.
type RawStructure struct {
	ID           string
	Name         string
	Category     string
	Color        string
	Size         layout.Size
	Tiles        []layout.RawTile
	Linked       []layout.RawLinked
	Restrictions []layout.RawRestriction
}

// NameToID converts a display name to a stable snake_case identifier.
//
// Postcondition: result is lowercase, contains only [a-z0-9_], and is
// idempotent (NameToID(NameToID(s)) == NameToID(s)).
func NameToID(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, " ", "_")
	var b strings.Builder
	for _, r := range s {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Assemble normalizes raw structures and groups them into a Catalog.
//
// Structures with no resolvable category land in DefaultCategory, a missing
// name falls back to the ID, and a missing ID is derived from the name.
// Duplicate IDs keep the first occurrence. Problems never abort assembly;
// they are reported as warnings.
//
// Postcondition: Returns a non-nil Catalog and the list of warnings.
func Assemble(raw []RawStructure) (*Catalog, []string) {
	var warnings []string
	buckets := make(map[string]*Category)
	seen := make(map[string]bool)

	for i, rs := range raw {
		id := strings.TrimSpace(rs.ID)
		name := strings.TrimSpace(rs.Name)
		if id == "" {
			id = NameToID(name)
		}
		if id == "" {
			warnings = append(warnings, fmt.Sprintf("structure #%d has neither id nor name; skipped", i))
			continue
		}
		if seen[id] {
			warnings = append(warnings, fmt.Sprintf("duplicate structure id %q; keeping first definition", id))
			continue
		}
		seen[id] = true
		if name == "" {
			name = id
		}

		category := strings.TrimSpace(rs.Category)
		if category == "" {
			warnings = append(warnings, fmt.Sprintf("structure %q has no category; using %q", id, DefaultCategory))
			category = DefaultCategory
		}

		def := &StructureDefinition{
			ID:       id,
			Name:     name,
			Category: category,
			Size:     rs.Size,
			Color:    rs.Color,
		}
		if l, ok := layout.Normalize(rs.Tiles, rs.Linked, rs.Restrictions, def.Footprint()); ok {
			if err := l.Validate(); err != nil {
				warnings = append(warnings, fmt.Sprintf("structure %q: %v; using its %dx%d footprint", id, err, def.Footprint().W, def.Footprint().H))
			} else {
				def.Layout = l
			}
		}

		cat, ok := buckets[category]
		if !ok {
			cat = &Category{Name: category}
			buckets[category] = cat
		}
		cat.Structures = append(cat.Structures, def)
	}

	categories := make([]*Category, 0, len(buckets))
	for _, cat := range buckets {
		sort.Slice(cat.Structures, func(i, j int) bool {
			a, b := cat.Structures[i], cat.Structures[j]
			if a.Name != b.Name {
				return a.Name < b.Name
			}
			return a.ID < b.ID
		})
		categories = append(categories, cat)
	}
	sort.Slice(categories, func(i, j int) bool {
		a, b := categories[i].Name, categories[j].Name
		if (a == DefaultCategory) != (b == DefaultCategory) {
			return b == DefaultCategory
		}
		return a < b
	})

	// IDs are unique and every kept layout validated, so New cannot fail here.
	c, err := New(categories)
	if err != nil {
		panic(fmt.Sprintf("assembling catalog: %v", err))
	}
	return c, warnings
}
