package catalog

import (
	"os"
	"path/filepath"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/shipyard/internal/layout"
)

func bedRaw() RawStructure {
	return RawStructure{
		ID:       "crew_bed",
		Name:     "Crew Bed",
		Category: "Crew",
		Size:     layout.Size{W: 2, H: 1},
		Color:    "#3498db",
		Linked:   []layout.RawLinked{{X: 0, Y: 0}, {X: 1, Y: 0}},
		Restrictions: []layout.RawRestriction{
			{Kind: layout.RestrictionFloor, X: 0, Y: 1, W: 2, H: 1},
		},
	}
}

func TestAssemble_GroupsAndSorts(t *testing.T) {
	raw := []RawStructure{
		{ID: "wall", Name: "Wall", Category: "Hull", Size: layout.Size{W: 1, H: 1}},
		bedRaw(),
		{ID: "armor", Name: "Armor Plate", Category: "Hull"},
		{ID: "crate", Name: "Crate"},
	}
	c, warnings := Assemble(raw)
	require.NotNil(t, c)
	assert.Equal(t, 4, c.Len())
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], DefaultCategory)

	cats := c.Categories()
	require.Len(t, cats, 3)
	assert.Equal(t, "Crew", cats[0].Name)
	assert.Equal(t, "Hull", cats[1].Name)
	assert.Equal(t, DefaultCategory, cats[2].Name, "default bucket is listed last")
	assert.Equal(t, "armor", cats[1].Structures[0].ID)
	assert.Equal(t, "wall", cats[1].Structures[1].ID)
}

func TestAssemble_NormalizesLayout(t *testing.T) {
	c, _ := Assemble([]RawStructure{bedRaw()})
	d, ok := c.Definition("crew_bed")
	require.True(t, ok)
	require.NotNil(t, d.Layout)
	assert.Equal(t, 2, d.Layout.Width)
	assert.Equal(t, 2, d.Layout.Height)
	counts := d.Layout.CountByType()
	assert.Equal(t, 2, counts[layout.Construction])
	assert.Equal(t, 2, counts[layout.Access])
}

func TestAssemble_NoDescriptorsKeepsFallback(t *testing.T) {
	c, _ := Assemble([]RawStructure{{ID: "tank", Name: "Tank", Category: "Cargo", Size: layout.Size{W: 2, H: 3}}})
	d, ok := c.Definition("tank")
	require.True(t, ok)
	assert.Nil(t, d.Layout)
	assert.Equal(t, layout.Size{W: 2, H: 3}, d.Footprint())
}

func TestAssemble_InvalidLayoutFallsBackToFootprint(t *testing.T) {
	raw := []RawStructure{
		{ID: "bad", Category: "Cargo", Size: layout.Size{W: 2, H: 2}, Tiles: []layout.RawTile{{WalkCost: -1}}},
		bedRaw(),
	}
	var (
		c        *Catalog
		warnings []string
	)
	require.NotPanics(t, func() { c, warnings = Assemble(raw) })
	assert.Equal(t, 2, c.Len())

	d, ok := c.Definition("bad")
	require.True(t, ok)
	assert.Nil(t, d.Layout)
	assert.Equal(t, layout.Size{W: 2, H: 2}, d.Footprint())
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "negative walk cost")

	d, _ = c.Definition("crew_bed")
	assert.NotNil(t, d.Layout, "valid structures are unaffected")
}

func TestAssemble_Deduplicates(t *testing.T) {
	first := bedRaw()
	second := bedRaw()
	second.Name = "Other Bed"
	c, warnings := Assemble([]RawStructure{first, second})
	assert.Equal(t, 1, c.Len())
	d, _ := c.Definition("crew_bed")
	assert.Equal(t, "Crew Bed", d.Name)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "duplicate")
}

func TestAssemble_DerivesIDAndName(t *testing.T) {
	c, warnings := Assemble([]RawStructure{
		{Name: "Shield Generator", Category: "Systems"},
		{ID: "thruster", Category: "Systems"},
		{Category: "Systems"},
	})
	assert.Equal(t, 2, c.Len())
	d, ok := c.Definition("shield_generator")
	require.True(t, ok)
	assert.Equal(t, "Shield Generator", d.Name)
	d, ok = c.Definition("thruster")
	require.True(t, ok)
	assert.Equal(t, "thruster", d.Name)
	assert.Len(t, warnings, 1)
}

func TestFootprint_Default(t *testing.T) {
	d := &StructureDefinition{ID: "x"}
	assert.Equal(t, DefaultSize, d.Footprint())
}

func TestNew_DuplicateID(t *testing.T) {
	_, err := New([]*Category{
		{Name: "A", Structures: []*StructureDefinition{{ID: "x"}}},
		{Name: "B", Structures: []*StructureDefinition{{ID: "x"}}},
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate structure ID")
}

func TestNew_InvalidLayout(t *testing.T) {
	_, err := New([]*Category{
		{Name: "A", Structures: []*StructureDefinition{{
			ID:     "x",
			Layout: &layout.Layout{Tiles: []layout.Tile{{X: 1, Y: 1}}, Width: 2, Height: 2},
		}}},
	})
	assert.Error(t, err)
}

func TestSnapshot_RoundTrip(t *testing.T) {
	c, _ := Assemble([]RawStructure{
		bedRaw(),
		{ID: "tank", Name: "Tank", Category: "Cargo", Size: layout.Size{W: 2, H: 3}},
	})
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, SaveToFile(c, path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, c.All(), loaded.All())
}

func TestLoadFromBytes_Invalid(t *testing.T) {
	_, err := LoadFromBytes([]byte(`
catalog:
  categories:
    - name: Hull
      structures:
        - id: wall
          layout:
            width: 1
            height: 1
            tiles:
              - {x: 0, y: 0, type: hull, walk_cost: 1}
`))
	assert.Error(t, err)

	_, err = LoadFromBytes([]byte(`
catalog:
  categories:
    - name: Hull
      structures:
        - id: wall
          size: [1, 2, 3]
`))
	assert.Error(t, err)
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(os.TempDir(), "does-not-exist", "catalog.yaml"))
	assert.Error(t, err)
}

func TestNameToID_Idempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		name := rapid.StringOf(rapid.RuneFrom(nil, unicode.Letter, unicode.Digit, unicode.Space)).Draw(t, "name")
		id := NameToID(name)
		assert.Equal(t, id, NameToID(id))
		for _, r := range id {
			assert.True(t, r == '_' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'),
				"unexpected char %q in id %q", r, id)
		}
	})
}
