package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/shipyard/internal/layout"
)

// yamlCatalogFile is the top-level YAML structure of a catalog snapshot.
type yamlCatalogFile struct {
	Catalog yamlCatalog `yaml:"catalog"`
}

type yamlCatalog struct {
	Categories []yamlCategory `yaml:"categories"`
}

type yamlCategory struct {
	Name       string          `yaml:"name"`
	Structures []yamlStructure `yaml:"structures"`
}

type yamlStructure struct {
	ID     string      `yaml:"id"`
	Name   string      `yaml:"name"`
	Size   []int       `yaml:"size,flow,omitempty"`
	Color  string      `yaml:"color,omitempty"`
	Layout *yamlLayout `yaml:"layout,omitempty"`
}

type yamlLayout struct {
	Width  int        `yaml:"width"`
	Height int        `yaml:"height"`
	Tiles  []yamlTile `yaml:"tiles"`
}

type yamlTile struct {
	X        int    `yaml:"x"`
	Y        int    `yaml:"y"`
	Type     string `yaml:"type"`
	WalkCost int    `yaml:"walk_cost"`
}

// LoadFromFile reads and validates a catalog snapshot YAML file.
//
// Precondition: path must point to a catalog snapshot file.
// Postcondition: Returns a validated Catalog or a non-nil error.
func LoadFromFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file %s: %w", path, err)
	}
	return LoadFromBytes(data)
}

// LoadFromBytes parses and validates a catalog snapshot from YAML bytes.
//
// Postcondition: Returns a validated Catalog or a non-nil error.
func LoadFromBytes(data []byte) (*Catalog, error) {
	var file yamlCatalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing catalog YAML: %w", err)
	}

	categories, err := convertYAMLCatalog(file.Catalog)
	if err != nil {
		return nil, fmt.Errorf("converting catalog: %w", err)
	}

	c, err := New(categories)
	if err != nil {
		return nil, fmt.Errorf("validating catalog: %w", err)
	}
	return c, nil
}

// Marshal serialises c as a catalog snapshot.
//
// Postcondition: LoadFromBytes(result) yields a catalog equal to c.
func Marshal(c *Catalog) ([]byte, error) {
	file := yamlCatalogFile{}
	for _, cat := range c.Categories() {
		yc := yamlCategory{Name: cat.Name}
		for _, d := range cat.Structures {
			ys := yamlStructure{
				ID:    d.ID,
				Name:  d.Name,
				Color: d.Color,
			}
			if d.Size != (layout.Size{}) {
				ys.Size = []int{d.Size.W, d.Size.H}
			}
			if d.Layout != nil {
				yl := &yamlLayout{Width: d.Layout.Width, Height: d.Layout.Height}
				for _, t := range d.Layout.Tiles {
					yl.Tiles = append(yl.Tiles, yamlTile{X: t.X, Y: t.Y, Type: t.Type.String(), WalkCost: t.WalkCost})
				}
				ys.Layout = yl
			}
			yc.Structures = append(yc.Structures, ys)
		}
		file.Catalog.Categories = append(file.Catalog.Categories, yc)
	}
	data, err := yaml.Marshal(file)
	if err != nil {
		return nil, fmt.Errorf("serialising catalog: %w", err)
	}
	return data, nil
}

// SaveToFile writes c as a catalog snapshot to path.
//
// Postcondition: The file at path holds a loadable snapshot, or an error is returned.
func SaveToFile(c *Catalog, path string) error {
	data, err := Marshal(c)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing catalog file %s: %w", path, err)
	}
	return nil
}

// convertYAMLCatalog converts the parsed YAML structures into domain types.
func convertYAMLCatalog(yc yamlCatalog) ([]*Category, error) {
	categories := make([]*Category, 0, len(yc.Categories))
	for _, ycat := range yc.Categories {
		name := ycat.Name
		if name == "" {
			name = DefaultCategory
		}
		cat := &Category{Name: name}
		for _, ys := range ycat.Structures {
			def := &StructureDefinition{
				ID:       ys.ID,
				Name:     ys.Name,
				Category: name,
				Color:    ys.Color,
			}
			switch len(ys.Size) {
			case 0:
			case 2:
				def.Size = layout.Size{W: ys.Size[0], H: ys.Size[1]}
			default:
				return nil, fmt.Errorf("structure %q: size must be [w, h], got %v", ys.ID, ys.Size)
			}
			if def.Name == "" {
				def.Name = def.ID
			}
			if ys.Layout != nil {
				l := &layout.Layout{Width: ys.Layout.Width, Height: ys.Layout.Height}
				for _, yt := range ys.Layout.Tiles {
					typ, err := layout.ParseTileType(yt.Type)
					if err != nil {
						return nil, fmt.Errorf("structure %q: tile (%d,%d): %w", ys.ID, yt.X, yt.Y, err)
					}
					l.Tiles = append(l.Tiles, layout.Tile{X: yt.X, Y: yt.Y, Type: typ, WalkCost: yt.WalkCost})
				}
				layout.SortTiles(l.Tiles)
				def.Layout = l
			}
			cat.Structures = append(cat.Structures, def)
		}
		categories = append(categories, cat)
	}
	return categories, nil
}
