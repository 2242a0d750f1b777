package project

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/shipyard/internal/layout"
	"github.com/cory-johannsen/shipyard/internal/planner"
)

type yamlProjectFile struct {
	Project yamlProject `yaml:"project"`
}

type yamlProject struct {
	Name      string         `yaml:"name"`
	Grid      yamlGrid       `yaml:"grid"`
	Layers    []yamlLayer    `yaml:"layers,omitempty"`
	Groups    []yamlGroup    `yaml:"groups,omitempty"`
	Instances []yamlInstance `yaml:"instances,omitempty"`
}

type yamlGrid struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type yamlLayer struct {
	ID      string `yaml:"id"`
	Name    string `yaml:"name"`
	Visible bool   `yaml:"visible"`
	Locked  bool   `yaml:"locked,omitempty"`
}

type yamlGroup struct {
	ID      string   `yaml:"id"`
	Name    string   `yaml:"name"`
	Members []string `yaml:"members,flow"`
}

type yamlInstance struct {
	ID        string `yaml:"id"`
	Structure string `yaml:"structure"`
	X         int    `yaml:"x"`
	Y         int    `yaml:"y"`
	Rotation  int    `yaml:"rotation,omitempty"`
	Layer     string `yaml:"layer,omitempty"`
}

// Marshal encodes p as a YAML project document.
func Marshal(p *Project) ([]byte, error) {
	doc := yamlProjectFile{Project: yamlProject{
		Name: p.Name,
		Grid: yamlGrid{Width: p.Grid.Width, Height: p.Grid.Height},
	}}
	for _, l := range p.Layers {
		doc.Project.Layers = append(doc.Project.Layers, yamlLayer(l))
	}
	for _, g := range p.Groups {
		doc.Project.Groups = append(doc.Project.Groups, yamlGroup(g))
	}
	for _, inst := range p.Instances {
		doc.Project.Instances = append(doc.Project.Instances, yamlInstance{
			ID:        inst.ID,
			Structure: inst.DefinitionID,
			X:         inst.X,
			Y:         inst.Y,
			Rotation:  int(inst.Rotation),
			Layer:     inst.LayerID,
		})
	}
	data, err := yaml.Marshal(&doc)
	if err != nil {
		return nil, fmt.Errorf("marshalling project %q: %w", p.Name, err)
	}
	return data, nil
}

// Unmarshal decodes and validates a YAML project document.
//
// Postcondition: Returns a valid project or a non-nil error.
func Unmarshal(data []byte) (*Project, error) {
	var doc yamlProjectFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing project YAML: %w", err)
	}
	p := convertYAMLProject(doc.Project)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func convertYAMLProject(yp yamlProject) *Project {
	p := &Project{
		Name: yp.Name,
		Grid: planner.Grid{Width: yp.Grid.Width, Height: yp.Grid.Height},
	}
	for _, l := range yp.Layers {
		p.Layers = append(p.Layers, Layer(l))
	}
	for _, g := range yp.Groups {
		p.Groups = append(p.Groups, Group(g))
	}
	for _, yi := range yp.Instances {
		p.Instances = append(p.Instances, planner.Instance{
			ID:           yi.ID,
			DefinitionID: yi.Structure,
			X:            yi.X,
			Y:            yi.Y,
			Rotation:     layout.Rotation(yi.Rotation),
			LayerID:      yi.Layer,
		})
	}
	return p
}

// SaveFile writes p to path as YAML.
func SaveFile(p *Project, path string) error {
	data, err := Marshal(p)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing project file %s: %w", path, err)
	}
	return nil
}

// LoadFile reads and validates the project stored at path.
func LoadFile(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading project file %s: %w", path, err)
	}
	p, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("loading project file %s: %w", filepath.Base(path), err)
	}
	return p, nil
}
