// Package project defines the persisted form of a ship layout and the stores
// that save and load it.
package project

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cory-johannsen/shipyard/internal/catalog"
	"github.com/cory-johannsen/shipyard/internal/planner"
)

// ErrNotFound is returned by a Store when no project has the requested key.
var ErrNotFound = errors.New("project not found")

// Layer is the persisted form of an organizational layer.
type Layer struct {
	ID      string
	Name    string
	Visible bool
	Locked  bool
}

// Group is the persisted form of an instance group.
type Group struct {
	ID      string
	Name    string
	Members []string
}

// Project is a saved ship layout: the grid, the placed instances, and their
// organizational metadata. View state is never persisted.
type Project struct {
	Name      string
	Grid      planner.Grid
	Instances []planner.Instance
	Layers    []Layer
	Groups    []Group
}

// Key returns the storage key derived from the project name.
//
// Postcondition: Returns a lowercase identifier containing only [a-z0-9_].
func (p *Project) Key() string {
	return KeyFor(p.Name)
}

// KeyFor returns the storage key for a project name.
func KeyFor(name string) string {
	return catalog.NameToID(name)
}

// Validate checks structural consistency of the project document. It does not
// check placement validity; that is re-established when the project is loaded
// into the editor.
//
// Postcondition: Returns nil if valid, or an error listing every violation.
func (p *Project) Validate() error {
	var errs []string
	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, "name must not be empty")
	}
	if !p.Grid.Valid() {
		errs = append(errs, fmt.Sprintf("grid must be positive, got %dx%d", p.Grid.Width, p.Grid.Height))
	}

	layers := make(map[string]bool, len(p.Layers))
	for _, l := range p.Layers {
		if l.ID == "" {
			errs = append(errs, "layer ID must not be empty")
			continue
		}
		if layers[l.ID] {
			errs = append(errs, fmt.Sprintf("duplicate layer ID %q", l.ID))
		}
		layers[l.ID] = true
	}

	ids := make(map[string]bool, len(p.Instances))
	for _, inst := range p.Instances {
		if inst.ID == "" {
			errs = append(errs, "instance ID must not be empty")
			continue
		}
		if ids[inst.ID] {
			errs = append(errs, fmt.Sprintf("duplicate instance ID %q", inst.ID))
		}
		ids[inst.ID] = true
		if !inst.Rotation.Valid() {
			errs = append(errs, fmt.Sprintf("instance %q: invalid rotation %d", inst.ID, inst.Rotation))
		}
		if inst.LayerID != "" && !layers[inst.LayerID] {
			errs = append(errs, fmt.Sprintf("instance %q: unknown layer %q", inst.ID, inst.LayerID))
		}
	}

	for _, g := range p.Groups {
		for _, m := range g.Members {
			if !ids[m] {
				errs = append(errs, fmt.Sprintf("group %q: unknown member %q", g.ID, m))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid project: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Store persists projects by key.
type Store interface {
	// Save creates or replaces the project stored under p.Key().
	Save(ctx context.Context, p *Project) error
	// Load returns the project stored under key, or ErrNotFound.
	Load(ctx context.Context, key string) (*Project, error)
	// List returns the keys of every stored project in ascending order.
	List(ctx context.Context) ([]string, error)
	// Delete removes the project stored under key, or returns ErrNotFound.
	Delete(ctx context.Context, key string) error
}
