package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cory-johannsen/shipyard/internal/layout"
	"github.com/cory-johannsen/shipyard/internal/planner"
	"github.com/cory-johannsen/shipyard/internal/project"
)

var _ project.Store = (*ProjectRepository)(nil)

// ProjectRepository persists projects across the projects, project_layers,
// placed_structures and project_groups tables.
type ProjectRepository struct {
	pool *Pool
}

// NewProjectRepository creates a ProjectRepository backed by the given pool.
//
// Precondition: pool must be a valid, open connection pool.
func NewProjectRepository(pool *Pool) *ProjectRepository {
	return &ProjectRepository{pool: pool}
}

// Ping reports whether the database answers within two seconds.
func (r *ProjectRepository) Ping(ctx context.Context) error {
	return r.pool.Health(ctx, 2*time.Second)
}

// Save creates or replaces the project stored under p.Key() in one transaction.
//
// Precondition: p must pass Validate.
// Postcondition: The stored project equals p, or an error is returned and the
// previous version is untouched.
func (r *ProjectRepository) Save(ctx context.Context, p *project.Project) error {
	if err := p.Validate(); err != nil {
		return err
	}
	key := p.Key()
	return r.pool.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO projects (key, name, grid_width, grid_height)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (key) DO UPDATE
			SET name = EXCLUDED.name,
			    grid_width = EXCLUDED.grid_width,
			    grid_height = EXCLUDED.grid_height,
			    updated_at = NOW()`,
			key, p.Name, p.Grid.Width, p.Grid.Height,
		); err != nil {
			return fmt.Errorf("upserting project %q: %w", key, err)
		}

		// Children are replaced wholesale; order is kept in the position column.
		for _, table := range []string{"project_layers", "placed_structures", "project_groups"} {
			if _, err := tx.Exec(ctx, "DELETE FROM "+table+" WHERE project_key = $1", key); err != nil {
				return fmt.Errorf("clearing %s for %q: %w", table, key, err)
			}
		}

		batch := &pgx.Batch{}
		for i, l := range p.Layers {
			batch.Queue(`
				INSERT INTO project_layers (project_key, position, layer_id, name, visible, locked)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				key, i, l.ID, l.Name, l.Visible, l.Locked)
		}
		for i, g := range p.Groups {
			members := g.Members
			if members == nil {
				members = []string{}
			}
			batch.Queue(`
				INSERT INTO project_groups (project_key, position, group_id, name, members)
				VALUES ($1, $2, $3, $4, $5)`,
				key, i, g.ID, g.Name, members)
		}
		if batch.Len() > 0 {
			if err := tx.SendBatch(ctx, batch).Close(); err != nil {
				return fmt.Errorf("inserting layers and groups for %q: %w", key, err)
			}
		}

		rows := make([][]any, len(p.Instances))
		for i, inst := range p.Instances {
			rows[i] = []any{key, i, inst.ID, inst.DefinitionID, inst.X, inst.Y, int16(inst.Rotation), inst.LayerID}
		}
		if _, err := tx.CopyFrom(ctx,
			pgx.Identifier{"placed_structures"},
			[]string{"project_key", "position", "instance_id", "structure_id", "x", "y", "rotation", "layer_id"},
			pgx.CopyFromRows(rows),
		); err != nil {
			return fmt.Errorf("copying structures for %q: %w", key, err)
		}
		return nil
	})
}

// Load returns the project stored under key.
//
// Postcondition: Returns the project, or project.ErrNotFound.
func (r *ProjectRepository) Load(ctx context.Context, key string) (*project.Project, error) {
	db := r.pool.DB()
	p := &project.Project{}
	err := db.QueryRow(ctx, `
		SELECT name, grid_width, grid_height FROM projects WHERE key = $1`,
		key,
	).Scan(&p.Name, &p.Grid.Width, &p.Grid.Height)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, project.ErrNotFound
		}
		return nil, fmt.Errorf("querying project %q: %w", key, err)
	}

	rows, err := db.Query(ctx, `
		SELECT layer_id, name, visible, locked
		FROM project_layers WHERE project_key = $1 ORDER BY position`,
		key,
	)
	if err != nil {
		return nil, fmt.Errorf("querying layers for %q: %w", key, err)
	}
	p.Layers, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (project.Layer, error) {
		var l project.Layer
		err := row.Scan(&l.ID, &l.Name, &l.Visible, &l.Locked)
		return l, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning layers for %q: %w", key, err)
	}

	rows, err = db.Query(ctx, `
		SELECT instance_id, structure_id, x, y, rotation, layer_id
		FROM placed_structures WHERE project_key = $1 ORDER BY position`,
		key,
	)
	if err != nil {
		return nil, fmt.Errorf("querying structures for %q: %w", key, err)
	}
	p.Instances, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (planner.Instance, error) {
		var inst planner.Instance
		var rot int16
		err := row.Scan(&inst.ID, &inst.DefinitionID, &inst.X, &inst.Y, &rot, &inst.LayerID)
		inst.Rotation = layout.Rotation(rot)
		return inst, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning structures for %q: %w", key, err)
	}

	rows, err = db.Query(ctx, `
		SELECT group_id, name, members
		FROM project_groups WHERE project_key = $1 ORDER BY position`,
		key,
	)
	if err != nil {
		return nil, fmt.Errorf("querying groups for %q: %w", key, err)
	}
	p.Groups, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (project.Group, error) {
		var g project.Group
		err := row.Scan(&g.ID, &g.Name, &g.Members)
		return g, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning groups for %q: %w", key, err)
	}

	// Empty child sets come back as empty slices; normalize to nil to match
	// the file codec.
	if len(p.Layers) == 0 {
		p.Layers = nil
	}
	if len(p.Instances) == 0 {
		p.Instances = nil
	}
	if len(p.Groups) == 0 {
		p.Groups = nil
	}
	return p, nil
}

// List returns every stored project key in ascending order.
func (r *ProjectRepository) List(ctx context.Context) ([]string, error) {
	rows, err := r.pool.DB().Query(ctx, `SELECT key FROM projects ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	keys, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scanning project keys: %w", err)
	}
	return keys, nil
}

// Delete removes the project stored under key together with its children.
//
// Postcondition: Returns nil on success, project.ErrNotFound if no row was deleted.
func (r *ProjectRepository) Delete(ctx context.Context, key string) error {
	tag, err := r.pool.DB().Exec(ctx, `DELETE FROM projects WHERE key = $1`, key)
	if err != nil {
		return fmt.Errorf("deleting project %q: %w", key, err)
	}
	if tag.RowsAffected() == 0 {
		return project.ErrNotFound
	}
	return nil
}
