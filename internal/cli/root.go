// Package cli implements the shipyard command-line interface.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cory-johannsen/shipyard/internal/catalog"
	"github.com/cory-johannsen/shipyard/internal/config"
	"github.com/cory-johannsen/shipyard/internal/editor"
	"github.com/cory-johannsen/shipyard/internal/planner"
	"github.com/cory-johannsen/shipyard/internal/project"
	"github.com/cory-johannsen/shipyard/internal/storage/postgres"
)

// CLI holds state shared by all commands.
type CLI struct {
	configPath string
	cfg        config.Config
}

// New creates a CLI.
func New() *CLI {
	return &CLI{}
}

// RootCommand creates the root cobra command with all subcommands registered.
// Configuration is loaded once before any subcommand runs.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "shipyard",
		Short:         "Shipyard plans ship layouts on a tile grid",
		Long:          `Shipyard imports structure descriptors into a catalog and edits ship layouts against it, from an interactive shell or over HTTP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "path to configuration file (defaults plus SHIPYARD_* environment when empty)")

	root.AddCommand(c.importCommand())
	root.AddCommand(c.shellCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.migrateCommand())
	return root
}

// Execute runs the CLI with the given arguments.
func Execute(ctx context.Context, args []string) error {
	root := New().RootCommand()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// loadCatalog reads the catalog snapshot named by the configuration.
func (c *CLI) loadCatalog(logger *zap.Logger) (*catalog.Catalog, error) {
	cat, err := catalog.LoadFromFile(c.cfg.Planner.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("loading catalog (run \"shipyard import\" first): %w", err)
	}
	logger.Info("catalog loaded",
		zap.String("path", c.cfg.Planner.CatalogPath),
		zap.Int("structures", cat.Len()),
		zap.Int("categories", len(cat.Categories())),
	)
	return cat, nil
}

// openStore opens the configured project store. The returned close function
// is always non-nil.
func (c *CLI) openStore(ctx context.Context, logger *zap.Logger) (project.Store, func(), error) {
	switch c.cfg.Planner.Store {
	case config.StorePostgres:
		pool, err := postgres.NewPool(ctx, c.cfg.Database, logger)
		if err != nil {
			return nil, func() {}, fmt.Errorf("connecting to database: %w", err)
		}
		return postgres.NewProjectRepository(pool), pool.Close, nil
	default:
		store, err := project.NewFileStore(c.cfg.Planner.AutosaveDir)
		if err != nil {
			return nil, func() {}, err
		}
		logger.Info("file project store", zap.String("dir", c.cfg.Planner.AutosaveDir))
		return store, func() {}, nil
	}
}

// newHistory starts an empty project sized by the configuration.
func (c *CLI) newHistory(name string) editor.History {
	grid := planner.Grid{Width: c.cfg.Planner.GridWidth, Height: c.cfg.Planner.GridHeight}
	return editor.NewHistory(editor.NewModel(name, grid), c.cfg.Planner.HistoryLimit)
}
