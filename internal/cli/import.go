package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/shipyard/internal/importer"
	"github.com/cory-johannsen/shipyard/internal/importer/descriptor"
	"github.com/cory-johannsen/shipyard/internal/observability"
)

// importCommand creates the "import" command.
func (c *CLI) importCommand() *cobra.Command {
	var source, output string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Build the structure catalog from a descriptor directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := observability.NewLogger(c.cfg.Logging)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if output == "" {
				output = c.cfg.Planner.CatalogPath
			}
			cat, err := importer.New(descriptor.NewSource(logger), logger).Run(cmd.Context(), source, output)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d structures in %d categories to %s\n",
				cat.Len(), len(cat.Categories()), output)
			return nil
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "descriptor directory (one YAML file per structure)")
	cmd.Flags().StringVar(&output, "output", "", "catalog snapshot path (defaults to planner.catalog_path)")
	_ = cmd.MarkFlagRequired("source")
	return cmd
}
