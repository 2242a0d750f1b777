package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/shipyard/internal/storage/postgres"
)

// migrateCommand creates the "migrate" command applying the embedded schema
// migrations to the configured database.
func (c *CLI) migrateCommand() *cobra.Command {
	var (
		direction string
		steps     int
	)
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			start := time.Now()
			res, err := postgres.Migrate(c.cfg.Database.DSN(), direction, steps)
			if err != nil {
				return err
			}
			elapsed := time.Since(start).Round(time.Millisecond)
			if !res.Changed {
				fmt.Fprintf(cmd.OutOrStdout(), "no changes (version=%d dirty=%v) [%s]\n", res.Version, res.Dirty, elapsed)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrated %s to version=%d dirty=%v [%s]\n", direction, res.Version, res.Dirty, elapsed)
			return nil
		},
	}
	cmd.Flags().StringVar(&direction, "direction", "up", "migration direction: up or down")
	cmd.Flags().IntVar(&steps, "steps", 0, "number of steps (0 = all)")
	return cmd
}
