package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cory-johannsen/shipyard/internal/observability"
	"github.com/cory-johannsen/shipyard/internal/shell"
)

// shellCommand creates the interactive "shell" command. Logs go to a file so
// they do not interleave with shell output.
func (c *CLI) shellCommand() *cobra.Command {
	var (
		logPath    string
		name       string
		load       string
		noColor    bool
		noAutosave bool
	)
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Edit a ship layout interactively",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			logger, err := observability.NewLoggerTo(c.cfg.Logging, logPath)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			cat, err := c.loadCatalog(logger)
			if err != nil {
				return err
			}
			store, closeStore, err := c.openStore(ctx, logger)
			if err != nil {
				return err
			}
			defer closeStore()

			sh := shell.New(cat, c.newHistory(name), cmd.InOrStdin(), cmd.OutOrStdout(), logger, shell.Options{
				Store:    store,
				Autosave: !noAutosave,
				Color:    !noColor,
			})
			if load != "" {
				if _, err := sh.Exec(ctx, "load "+load); err != nil {
					return err
				}
			}

			logger.Info("shell started", zap.String("project", sh.History().Current.Name))
			return sh.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&logPath, "log", "shipyard-shell.log", "log file path")
	cmd.Flags().StringVar(&name, "name", "untitled", "name of the new project")
	cmd.Flags().StringVar(&load, "load", "", "project file or saved project name to open")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable ANSI colors")
	cmd.Flags().BoolVar(&noAutosave, "no-autosave", false, "do not save after every change")
	return cmd
}
