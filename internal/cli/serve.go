package cli

import (
	"context"
	"errors"
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cory-johannsen/shipyard/internal/api"
	"github.com/cory-johannsen/shipyard/internal/editor"
	"github.com/cory-johannsen/shipyard/internal/observability"
	"github.com/cory-johannsen/shipyard/internal/project"
	"github.com/cory-johannsen/shipyard/internal/server"
)

// serveCommand creates the "serve" command running the HTTP API until
// SIGINT or SIGTERM. The session is saved to the project store on shutdown.
func (c *CLI) serveCommand() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the planner HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			logger, err := observability.NewLogger(c.cfg.Logging)
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

			h := c.newHistory(name)
			switch p, err := store.Load(ctx, project.KeyFor(name)); {
			case err == nil:
				h, _ = h.Dispatch(editor.NewReducer(cat), editor.LoadProject{Project: p})
				logger.Info("resumed project", zap.String("key", project.KeyFor(name)), zap.Int("instances", len(h.Current.Instances)))
			case !errors.Is(err, project.ErrNotFound):
				return err
			}
			srv := api.NewServer(cat, h, store, logger)
			httpSvc, err := server.NewHTTPService(&http.Server{
				Addr:         c.cfg.API.Addr(),
				Handler:      srv,
				ReadTimeout:  c.cfg.API.ReadTimeout,
				WriteTimeout: c.cfg.API.WriteTimeout,
			})
			if err != nil {
				return err
			}

			lc := server.NewLifecycle(logger, c.cfg.API.ShutdownTimeout)
			lc.Add("autosave", &server.FuncService{StopFn: func(ctx context.Context) error {
				p := srv.History().Current.Project()
				if err := store.Save(ctx, p); err != nil {
					return err
				}
				logger.Info("session saved", zap.String("key", p.Key()), zap.Int("instances", len(p.Instances)))
				return nil
			}})
			lc.Add("api", httpSvc)

			logger.Info("serving planner API", zap.String("addr", httpSvc.Addr()))
			return lc.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&name, "name", "untitled", "project to open, or create if it has not been saved")
	return cmd
}
