package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/debgems/pkg/pipeline"
	"github.com/matzehuels/debgems/pkg/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve saved runs and accept uploaded manifests over HTTP",
		Long: `Serve starts the report server. Runs are kept in the configured run store
(files, or MongoDB when store.mongo_uri is set) and lookups go through the
configured cache (files, or Redis when cache.redis_url is set).`,
		Example: `  debgems serve --addr :8080
  curl --data-binary @Gemfile 'localhost:8080/runs?app=blog'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}

			runner, backend, err := c.newRunner(ctx, cfg)
			if err != nil {
				return err
			}
			defer backend.Close()

			st, err := pipeline.OpenStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			printInfo("Serving on %s", StyleLink.Render("http://"+cfg.Server.Addr))
			return server.New(runner, st, c.Logger).ListenAndServe(ctx, cfg.Server.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "localhost:8080", "listen address")

	return cmd
}
