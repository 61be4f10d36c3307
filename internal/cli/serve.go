package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/arbor/pkg/api"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve analyses over HTTP",
		Long: `Serve analyses over HTTP.

  POST /v1/analyses   analyse the skeleton in the request body
  POST /v1/renders    render the skeleton as DOT or SVG
  GET  /healthz       liveness probe
  GET  /version       build information

The cache backend, timeout and body limit come from the [cache] and [server]
sections of the config file. Use a redis or mongo backend to share reports
between server instances.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if !cmd.Flags().Changed("addr") {
				addr = c.Config.Server.Addr
			}

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			srv := api.New(runner, api.Config{
				Timeout:      c.Config.Server.Timeout,
				MaxBodyBytes: c.Config.Server.MaxBodyBytes,
				Defaults:     c.analysisDefaults(),
			})
			printInfo("Serving on %s", StyleHighlight.Render(addr))
			printDetail("cache: %s", c.Config.Cache.Backend)
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
