package cli

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/matzehuels/rfit/pkg/observability/prom"
	"github.com/matzehuels/rfit/pkg/server"
)

// metricsNamespace prefixes every exported metric.
const metricsNamespace = "rfit"

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		noCache   bool
		noMetrics bool
		history   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the resolver over HTTP",
		Long: `Serve the resolver as a JSON API. Prometheus metrics are exposed at
/metrics unless --no-metrics is given.

With --history every /v1/run report is saved to the run history, which is
then browsable at /v1/runs.`,
		Example: `  rfit serve
  rfit serve --addr 127.0.0.1:9090 --no-cache
  rfit serve --history`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.addr()
			}

			runner, err := c.newRunner(cmd.Context(), noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			var metrics http.Handler
			if !noMetrics {
				m := prom.New(metricsNamespace)
				m.Register()
				metrics = m.Handler()
			}

			srv := server.New(runner, c.Logger, metrics)
			if history {
				st, err := c.openStore(cmd.Context())
				if err != nil {
					return err
				}
				defer st.Close()
				srv.History = st
			}

			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, then "+defaultAddr+")")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable result caching")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "do not expose /metrics")
	cmd.Flags().BoolVar(&history, "history", false, "save /v1/run reports and serve /v1/runs")

	return cmd
}
