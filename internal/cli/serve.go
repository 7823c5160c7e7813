package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/graphsnap/internal/server"
	"github.com/matzehuels/graphsnap/pkg/observability"
	"github.com/matzehuels/graphsnap/pkg/observability/prom"
	"github.com/matzehuels/graphsnap/pkg/snapshot"
)

// serveCommand creates the serve command, which runs the HTTP API until
// interrupted.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	var noMetrics bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serve the HTTP API.

Documents can be formatted, checked and summarized under /v1, and stored
under /v1/snapshots using the configured backend. Prometheus metrics are
exposed on /metrics unless --no-metrics is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}

			srvCfg := server.Config{Logger: logger}
			if !noMetrics {
				reg := registerMetrics()
				srvCfg.Gatherer = reg
				defer observability.Reset()
			}

			store, err := snapshot.Open(ctx, cfg.Store, logger)
			if err != nil {
				return err
			}
			defer store.Close()
			srvCfg.Store = store

			logger.Info("snapshot store ready", "backend", cfg.Store.Backend)
			return server.New(srvCfg).ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, \":8080\")")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "disable the /metrics endpoint")
	return cmd
}

// registerMetrics installs Prometheus-backed observability hooks and returns
// the registry that holds them.
func registerMetrics() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	observability.SetSerialHooks(prom.NewSerialHooks(reg))
	observability.SetStoreHooks(prom.NewStoreHooks(reg))
	observability.SetHTTPHooks(prom.NewHTTPHooks(reg))
	return reg
}
