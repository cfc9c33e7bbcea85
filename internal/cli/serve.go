package cli

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/matzehuels/jsontree/internal/server"
	"github.com/matzehuels/jsontree/pkg/clipboard"
	"github.com/matzehuels/jsontree/pkg/observability"
	"github.com/matzehuels/jsontree/pkg/observability/prom"
	"github.com/matzehuels/jsontree/pkg/session"
)

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr       string
		noCache    bool
		noMetrics  bool
		sessionTTL time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the tree API over HTTP",
		Long: `Serve the tree API over HTTP.

Stateless endpoints build, search and render documents sent in the request
body. Session endpoints keep a document on the server and mirror the
interactive page: visualize, clear, search and click. Sessions live in
memory and expire after --session-ttl of inactivity.

Prometheus metrics are exposed at /metrics unless disabled.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.Config
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("session-ttl") {
				cfg.Server.SessionTTL = sessionTTL
			}
			if noMetrics {
				cfg.Metrics.Enabled = false
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			c.Config = cfg
			return c.runServe(cmd, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", c.Config.Server.Addr, "listen address")
	cmd.Flags().DurationVar(&sessionTTL, "session-ttl", c.Config.Server.SessionTTL, "idle lifetime of a session")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "disable the /metrics endpoint")

	return cmd
}

func (c *CLI) runServe(cmd *cobra.Command, noCache bool) error {
	ctx := cmd.Context()
	cfg := c.Config

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := server.Options{DefaultFormat: cfg.Render.Format}
	if cfg.Metrics.Enabled {
		opts.Metrics = registerMetrics()
		defer observability.Reset()
	}

	// Clicks are copied by the client; the server only reports the path.
	store := session.NewStore(runner, clipboard.Nop{}, cfg.Server.SessionTTL)
	srv := server.New(runner, store, c.Logger, opts)

	printInfo("Serving on %s", cfg.Server.Addr)
	printDetail("cache: %s, sessions expire after %s", cfg.Cache.Backend, cfg.Server.SessionTTL)
	return srv.ListenAndServe(ctx, cfg.Server.Addr)
}

// registerMetrics installs Prometheus-backed hooks and returns the handler
// that exposes them.
func registerMetrics() http.Handler {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := prom.New(reg)
	observability.SetPipelineHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)

	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
