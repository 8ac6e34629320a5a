package main

import (
	"github.com/spf13/cobra"

	"github.com/vango-dev/weft/internal/dev"
)

func serveCmd(g *globals) *cobra.Command {
	var (
		port    int
		host    string
		events  bool
		metrics bool
		trace   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the development server",
		Long: `Serve pages rendered on every request.

The server watches the pages directory and the config file and
reloads connected browsers when a page or its data changes. With
--events, runtime events of every render are streamed to the
browser console.

Examples:
  weft serve
  weft serve --port=8080 --events
  weft serve --metrics --trace`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Dev.Port = port
			}
			if host != "" {
				cfg.Dev.Host = host
			}
			if cmd.Flags().Changed("events") {
				cfg.Dev.Events = events
			}
			if cmd.Flags().Changed("metrics") {
				cfg.Metrics.Enabled = metrics
			}
			if cmd.Flags().Changed("trace") {
				cfg.Trace.Enabled = trace
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			srv := dev.NewServer(dev.ServerOptions{
				Config: cfg,
				Logger: g.logger(cfg),
				OnReload: func(page string, clients int) {
					if page == "" {
						page = "all pages"
					}
					g.info("Reloaded %s in %d browsers", page, clients)
				},
			})
			g.success("Serving %s at http://%s", cfg.PagesPath(), cfg.DevAddress())
			return srv.Start(ctx)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to run on (default from config)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from config)")
	cmd.Flags().BoolVar(&events, "events", false, "Stream runtime events to browsers")
	cmd.Flags().BoolVar(&metrics, "metrics", false, "Expose Prometheus metrics at /metrics")
	cmd.Flags().BoolVar(&trace, "trace", false, "Record OpenTelemetry spans for every render")

	return cmd
}
