package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/weft/internal/build"
	"github.com/vango-dev/weft/internal/errors"
)

// signalContext returns a context canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func renderCmd(g *globals) *cobra.Command {
	var (
		output string
		pages  string
		strict bool
		clean  bool
		list   bool
		stdout bool
		trace  bool
	)

	cmd := &cobra.Command{
		Use:   "render [page...]",
		Short: "Prerender pages",
		Long: `Render pages to static HTML through the server host.

Each page is written to the output directory, followed by a
manifest.json recording the size and hash of every page. The
output carries the markers a client runtime hydrates from.

Examples:
  weft render
  weft render index about --strict
  weft render index --stdout
  weft render --list
  weft render --trace`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			if output != "" {
				cfg.Render.Output = output
			}
			if pages != "" {
				cfg.Render.Pages = pages
			}
			if cmd.Flags().Changed("trace") {
				cfg.Trace.Enabled = trace
			}
			logger := g.logger(cfg)

			builder := build.New(cfg, build.Options{
				Pages:      args,
				Strict:     strict,
				Logger:     logger,
				Observers:  build.Observers(cfg, logger),
				OnProgress: func(step string) { g.info(step) },
			})

			if list {
				names, err := builder.Dir().Names()
				if err != nil {
					return err
				}
				for _, name := range names {
					fmt.Fprintln(g.stdout, name)
				}
				return nil
			}

			ctx, cancel := signalContext()
			defer cancel()

			if stdout {
				return renderToStdout(ctx, g, builder, args)
			}

			if clean {
				g.info("Cleaning output directory...")
				if err := builder.Clean(); err != nil {
					return err
				}
			}

			result, err := builder.Build(ctx)
			if err != nil {
				return err
			}

			var total int64
			for _, p := range result.Pages {
				total += p.Size
				if len(p.Missing) > 0 {
					g.warn("%s: no data for %s", p.Name, strings.Join(p.Missing, ", "))
				}
			}
			g.success("Rendered %d pages (%s) in %s", len(result.Pages), formatBytes(total), result.Duration.Round(time.Millisecond))
			g.info("Output: %s", result.Output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output directory (default from config)")
	cmd.Flags().StringVar(&pages, "pages", "", "Pages directory (default from config)")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail when a page leaves holes without data")
	cmd.Flags().BoolVar(&clean, "clean", false, "Clean output directory before rendering")
	cmd.Flags().BoolVarP(&list, "list", "l", false, "List pages and exit")
	cmd.Flags().BoolVar(&stdout, "stdout", false, "Write a single page to stdout instead of the output directory")
	cmd.Flags().BoolVar(&trace, "trace", false, "Record OpenTelemetry spans for every render")

	return cmd
}

func renderToStdout(ctx context.Context, g *globals, builder *build.Builder, args []string) error {
	if len(args) != 1 {
		return errors.New("E801").
			WithDetail("--stdout renders exactly one page").
			WithSuggestion("Name the page: weft render index --stdout")
	}
	html, _, err := builder.Render(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(g.stdout, html)
	return nil
}
