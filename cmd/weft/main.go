package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/vango-dev/weft/internal/config"
	"github.com/vango-dev/weft/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// globals holds the persistent flags shared by every command.
type globals struct {
	configPath string
	logLevel   string
	logFormat  string
	noColor    bool

	stdout io.Writer
	stderr io.Writer
	color  bool
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		errors.PrintError(err)
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	g := &globals{stdout: stdout, stderr: stderr}
	if f, ok := stdout.(*os.File); ok {
		g.color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	rootCmd := &cobra.Command{
		Use:   "weft",
		Short: "Render, inspect and publish weft pages",
		Long: `weft drives the weft update engine from the command line.

Pages are markup files with ${name} holes, filled from a JSON file of
the same name. The CLI prerenders them through the server host, serves
them with live reload and uploads the result to S3.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if g.noColor {
				g.color = false
				errors.DisableColors()
			}
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&g.configPath, "config", "c", "", "Config file (default: weft.json or weft.yaml in the project root)")
	flags.StringVar(&g.logLevel, "log-level", "", "Log level: debug, info, warn or error (default from config)")
	flags.StringVar(&g.logFormat, "log-format", "", "Log format: text or json (default from config)")
	flags.BoolVar(&g.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(
		createCmd(g),
		renderCmd(g),
		inspectCmd(g),
		serveCmd(g),
		publishCmd(g),
		versionCmd(g),
	)
	return rootCmd
}

// loadConfig loads the config named by --config, or the one in the nearest
// project root. Without either it falls back to defaults in the working
// directory.
func (g *globals) loadConfig() (*config.Config, error) {
	var cfg *config.Config
	if g.configPath != "" {
		c, err := config.LoadFile(g.configPath)
		if err != nil {
			return nil, err
		}
		cfg = c
	} else if root, err := config.FindProjectRoot("."); err == nil {
		c, err := config.Load(root)
		if err != nil {
			return nil, err
		}
		cfg = c
	} else {
		cfg = config.New()
	}

	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}
	if g.logFormat != "" {
		cfg.Log.Format = g.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// logger builds the CLI logger. Logs go to stderr so stdout stays clean for
// rendered output.
func (g *globals) logger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel()}
	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(g.stderr, opts))
	}
	return slog.New(slog.NewTextHandler(g.stderr, opts))
}

func (g *globals) paint(code, text string) string {
	if !g.color {
		return text
	}
	return code + text + "\033[0m"
}

// success prints a success message.
func (g *globals) success(format string, args ...any) {
	fmt.Fprintf(g.stdout, "%s %s\n", g.paint("\033[32m", "✓"), fmt.Sprintf(format, args...))
}

// info prints an info message.
func (g *globals) info(format string, args ...any) {
	fmt.Fprintf(g.stdout, "  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func (g *globals) warn(format string, args ...any) {
	fmt.Fprintf(g.stdout, "%s %s\n", g.paint("\033[33m", "⚠"), fmt.Sprintf(format, args...))
}

// formatBytes formats bytes as human-readable.
func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}
