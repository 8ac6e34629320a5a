package build

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/vango-dev/weft/internal/config"
	"github.com/vango-dev/weft/internal/errors"
	"github.com/vango-dev/weft/internal/pages"
	"github.com/vango-dev/weft/pkg/host"
	"github.com/vango-dev/weft/pkg/observe"
	"github.com/vango-dev/weft/pkg/scheduler"
	"github.com/vango-dev/weft/pkg/weft"
)

// ManifestFile is the name of the manifest written next to the pages.
const ManifestFile = "manifest.json"

// Result contains the build output.
type Result struct {
	// Duration is how long the build took.
	Duration time.Duration

	// Output is the directory pages were written to.
	Output string

	// Pages lists the rendered pages in name order.
	Pages []Page
}

// Page is one rendered page.
type Page struct {
	Name string `json:"-"`
	File string `json:"file"`
	Size int64  `json:"size"`
	Hash string `json:"sha256"`

	// Missing lists holes the page's data left unbound.
	Missing []string `json:"missing,omitempty"`
}

// Options configures the builder.
type Options struct {
	// Pages restricts the build to the named pages. Empty builds all.
	Pages []string

	// Strict fails the build when a page leaves holes unbound.
	Strict bool

	// Observers receive runtime events of every render.
	Observers []weft.Observer

	// Logger is passed to hosts and runtimes.
	Logger *slog.Logger

	// OnProgress is called with progress updates.
	OnProgress func(step string)
}

// Builder prerenders pages.
type Builder struct {
	config  *config.Config
	options Options
	dir     *pages.Dir
}

// New creates a new builder.
func New(cfg *config.Config, options Options) *Builder {
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	return &Builder{
		config:  cfg,
		options: options,
		dir:     pages.Open(cfg.PagesPath(), HostOptions(cfg, options.Logger)...),
	}
}

// HostOptions returns host options for cfg's runtime settings.
func HostOptions(cfg *config.Config, logger *slog.Logger) []host.Option {
	loop := scheduler.NewLoop(
		scheduler.WithFrameBudget(cfg.FrameBudget()),
		scheduler.WithIdlePriority(cfg.Priority()),
	)
	return []host.Option{host.WithLoop(loop), host.WithLogger(logger.With("component", "host"))}
}

// RuntimeOptions returns runtime options for cfg, observed by observers.
func RuntimeOptions(cfg *config.Config, logger *slog.Logger, observers ...weft.Observer) []weft.RuntimeOption {
	opts := []weft.RuntimeOption{weft.WithLogger(logger.With("component", "weft"))}
	if cfg.Runtime.IdentifierPrefix != "" {
		opts = append(opts, weft.WithIdentifierPrefix(cfg.Runtime.IdentifierPrefix))
	}
	for _, o := range observers {
		opts = append(opts, weft.WithObserver(o))
	}
	return opts
}

// Observers returns the observers cfg enables: a log observer and, with
// tracing on, an OpenTelemetry tracer built with opts.
func Observers(cfg *config.Config, logger *slog.Logger, opts ...observe.TracerOption) []weft.Observer {
	observers := []weft.Observer{observe.NewLogObserver(logger)}
	if cfg.Trace.Enabled {
		opts = append([]observe.TracerOption{observe.WithTracerName(cfg.Trace.Name)}, opts...)
		observers = append(observers, observe.NewTracer(opts...))
	}
	return observers
}

// Dir returns the page directory the builder renders from.
func (b *Builder) Dir() *pages.Dir {
	return b.dir
}

// Build renders the selected pages into the output directory and writes the
// manifest.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	start := time.Now()
	outputDir := b.config.OutputPath()
	result := &Result{Output: outputDir}

	names := b.options.Pages
	if len(names) == 0 {
		var err error
		if names, err = b.dir.Names(); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, errors.New("E801").Wrap(err)
	}

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		b.progress("Rendering " + name + "...")
		page, err := b.renderPage(ctx, name, outputDir)
		if err != nil {
			return nil, err
		}
		result.Pages = append(result.Pages, page)
	}

	b.progress("Writing manifest...")
	if err := writeManifest(outputDir, result.Pages); err != nil {
		return nil, err
	}

	result.Duration = time.Since(start)
	return result, nil
}

// Render renders the page called name without writing it.
func (b *Builder) Render(ctx context.Context, name string) (string, *pages.Page, error) {
	p, err := b.dir.Load(name)
	if err != nil {
		return "", nil, err
	}
	if missing := p.Missing(); len(missing) > 0 && b.options.Strict {
		return "", nil, errors.New("E801").
			WithDetailf("%s: no data for %v", name, missing).
			WithSuggestion("Add the keys to " + name + pages.DataExt + " or build without --strict")
	}
	html, err := b.dir.Render(ctx, p, RuntimeOptions(b.config, b.options.Logger, b.options.Observers...)...)
	if err != nil {
		return "", nil, err
	}
	return html, p, nil
}

func (b *Builder) renderPage(ctx context.Context, name, outputDir string) (Page, error) {
	html, p, err := b.Render(ctx, name)
	if err != nil {
		return Page{}, err
	}

	file := name + pages.MarkupExt
	path := filepath.Join(outputDir, file)
	if err := os.WriteFile(path, []byte(html), 0644); err != nil {
		return Page{}, errors.New("E801").Wrap(err)
	}
	hash, err := hashFile(path)
	if err != nil {
		return Page{}, errors.New("E801").Wrap(err)
	}
	return Page{Name: name, File: file, Size: int64(len(html)), Hash: hash, Missing: p.Missing()}, nil
}

// writeManifest writes the page manifest.
func writeManifest(outputDir string, rendered []Page) error {
	manifest := make(map[string]Page, len(rendered))
	for _, p := range rendered {
		manifest[p.Name] = p
	}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(outputDir, ManifestFile), data, 0644)
}

// ReadManifest reads the manifest of a previous build in outputDir.
func ReadManifest(outputDir string) (map[string]Page, error) {
	data, err := os.ReadFile(filepath.Join(outputDir, ManifestFile))
	if err != nil {
		return nil, errors.New("E802").
			WithDetail("No " + ManifestFile + " in " + outputDir).
			WithSuggestion("Run weft render first")
	}
	manifest := make(map[string]Page)
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, errors.New("E802").Wrap(fmt.Errorf("%s: %w", ManifestFile, err))
	}
	for name, p := range manifest {
		p.Name = name
		manifest[name] = p
	}
	return manifest, nil
}

// progress reports build progress.
func (b *Builder) progress(step string) {
	if b.options.OnProgress != nil {
		b.options.OnProgress(step)
	}
}

// hashFile returns the SHA256 hash of a file.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// Clean removes the build output directory.
func (b *Builder) Clean() error {
	return os.RemoveAll(b.config.OutputPath())
}
