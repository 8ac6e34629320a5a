package build

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vango-dev/weft/internal/config"
	"github.com/vango-dev/weft/internal/errors"
	"github.com/vango-dev/weft/pkg/host"
	"github.com/vango-dev/weft/pkg/observe"
	"github.com/vango-dev/weft/pkg/scheduler"
	"github.com/vango-dev/weft/pkg/weft"
)

// newProject writes a config and the given pages (name -> markup, data) into
// a temporary directory.
func newProject(t *testing.T, files map[string]string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.New()
	if err := cfg.SaveTo(filepath.Join(dir, config.ConfigFileName)); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(cfg.PagesPath(), 0755); err != nil {
		t.Fatal(err)
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(cfg.PagesPath(), name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return cfg
}

func TestBuild(t *testing.T) {
	cfg := newProject(t, map[string]string{
		"index.html": `<h1>${title}</h1>`,
		"index.json": `{"title": "Home"}`,
		"about.html": `<p>about ${who}</p>`,
	})

	var steps []string
	var events int
	builder := New(cfg, Options{
		OnProgress: func(step string) { steps = append(steps, step) },
		Observers: []weft.Observer{weft.ObserverFunc(func(weft.RuntimeEvent) { events++ })},
	})
	result, err := builder.Build(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"Rendering about...", "Rendering index...", "Writing manifest..."}
	if diff := cmp.Diff(want, steps); diff != "" {
		t.Errorf("progress mismatch (-want +got):\n%s", diff)
	}
	if events == 0 {
		t.Error("observers saw no runtime events")
	}

	html, err := os.ReadFile(filepath.Join(cfg.OutputPath(), "index.html"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(html), "<h1>Home</h1>") {
		t.Errorf("index.html = %q", html)
	}
	sum := sha256.Sum256(html)

	manifest, err := ReadManifest(cfg.OutputPath())
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(result.Pages, []Page{manifest["about"], manifest["index"]}); diff != "" {
		t.Errorf("manifest mismatch (-result +manifest):\n%s", diff)
	}
	index := manifest["index"]
	if index.Hash != hex.EncodeToString(sum[:]) || index.Size != int64(len(html)) {
		t.Errorf("index entry = %+v", index)
	}
	if diff := cmp.Diff([]string{"who"}, manifest["about"].Missing, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("about missing mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildSelectedPages(t *testing.T) {
	cfg := newProject(t, map[string]string{
		"a.html": `<p>a</p>`,
		"b.html": `<p>b</p>`,
	})
	result, err := New(cfg, Options{Pages: []string{"b"}}).Build(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Pages) != 1 || result.Pages[0].Name != "b" {
		t.Errorf("pages = %+v", result.Pages)
	}
	if _, err := os.Stat(filepath.Join(cfg.OutputPath(), "a.html")); !os.IsNotExist(err) {
		t.Error("unselected page was rendered")
	}

	if _, err := New(cfg, Options{Pages: []string{"c"}}).Build(context.Background()); !errors.HasCode(err, "E803") {
		t.Errorf("unknown page error = %v, want E803", err)
	}
}

func TestBuildStrict(t *testing.T) {
	cfg := newProject(t, map[string]string{"p.html": `<p>${x}</p>`})
	if _, err := New(cfg, Options{Strict: true}).Build(context.Background()); !errors.HasCode(err, "E801") {
		t.Errorf("strict build error = %v, want E801", err)
	}
}

func TestBuildCanceled(t *testing.T) {
	cfg := newProject(t, map[string]string{"p.html": `<p>p</p>`})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(cfg, Options{}).Build(ctx); err != context.Canceled {
		t.Errorf("Build error = %v, want context.Canceled", err)
	}
}

func TestReadManifestMissing(t *testing.T) {
	if _, err := ReadManifest(t.TempDir()); !errors.HasCode(err, "E802") {
		t.Errorf("ReadManifest error = %v, want E802", err)
	}
}

func TestClean(t *testing.T) {
	cfg := newProject(t, nil)
	if err := os.MkdirAll(cfg.OutputPath(), 0755); err != nil {
		t.Fatal(err)
	}
	if err := New(cfg, Options{}).Clean(); err != nil {
		t.Fatalf("Clean error: %v", err)
	}
	if _, err := os.Stat(cfg.OutputPath()); !os.IsNotExist(err) {
		t.Error("output directory should be removed")
	}
}

func TestHostAndRuntimeOptions(t *testing.T) {
	cfg := config.New()
	cfg.Runtime.Priority = "background"
	cfg.Runtime.IdentifierPrefix = "srv-"

	h := host.NewServer(HostOptions(cfg, slog.Default())...)
	if p := h.GetCurrentTaskPriority(); p != scheduler.Background {
		t.Errorf("idle priority = %v, want background", p)
	}

	var id string
	Prefixed := weft.NewComponent("Prefixed", func(_ struct{}, s *weft.RenderSession) any {
		id = weft.UseID(s)
		return nil
	})
	if _, err := h.RenderToString(context.Background(), Prefixed.With(struct{}{}), RuntimeOptions(cfg, slog.Default())...); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(id, "srv-") {
		t.Errorf("UseID = %q, want srv- prefix", id)
	}
}

type spanRecorder struct {
	noop.Tracer
	names []string
}

func (r *spanRecorder) Start(ctx context.Context, name string, _ ...trace.SpanStartOption) (context.Context, trace.Span) {
	r.names = append(r.names, name)
	return noop.Tracer{}.Start(ctx, name)
}

type recorderProvider struct {
	noop.TracerProvider
	tracer *spanRecorder
	name   *string
}

func (p recorderProvider) Tracer(name string, _ ...trace.TracerOption) trace.Tracer {
	*p.name = name
	return p.tracer
}

func TestObserversTrace(t *testing.T) {
	cfg := newProject(t, map[string]string{"index.html": `<h1>${title}</h1>`})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	if got := len(Observers(cfg, logger)); got != 1 {
		t.Fatalf("observers without tracing = %d, want 1", got)
	}

	cfg.Trace.Enabled = true
	cfg.Trace.Name = "docs"
	rec := &spanRecorder{}
	var tracerName string
	observers := Observers(cfg, logger, observe.WithTracerProvider(recorderProvider{tracer: rec, name: &tracerName}))
	if len(observers) != 2 {
		t.Fatalf("observers with tracing = %d, want 2", len(observers))
	}

	builder := New(cfg, Options{Logger: logger, Observers: observers})
	if _, _, err := builder.Render(context.Background(), "index"); err != nil {
		t.Fatal(err)
	}
	if tracerName != "docs" {
		t.Errorf("tracer name = %q, want docs", tracerName)
	}
	if len(rec.names) == 0 || rec.names[0] != "weft.update" {
		t.Errorf("spans = %v, want weft.update first", rec.names)
	}
}
