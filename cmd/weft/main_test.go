package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/weft/internal/config"
	"github.com/vango-dev/weft/internal/errors"
	"github.com/vango-dev/weft/internal/pages"
)

// project writes a config and pages into a temporary directory and returns
// the config path.
func project(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, config.ConfigFileName)
	if err := config.New().SaveTo(path); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, config.DefaultPages), 0755); err != nil {
		t.Fatal(err)
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, config.DefaultPages, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestRenderCommand(t *testing.T) {
	cfgPath := project(t, map[string]string{
		"index.html": `<h1>${title}</h1>`,
		"index.json": `{"title": "Home"}`,
		"about.html": `<p>${who}</p>`,
	})

	out, err := run(t, "--config", cfgPath, "render", "--list")
	if err != nil {
		t.Fatal(err)
	}
	if out != "about\nindex\n" {
		t.Errorf("--list = %q", out)
	}

	out, err = run(t, "--config", cfgPath, "render", "index", "--stdout")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "<h1>Home</h1>") {
		t.Errorf("--stdout = %q", out)
	}

	out, err = run(t, "--config", cfgPath, "render", "index", "--stdout", "--trace")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "<h1>Home</h1>") {
		t.Errorf("--stdout --trace = %q", out)
	}

	out, err = run(t, "--config", cfgPath, "--no-color", "render")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "✓ Rendered 2 pages") || !strings.Contains(out, "about: no data for who") {
		t.Errorf("render output:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(cfgPath), config.DefaultOutput, "index.html")); err != nil {
		t.Errorf("index.html not written: %v", err)
	}

	if _, err := run(t, "--config", cfgPath, "render", "--strict"); !errors.HasCode(err, "E801") {
		t.Errorf("strict render error = %v, want E801", err)
	}
	if _, err := run(t, "--config", cfgPath, "render", "--stdout"); !errors.HasCode(err, "E801") {
		t.Errorf("--stdout without a page error = %v, want E801", err)
	}
}

func TestInspectCommand(t *testing.T) {
	cfgPath := project(t, map[string]string{"card.html": `<div class=${tone}>${text}</div>`})

	out, err := run(t, "--config", cfgPath, "inspect", "card", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var got struct {
		Holes   []pages.Hole `json:"holes"`
		Missing []string     `json:"missing"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("%v:\n%s", err, out)
	}
	want := []pages.Hole{
		{Name: "tone", Kind: "Attribute:class", Index: 0},
		{Name: "text", Kind: "Text", Index: 1},
	}
	if diff := cmp.Diff(want, got.Holes); diff != "" {
		t.Errorf("holes mismatch (-want +got):\n%s", diff)
	}

	out, err = run(t, "--config", cfgPath, "--no-color", "inspect", "card")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "card: 2 holes") || !strings.Contains(out, "no data for tone, text") {
		t.Errorf("inspect output:\n%s", out)
	}

	if _, err := run(t, "--config", cfgPath, "inspect", "nope"); !errors.HasCode(err, "E803") {
		t.Errorf("unknown page error = %v, want E803", err)
	}
}

func TestGlobalFlags(t *testing.T) {
	cfgPath := project(t, nil)
	if _, err := run(t, "--config", cfgPath, "--log-level", "loud", "render", "--list"); !errors.HasCode(err, "E701") {
		t.Errorf("bad log level error = %v, want E701", err)
	}
	toml := filepath.Join(t.TempDir(), "weft.toml")
	if err := os.WriteFile(toml, []byte(`name = "x"`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, "--config", toml, "render"); !errors.HasCode(err, "E702") {
		t.Errorf("unsupported config error = %v, want E702", err)
	}

	out, err := run(t, "version", "--short")
	if err != nil {
		t.Fatal(err)
	}
	if out != version+"\n" {
		t.Errorf("version --short = %q", out)
	}
}

func TestPublishRequiresBucket(t *testing.T) {
	cfgPath := project(t, map[string]string{"p.html": `<p>p</p>`})
	if _, err := run(t, "--config", cfgPath, "publish", "--render", "--dry-run"); !errors.HasCode(err, "E802") {
		t.Errorf("publish without bucket error = %v, want E802", err)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := map[int64]string{
		512:             "512 B",
		2048:            "2.0 KB",
		5 * 1024 * 1024: "5.0 MB",
	}
	for in, want := range tests {
		if got := formatBytes(in); got != want {
			t.Errorf("formatBytes(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestCreateCommand(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "site")
	out, err := run(t, "--no-color", "create", dir)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "✓ Created") {
		t.Errorf("create output:\n%s", out)
	}

	out, err = run(t, "--config", filepath.Join(dir, config.ConfigFileName), "render", "--list")
	if err != nil {
		t.Fatal(err)
	}
	if out != "index\n" {
		t.Errorf("--list = %q", out)
	}

	if _, err := run(t, "create", dir); !errors.HasCode(err, "E805") {
		t.Errorf("second create error = %v, want E805", err)
	}
	if _, err := run(t, "create", t.TempDir(), "--template", "api"); !errors.HasCode(err, "E804") {
		t.Errorf("unknown template error = %v, want E804", err)
	}
}
