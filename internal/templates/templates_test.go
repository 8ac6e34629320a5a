package templates

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/weft/internal/build"
	"github.com/vango-dev/weft/internal/config"
	"github.com/vango-dev/weft/internal/errors"
)

func TestGet(t *testing.T) {
	if diff := cmp.Diff([]string{"docs", "minimal"}, List()); diff != "" {
		t.Errorf("List mismatch (-want +got):\n%s", diff)
	}
	for _, name := range List() {
		tmpl, err := Get(name)
		if err != nil {
			t.Fatalf("Get(%q): %v", name, err)
		}
		if tmpl.Name != name {
			t.Errorf("Name = %q, want %q", tmpl.Name, name)
		}
	}
	if _, err := Get("nonexistent"); !errors.HasCode(err, "E804") {
		t.Errorf("unknown template error = %v, want E804", err)
	}
}

// TestTemplatesRender creates each template and prerenders it, so every
// scaffolded page must load, parse and bind.
func TestTemplatesRender(t *testing.T) {
	for _, name := range List() {
		t.Run(name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "handbook")
			tmpl, _ := Get(name)
			if err := tmpl.Create(dir, Config{Bucket: "hb-bucket"}); err != nil {
				t.Fatal(err)
			}

			cfg, err := config.Load(dir)
			if err != nil {
				t.Fatal(err)
			}
			if cfg.Name != "handbook" {
				t.Errorf("config name = %q, want the directory name", cfg.Name)
			}
			if name == "docs" && cfg.Publish.Bucket != "hb-bucket" {
				t.Errorf("bucket = %q", cfg.Publish.Bucket)
			}

			result, err := build.New(cfg, build.Options{Strict: true}).Build(context.Background())
			if err != nil {
				t.Fatal(err)
			}
			if len(result.Pages) != len(tmpl.Files)/2 {
				t.Errorf("rendered %d pages from %d files", len(result.Pages), len(tmpl.Files))
			}

			if err := tmpl.Create(dir, Config{}); !errors.HasCode(err, "E805") {
				t.Errorf("second Create error = %v, want E805", err)
			}
		})
	}
}

func TestCreateWritesFiles(t *testing.T) {
	dir := t.TempDir()
	tmpl, _ := Get("minimal")
	if err := tmpl.Create(dir, Config{ProjectName: "demo"}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "pages", "index.json"))
	if err != nil {
		t.Fatal(err)
	}
	if want := `"title": "demo"`; !strings.Contains(string(data), want) {
		t.Errorf("index.json missing %s:\n%s", want, data)
	}
}

