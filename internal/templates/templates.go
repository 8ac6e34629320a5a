package templates

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"github.com/vango-dev/weft/internal/config"
	"github.com/vango-dev/weft/internal/errors"
)

// Config contains template configuration.
type Config struct {
	// ProjectName is the name of the project.
	ProjectName string

	// Bucket is the S3 bucket pages are published to.
	Bucket string

	// Region is the AWS region of the bucket.
	Region string
}

// Template represents a project template.
type Template struct {
	// Name is the template name.
	Name string

	// Description describes the template.
	Description string

	// Files maps relative paths to file contents.
	Files map[string]string
}

var templates = map[string]*Template{
	"minimal": minimalTemplate(),
	"docs":    docsTemplate(),
}

// Get returns a template by name.
func Get(name string) (*Template, error) {
	tmpl, ok := templates[name]
	if !ok {
		return nil, errors.New("E804").
			WithDetail("Template '" + name + "' not found").
			WithSuggestion("Available templates: " + strings.Join(List(), ", "))
	}
	return tmpl, nil
}

// List returns all available template names, sorted.
func List() []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Create generates a project from the template. It refuses to write into a
// directory that already holds a weft config.
func (t *Template) Create(dir string, cfg Config) error {
	if config.Exists(dir) {
		return errors.New("E805").
			WithDetail(dir + " already has a weft config").
			WithSuggestion("Choose an empty directory")
	}
	if cfg.ProjectName == "" {
		cfg.ProjectName = filepath.Base(dir)
	}

	for relPath, content := range t.Files {
		tmpl, err := template.New(relPath).Parse(content)
		if err != nil {
			return errors.Newf(errors.CategoryCLI, "invalid template %s: %v", relPath, err)
		}

		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, cfg); err != nil {
			return errors.Newf(errors.CategoryCLI, "template execute error %s: %v", relPath, err)
		}

		fullPath := filepath.Join(dir, relPath)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(fullPath, buf.Bytes(), 0644); err != nil {
			return err
		}
	}
	return nil
}

func minimalTemplate() *Template {
	return &Template{
		Name:        "minimal",
		Description: "One page and a config",
		Files: map[string]string{
			"weft.json": `{
  "name": "{{.ProjectName}}",
  "dev": {"port": 3000, "events": true}
}
`,
			"pages/index.html": `<main>
  <h1>${title}</h1>
  <p class=${tone}>${message}</p>
</main>
`,
			"pages/index.json": `{
  "title": "{{.ProjectName}}",
  "tone": "lead",
  "message": "Edit pages/index.html and pages/index.json, then reload."
}
`,
		},
	}
}

func docsTemplate() *Template {
	return &Template{
		Name:        "docs",
		Description: "A small documentation site published to S3",
		Files: map[string]string{
			"weft.yaml": `name: {{.ProjectName}}
runtime:
  frameBudget: 5ms
  priority: user-visible
dev:
  port: 3000
  events: true
render:
  pages: pages
  output: dist
publish:
  bucket: {{if .Bucket}}{{.Bucket}}{{else}}{{.ProjectName}}-site{{end}}
  region: {{if .Region}}{{.Region}}{{else}}us-east-1{{end}}
  cacheControl: max-age=300
metrics:
  enabled: true
log:
  level: info
  format: text
`,
			"pages/index.html": `<nav><a href=${guide}>Guide</a> <a href=${reference}>Reference</a></nav>
<main>
  <h1>${title}</h1>
  <p>${intro}</p>
</main>
`,
			"pages/index.json": `{
  "title": "{{.ProjectName}}",
  "intro": "Start with the guide.",
  "guide": "guide.html",
  "reference": "reference.html"
}
`,
			"pages/guide.html": `<article>
  <h1>${title}</h1>
  <p>${body}</p>
  <a href="index.html">Back</a>
</article>
`,
			"pages/guide.json": `{"title": "Guide", "body": "Pages are markup with holes filled from JSON."}
`,
			"pages/reference.html": `<article>
  <h1>${title}</h1>
  <pre>${example}</pre>
</article>
`,
			"pages/reference.json": `{"title": "Reference", "example": "<p>${name}</p>"}
`,
		},
	}
}
