package pages

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vango-dev/weft/internal/errors"
	"github.com/vango-dev/weft/pkg/host"
	"github.com/vango-dev/weft/pkg/part"
	"github.com/vango-dev/weft/pkg/template"
	"github.com/vango-dev/weft/pkg/weft"
)

const (
	// MarkupExt is the extension of page markup files.
	MarkupExt = ".html"

	// DataExt is the extension of page data files.
	DataExt = ".json"
)

// Page is a parsed markup file and the data bound into its holes.
type Page struct {
	Name    string
	Strings *weft.TemplateStrings
	Holes   []string
	Data    map[string]any
}

// Value returns the page as a template literal, with each hole bound to its
// entry in Data.
func (p *Page) Value() weft.Literal {
	return weft.HTML(p.Strings, template.Values(p.Holes, p.Data)...)
}

// Missing returns the hole names Data has no entry for.
func (p *Page) Missing() []string {
	var missing []string
	for _, name := range p.Holes {
		if _, ok := p.Data[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// Hole describes one hole of a page.
type Hole struct {
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Index int    `json:"index"`
}

// Dir is a directory of pages. Pages loaded from the same Dir share template
// strings, so reloading an unchanged page reuses its parsed template.
type Dir struct {
	path     string
	interner *weft.Interner
	hostOpts []host.Option
	runtime  *weft.Runtime
}

// Open returns the page directory at path. The directory is read lazily.
func Open(path string, opts ...host.Option) *Dir {
	return &Dir{
		path:     path,
		interner: weft.NewInterner(),
		hostOpts: opts,
		runtime:  weft.NewRuntime(host.NewServer(opts...)),
	}
}

// Path returns the directory path.
func (d *Dir) Path() string {
	return d.path
}

// Names lists the pages in the directory, sorted.
func (d *Dir) Names() ([]string, error) {
	entries, err := os.ReadDir(d.path)
	if err != nil {
		return nil, errors.New("E803").WithDetail(d.path).Wrap(err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != MarkupExt {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), MarkupExt))
	}
	sort.Strings(names)
	return names, nil
}

// Load reads and parses the page called name.
func (d *Dir) Load(name string) (*Page, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return nil, errors.New("E803").WithDetailf("invalid page name %q", name)
	}
	base := filepath.Join(d.path, name)
	markup, err := os.ReadFile(base + MarkupExt)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E803").
				WithDetail(name + MarkupExt + " does not exist in " + d.path).
				WithSuggestion("Run weft render --list to see available pages")
		}
		return nil, errors.New("E803").Wrap(err)
	}
	data, err := os.ReadFile(base + DataExt)
	if err != nil && !os.IsNotExist(err) {
		return nil, errors.New("E801").Wrap(err)
	}
	return Parse(name, markup, data, d.interner)
}

// Parse builds a page from markup and optional JSON data. A nil interner
// gives the page its own template strings.
func Parse(name string, markup, data []byte, interner *weft.Interner) (*Page, error) {
	strs, holes, err := template.SplitMarkup(string(markup))
	if err != nil {
		return nil, err
	}
	p := &Page{Name: name, Holes: holes, Data: map[string]any{}}
	if interner != nil {
		p.Strings = interner.Strings(strs...)
	} else {
		p.Strings = weft.Strings(strs...)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &p.Data); err != nil {
			return nil, errors.New("E801").
				WithDetail(name + DataExt + ": " + err.Error()).
				WithSuggestion("Data files must hold a single JSON object")
		}
	}
	return p, nil
}

// Inspect parses the page's template and describes its holes in bind order.
func (d *Dir) Inspect(p *Page) ([]Hole, error) {
	t, err := d.runtime.ResolveTemplate(p.Strings, template.Values(p.Holes, nil), weft.ModeHTML)
	if err != nil {
		return nil, err
	}
	var infos []template.HoleInfo
	switch t := t.(type) {
	case *template.TaggedTemplate:
		infos = t.Holes()
	case *template.TextTemplate:
		infos = []template.HoleInfo{{Kind: part.KindText}}
	default:
		if t.Arity() == 1 {
			infos = []template.HoleInfo{{Kind: part.KindChildNode}}
		}
	}
	holes := make([]Hole, len(infos))
	for i, info := range infos {
		holes[i] = Hole{Name: p.Holes[i], Kind: info.Kind.String(), Index: info.Index}
		if info.Name != "" {
			holes[i].Kind += ":" + info.Name
		}
	}
	return holes, nil
}

// Render renders p to markup on a fresh server host.
func (d *Dir) Render(ctx context.Context, p *Page, opts ...weft.RuntimeOption) (string, error) {
	return host.NewServer(d.hostOpts...).RenderToString(ctx, p.Value(), opts...)
}
