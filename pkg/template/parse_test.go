package template

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/weft/internal/errors"
	"github.com/vango-dev/weft/pkg/dom"
	"github.com/vango-dev/weft/pkg/part"
	"github.com/vango-dev/weft/pkg/weft"
)

const testPlaceholder = "weft-test"

func mustParse(t *testing.T, mode weft.TemplateMode, strs ...string) Renderer {
	t.Helper()
	tmpl, err := Parse(strs, testPlaceholder, mode)
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", strs, err)
	}
	return tmpl
}

func TestParseFastPaths(t *testing.T) {
	tests := []struct {
		name string
		mode weft.TemplateMode
		strs []string
		want string
	}{
		{"whitespace only", weft.ModeHTML, []string{"  \n "}, "EmptyTemplate"},
		{"bare hole", weft.ModeHTML, []string{" ", "\n"}, "TextTemplate"},
		{"tag hole", weft.ModeHTML, []string{"<", "/>"}, "ChildNodeTemplate"},
		{"comment hole", weft.ModeSVG, []string{"<!--", "-->"}, "ChildNodeTemplate"},
		{"textarea", weft.ModeTextarea, []string{"a", "b"}, "TextTemplate"},
		{"textarea many", weft.ModeTextarea, []string{"a", "b", "c"}, "TaggedTemplate"},
		{"element", weft.ModeHTML, []string{"<p>", "</p>"}, "TaggedTemplate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl := mustParse(t, tt.mode, tt.strs...)
			if got := tmpl.Name(); got != tt.want {
				t.Errorf("Name() = %q, want %q", got, tt.want)
			}
			if got, want := tmpl.Arity(), len(tt.strs)-1; got != want {
				t.Errorf("Arity() = %d, want %d", got, want)
			}
		})
	}
}

func TestTextareaTemplate(t *testing.T) {
	tmpl := mustParse(t, weft.ModeTextarea, "a", "b").(*TextTemplate)
	if tmpl.Preceding != "a" || tmpl.Following != "b" {
		t.Errorf("TextTemplate = %+v", tmpl)
	}
}

func TestBareHoleIsText(t *testing.T) {
	tmpl, ok := mustParse(t, weft.ModeHTML, " ", "\n").(*TextTemplate)
	if !ok {
		t.Fatalf("bare hole parsed as %T", tmpl)
	}
	if tmpl.Preceding != " " || tmpl.Following != "\n" {
		t.Errorf("TextTemplate = %+v", tmpl)
	}
}

func TestParseHoles(t *testing.T) {
	tmpl := mustParse(t, weft.ModeHTML,
		`<div class="box" :class=`, ` @click=`, `><input .value=`, ` $checked=`, ` `, `><p>Hello, `, `!</p><`, `/></div>`,
	).(*TaggedTemplate)

	want := []HoleInfo{
		{Kind: part.KindAttribute, Name: ":class", Index: 0},
		{Kind: part.KindEvent, Name: "click", Index: 0},
		{Kind: part.KindProperty, Name: "value", Index: 1},
		{Kind: part.KindLive, Name: "checked", Index: 1},
		{Kind: part.KindElement, Index: 1},
		{Kind: part.KindText, Index: 3},
		{Kind: part.KindChildNode, Index: 4},
	}
	if diff := cmp.Diff(want, tmpl.Holes()); diff != "" {
		t.Errorf("Holes() mismatch (-want +got):\n%s", diff)
	}

	wantHTML := `<div class="box"><input><p></p><!----></div>`
	if got := tmpl.Fragment().OuterHTML(); got != wantHTML {
		t.Errorf("fragment = %q, want %q", got, wantHTML)
	}
	if tmpl.holes[5].preceding != "Hello, " || tmpl.holes[5].following != "!" {
		t.Errorf("text hole = %+v", tmpl.holes[5])
	}
}

func TestParsePreservesAttributeCase(t *testing.T) {
	tmpl := mustParse(t, weft.ModeHTML, `<video .currentTime=`, `></video>`).(*TaggedTemplate)
	if got := tmpl.Holes()[0].Name; got != "currentTime" {
		t.Errorf("property name = %q, want currentTime", got)
	}
}

func TestParseAdjacentTextHoles(t *testing.T) {
	tmpl := mustParse(t, weft.ModeHTML, `<p>`, ``, `2 and `, `.</p>`).(*TaggedTemplate)
	want := []hole{
		{kind: part.KindText, index: 1, bind: 0},
		{kind: part.KindText, index: 2, bind: 1},
		{kind: part.KindText, index: 3, bind: 2, preceding: "2 and ", following: "."},
	}
	if diff := cmp.Diff(want, tmpl.holes, cmp.AllowUnexported(hole{})); diff != "" {
		t.Errorf("holes mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSVGNamespace(t *testing.T) {
	tmpl := mustParse(t, weft.ModeSVG, `<g><foreignObject>`, `</foreignObject>`, `</g>`).(*TaggedTemplate)
	if got := tmpl.holes[0].kind; got != part.KindText {
		t.Fatalf("hole 0 kind = %v", got)
	}
	if got := tmpl.Fragment().FirstChild().Namespace(); got != dom.SVGNamespace {
		t.Errorf("namespace = %q", got)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		strs []string
		code string
	}{
		{"partial attribute", []string{`<div class="a `, `"></div>`}, "E301"},
		{"tag name", []string{`<div-`, `></div>`}, "E301"},
		{"attribute name", []string{`<div data-`, `="x"></div>`}, "E301"},
		{"comment text", []string{`<!-- a `, ` -->`}, "E301"},
		{"placeholder in markup", []string{`<p>` + testPlaceholder + `</p>`, ``}, "E301"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.strs, testPlaceholder, weft.ModeHTML)
			if !errors.HasCode(err, tt.code) {
				t.Errorf("Parse(%q) error = %v, want %s", tt.strs, err, tt.code)
			}
		})
	}
}

func TestSplitMarkup(t *testing.T) {
	strs, names, err := SplitMarkup(`<p class=${ cls }>Hi ${name}, $${literal}</p>`)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"<p class=", ">Hi ", ", ${literal}</p>"}, strs); diff != "" {
		t.Errorf("strs mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"cls", "name"}, names); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}

	if _, _, err := SplitMarkup(`<p>${oops</p>`); !errors.HasCode(err, "E301") {
		t.Errorf("unterminated hole error = %v", err)
	}
	if got := Values([]string{"a", "b"}, map[string]any{"a": 1}); !cmp.Equal(got, []any{1, nil}) {
		t.Errorf("Values = %v", got)
	}
}
