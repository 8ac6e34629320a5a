package errors

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "directive error",
			code:    "E102",
			wantMsg: "Directive type changed in a strict slot",
			wantCat: CategoryDirective,
		},
		{
			name:    "hook error",
			code:    "E201",
			wantMsg: "Hook order changed between renders",
			wantCat: CategoryHook,
		},
		{
			name:    "hydration error",
			code:    "E401",
			wantMsg: "Hydration mismatch: node differs",
			wantCat: CategoryHydration,
		},
		{
			name:    "unknown error code",
			code:    "E999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestWeftError_Error(t *testing.T) {
	err := New("E101").WithDetail(`<input .value=[[HERE]]> received []int{1}`)
	want := "E101: Value is not valid for this primitive: <input .value=[[HERE]]> received []int{1}"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	plain := &WeftError{Message: "test error"}
	if plain.Error() != "test error" {
		t.Errorf("Error() = %q, want %q", plain.Error(), "test error")
	}
}

func TestWeftError_IsAndHasCode(t *testing.T) {
	inner := New("E201").WithDetail("expected Memo, got Effect")
	outer := New("E501").Wrap(inner)

	if !stderrors.Is(outer, New("E201")) {
		t.Error("errors.Is should match wrapped code")
	}
	if !HasCode(outer, "E201") || !HasCode(outer, "E501") {
		t.Error("HasCode should see both codes")
	}
	if HasCode(outer, "E102") {
		t.Error("HasCode matched an absent code")
	}
}

func TestWeftError_WithLocation(t *testing.T) {
	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "list.html")
	content := "<ul>\n  <li>${label}</li>\n  <li class=\"a ${x}\"></li>\n</ul>\n"
	if err := os.WriteFile(tmpFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	err := New("E301").WithLocation(tmpFile, 3, 13)
	if err.Location == nil || err.Location.Line != 3 || err.Location.Column != 13 {
		t.Fatalf("Location = %+v", err.Location)
	}
	if len(err.Context) == 0 {
		t.Error("Context should not be empty")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "E601") != nil {
		t.Error("FromError(nil, ...) should return nil")
	}

	we := New("E101")
	if FromError(we, "E601") != we {
		t.Error("FromError should return WeftError as-is")
	}

	std := stderrors.New("host failed")
	result := FromError(std, "E601")
	if result.Wrapped != std || result.Code != "E601" {
		t.Errorf("FromError = %+v", result)
	}
}

func TestLocation_String(t *testing.T) {
	tests := []struct {
		name string
		loc  *Location
		want string
	}{
		{name: "nil location", loc: nil, want: ""},
		{name: "with column", loc: &Location{File: "a.html", Line: 10, Column: 5}, want: "a.html:10:5"},
		{name: "without column", loc: &Location{File: "a.html", Line: 10}, want: "a.html:10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.loc.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("E301").
		WithDetail("partial attribute interpolation is not supported").
		WithSuggestion("Bind the whole attribute value")

	formatted := err.Format()
	for _, want := range []string{"E301", "Invalid template markup", "partial attribute", "Hint:", "Learn more:"} {
		if !strings.Contains(formatted, want) {
			t.Errorf("Format should contain %q:\n%s", want, formatted)
		}
	}
}

func TestFormatCompactAndJSON(t *testing.T) {
	err := New("E301").WithLocation("page.html", 10, 5)
	if got, want := err.FormatCompact(), "page.html:10:5: E301: Invalid template markup"; got != want {
		t.Errorf("FormatCompact() = %q, want %q", got, want)
	}

	json := err.FormatJSON()
	for _, want := range []string{`"code":"E301"`, `"category":"template"`, `"location":`} {
		if !strings.Contains(json, want) {
			t.Errorf("JSON should contain %s: %s", want, json)
		}
	}
}

func TestFprintCauses(t *testing.T) {
	DisableColors()
	defer EnableColors()

	inner := New("E301").Wrap(stderrors.New("unexpected EOF"))
	err := New("E501").WithDetail("Card").Wrap(inner)

	var b strings.Builder
	Fprint(&b, fmtWrap{err})
	out := b.String()
	for _, want := range []string{"ERROR E501: ", "[render]", "Caused by:", "    E301: Invalid template markup", "    unexpected EOF"} {
		if !strings.Contains(out, want) {
			t.Errorf("Fprint should contain %q:\n%s", want, out)
		}
	}

	b.Reset()
	Fprint(&b, stderrors.New("plain"))
	if got := b.String(); got != "\nERROR plain\n\n" {
		t.Errorf("Fprint plain = %q", got)
	}
}

// fmtWrap hides a WeftError behind another error so Fprint must unwrap it.
type fmtWrap struct{ err error }

func (w fmtWrap) Error() string { return "wrapped: " + w.err.Error() }
func (w fmtWrap) Unwrap() error { return w.err }

func TestRegistry(t *testing.T) {
	if len(GetAllCodes()) == 0 {
		t.Fatal("GetAllCodes() should return codes")
	}
	if _, ok := GetTemplate("E999"); ok {
		t.Fatal("E999 should not exist")
	}

	Register("E999", ErrorTemplate{Category: CategoryRender, Message: "Custom test error"})
	defer delete(registry, "E999")

	if err := New("E999"); err.Message != "Custom test error" {
		t.Errorf("Message = %q", err.Message)
	}
}

func TestWrapText(t *testing.T) {
	if got := wrapText("short text", 100); len(got) != 1 {
		t.Errorf("wrapText short text: got %v", got)
	}
	if got := wrapText("this is a longer text that should be wrapped", 20); len(got) != 3 {
		t.Errorf("wrapText long text: expected 3 lines, got %v", got)
	}
	if got := wrapText("", 10); len(got) != 0 {
		t.Errorf("wrapText empty: got %v", got)
	}
}

func TestColorFunctions(t *testing.T) {
	EnableColors()
	if !strings.Contains(red("test"), "\033[31m") {
		t.Error("red should contain ANSI code when colors enabled")
	}
	DisableColors()
	if strings.Contains(red("test"), "\033[") {
		t.Error("red should not contain ANSI code when colors disabled")
	}
	EnableColors()
}
