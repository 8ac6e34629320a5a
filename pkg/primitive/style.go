package primitive

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/vango-dev/weft/pkg/part"
	"github.com/vango-dev/weft/pkg/weft"
)

// Style sets inline style properties from a map[string]string. Keys may be
// CSS names or camelCase names; custom properties (--x) are kept verbatim.
var Style weft.Primitive = stylePrimitive{}

type stylePrimitive struct{}

func (stylePrimitive) Name() string { return "StylePrimitive" }

func (stylePrimitive) EnsureValue(value any, _ *part.Part) error {
	switch value.(type) {
	case nil, map[string]string:
		return nil
	}
	return fmt.Errorf("style expects a map[string]string, got %T", value)
}

func (t stylePrimitive) ResolveBinding(value any, p *part.Part, _ weft.DirectiveContext) weft.Binding {
	return &styleBinding{base: newBase(t, value, p)}
}

type styleBinding struct {
	base
	applied []string
}

func (b *styleBinding) Commit() {
	if !b.take() {
		return
	}
	style := b.part.Node.Style()
	props, _ := b.value.(map[string]string)

	names := make([]string, 0, len(props))
	for k := range props {
		names = append(names, k)
	}
	sort.Strings(names)

	next := make([]string, 0, len(names))
	for _, k := range names {
		name := CSSPropertyName(k)
		style.SetProperty(name, props[k])
		next = append(next, name)
	}
	for _, name := range b.applied {
		if !contains(next, name) {
			style.RemoveProperty(name)
		}
	}
	b.applied = next
}

func (b *styleBinding) Rollback() {
	if !b.release() {
		return
	}
	style := b.part.Node.Style()
	for _, name := range b.applied {
		style.RemoveProperty(name)
	}
	b.applied = nil
}

// CSSPropertyName converts a camelCase style key to its CSS name.
func CSSPropertyName(key string) string {
	if strings.HasPrefix(key, "--") || strings.ContainsRune(key, '-') {
		return key
	}
	var b strings.Builder
	for _, r := range key {
		if unicode.IsUpper(r) {
			b.WriteByte('-')
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
