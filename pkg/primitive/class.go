package primitive

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vango-dev/weft/pkg/part"
	"github.com/vango-dev/weft/pkg/weft"
)

// ClassList toggles class tokens. It accepts a space separated string, a
// []string or a map[string]bool, and only touches tokens it added itself.
var ClassList weft.Primitive = classListPrimitive{}

type classListPrimitive struct{}

func (classListPrimitive) Name() string { return "ClassListPrimitive" }

func (classListPrimitive) EnsureValue(value any, _ *part.Part) error {
	switch value.(type) {
	case nil, string, []string, map[string]bool:
		return nil
	}
	return fmt.Errorf("class list expects a string, []string or map[string]bool, got %T", value)
}

func (t classListPrimitive) ResolveBinding(value any, p *part.Part, _ weft.DirectiveContext) weft.Binding {
	return &classListBinding{base: newBase(t, value, p)}
}

type classListBinding struct {
	base
	applied []string
}

func classTokens(value any) []string {
	var tokens []string
	switch v := value.(type) {
	case string:
		tokens = strings.Fields(v)
	case []string:
		for _, s := range v {
			tokens = append(tokens, strings.Fields(s)...)
		}
	case map[string]bool:
		for k, on := range v {
			if on {
				tokens = append(tokens, strings.Fields(k)...)
			}
		}
		sort.Strings(tokens)
	}
	return tokens
}

func (b *classListBinding) Commit() {
	if !b.take() {
		return
	}
	list := b.part.Node.ClassList()
	next := classTokens(b.value)
	var stale []string
	for _, token := range b.applied {
		if !contains(next, token) {
			stale = append(stale, token)
		}
	}
	list.Remove(stale...)
	list.Add(next...)
	b.applied = next
}

func (b *classListBinding) Rollback() {
	if b.release() {
		b.part.Node.ClassList().Remove(b.applied...)
		b.applied = nil
	}
}

func contains(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}
