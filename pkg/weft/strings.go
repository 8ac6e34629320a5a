package weft

import (
	"strconv"
	"strings"
	"sync"

	"github.com/vango-dev/weft/pkg/part"
)

// TemplateStrings is the static part of a template literal: len(binds)+1
// strings. The pointer is the template's cache key, so a call site should
// create its TemplateStrings once and reuse it.
type TemplateStrings struct {
	parts []string
}

// Strings creates a new TemplateStrings.
func Strings(parts ...string) *TemplateStrings {
	return &TemplateStrings{parts: append([]string(nil), parts...)}
}

// Parts returns the static strings. Callers must not modify the result.
func (t *TemplateStrings) Parts() []string {
	return t.parts
}

// Arity returns the number of holes.
func (t *TemplateStrings) Arity() int {
	if len(t.parts) == 0 {
		return 0
	}
	return len(t.parts) - 1
}

// Interner returns a single TemplateStrings per distinct content, for callers
// that build templates from data rather than from a fixed call site.
type Interner struct {
	mu    sync.Mutex
	table map[string]*TemplateStrings
}

// NewInterner creates an empty Interner.
func NewInterner() *Interner {
	return &Interner{table: make(map[string]*TemplateStrings)}
}

// Strings returns the interned TemplateStrings for parts.
func (i *Interner) Strings(parts ...string) *TemplateStrings {
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(strconv.Itoa(len(p)))
		b.WriteByte(':')
		b.WriteString(p)
	}
	key := b.String()

	i.mu.Lock()
	defer i.mu.Unlock()
	if t, ok := i.table[key]; ok {
		return t
	}
	t := Strings(parts...)
	i.table[key] = t
	return t
}

// Len returns the number of interned entries.
func (i *Interner) Len() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.table)
}

// Literal is a template and its values, resolved against whichever runtime
// binds it. Components use RenderSession.HTML instead; Literal serves code
// that has no session, such as a value passed to CreateRoot.
type Literal struct {
	Strings *TemplateStrings
	Binds   []any
	Mode    TemplateMode
}

// HTML returns an HTML template literal.
func HTML(strs *TemplateStrings, binds ...any) Literal {
	return Literal{Strings: strs, Binds: binds, Mode: ModeHTML}
}

// ToDirective implements Bindable.
func (l Literal) ToDirective(_ *part.Part, ctx DirectiveContext) Directive {
	return templateDirective(ctx, l.Strings, l.Binds, l.Mode)
}
