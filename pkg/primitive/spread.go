package primitive

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vango-dev/weft/internal/errors"
	"github.com/vango-dev/weft/pkg/part"
	"github.com/vango-dev/weft/pkg/weft"
)

// Spread binds a map of names to values onto an element. Names use the
// template attribute prefixes: @event, .property, $live, :ref, :style,
// :class and plain attribute names.
var Spread weft.Primitive = spreadPrimitive{}

type spreadPrimitive struct{}

func (spreadPrimitive) Name() string { return "SpreadPrimitive" }

func (spreadPrimitive) EnsureValue(value any, _ *part.Part) error {
	switch value.(type) {
	case nil, map[string]any:
		return nil
	}
	return fmt.Errorf("spread expects a map[string]any, got %T", value)
}

func (t spreadPrimitive) ResolveBinding(value any, p *part.Part, ctx weft.DirectiveContext) weft.Binding {
	return &spreadBinding{base: newBase(t, value, p), ctx: ctx, bindings: make(map[string]weft.Binding)}
}

// ForName returns the primitive and part a spread or template attribute
// name binds to on node's part.
func ForName(name string, p *part.Part) (weft.Primitive, *part.Part) {
	node := p.Node
	switch {
	case strings.HasPrefix(name, "@"):
		return Event, part.NewEvent(node, name[1:])
	case strings.HasPrefix(name, "."):
		return Property, part.NewProperty(node, name[1:])
	case strings.HasPrefix(name, "$"):
		return Live, part.NewLive(node, name[1:])
	}
	switch strings.ToLower(name) {
	case ":ref":
		return Ref, part.NewAttribute(node, name)
	case ":style":
		return Style, part.NewAttribute(node, name)
	case ":class", ":classlist":
		return ClassList, part.NewAttribute(node, name)
	}
	return Attribute, part.NewAttribute(node, name)
}

type spreadBinding struct {
	base
	ctx      weft.DirectiveContext
	bindings map[string]weft.Binding
	removed  []weft.Binding
}

func (b *spreadBinding) Bind(value any) {
	b.base.Bind(value)
	props, _ := value.(map[string]any)
	for name, sub := range b.bindings {
		if _, ok := props[name]; !ok {
			b.removed = append(b.removed, sub)
			delete(b.bindings, name)
		}
	}
	for _, name := range sortedKeys(props) {
		v := props[name]
		if sub, ok := b.bindings[name]; ok {
			if sub.ShouldBind(v) {
				sub.Bind(v)
			}
			continue
		}
		primitive, p := ForName(name, b.part)
		if err := primitive.EnsureValue(v, p); err != nil {
			panic(errors.New("E101").WithDetailf("%s received %#v", part.Describe(p), v).Wrap(err))
		}
		b.bindings[name] = primitive.ResolveBinding(v, p, b.ctx)
	}
}

func (b *spreadBinding) Connect(session *weft.UpdateSession) {
	if len(b.bindings) == 0 && len(b.removed) == 0 {
		b.Bind(b.value)
	}
	b.dirty = true
	for _, sub := range b.bindings {
		sub.Connect(session)
	}
}

func (b *spreadBinding) Hydrate(tree *weft.HydrationTree, session *weft.UpdateSession) {
	b.Connect(session)
}

func (b *spreadBinding) Disconnect(session *weft.UpdateSession) {
	for _, sub := range b.bindings {
		sub.Disconnect(session)
	}
}

func (b *spreadBinding) Commit() {
	if !b.take() {
		return
	}
	for _, sub := range b.removed {
		sub.Rollback()
	}
	b.removed = nil
	for _, name := range sortedKeys(b.bindings) {
		b.bindings[name].Commit()
	}
}

func (b *spreadBinding) Rollback() {
	if !b.release() {
		return
	}
	for _, sub := range b.removed {
		sub.Rollback()
	}
	b.removed = nil
	for _, sub := range b.bindings {
		sub.Rollback()
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
