package primitive

import (
	"fmt"

	"github.com/vango-dev/weft/pkg/dom"
	"github.com/vango-dev/weft/pkg/part"
	"github.com/vango-dev/weft/pkg/weft"
)

// Ref hands the element to a *weft.Ref[*dom.Node] or to a callback that may
// return a cleanup function.
var Ref weft.Primitive = refPrimitive{}

type refPrimitive struct{}

func (refPrimitive) Name() string { return "RefPrimitive" }

func (refPrimitive) EnsureValue(value any, _ *part.Part) error {
	switch value.(type) {
	case nil, *weft.Ref[*dom.Node], func(*dom.Node) func():
		return nil
	}
	return fmt.Errorf("ref expects *weft.Ref[*dom.Node] or func(*dom.Node) func(), got %T", value)
}

func (t refPrimitive) ResolveBinding(value any, p *part.Part, _ weft.DirectiveContext) weft.Binding {
	return &refBinding{base: newBase(t, value, p)}
}

type refBinding struct {
	base
	current any
	cleanup func()
}

// ShouldBind compares ref objects by identity. A callback is kept from the
// first render, since closures cannot be compared.
func (b *refBinding) ShouldBind(value any) bool {
	if _, ok := value.(func(*dom.Node) func()); ok {
		_, had := b.value.(func(*dom.Node) func())
		return !had
	}
	return !weft.SameValue(value, b.value)
}

func (b *refBinding) Commit() {
	if !b.take() {
		return
	}
	if b.current != nil && weft.SameValue(b.current, b.value) {
		return
	}
	b.detach()
	switch ref := b.value.(type) {
	case *weft.Ref[*dom.Node]:
		ref.Current = b.part.Node
	case func(*dom.Node) func():
		b.cleanup = ref(b.part.Node)
	}
	b.current = b.value
}

func (b *refBinding) detach() {
	switch ref := b.current.(type) {
	case *weft.Ref[*dom.Node]:
		if ref.Current == b.part.Node {
			ref.Current = nil
		}
	case func(*dom.Node) func():
		if b.cleanup != nil {
			b.cleanup()
		}
	}
	b.current = nil
	b.cleanup = nil
}

func (b *refBinding) Rollback() {
	if b.release() {
		b.detach()
	}
}
