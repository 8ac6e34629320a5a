package primitive

import (
	"github.com/vango-dev/weft/pkg/part"
	"github.com/vango-dev/weft/pkg/weft"
)

// Property assigns any value to an element property.
var Property weft.Primitive = propertyPrimitive{}

// Live assigns a property only when the element's current value differs,
// so user edits to inputs are overwritten on every commit rather than only
// when the bound value changes.
var Live weft.Primitive = livePrimitive{}

type propertyPrimitive struct{}

func (propertyPrimitive) Name() string                      { return "PropertyPrimitive" }
func (propertyPrimitive) EnsureValue(any, *part.Part) error { return nil }

func (t propertyPrimitive) ResolveBinding(value any, p *part.Part, _ weft.DirectiveContext) weft.Binding {
	return &propertyBinding{base: newBase(t, value, p)}
}

type propertyBinding struct {
	base
}

func (b *propertyBinding) Commit() {
	if b.take() {
		b.part.Node.SetProperty(b.part.Name, b.value)
	}
}

func (b *propertyBinding) Rollback() {
	if b.release() {
		b.part.Node.DeleteProperty(b.part.Name)
	}
}

type livePrimitive struct{}

func (livePrimitive) Name() string                      { return "LivePrimitive" }
func (livePrimitive) EnsureValue(any, *part.Part) error { return nil }

func (t livePrimitive) ResolveBinding(value any, p *part.Part, _ weft.DirectiveContext) weft.Binding {
	return &liveBinding{propertyBinding{base: newBase(t, value, p)}}
}

type liveBinding struct {
	propertyBinding
}

// ShouldBind always reports true: the DOM value is compared at commit.
func (b *liveBinding) ShouldBind(any) bool { return true }

func (b *liveBinding) Commit() {
	if !b.take() {
		return
	}
	if current, ok := b.part.Node.Property(b.part.Name); ok && weft.SameValue(current, b.value) {
		return
	}
	b.part.Node.SetProperty(b.part.Name, b.value)
}
