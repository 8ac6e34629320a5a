package primitive

import (
	"github.com/vango-dev/weft/pkg/part"
	"github.com/vango-dev/weft/pkg/weft"
)

// Attribute binds text values to an attribute. true sets the attribute
// empty; nil and false remove it.
var Attribute weft.Primitive = attributePrimitive{}

type attributePrimitive struct{}

func (attributePrimitive) Name() string { return "AttributePrimitive" }

func (attributePrimitive) EnsureValue(value any, _ *part.Part) error {
	return expectText("attribute", value)
}

func (t attributePrimitive) ResolveBinding(value any, p *part.Part, _ weft.DirectiveContext) weft.Binding {
	return &attributeBinding{base: newBase(t, value, p)}
}

type attributeBinding struct {
	base
}

func (b *attributeBinding) Commit() {
	if !b.take() {
		return
	}
	node := b.part.Node
	switch v := b.value.(type) {
	case nil:
		node.RemoveAttribute(b.part.Name)
	case bool:
		node.ToggleAttribute(b.part.Name, v)
	default:
		node.SetAttribute(b.part.Name, ToString(v))
	}
}

func (b *attributeBinding) Rollback() {
	if b.release() {
		b.part.Node.RemoveAttribute(b.part.Name)
	}
}
