package primitive

import (
	"github.com/vango-dev/weft/pkg/dom"
	"github.com/vango-dev/weft/pkg/part"
	"github.com/vango-dev/weft/pkg/weft"
)

// Text writes a text value into a text part, between the part's preceding
// and following static text.
var Text weft.Primitive = textPrimitive{}

// ChildText renders a text value as a text node in front of a child-node
// part's anchor.
var ChildText weft.Primitive = childTextPrimitive{}

type textPrimitive struct{}

func (textPrimitive) Name() string { return "TextPrimitive" }

func (textPrimitive) EnsureValue(value any, _ *part.Part) error {
	return expectText("text", value)
}

func (t textPrimitive) ResolveBinding(value any, p *part.Part, _ weft.DirectiveContext) weft.Binding {
	return &textBinding{base: newBase(t, value, p)}
}

type textBinding struct {
	base
}

func (b *textBinding) data() string {
	return b.part.PrecedingText + ToString(b.value) + b.part.FollowingText
}

func (b *textBinding) Hydrate(tree *weft.HydrationTree, _ *weft.UpdateSession) {
	b.part.Node = tree.PopText(b.data(), false)
	b.dirty = true
}

func (b *textBinding) Commit() {
	if b.take() {
		b.part.Node.SetData(b.data())
	}
}

func (b *textBinding) Rollback() {
	if b.release() {
		b.part.Node.SetData("")
	}
}

type childTextPrimitive struct{}

func (childTextPrimitive) Name() string { return "ChildTextPrimitive" }

func (childTextPrimitive) EnsureValue(value any, _ *part.Part) error {
	return expectText("child text", value)
}

func (t childTextPrimitive) ResolveBinding(value any, p *part.Part, _ weft.DirectiveContext) weft.Binding {
	return &childTextBinding{base: newBase(t, value, p)}
}

type childTextBinding struct {
	base
	node *dom.Node
}

func (b *childTextBinding) Hydrate(tree *weft.HydrationTree, _ *weft.UpdateSession) {
	b.node = tree.PopText(ToString(b.value), false)
	b.dirty = true
}

func (b *childTextBinding) Commit() {
	if !b.take() {
		return
	}
	data := ToString(b.value)
	if b.node == nil {
		b.node = dom.NewText(data)
	} else {
		b.node.SetData(data)
	}
	if b.node.ParentNode() == nil {
		b.part.Node.ParentNode().InsertBefore(b.node, b.part.Node)
	}
	b.part.ClearAnchor()
	b.part.AnchorNode = b.node
}

func (b *childTextBinding) Rollback() {
	if !b.release() {
		return
	}
	if b.node != nil {
		b.node.Remove()
		b.node = nil
	}
	b.part.ClearAnchor()
}
