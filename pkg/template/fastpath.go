package template

import (
	"github.com/vango-dev/weft/pkg/dom"
	"github.com/vango-dev/weft/pkg/part"
	"github.com/vango-dev/weft/pkg/weft"
)

var (
	// Empty renders nothing.
	Empty Renderer = emptyTemplate{}

	// ChildNode renders its single value as child content.
	ChildNode Renderer = childNodeTemplate{}
)

type emptyTemplate struct{}

func (emptyTemplate) Name() string { return "EmptyTemplate" }
func (emptyTemplate) Arity() int   { return 0 }

func (t emptyTemplate) ResolveBinding(value any, p *part.Part, _ weft.DirectiveContext) weft.Binding {
	return resolveBinding(t, value, p)
}

func (emptyTemplate) Render([]any, *part.Part, *weft.UpdateSession) *Block {
	return &Block{}
}

func (emptyTemplate) Hydrate([]any, *part.Part, *weft.HydrationTree, *weft.UpdateSession) *Block {
	return &Block{}
}

type childNodeTemplate struct{}

func (childNodeTemplate) Name() string { return "ChildNodeTemplate" }
func (childNodeTemplate) Arity() int   { return 1 }

func (t childNodeTemplate) ResolveBinding(value any, p *part.Part, _ weft.DirectiveContext) weft.Binding {
	return resolveBinding(t, value, p)
}

func (childNodeTemplate) Render(binds []any, p *part.Part, session *weft.UpdateSession) *Block {
	anchor := dom.NewComment("")
	hp := part.NewChildNode(anchor, p.Namespace)
	s := session.ResolveSlot(binds[0], hp)
	s.Attach(session)
	return &Block{ChildNodes: []*dom.Node{anchor}, Slots: []weft.Slot{s}, first: hp}
}

func (childNodeTemplate) Hydrate(binds []any, p *part.Part, tree *weft.HydrationTree, session *weft.UpdateSession) *Block {
	hp := part.NewChildNode(nil, p.Namespace)
	s := session.ResolveSlot(binds[0], hp)
	s.Hydrate(tree, session)
	hp.Node = tree.PopComment()
	return &Block{ChildNodes: []*dom.Node{hp.Node}, Slots: []weft.Slot{s}, first: hp}
}

// TextTemplate renders one text value between static text, as a template
// inside <textarea> does.
type TextTemplate struct {
	Preceding string
	Following string
}

func (t *TextTemplate) Name() string { return "TextTemplate" }
func (t *TextTemplate) Arity() int   { return 1 }

func (t *TextTemplate) ResolveBinding(value any, p *part.Part, _ weft.DirectiveContext) weft.Binding {
	return resolveBinding(t, value, p)
}

func (t *TextTemplate) Render(binds []any, p *part.Part, session *weft.UpdateSession) *Block {
	text := dom.NewText("")
	s := session.ResolveSlot(binds[0], part.NewText(text, t.Preceding, t.Following))
	s.Attach(session)
	return &Block{ChildNodes: []*dom.Node{text}, Slots: []weft.Slot{s}}
}

func (t *TextTemplate) Hydrate(binds []any, p *part.Part, tree *weft.HydrationTree, session *weft.UpdateSession) *Block {
	hp := part.NewText(nil, t.Preceding, t.Following)
	s := session.ResolveSlot(binds[0], hp)
	s.Hydrate(tree, session)
	return &Block{ChildNodes: []*dom.Node{hp.Node}, Slots: []weft.Slot{s}}
}
