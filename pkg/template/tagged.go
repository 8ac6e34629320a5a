package template

import (
	"github.com/vango-dev/weft/pkg/dom"
	"github.com/vango-dev/weft/pkg/part"
	"github.com/vango-dev/weft/pkg/weft"
)

// hole is one bind site of a parsed template.
type hole struct {
	kind part.Kind

	// index is the pre-order position of the hole's node in the fragment.
	index int
	// bind is the position of the hole's value in binds.
	bind int

	name      string
	namespace string
	preceding string
	following string
}

func (h hole) newPart(node *dom.Node) *part.Part {
	switch h.kind {
	case part.KindAttribute:
		return part.NewAttribute(node, h.name)
	case part.KindEvent:
		return part.NewEvent(node, h.name)
	case part.KindProperty:
		return part.NewProperty(node, h.name)
	case part.KindLive:
		return part.NewLive(node, h.name)
	case part.KindElement:
		return part.NewElement(node)
	case part.KindText:
		return part.NewText(node, h.preceding, h.following)
	default:
		return part.NewChildNode(node, h.namespace)
	}
}

// HoleInfo describes a hole for inspection tools.
type HoleInfo struct {
	Kind  part.Kind
	Name  string
	Index int
}

// TaggedTemplate is a parsed template: a static fragment plus the holes bound
// into each clone of it.
type TaggedTemplate struct {
	mode     weft.TemplateMode
	fragment *dom.Node
	holes    []hole
	arity    int
}

func (t *TaggedTemplate) Name() string { return "TaggedTemplate" }
func (t *TaggedTemplate) Arity() int   { return t.arity }

// Mode returns the mode the template was parsed in.
func (t *TaggedTemplate) Mode() weft.TemplateMode { return t.mode }

// Fragment returns the static fragment. Callers must not modify it.
func (t *TaggedTemplate) Fragment() *dom.Node { return t.fragment }

// Holes lists the template's holes in bind order.
func (t *TaggedTemplate) Holes() []HoleInfo {
	infos := make([]HoleInfo, len(t.holes))
	for i, h := range t.holes {
		infos[i] = HoleInfo{Kind: h.kind, Name: h.name, Index: h.index}
	}
	return infos
}

func (t *TaggedTemplate) ResolveBinding(value any, p *part.Part, _ weft.DirectiveContext) weft.Binding {
	return resolveBinding(t, value, p)
}

// Render clones the fragment and attaches a slot to every hole.
func (t *TaggedTemplate) Render(binds []any, p *part.Part, session *weft.UpdateSession) *Block {
	fragment := t.fragment.CloneNode(true)
	var nodes []*dom.Node
	preorder(fragment, func(n *dom.Node) {
		nodes = append(nodes, n)
	})

	block := &Block{ChildNodes: fragment.ChildNodes(), Slots: make([]weft.Slot, len(t.holes))}
	for i, h := range t.holes {
		hp := h.newPart(nodes[h.index])
		s := session.ResolveSlot(binds[h.bind], hp)
		s.Attach(session)
		block.Slots[i] = s
		if hp.Kind == part.KindChildNode && len(block.ChildNodes) > 0 && hp.Node == block.ChildNodes[0] {
			block.first = hp
		}
	}
	return block
}

// Hydrate claims the template's nodes from tree instead of cloning them.
func (t *TaggedTemplate) Hydrate(binds []any, p *part.Part, tree *weft.HydrationTree, session *weft.UpdateSession) *Block {
	h := &hydrator{
		template: t,
		binds:    binds,
		tree:     tree,
		session:  session,
		byIndex:  make(map[int][]int, len(t.holes)),
		block:    &Block{Slots: make([]weft.Slot, len(t.holes))},
	}
	for i, hl := range t.holes {
		h.byIndex[hl.index] = append(h.byIndex[hl.index], i)
	}
	for c := t.fragment.FirstChild(); c != nil; c = c.NextSibling() {
		n, hp := h.visit(c)
		if len(h.block.ChildNodes) == 0 && hp != nil && hp.Kind == part.KindChildNode {
			h.block.first = hp
		}
		h.block.ChildNodes = append(h.block.ChildNodes, n)
	}
	return h.block
}

type hydrator struct {
	template *TaggedTemplate
	binds    []any
	tree     *weft.HydrationTree
	session  *weft.UpdateSession
	byIndex  map[int][]int
	index    int
	block    *Block
}

func (h *hydrator) slot(i int, p *part.Part) weft.Slot {
	s := h.session.ResolveSlot(h.binds[h.template.holes[i].bind], p)
	s.Hydrate(h.tree, h.session)
	h.block.Slots[i] = s
	return s
}

// visit claims the live node matching the static node n and returns it,
// along with the node's hole part when it has one.
func (h *hydrator) visit(n *dom.Node) (*dom.Node, *part.Part) {
	holes := h.byIndex[h.index]
	h.index++

	switch n.NodeType() {
	case dom.ElementNode:
		el := h.tree.PopElement(n.LocalName())
		for _, i := range holes {
			h.slot(i, h.template.holes[i].newPart(el))
		}
		h.tree.Enter(el)
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			h.visit(c)
		}
		h.tree.Leave()
		return el, nil

	case dom.TextNode:
		if len(holes) == 0 {
			return h.tree.PopText(n.Data(), true), nil
		}
		hp := h.template.holes[holes[0]].newPart(nil)
		h.slot(holes[0], hp)
		return hp.Node, hp

	case dom.CommentNode:
		if len(holes) == 0 {
			return h.tree.PopComment(), nil
		}
		hp := h.template.holes[holes[0]].newPart(nil)
		h.slot(holes[0], hp)
		hp.Node = h.tree.PopComment()
		return hp.Node, hp
	}
	return nil, nil
}
