package template

import (
	"github.com/vango-dev/weft/internal/errors"
	"github.com/vango-dev/weft/pkg/dom"
	"github.com/vango-dev/weft/pkg/part"
	"github.com/vango-dev/weft/pkg/weft"
)

// Renderer is a template that can instantiate or hydrate a Block.
type Renderer interface {
	weft.Template
	Render(binds []any, p *part.Part, session *weft.UpdateSession) *Block
	Hydrate(binds []any, p *part.Part, tree *weft.HydrationTree, session *weft.UpdateSession) *Block
}

// Block is one instance of a template: its top-level nodes and a slot per
// hole, in bind order.
type Block struct {
	ChildNodes []*dom.Node
	Slots      []weft.Slot

	// first is the child-node part anchored at ChildNodes[0], if any.
	first *part.Part
}

// startAt points p's range at the first node of the block.
func (b *Block) startAt(p *part.Part) {
	p.ClearAnchor()
	switch {
	case b.first != nil:
		p.AnchorPart = b.first
	case len(b.ChildNodes) > 0:
		p.AnchorNode = b.ChildNodes[0]
	}
}

func resolveBinding(t Renderer, value any, p *part.Part) weft.Binding {
	if p.Kind != part.KindChildNode {
		panic(errors.New("E103").WithDetailf("%s at %s", t.Name(), part.Describe(p)))
	}
	binds, _ := value.([]any)
	return &Binding{template: t, binds: binds, part: p}
}

// Binding mounts a template Block before a child-node part.
type Binding struct {
	template Renderer
	binds    []any
	part     *part.Part
	block    *Block
	mounted  bool
	dirty    bool
}

func (b *Binding) Type() weft.DirectiveType { return b.template }
func (b *Binding) Value() any               { return b.binds }
func (b *Binding) Part() *part.Part         { return b.part }

// Block returns the mounted block, or nil before the first connect.
func (b *Binding) Block() *Block { return b.block }

func (b *Binding) ShouldBind(value any) bool {
	binds, _ := value.([]any)
	return b.block == nil || !weft.SameValues(binds, b.binds)
}

func (b *Binding) Bind(value any) {
	b.binds, _ = value.([]any)
}

func (b *Binding) Hydrate(tree *weft.HydrationTree, session *weft.UpdateSession) {
	b.block = b.template.Hydrate(b.binds, b.part, tree, session)
	b.mounted = true
	b.dirty = true
}

func (b *Binding) Connect(session *weft.UpdateSession) {
	b.dirty = true
	if b.block == nil {
		b.block = b.template.Render(b.binds, b.part, session)
		return
	}
	for i, s := range b.block.Slots {
		s.Reconcile(b.binds[i], session)
	}
}

func (b *Binding) Disconnect(session *weft.UpdateSession) {
	if b.block == nil {
		return
	}
	for _, s := range b.block.Slots {
		s.Detach(session)
	}
}

// Commit mounts the block if needed, then commits its slots. Nested
// child-node slots insert their content before anchors that must already be
// in place.
func (b *Binding) Commit() {
	if !b.dirty || b.block == nil {
		return
	}
	b.dirty = false
	if !b.mounted {
		anchor := b.part.Node
		parent := anchor.ParentNode()
		for _, n := range b.block.ChildNodes {
			parent.InsertBefore(n, anchor)
		}
		b.mounted = true
	}
	for _, s := range b.block.Slots {
		s.Commit()
	}
	b.block.startAt(b.part)
}

// Rollback removes the block's top-level nodes. Only slots bound to those
// nodes are rolled back; deeper slots go away with their elements.
func (b *Binding) Rollback() {
	if !b.mounted {
		return
	}
	b.mounted = false
	b.dirty = false
	top := make(map[*dom.Node]bool, len(b.block.ChildNodes))
	for _, n := range b.block.ChildNodes {
		top[n] = true
	}
	for _, s := range b.block.Slots {
		if top[s.Part().Node] {
			s.Rollback()
		}
	}
	for _, n := range b.block.ChildNodes {
		n.Remove()
	}
	b.part.ClearAnchor()
}

// childNamespace returns the namespace content under parent is created in.
func childNamespace(parent *dom.Node, fallback string) string {
	if parent == nil || parent.NodeType() != dom.ElementNode {
		return fallback
	}
	if parent.LocalName() == "foreignObject" {
		return dom.HTMLNamespace
	}
	return parent.Namespace()
}
