package directive

import (
	"github.com/vango-dev/weft/internal/errors"
	"github.com/vango-dev/weft/pkg/dom"
	"github.com/vango-dev/weft/pkg/part"
	"github.com/vango-dev/weft/pkg/weft"
)

// Sequence is a list of child values with a key per value. Items with the
// same key across renders keep their bindings and DOM, and are moved rather
// than recreated when the order changes.
type Sequence struct {
	Keys   []any
	Values []any
}

// Repeat renders one child per item. key identifies items across renders and
// defaults to the index when nil.
func Repeat[T any](items []T, key func(item T, index int) any, render func(item T, index int) any) *Sequence {
	s := &Sequence{Keys: make([]any, len(items)), Values: make([]any, len(items))}
	for i, item := range items {
		if key != nil {
			s.Keys[i] = key(item, i)
		} else {
			s.Keys[i] = i
		}
		s.Values[i] = render(item, i)
	}
	return s
}

// ToDirective implements weft.Bindable.
func (s *Sequence) ToDirective(*part.Part, weft.DirectiveContext) weft.Directive {
	return weft.Directive{Type: RepeatType, Value: s}
}

// RepeatType binds a *Sequence to a child-node part.
var RepeatType weft.DirectiveType = repeatType{}

type repeatType struct{}

func (repeatType) Name() string { return "Repeat" }

func (t repeatType) ResolveBinding(value any, p *part.Part, _ weft.DirectiveContext) weft.Binding {
	if p.Kind != part.KindChildNode {
		panic(errors.New("E103").WithDetailf("Repeat at %s", part.Describe(p)))
	}
	return &repeatBinding{typ: t, part: p, value: value, entries: sequenceEntries}
}

func sequenceEntries(value any) ([]any, []any) {
	s, _ := value.(*Sequence)
	if s == nil {
		return nil, nil
	}
	return s.Keys, s.Values
}

type repeatItem struct {
	key     any
	part    *part.Part
	slot    weft.Slot
	mounted bool
}

// repeatBinding keeps a child-node part per item, each with its own anchor
// comment in front of the list's anchor.
type repeatBinding struct {
	typ       weft.DirectiveType
	part      *part.Part
	value     any
	entries   func(value any) (keys, values []any)
	items     []*repeatItem
	removed   []*repeatItem
	dirty     bool
	committed bool
}

func (b *repeatBinding) Type() weft.DirectiveType { return b.typ }
func (b *repeatBinding) Value() any               { return b.value }
func (b *repeatBinding) Part() *part.Part         { return b.part }

func (b *repeatBinding) ShouldBind(value any) bool {
	return !weft.SameValue(value, b.value)
}

func (b *repeatBinding) Bind(value any) {
	b.value = value
}

func (b *repeatBinding) Hydrate(tree *weft.HydrationTree, session *weft.UpdateSession) {
	keys, values := b.entries(b.value)
	checkKeys(keys, b.part)
	b.items = make([]*repeatItem, len(keys))
	for i, key := range keys {
		p := part.NewChildNode(nil, b.part.Namespace)
		s := session.ResolveSlot(values[i], p)
		s.Hydrate(tree, session)
		p.Node = tree.PopComment()
		b.items[i] = &repeatItem{key: key, part: p, slot: s, mounted: true}
	}
	b.dirty = true
	b.committed = true
}

// Connect reconciles the items against the current value by key.
func (b *repeatBinding) Connect(session *weft.UpdateSession) {
	keys, values := b.entries(b.value)
	checkKeys(keys, b.part)

	old := make(map[any]*repeatItem, len(b.items))
	for _, item := range b.items {
		old[item.key] = item
	}
	items := make([]*repeatItem, len(keys))
	for i, key := range keys {
		if item, ok := old[key]; ok {
			delete(old, key)
			item.slot.Reconcile(values[i], session)
			items[i] = item
			continue
		}
		p := part.NewChildNode(dom.NewComment(""), b.part.Namespace)
		s := session.ResolveSlot(values[i], p)
		s.Attach(session)
		items[i] = &repeatItem{key: key, part: p, slot: s}
	}
	for _, item := range b.items {
		if _, ok := old[item.key]; ok {
			item.slot.Detach(session)
			b.removed = append(b.removed, item)
		}
	}
	b.items = items
	b.dirty = true
}

func (b *repeatBinding) Disconnect(session *weft.UpdateSession) {
	for _, item := range b.items {
		item.slot.Detach(session)
	}
}

// Commit removes dropped items, then walks the list backwards so every item
// can be placed in front of its already placed successor.
func (b *repeatBinding) Commit() {
	if !b.dirty {
		return
	}
	b.dirty = false
	b.committed = true

	for _, item := range b.removed {
		item.unmount()
	}
	b.removed = nil

	ref := b.part.Node
	parent := ref.ParentNode()
	for i := len(b.items) - 1; i >= 0; i-- {
		item := b.items[i]
		switch {
		case !item.mounted:
			parent.InsertBefore(item.part.Node, ref)
			item.mounted = true
		case item.part.Node.NextSibling() != ref:
			for _, n := range item.part.Nodes() {
				parent.InsertBefore(n, ref)
			}
		}
		item.slot.Commit()
		ref = item.part.StartNode()
	}

	b.part.ClearAnchor()
	if len(b.items) > 0 {
		b.part.AnchorPart = b.items[0].part
	}
}

func (b *repeatBinding) Rollback() {
	if !b.committed {
		return
	}
	b.committed = false
	b.dirty = false
	for _, item := range b.removed {
		item.unmount()
	}
	b.removed = nil
	for _, item := range b.items {
		item.unmount()
	}
	b.part.ClearAnchor()
}

func (item *repeatItem) unmount() {
	if !item.mounted {
		return
	}
	item.slot.Rollback()
	item.part.Node.Remove()
	item.mounted = false
}

func checkKeys(keys []any, p *part.Part) {
	seen := make(map[any]struct{}, len(keys))
	for _, key := range keys {
		if _, ok := seen[key]; ok {
			panic(errors.New("E105").WithDetailf("key %v repeats at %s", key, part.Describe(p)))
		}
		seen[key] = struct{}{}
	}
}
