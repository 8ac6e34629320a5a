package slot

import (
	"github.com/vango-dev/weft/pkg/part"
	"github.com/vango-dev/weft/pkg/weft"
)

// Keyed is the layout of slots whose binding identity follows the directive
// key: a changed key always yields a different binding, and the binding last
// used for each key is kept for reuse. Keys must be comparable.
var Keyed weft.Layout = keyedLayout{}

type keyedLayout struct{}

func (keyedLayout) Name() string { return "Keyed" }

func (keyedLayout) ResolveSlot(b weft.Binding, d weft.Directive, ctx weft.DirectiveContext) weft.Slot {
	return &KeyedSlot{ctx: ctx, pending: b, key: d.Key}
}

// KeyedSlot is a Flexible slot partitioned by key.
type KeyedSlot struct {
	ctx       weft.DirectiveContext
	pending   weft.Binding
	key       any
	memoized  weft.Binding
	retired   map[any]weft.Binding
	connected bool
	dirty     bool
}

func (s *KeyedSlot) Value() any            { return s.pending.Value() }
func (s *KeyedSlot) Part() *part.Part      { return s.pending.Part() }
func (s *KeyedSlot) Binding() weft.Binding { return s.pending }

// Key returns the key of the current binding.
func (s *KeyedSlot) Key() any { return s.key }

// Retired returns the number of bindings kept for keys not currently bound.
func (s *KeyedSlot) Retired() int { return len(s.retired) }

func (s *KeyedSlot) Reconcile(value any, session *weft.UpdateSession) bool {
	p := s.pending.Part()
	d := session.ResolveDirective(value, p)
	if weft.SameDirectiveType(d.Type, s.pending.Type()) && weft.SameValue(d.Key, s.key) {
		if !s.connected || s.pending.ShouldBind(d.Value) {
			s.pending.Bind(d.Value)
			s.pending.Connect(session)
			s.connected = true
			s.dirty = true
		}
		return s.dirty
	}

	if s.connected {
		s.pending.Disconnect(session)
	}
	if s.retired == nil {
		s.retired = make(map[any]weft.Binding)
	}
	s.retired[s.key] = s.pending

	next, ok := s.retired[d.Key]
	if ok && weft.SameDirectiveType(next.Type(), d.Type) {
		delete(s.retired, d.Key)
		next.Bind(d.Value)
	} else {
		next = d.Type.ResolveBinding(d.Value, p, s.ctx)
	}
	s.pending = next
	s.key = d.Key
	next.Connect(session)
	s.connected = true
	s.dirty = true
	return true
}

func (s *KeyedSlot) Hydrate(tree *weft.HydrationTree, session *weft.UpdateSession) {
	s.pending.Hydrate(tree, session)
	s.connected = true
	s.dirty = true
}

func (s *KeyedSlot) Attach(session *weft.UpdateSession) {
	s.pending.Connect(session)
	s.connected = true
	s.dirty = true
}

func (s *KeyedSlot) Detach(session *weft.UpdateSession) {
	s.pending.Disconnect(session)
	s.connected = false
	s.dirty = false
}

func (s *KeyedSlot) Commit() {
	if !s.dirty {
		return
	}
	s.dirty = false
	if s.memoized != nil && s.memoized != s.pending {
		undebug(s.memoized)
		s.memoized.Rollback()
	}
	s.pending.Commit()
	if s.memoized != s.pending {
		debug(s.pending)
	}
	s.memoized = s.pending
}

// Rollback removes the committed binding. Once the slot is detached its
// owner is gone, and the retired bindings are dropped with it; they were
// rolled back when they were swapped out.
func (s *KeyedSlot) Rollback() {
	if !s.connected {
		s.retired = nil
	}
	if s.memoized == nil {
		return
	}
	undebug(s.memoized)
	s.memoized.Rollback()
	s.memoized = nil
	s.dirty = false
}
