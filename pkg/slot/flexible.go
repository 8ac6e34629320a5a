package slot

import (
	"github.com/vango-dev/weft/pkg/part"
	"github.com/vango-dev/weft/pkg/weft"
)

// Flexible is the layout of slots that accept any directive type over time.
var Flexible weft.Layout = flexibleLayout{}

type flexibleLayout struct{}

func (flexibleLayout) Name() string { return "Flexible" }

func (flexibleLayout) ResolveSlot(b weft.Binding, _ weft.Directive, ctx weft.DirectiveContext) weft.Slot {
	return &FlexibleSlot{pending: b, ctx: ctx}
}

// FlexibleSlot swaps bindings when the directive type changes. The binding
// it swapped out is kept, so switching back to its type (A, B, A) reuses the
// old binding and the DOM it owns instead of rebuilding it.
type FlexibleSlot struct {
	ctx       weft.DirectiveContext
	pending   weft.Binding
	memoized  weft.Binding
	reserved  weft.Binding
	connected bool
	dirty     bool
}

func (s *FlexibleSlot) Value() any            { return s.pending.Value() }
func (s *FlexibleSlot) Part() *part.Part      { return s.pending.Part() }
func (s *FlexibleSlot) Binding() weft.Binding { return s.pending }

func (s *FlexibleSlot) Reconcile(value any, session *weft.UpdateSession) bool {
	p := s.pending.Part()
	d := session.ResolveDirective(value, p)
	if weft.SameDirectiveType(d.Type, s.pending.Type()) {
		if !s.connected || s.pending.ShouldBind(d.Value) {
			s.pending.Bind(d.Value)
			s.pending.Connect(session)
			s.connected = true
			s.dirty = true
		}
		return s.dirty
	}

	old := s.pending
	if s.connected {
		old.Disconnect(session)
	}
	var next weft.Binding
	if s.reserved != nil && weft.SameDirectiveType(s.reserved.Type(), d.Type) {
		next = s.reserved
		next.Bind(d.Value)
	} else {
		next = d.Type.ResolveBinding(d.Value, p, s.ctx)
	}
	s.reserved = old
	s.pending = next
	next.Connect(session)
	s.connected = true
	s.dirty = true
	return true
}

func (s *FlexibleSlot) Hydrate(tree *weft.HydrationTree, session *weft.UpdateSession) {
	s.pending.Hydrate(tree, session)
	s.connected = true
	s.dirty = true
}

func (s *FlexibleSlot) Attach(session *weft.UpdateSession) {
	s.pending.Connect(session)
	s.connected = true
	s.dirty = true
}

func (s *FlexibleSlot) Detach(session *weft.UpdateSession) {
	s.pending.Disconnect(session)
	s.connected = false
	s.dirty = false
}

func (s *FlexibleSlot) Commit() {
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

func (s *FlexibleSlot) Rollback() {
	if !s.connected {
		s.reserved = nil
	}
	if s.memoized == nil {
		return
	}
	undebug(s.memoized)
	s.memoized.Rollback()
	s.memoized = nil
	s.dirty = false
}
