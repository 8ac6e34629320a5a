package slot

import (
	"github.com/vango-dev/weft/pkg/part"
	"github.com/vango-dev/weft/pkg/weft"
)

// Cached returns a layout that keeps one inner slot per directive key, so
// content switched away from keeps its state and DOM for when its key
// returns. Inner slots are created with inner.
func Cached(inner weft.Layout) weft.Layout {
	return cachedLayout{inner: inner}
}

type cachedLayout struct {
	inner weft.Layout
}

func (l cachedLayout) Name() string { return "Cached(" + l.inner.Name() + ")" }

func (l cachedLayout) ResolveSlot(b weft.Binding, d weft.Directive, ctx weft.DirectiveContext) weft.Slot {
	current := l.inner.ResolveSlot(b, d, ctx)
	return &CachedSlot{
		inner:   l.inner,
		ctx:     ctx,
		current: current,
		key:     d.Key,
		slots:   map[any]weft.Slot{d.Key: current},
	}
}

// CachedSlot multiplexes inner slots by directive key.
type CachedSlot struct {
	inner    weft.Layout
	ctx      weft.DirectiveContext
	slots    map[any]weft.Slot
	current  weft.Slot
	key      any
	memoized weft.Slot
	attached bool
	dirty    bool
}

func (s *CachedSlot) Value() any            { return s.current.Value() }
func (s *CachedSlot) Part() *part.Part      { return s.current.Part() }
func (s *CachedSlot) Binding() weft.Binding { return s.current.Binding() }

// Len returns the number of cached inner slots.
func (s *CachedSlot) Len() int { return len(s.slots) }

func (s *CachedSlot) Reconcile(value any, session *weft.UpdateSession) bool {
	p := s.current.Part()
	d := session.ResolveDirective(value, p)
	if weft.SameValue(d.Key, s.key) {
		s.attached = true
		if s.current.Reconcile(value, session) {
			s.dirty = true
		}
		return s.dirty
	}

	s.current.Detach(session)
	next, ok := s.slots[d.Key]
	if ok {
		next.Reconcile(value, session)
	} else {
		next = s.inner.ResolveSlot(d.Type.ResolveBinding(d.Value, p, s.ctx), d, s.ctx)
		next.Attach(session)
		s.slots[d.Key] = next
	}
	s.current = next
	s.key = d.Key
	s.attached = true
	s.dirty = true
	return true
}

func (s *CachedSlot) Hydrate(tree *weft.HydrationTree, session *weft.UpdateSession) {
	s.current.Hydrate(tree, session)
	s.attached = true
	s.dirty = true
}

func (s *CachedSlot) Attach(session *weft.UpdateSession) {
	s.current.Attach(session)
	s.attached = true
	s.dirty = true
}

func (s *CachedSlot) Detach(session *weft.UpdateSession) {
	s.current.Detach(session)
	s.attached = false
	s.dirty = false
}

func (s *CachedSlot) Commit() {
	if !s.dirty {
		return
	}
	s.dirty = false
	if s.memoized != nil && s.memoized != s.current {
		s.memoized.Rollback()
	}
	s.current.Commit()
	s.memoized = s.current
}

// Rollback removes the committed inner slot. A detached slot also drops
// every cached inner slot but the current one, rolling each back.
func (s *CachedSlot) Rollback() {
	if !s.attached {
		for key, inner := range s.slots {
			if inner != s.current {
				inner.Rollback()
				delete(s.slots, key)
			}
		}
	}
	if s.memoized == nil {
		return
	}
	s.memoized.Rollback()
	s.memoized = nil
	s.dirty = false
}
