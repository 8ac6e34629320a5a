package slot

import (
	"github.com/vango-dev/weft/internal/errors"
	"github.com/vango-dev/weft/pkg/part"
	"github.com/vango-dev/weft/pkg/weft"
)

// Strict is the layout of slots whose directive type never changes.
var Strict weft.Layout = strictLayout{}

type strictLayout struct{}

func (strictLayout) Name() string { return "Strict" }

func (strictLayout) ResolveSlot(b weft.Binding, _ weft.Directive, _ weft.DirectiveContext) weft.Slot {
	return &StrictSlot{binding: b}
}

// StrictSlot holds a single binding for its whole life. Reconciling a value
// of another directive type is an error.
type StrictSlot struct {
	binding   weft.Binding
	connected bool
	dirty     bool
	committed bool
}

// NewStrict creates a strict slot around b.
func NewStrict(b weft.Binding) *StrictSlot {
	return &StrictSlot{binding: b}
}

func (s *StrictSlot) Value() any            { return s.binding.Value() }
func (s *StrictSlot) Part() *part.Part      { return s.binding.Part() }
func (s *StrictSlot) Binding() weft.Binding { return s.binding }

func (s *StrictSlot) Reconcile(value any, session *weft.UpdateSession) bool {
	d := session.ResolveDirective(value, s.binding.Part())
	if !weft.SameDirectiveType(d.Type, s.binding.Type()) {
		panic(errors.New("E102").WithDetailf("%s at %s cannot hold %s", s.binding.Type().Name(), part.Describe(s.binding.Part()), d.Type.Name()))
	}
	if !s.connected || s.binding.ShouldBind(d.Value) {
		s.binding.Bind(d.Value)
		s.binding.Connect(session)
		s.connected = true
		s.dirty = true
	}
	return s.dirty
}

func (s *StrictSlot) Hydrate(tree *weft.HydrationTree, session *weft.UpdateSession) {
	s.binding.Hydrate(tree, session)
	s.connected = true
	s.dirty = true
}

func (s *StrictSlot) Attach(session *weft.UpdateSession) {
	s.binding.Connect(session)
	s.connected = true
	s.dirty = true
}

func (s *StrictSlot) Detach(session *weft.UpdateSession) {
	s.binding.Disconnect(session)
	s.connected = false
	s.dirty = false
}

func (s *StrictSlot) Commit() {
	if !s.dirty {
		return
	}
	s.dirty = false
	s.binding.Commit()
	if !s.committed {
		debug(s.binding)
	}
	s.committed = true
}

func (s *StrictSlot) Rollback() {
	if !s.committed {
		return
	}
	undebug(s.binding)
	s.binding.Rollback()
	s.committed = false
	s.dirty = false
}

func debug(b weft.Binding) {
	if d, ok := b.Value().(weft.Debuggable); ok {
		d.Debug(b.Part())
	}
}

func undebug(b weft.Binding) {
	if d, ok := b.Value().(weft.Debuggable); ok {
		d.Undebug(b.Part())
	}
}
