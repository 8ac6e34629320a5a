package weft

import (
	"github.com/vango-dev/weft/pkg/part"
)

// RenderFrame is one flush pass: the lanes it renders, the coroutines still
// to resume and the effects to commit.
type RenderFrame struct {
	ID    uint64
	Lanes Lanes

	pendingCoroutines []Coroutine
	mutationEffects   []Effect
	layoutEffects     []Effect
	passiveEffects    []Effect
}

func newRenderFrame(id uint64, lanes Lanes) *RenderFrame {
	return &RenderFrame{ID: id, Lanes: lanes}
}

// staging returns an empty frame sharing f's identity. Work recorded on it is
// merged back only if the coroutine that produced it renders successfully.
func (f *RenderFrame) staging() *RenderFrame {
	return &RenderFrame{ID: f.ID, Lanes: f.Lanes}
}

func (f *RenderFrame) merge(other *RenderFrame) {
	f.pendingCoroutines = append(f.pendingCoroutines, other.pendingCoroutines...)
	f.mutationEffects = append(f.mutationEffects, other.mutationEffects...)
	f.layoutEffects = append(f.layoutEffects, other.layoutEffects...)
	f.passiveEffects = append(f.passiveEffects, other.passiveEffects...)
}

func (f *RenderFrame) popCoroutine() (Coroutine, bool) {
	if len(f.pendingCoroutines) == 0 {
		return nil, false
	}
	co := f.pendingCoroutines[0]
	f.pendingCoroutines[0] = nil
	f.pendingCoroutines = f.pendingCoroutines[1:]
	return co, true
}

func (f *RenderFrame) isPending(co Coroutine) bool {
	for _, c := range f.pendingCoroutines {
		if c == co {
			return true
		}
	}
	return false
}

// Pending returns the number of coroutines waiting to resume.
func (f *RenderFrame) Pending() int {
	return len(f.pendingCoroutines)
}

// Effects returns the number of effects queued for phase.
func (f *RenderFrame) Effects(phase CommitPhase) int {
	switch phase {
	case MutationPhase:
		return len(f.mutationEffects)
	case LayoutPhase:
		return len(f.layoutEffects)
	default:
		return len(f.passiveEffects)
	}
}

// UpdateSession is what bindings and coroutines see during a render: the
// frame to enqueue work on, the current scope and the runtime.
type UpdateSession struct {
	Frame     *RenderFrame
	Scope     *Scope
	Coroutine Coroutine
	Runtime   *Runtime
}

// ResolveDirective resolves value at p through the runtime.
func (s *UpdateSession) ResolveDirective(value any, p *part.Part) Directive {
	return s.Runtime.ResolveDirective(value, p)
}

// ResolveSlot resolves value into a fresh slot at p through the runtime.
func (s *UpdateSession) ResolveSlot(value any, p *part.Part) Slot {
	return s.Runtime.ResolveSlot(value, p)
}

// EnqueueCoroutine schedules co to resume later in the current frame.
func (s *UpdateSession) EnqueueCoroutine(co Coroutine) {
	s.Frame.pendingCoroutines = append(s.Frame.pendingCoroutines, co)
}

// EnqueueMutationEffect queues e for the mutation phase.
func (s *UpdateSession) EnqueueMutationEffect(e Effect) {
	s.Frame.mutationEffects = append(s.Frame.mutationEffects, e)
}

// EnqueueLayoutEffect queues e for the layout phase.
func (s *UpdateSession) EnqueueLayoutEffect(e Effect) {
	s.Frame.layoutEffects = append(s.Frame.layoutEffects, e)
}

// EnqueuePassiveEffect queues e for the passive phase.
func (s *UpdateSession) EnqueuePassiveEffect(e Effect) {
	s.Frame.passiveEffects = append(s.Frame.passiveEffects, e)
}

// WithScope returns a copy of s rendering in scope.
func (s *UpdateSession) WithScope(scope *Scope) *UpdateSession {
	c := *s
	c.Scope = scope
	return &c
}
