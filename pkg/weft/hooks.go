package weft

import (
	"strconv"

	"github.com/vango-dev/weft/internal/errors"
	"github.com/vango-dev/weft/pkg/part"
	"github.com/vango-dev/weft/pkg/scheduler"
)

// HookType identifies the kind of hook stored at a position of a
// component's hook list.
type HookType uint8

const (
	HookEffect HookType = iota + 1
	HookLayoutEffect
	HookInsertionEffect
	HookID
	HookMemo
	HookReducer
	HookFinalizer
)

// String returns a human-readable name for the hook type.
func (h HookType) String() string {
	switch h {
	case HookEffect:
		return "Effect"
	case HookLayoutEffect:
		return "LayoutEffect"
	case HookInsertionEffect:
		return "InsertionEffect"
	case HookID:
		return "ID"
	case HookMemo:
		return "Memo"
	case HookReducer:
		return "Reducer"
	case HookFinalizer:
		return "Finalizer"
	default:
		return "Unknown"
	}
}

type hook interface {
	hookType() HookType
}

// effectHook holds what the last committed run of an effect left behind.
// deps only change when a run commits, so a render that fails before its
// effects commit leaves the hook as it was.
type effectHook struct {
	typ     HookType
	cleanup func()
	deps    []any
	stale   bool
}

func (h *effectHook) hookType() HookType { return h.typ }

// effectRun is one pending invocation of an effect hook.
type effectRun struct {
	hook     *effectHook
	callback func() func()
	deps     []any
}

func (r *effectRun) Commit() {
	h := r.hook
	if h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
	h.deps = r.deps
	h.stale = false
	if r.callback != nil {
		h.cleanup = r.callback()
	}
}

func (h *effectHook) disconnect(session *UpdateSession) {
	cleanup := h.cleanup
	h.cleanup = nil
	h.stale = true
	if cleanup == nil {
		return
	}
	enqueueEffect(session, h.typ, EffectFunc(cleanup))
}

func enqueueEffect(session *UpdateSession, typ HookType, e Effect) {
	switch typ {
	case HookInsertionEffect:
		session.EnqueueMutationEffect(e)
	case HookLayoutEffect:
		session.EnqueueLayoutEffect(e)
	default:
		session.EnqueuePassiveEffect(e)
	}
}

type idHook struct{ id string }

func (h *idHook) hookType() HookType { return HookID }

type memoHook struct {
	value any
	deps  []any
}

func (h *memoHook) hookType() HookType { return HookMemo }

type reducerHook struct {
	lanes         Lanes
	pendingState  any
	memoizedState any
	reducer       func(state, action any) any
	dispatch      any
}

func (h *reducerHook) hookType() HookType { return HookReducer }

type finalizerHook struct{}

func (finalizerHook) hookType() HookType { return HookFinalizer }

// RenderSession is the per-render handle a component uses to call hooks,
// read and provide context and build templates.
type RenderSession struct {
	component *componentState
	lanes     Lanes
	session   *UpdateSession
	hookIndex int
	done      bool
}

// Lanes returns the lanes being rendered.
func (s *RenderSession) Lanes() Lanes {
	return s.lanes
}

// Runtime returns the runtime rendering the component.
func (s *RenderSession) Runtime() *Runtime {
	return s.session.Runtime
}

// IsFirstRender reports whether this is the component's first render.
func (s *RenderSession) IsFirstRender() bool {
	return s.component.renders == 0
}

// nextHook returns the hook at the current position if one exists, checking
// that it has type typ. It returns nil when a new hook must be appended.
func (s *RenderSession) nextHook(typ HookType) hook {
	if s.done {
		panic(errors.New("E203").WithDetailf("%s hook in %s after render returned", typ, s.component.name))
	}
	hooks := s.component.hooks
	idx := s.hookIndex
	if idx < len(hooks) {
		if got := hooks[idx].hookType(); got != typ {
			if got == HookFinalizer {
				panic(errors.New("E202").WithDetailf("extra %s hook at index %d in %s", typ, idx, s.component.name))
			}
			panic(errors.New("E201").WithDetailf("index %d in %s: expected %s, got %s", idx, s.component.name, got, typ))
		}
		s.hookIndex++
		return hooks[idx]
	}
	if len(hooks) > 0 && hooks[len(hooks)-1].hookType() == HookFinalizer {
		panic(errors.New("E202").WithDetailf("extra %s hook at index %d in %s", typ, idx, s.component.name))
	}
	return nil
}

func (s *RenderSession) appendHook(h hook) {
	s.component.hooks = append(s.component.hooks, h)
	s.hookIndex++
}

// finish seals the hook list after the first render and checks later renders
// called every hook.
func (s *RenderSession) finish() {
	hooks := s.component.hooks
	switch {
	case s.hookIndex == len(hooks):
		s.component.hooks = append(hooks, finalizerHook{})
	case hooks[s.hookIndex].hookType() != HookFinalizer:
		panic(errors.New("E201").WithDetailf("%s rendered %d hooks, expected %d", s.component.name, s.hookIndex, len(hooks)-1))
	}
	s.done = true
}

// ForceUpdate schedules a re-render of the component.
func (s *RenderSession) ForceUpdate(opts ...UpdateOptions) *UpdateHandle {
	return s.component.requestUpdate(mergeOptions(opts))
}

// WaitForUpdate returns a task settling once every update scheduled for the
// component so far has finished.
func (s *RenderSession) WaitForUpdate() *scheduler.Task {
	return s.session.Runtime.WaitForUpdate(s.component.self)
}

// SetContextValue provides value under key to the component's descendants.
func (s *RenderSession) SetContextValue(key, value any) {
	if s.done {
		panic(errors.New("E203").WithDetailf("SetContextValue in %s after render returned", s.component.name))
	}
	s.component.scope.set(key, value)
}

// GetContextValue looks key up through the enclosing scopes.
func (s *RenderSession) GetContextValue(key any) (any, bool) {
	return s.component.scope.Get(key)
}

// CatchError registers an error boundary for render errors raised by
// descendants. Handlers are registered anew on every render.
func (s *RenderSession) CatchError(handler ErrorHandler) {
	s.component.scope.addErrorHandler(handler)
}

// HTML resolves an HTML template.
func (s *RenderSession) HTML(strs *TemplateStrings, binds ...any) Directive {
	return s.session.Runtime.TemplateDirective(strs, binds, ModeHTML)
}

// SVG resolves an SVG template.
func (s *RenderSession) SVG(strs *TemplateStrings, binds ...any) Directive {
	return s.session.Runtime.TemplateDirective(strs, binds, ModeSVG)
}

// MathML resolves a MathML template.
func (s *RenderSession) MathML(strs *TemplateStrings, binds ...any) Directive {
	return s.session.Runtime.TemplateDirective(strs, binds, ModeMathML)
}

// Text resolves a template whose content is all text.
func (s *RenderSession) Text(strs *TemplateStrings, binds ...any) Directive {
	return s.session.Runtime.TemplateDirective(strs, binds, ModeTextarea)
}

// UseEffect runs fn after the commit once deps change. The function fn
// returns, if any, runs before the next invocation and on unmount. A nil
// deps list runs fn after every render.
func UseEffect(s *RenderSession, fn func() func(), deps []any) {
	useEffect(s, HookEffect, fn, deps)
}

// UseLayoutEffect is UseEffect run in the layout phase.
func UseLayoutEffect(s *RenderSession, fn func() func(), deps []any) {
	useEffect(s, HookLayoutEffect, fn, deps)
}

// UseInsertionEffect is UseEffect run in the mutation phase.
func UseInsertionEffect(s *RenderSession, fn func() func(), deps []any) {
	useEffect(s, HookInsertionEffect, fn, deps)
}

func useEffect(s *RenderSession, typ HookType, fn func() func(), deps []any) {
	var h *effectHook
	if existing := s.nextHook(typ); existing != nil {
		h = existing.(*effectHook)
		if !h.stale && !dependenciesChanged(h.deps, deps) {
			return
		}
	} else {
		h = &effectHook{typ: typ, stale: true}
		s.appendHook(h)
	}
	enqueueEffect(s.session, typ, &effectRun{hook: h, callback: fn, deps: deps})
}

// UseID returns an identifier unique within the runtime and stable across
// renders of the component.
func UseID(s *RenderSession) string {
	if existing := s.nextHook(HookID); existing != nil {
		return existing.(*idHook).id
	}
	h := &idHook{id: s.session.Runtime.nextIdentifier()}
	s.appendHook(h)
	return h.id
}

// UseMemo returns fn's result, recomputing it when deps change.
func UseMemo[T any](s *RenderSession, fn func() T, deps []any) T {
	if existing := s.nextHook(HookMemo); existing != nil {
		h := existing.(*memoHook)
		if !dependenciesChanged(h.deps, deps) {
			return as[T](h.value)
		}
		h.value = fn()
		h.deps = deps
		return as[T](h.value)
	}
	h := &memoHook{value: fn(), deps: deps}
	s.appendHook(h)
	return as[T](h.value)
}

// UseCallback returns fn, keeping the first instance while deps are unchanged.
func UseCallback[F any](s *RenderSession, fn F, deps []any) F {
	return UseMemo(s, func() F { return fn }, deps)
}

// Ref is a mutable box whose identity is stable across renders.
type Ref[T any] struct {
	Current T
}

// UseRef returns the component's ref, created with initial on first render.
func UseRef[T any](s *RenderSession, initial T) *Ref[T] {
	return UseMemo(s, func() *Ref[T] { return &Ref[T]{Current: initial} }, []any{})
}

// Dispatch sends an action to a reducer.
type Dispatch[A any] func(action A, opts ...UpdateOptions)

// UseReducer keeps state updated by reducer. Dispatch computes the next
// state immediately and schedules a re-render when it differs.
func UseReducer[S, A any](s *RenderSession, reducer func(S, A) S, initial S) (S, Dispatch[A]) {
	if existing := s.nextHook(HookReducer); existing != nil {
		h := existing.(*reducerHook)
		h.reducer = func(state, action any) any { return reducer(as[S](state), as[A](action)) }
		if h.lanes&s.lanes != NoLanes {
			h.memoizedState = h.pendingState
			h.lanes = NoLanes
		} else if h.lanes != NoLanes {
			s.component.pendingLanes |= h.lanes
		}
		return as[S](h.memoizedState), h.dispatch.(Dispatch[A])
	}

	h := &reducerHook{
		pendingState:  initial,
		memoizedState: initial,
		reducer:       func(state, action any) any { return reducer(as[S](state), as[A](action)) },
	}
	component := s.component
	h.dispatch = Dispatch[A](func(action A, opts ...UpdateOptions) {
		next := h.reducer(h.pendingState, action)
		if SameValue(next, h.pendingState) {
			return
		}
		h.pendingState = next
		handle := component.requestUpdate(mergeOptions(opts))
		h.lanes |= handle.Lanes
	})
	s.appendHook(h)
	return initial, h.dispatch.(Dispatch[A])
}

// SetState replaces or updates a UseState value.
type SetState[T any] struct {
	dispatch Dispatch[func(T) T]
}

// Set replaces the state with v.
func (s SetState[T]) Set(v T, opts ...UpdateOptions) {
	s.dispatch(func(T) T { return v }, opts...)
}

// Update replaces the state with fn applied to the latest pending state.
func (s SetState[T]) Update(fn func(T) T, opts ...UpdateOptions) {
	s.dispatch(fn, opts...)
}

// UseState is UseReducer with a replace-or-update reducer.
func UseState[T any](s *RenderSession, initial T) (T, SetState[T]) {
	state, dispatch := UseReducer(s, func(state T, fn func(T) T) T { return fn(state) }, initial)
	return state, SetState[T]{dispatch: dispatch}
}

// UseDeferredValue returns the previous value while a newer one is rendered
// at background priority.
func UseDeferredValue[T any](s *RenderSession, value T, initial ...T) T {
	start := value
	if len(initial) > 0 {
		start = initial[0]
	}
	deferred, set := UseState(s, start)
	UseLayoutEffect(s, func() func() {
		set.Set(value, UpdateOptions{Priority: scheduler.Background})
		return nil
	}, []any{value})
	return deferred
}

// UseSyncExternalStore subscribes to an external store and returns the
// latest snapshot. subscribe receives a callback to invoke on change and
// returns an unsubscribe function; it is called once per mount.
func UseSyncExternalStore[T any](s *RenderSession, subscribe func(onChange func()) func(), getSnapshot func() T) T {
	snapshot := getSnapshot()
	_, force := UseReducer(s, func(n int, _ struct{}) int { return n + 1 }, 0)
	latest := UseRef(s, getSnapshot)
	latest.Current = getSnapshot
	last := UseRef(s, snapshot)
	last.Current = snapshot
	UseEffect(s, func() func() {
		onChange := func() {
			if !SameValue(latest.Current(), last.Current) {
				force(struct{}{})
			}
		}
		unsubscribe := subscribe(onChange)
		onChange()
		return unsubscribe
	}, []any{})
	return snapshot
}

// Context is a typed context key with a default value.
type Context[T any] struct {
	name string
	def  T
}

// NewContext creates a context with a default value.
func NewContext[T any](name string, def T) *Context[T] {
	return &Context[T]{name: name, def: def}
}

// Provide sets the context value for the component's descendants.
func (c *Context[T]) Provide(s *RenderSession, value T) {
	s.SetContextValue(c, value)
}

// Use returns the nearest provided value, or the default.
func (c *Context[T]) Use(s *RenderSession) T {
	if v, ok := s.GetContextValue(c); ok {
		return as[T](v)
	}
	return c.def
}

// String returns the context name.
func (c *Context[T]) String() string {
	return "Context(" + c.name + ")"
}

func (r *Runtime) nextIdentifier() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.identifierCount++
	return r.identifierPrefix + strconv.FormatUint(r.identifierCount, 36)
}

// Part returns the part the component renders into.
func (s *RenderSession) Part() *part.Part {
	return s.component.part
}

func as[T any](v any) T {
	t, _ := v.(T)
	return t
}
