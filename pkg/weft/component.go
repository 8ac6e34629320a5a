package weft

import (
	"fmt"
	"reflect"

	"github.com/vango-dev/weft/internal/errors"
	"github.com/vango-dev/weft/pkg/part"
)

// Coroutine is a resumable unit of render work with its own pending lanes.
type Coroutine interface {
	Name() string
	Scope() *Scope
	PendingLanes() Lanes
	RequestLanes(lanes Lanes)
	Resume(session *UpdateSession)
}

// RenderFunc renders props into a value bound at the component's part.
// Returning an error value fails the render like a panic does.
type RenderFunc[P any] func(props P, s *RenderSession) any

// ComponentType is a DirectiveType whose bindings run a render function.
type ComponentType[P any] struct {
	name             string
	render           RenderFunc[P]
	shouldSkipUpdate func(prev, next P) bool
}

// ComponentOption configures a ComponentType.
type ComponentOption[P any] func(*ComponentType[P])

// WithShouldSkipUpdate overrides the props comparison deciding whether a
// parent render re-renders the component. The default is SameValue.
func WithShouldSkipUpdate[P any](fn func(prev, next P) bool) ComponentOption[P] {
	return func(c *ComponentType[P]) {
		c.shouldSkipUpdate = fn
	}
}

// NewComponent creates a component type.
func NewComponent[P any](name string, render RenderFunc[P], opts ...ComponentOption[P]) *ComponentType[P] {
	c := &ComponentType[P]{
		name:   name,
		render: render,
		shouldSkipUpdate: func(prev, next P) bool {
			return SameValue(prev, next)
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the component name.
func (c *ComponentType[P]) Name() string {
	return c.name
}

// With returns a directive rendering c with props.
func (c *ComponentType[P]) With(props P) Directive {
	return Directive{Type: c, Value: props}
}

// WithKey returns a keyed directive rendering c with props.
func (c *ComponentType[P]) WithKey(key any, props P) Directive {
	return Directive{Type: c, Value: props, Key: key}
}

// ResolveBinding implements DirectiveType.
func (c *ComponentType[P]) ResolveBinding(value any, p *part.Part, ctx DirectiveContext) Binding {
	if p.Kind != part.KindChildNode {
		panic(errors.New("E103").WithDetailf("component %s at %s", c.name, part.Describe(p)))
	}
	b := &componentBinding[P]{typ: c, props: c.props(value)}
	b.componentState = componentState{name: c.name, part: p, self: b}
	if rt, ok := ctx.(*Runtime); ok {
		b.runtime = rt
	}
	return b
}

func (c *ComponentType[P]) props(value any) P {
	props, ok := value.(P)
	if !ok && value != nil {
		var zero P
		panic(errors.New("E101").WithDetailf("component %s expects %s, got %T", c.name, reflect.TypeOf(&zero).Elem(), value))
	}
	return props
}

// componentState is the untyped half of a component binding that hooks and
// the runtime operate on.
type componentState struct {
	name         string
	part         *part.Part
	runtime      *Runtime
	self         Coroutine
	scope        *Scope
	hooks        []hook
	pendingLanes Lanes
	slot         Slot
	connected    bool
	renders      int
}

func (c *componentState) Name() string        { return c.name }
func (c *componentState) Scope() *Scope       { return c.scope }
func (c *componentState) PendingLanes() Lanes { return c.pendingLanes }

func (c *componentState) RequestLanes(lanes Lanes) {
	c.pendingLanes |= lanes
}

func (c *componentState) requestUpdate(opts UpdateOptions) *UpdateHandle {
	if !c.connected || c.runtime == nil {
		return settledHandle(NoLanes, nil)
	}
	return c.runtime.ScheduleUpdate(c.self, opts)
}

type componentBinding[P any] struct {
	componentState
	typ   *ComponentType[P]
	props P
}

func (b *componentBinding[P]) Type() DirectiveType { return b.typ }
func (b *componentBinding[P]) Value() any          { return b.props }
func (b *componentBinding[P]) Part() *part.Part    { return b.part }

func (b *componentBinding[P]) ShouldBind(value any) bool {
	return !b.typ.shouldSkipUpdate(b.props, b.typ.props(value))
}

func (b *componentBinding[P]) Bind(value any) {
	b.props = b.typ.props(value)
}

func (b *componentBinding[P]) Connect(session *UpdateSession) {
	if b.runtime == nil {
		b.runtime = session.Runtime
	}
	if b.scope == nil {
		b.scope = NewScope(session.Scope)
	}
	b.connected = true
	b.pendingLanes |= session.Frame.Lanes
	session.EnqueueCoroutine(b)
}

func (b *componentBinding[P]) Hydrate(tree *HydrationTree, session *UpdateSession) {
	if b.runtime == nil {
		b.runtime = session.Runtime
	}
	if b.scope == nil {
		b.scope = NewScope(session.Scope)
	}
	b.connected = true
	child := session.WithScope(b.scope)
	child.Coroutine = b
	result := b.render(session.Frame.Lanes, child)
	b.slot = session.ResolveSlot(result, b.part)
	b.slot.Hydrate(tree, child)
	session.EnqueueMutationEffect(b.slot)
}

// Resume renders the component for the lanes of the session's frame and
// reconciles the result into its slot. A render reflects every update
// processed so far, so all pending lanes are cleared; reducers holding
// updates outside lanes request them again.
func (b *componentBinding[P]) Resume(session *UpdateSession) {
	lanes := session.Frame.Lanes
	b.pendingLanes = NoLanes
	result := b.render(lanes, session)
	if b.slot == nil {
		b.slot = session.ResolveSlot(result, b.part)
		b.slot.Attach(session)
		session.EnqueueMutationEffect(b.slot)
		return
	}
	if b.slot.Reconcile(result, session) {
		session.EnqueueMutationEffect(b.slot)
	}
}

func (b *componentBinding[P]) render(lanes Lanes, session *UpdateSession) any {
	b.scope.resetErrorHandlers()
	s := &RenderSession{
		component: &b.componentState,
		lanes:     lanes,
		session:   session,
	}
	result := b.typ.render(b.props, s)
	s.finish()
	b.renders++
	if err, ok := result.(error); ok {
		panic(errors.New("E501").WithDetail(b.name).Wrap(err))
	}
	return result
}

func (b *componentBinding[P]) Disconnect(session *UpdateSession) {
	if !b.connected {
		return
	}
	b.connected = false
	for _, h := range b.hooks {
		if e, ok := h.(*effectHook); ok {
			e.disconnect(session)
		}
	}
	if b.slot != nil {
		b.slot.Detach(session)
	}
}

func (b *componentBinding[P]) Commit() {}

func (b *componentBinding[P]) Rollback() {
	if b.slot != nil {
		b.slot.Rollback()
	}
}

// String returns the component name with its part.
func (b *componentBinding[P]) String() string {
	return fmt.Sprintf("%s at %s", b.name, b.part)
}
