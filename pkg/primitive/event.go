package primitive

import (
	"fmt"

	"github.com/vango-dev/weft/pkg/dom"
	"github.com/vango-dev/weft/pkg/part"
	"github.com/vango-dev/weft/pkg/weft"
)

// Event binds an event handler: a func(*dom.Event), a dom.EventListener, a
// Listener or nil. The binding registers itself once and forwards events to
// the current handler, so a new closure on every render does not churn
// listener registrations.
var Event weft.Primitive = eventPrimitive{}

// Listener is a handler with registration options.
type Listener struct {
	Handle  func(e *dom.Event)
	Options dom.ListenerOptions
}

type eventPrimitive struct{}

func (eventPrimitive) Name() string { return "EventPrimitive" }

func (eventPrimitive) EnsureValue(value any, _ *part.Part) error {
	switch value.(type) {
	case nil, func(*dom.Event), dom.ListenerFunc, dom.EventListener, Listener, *Listener:
		return nil
	}
	return fmt.Errorf("event handler must be a func(*dom.Event), dom.EventListener or Listener, got %T", value)
}

func (t eventPrimitive) ResolveBinding(value any, p *part.Part, _ weft.DirectiveContext) weft.Binding {
	return &eventBinding{base: newBase(t, value, p)}
}

type eventBinding struct {
	base
	attached bool
	options  dom.ListenerOptions
}

// HandleEvent implements dom.EventListener.
func (b *eventBinding) HandleEvent(e *dom.Event) {
	switch h := b.value.(type) {
	case func(*dom.Event):
		h(e)
	case dom.ListenerFunc:
		h(e)
	case dom.EventListener:
		h.HandleEvent(e)
	case Listener:
		if h.Handle != nil {
			h.Handle(e)
		}
	case *Listener:
		if h != nil && h.Handle != nil {
			h.Handle(e)
		}
	}
}

func optionsOf(v any) dom.ListenerOptions {
	switch h := v.(type) {
	case Listener:
		return h.Options
	case *Listener:
		if h != nil {
			return h.Options
		}
	}
	return dom.ListenerOptions{}
}

func (b *eventBinding) Commit() {
	if !b.take() {
		return
	}
	node := b.part.Node
	if b.value == nil {
		b.detach()
		return
	}
	opts := optionsOf(b.value)
	if b.attached && opts != b.options {
		b.detach()
	}
	if !b.attached {
		node.AddEventListener(b.part.Name, b, opts)
		b.options = opts
		b.attached = true
	}
}

func (b *eventBinding) detach() {
	if b.attached {
		b.part.Node.RemoveEventListener(b.part.Name, b, b.options)
		b.attached = false
	}
}

func (b *eventBinding) Rollback() {
	if b.release() {
		b.detach()
	}
}
