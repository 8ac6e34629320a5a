package dom

// Event is a dispatched event.
type Event struct {
	Type          string
	Bubbles       bool
	Detail        any
	Target        *Node
	CurrentTarget *Node

	defaultPrevented bool
	propagation      bool
	immediate        bool
}

// NewEvent creates a bubbling event of the given type.
func NewEvent(typ string) *Event {
	return &Event{Type: typ, Bubbles: true}
}

// PreventDefault marks the event as default-prevented.
func (e *Event) PreventDefault() { e.defaultPrevented = true }

// DefaultPrevented reports whether PreventDefault was called.
func (e *Event) DefaultPrevented() bool { return e.defaultPrevented }

// StopPropagation stops the event from reaching further nodes.
func (e *Event) StopPropagation() { e.propagation = true }

// StopImmediatePropagation also skips the remaining listeners of the current node.
func (e *Event) StopImmediatePropagation() {
	e.propagation = true
	e.immediate = true
}

// EventListener receives events. Implementations must be comparable.
type EventListener interface {
	HandleEvent(e *Event)
}

// ListenerFunc adapts a function to EventListener for AddEventListenerFunc.
type ListenerFunc func(e *Event)

// ListenerOptions configure a listener registration.
type ListenerOptions struct {
	Capture bool
	Once    bool
	Passive bool
}

type listenerEntry struct {
	listener EventListener
	fn       ListenerFunc
	options  ListenerOptions
	removed  bool
}

func (l *listenerEntry) handle(e *Event) {
	if l.fn != nil {
		l.fn(e)
		return
	}
	l.listener.HandleEvent(e)
}

// AddEventListener registers a listener. Registering the same listener with
// the same capture flag twice is a no-op.
func (n *Node) AddEventListener(typ string, l EventListener, opts ListenerOptions) {
	for _, e := range n.listeners[typ] {
		if e.fn == nil && e.listener == l && e.options.Capture == opts.Capture {
			return
		}
	}
	n.addEntry(typ, &listenerEntry{listener: l, options: opts})
}

// AddEventListenerFunc registers fn and returns a function removing it.
func (n *Node) AddEventListenerFunc(typ string, fn ListenerFunc, opts ListenerOptions) func() {
	entry := &listenerEntry{fn: fn, options: opts}
	n.addEntry(typ, entry)
	return func() { n.removeEntry(typ, entry) }
}

// RemoveEventListener unregisters a listener.
func (n *Node) RemoveEventListener(typ string, l EventListener, opts ListenerOptions) {
	for _, e := range n.listeners[typ] {
		if e.fn == nil && e.listener == l && e.options.Capture == opts.Capture {
			n.removeEntry(typ, e)
			return
		}
	}
}

// ListenerCount returns the number of listeners registered for typ.
func (n *Node) ListenerCount(typ string) int {
	return len(n.listeners[typ])
}

func (n *Node) addEntry(typ string, entry *listenerEntry) {
	if n.listeners == nil {
		n.listeners = make(map[string][]*listenerEntry)
	}
	n.listeners[typ] = append(n.listeners[typ], entry)
}

func (n *Node) removeEntry(typ string, entry *listenerEntry) {
	entries := n.listeners[typ]
	for i, e := range entries {
		if e == entry {
			e.removed = true
			n.listeners[typ] = append(entries[:i:i], entries[i+1:]...)
			if len(n.listeners[typ]) == 0 {
				delete(n.listeners, typ)
			}
			return
		}
	}
}

// DispatchEvent dispatches e with capture, target and bubble phases and
// reports whether the default action was not prevented.
func (n *Node) DispatchEvent(e *Event) bool {
	e.Target = n
	var path []*Node
	for p := n.parent; p != nil; p = p.parent {
		path = append(path, p)
	}

	for i := len(path) - 1; i >= 0 && !e.propagation; i-- {
		path[i].invoke(e, true, false)
	}
	if !e.propagation {
		n.invoke(e, true, true)
	}
	if e.Bubbles {
		for i := 0; i < len(path) && !e.propagation; i++ {
			path[i].invoke(e, false, false)
		}
	}
	e.CurrentTarget = nil
	return !e.defaultPrevented
}

func (n *Node) invoke(e *Event, capture, atTarget bool) {
	entries := append([]*listenerEntry(nil), n.listeners[e.Type]...)
	e.CurrentTarget = n
	for _, entry := range entries {
		if entry.removed || (!atTarget && entry.options.Capture != capture) {
			continue
		}
		if entry.options.Once {
			n.removeEntry(e.Type, entry)
		}
		entry.handle(e)
		if e.immediate {
			return
		}
	}
}
