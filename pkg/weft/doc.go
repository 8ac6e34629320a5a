// Package weft is the core of the update engine: directives and the bindings
// they resolve to, slots, components and their hooks, and the Runtime that
// renders coroutines in prioritized frames and commits their effects.
//
// A value bound into the DOM is first resolved into a Directive. Directives
// pass through unchanged, Bindable values convert themselves, and any other
// value is handed to the Host, which picks a Primitive for the part it is
// bound to. The directive's type creates a Binding, and a Slot owns that
// binding for the lifetime of the part.
//
// Rendering never touches the DOM. Bindings and slots enqueue themselves as
// effects on the frame being rendered; the frame commits them in three
// phases, mutation then layout then passive, once every coroutine scheduled
// into it has rendered.
//
// Components are declared once and bound with props:
//
//	var counter = weft.Strings(`<button @click=`, `>Count: `, `</button>`)
//
//	var Counter = weft.NewComponent("Counter", func(start int, s *weft.RenderSession) any {
//		n, set := weft.UseState(s, start)
//		return s.HTML(counter, func(*dom.Event) { set.Set(n + 1) }, n)
//	})
//
//	root := weft.CreateRoot(Counter.With(0), container, runtime)
//	handle := root.Mount()
package weft
