package weft_test

import (
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/weft/internal/errors"
	"github.com/vango-dev/weft/pkg/dom"
	"github.com/vango-dev/weft/pkg/host"
	"github.com/vango-dev/weft/pkg/scheduler"
	"github.com/vango-dev/weft/pkg/weft"
)

type env struct {
	host      *host.ClientHost
	rt        *weft.Runtime
	container *dom.Node
}

func newEnv(opts ...weft.RuntimeOption) *env {
	h := host.NewClient()
	return &env{host: h, rt: weft.NewRuntime(h, opts...), container: dom.NewElement("div")}
}

func (e *env) run(t *testing.T, handle *weft.UpdateHandle) {
	t.Helper()
	e.host.Loop().RunUntilIdle()
	if err := handle.Err(); err != nil {
		t.Fatalf("update failed: %v", err)
	}
}

func (e *env) fail(t *testing.T, handle *weft.UpdateHandle, code string) {
	t.Helper()
	e.host.Loop().RunUntilIdle()
	if !errors.HasCode(handle.Err(), code) {
		t.Fatalf("update error = %v, want %s", handle.Err(), code)
	}
}

func wantPanic(t *testing.T, code string, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		err, _ := recover().(error)
		if !errors.HasCode(err, code) {
			t.Errorf("panic = %v, want %s", err, code)
		}
	}()
	fn()
}

func TestLanesFromOptions(t *testing.T) {
	tests := []struct {
		name    string
		opts    weft.UpdateOptions
		current scheduler.Priority
		want    weft.Lanes
	}{
		{"inherit visible", weft.UpdateOptions{}, scheduler.UserVisible, weft.UserVisibleLane},
		{"inherit blocking", weft.UpdateOptions{}, scheduler.UserBlocking, weft.UserBlockingLane},
		{"explicit", weft.UpdateOptions{Priority: scheduler.Background}, scheduler.UserBlocking, weft.BackgroundLane},
		{"unknown", weft.UpdateOptions{}, 0, weft.DefaultLane},
		{"transition", weft.UpdateOptions{Priority: scheduler.UserBlocking, ViewTransition: true}, 0, weft.UserBlockingLane | weft.ViewTransitionLane},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := weft.LanesFromOptions(tt.opts, tt.current); got != tt.want {
				t.Errorf("LanesFromOptions = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPriorityFromLanes(t *testing.T) {
	tests := []struct {
		lanes weft.Lanes
		want  scheduler.Priority
	}{
		{weft.BackgroundLane | weft.UserBlockingLane, scheduler.UserBlocking},
		{weft.BackgroundLane, scheduler.Background},
		{weft.DefaultLane, scheduler.UserVisible},
		{weft.ViewTransitionLane | weft.UserVisibleLane, scheduler.UserVisible},
	}
	for _, tt := range tests {
		if got := weft.PriorityFromLanes(tt.lanes); got != tt.want {
			t.Errorf("PriorityFromLanes(%v) = %v, want %v", tt.lanes, got, tt.want)
		}
	}
	if got := (weft.UserBlockingLane | weft.ViewTransitionLane).String(); got != "UserBlocking|ViewTransition" {
		t.Errorf("String() = %q", got)
	}
	if !weft.AllLanes.Has(weft.BackgroundLane) || weft.NoLanes.Has(weft.AllLanes) {
		t.Error("Has is wrong")
	}
}

func TestSameValue(t *testing.T) {
	s := []int{1, 2}
	m := map[string]int{}
	fn := func() {}
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"ints", 1, 1, true},
		{"types differ", 1, int64(1), false},
		{"strings", "a", "b", false},
		{"nan", math.NaN(), math.NaN(), true},
		{"nil", nil, nil, true},
		{"nil and value", nil, 0, false},
		{"same slice", s, s, true},
		{"equal slices", s, []int{1, 2}, false},
		{"same map", m, m, true},
		{"func", fn, fn, false},
		{"uncomparable struct", struct{ s []int }{s}, struct{ s []int }{s}, false},
		{"struct", struct{ a int }{1}, struct{ a int }{1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := weft.SameValue(tt.a, tt.b); got != tt.want {
				t.Errorf("SameValue(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
	if !weft.SameValues([]any{1, "a"}, []any{1, "a"}) || weft.SameValues([]any{1}, []any{1, 2}) {
		t.Error("SameValues is wrong")
	}
}

func TestTemplateCache(t *testing.T) {
	e := newEnv()
	strs := weft.Strings(`<p>`, `</p>`)
	a, err := e.rt.ResolveTemplate(strs, []any{"x"}, weft.ModeHTML)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := e.rt.ResolveTemplate(strs, []any{"y"}, weft.ModeHTML)
	if a != b {
		t.Error("same strings parsed twice")
	}
	c, _ := e.rt.ResolveTemplate(weft.Strings(`<p>`, `</p>`), []any{"x"}, weft.ModeHTML)
	if a == c {
		t.Error("distinct strings shared a template")
	}
	d, _ := e.rt.ResolveTemplate(strs, []any{"x"}, weft.ModeSVG)
	if a == d {
		t.Error("modes shared a template")
	}

	if _, err := e.rt.ResolveTemplate(weft.Strings(`<p class="a `, `"></p>`), []any{"x"}, weft.ModeHTML); !errors.HasCode(err, "E301") {
		t.Errorf("partial attribute error = %v, want E301", err)
	}
	wantPanic(t, "E302", func() {
		e.rt.TemplateDirective(strs, nil, weft.ModeHTML)
	})
}

func TestLiteral(t *testing.T) {
	e := newEnv()
	strs := weft.Strings(`<p class=`, `>x</p>`)
	root := weft.CreateRoot(weft.HTML(strs, "a"), e.container, e.rt)
	e.run(t, root.Mount())
	if got := e.container.InnerHTML(); !strings.Contains(got, `<p class="a">x</p>`) {
		t.Fatalf("mounted %q", got)
	}
	p := e.container.FirstChild()

	e.run(t, root.Update(weft.HTML(strs, "b")))
	if got := e.container.InnerHTML(); !strings.Contains(got, `<p class="b">x</p>`) {
		t.Errorf("updated %q", got)
	}
	if e.container.FirstChild() != p {
		t.Error("literal with the same strings replaced its element")
	}

	e.fail(t, root.Update(weft.HTML(strs)), "E302")
}

func TestInterner(t *testing.T) {
	in := weft.NewInterner()
	a := in.Strings("<p>", "</p>")
	if in.Strings("<p>", "</p>") != a {
		t.Error("equal content was not interned")
	}
	if in.Strings("<p", "></p>") == a {
		t.Error("different splits share an entry")
	}
	if in.Len() != 2 {
		t.Errorf("Len() = %d, want 2", in.Len())
	}
	if a.Arity() != 1 {
		t.Errorf("Arity() = %d", a.Arity())
	}
}

func TestHydrationTree(t *testing.T) {
	container := dom.NewElement("div")
	fragment, err := dom.ParseHTML(`<p>ab</p><!---->`)
	if err != nil {
		t.Fatal(err)
	}
	container.AppendChild(fragment)

	tree := weft.NewHydrationTree(container)
	p := tree.PopElement("p")
	tree.Enter(p)
	a := tree.PopText("a", true)
	b := tree.PopText("b", true)
	empty := tree.PopText("", false)
	tree.Leave()
	tree.PopComment()

	if a.Data() != "a" || b.Data() != "b" || empty.Data() != "" {
		t.Errorf("claimed %q %q %q", a.Data(), b.Data(), empty.Data())
	}
	if got := container.InnerHTML(); got != `<p>ab</p><!---->` {
		t.Errorf("markup changed to %q", got)
	}
	if tree.Peek() != nil {
		t.Error("nodes left unclaimed")
	}
}

func TestHydrationTreeMismatch(t *testing.T) {
	setup := func(markup string) *weft.HydrationTree {
		container := dom.NewElement("div")
		fragment, err := dom.ParseHTML(markup)
		if err != nil {
			t.Fatal(err)
		}
		container.AppendChild(fragment)
		return weft.NewHydrationTree(container)
	}
	wantPanic(t, "E401", func() { setup(`<p></p>`).PopElement("span") })
	wantPanic(t, "E401", func() { setup(`text`).PopComment() })
	wantPanic(t, "E402", func() { setup(``).PopElement("p") })
	wantPanic(t, "E403", func() { setup(`abc`).PopText("abd", true) })
	wantPanic(t, "E401", func() {
		tree := setup(`<p><b></b></p>`)
		tree.Enter(tree.PopElement("p"))
		tree.Leave()
	})
}

func TestUseMemoAndSkipUpdate(t *testing.T) {
	e := newEnv()
	calls, renders := 0, 0
	Doubler := weft.NewComponent("Doubler", func(n int, s *weft.RenderSession) any {
		renders++
		v := weft.UseMemo(s, func() int { calls++; return n * 2 }, []any{n})
		return strconv.Itoa(v)
	})
	root := weft.CreateRoot(Doubler.With(2), e.container, e.rt)
	e.run(t, root.Mount())
	e.run(t, root.Update(Doubler.With(2)))
	if renders != 1 {
		t.Errorf("equal props rendered %d times, want 1", renders)
	}
	e.run(t, root.Update(Doubler.With(3)))
	if got := e.container.InnerHTML(); got != "6<!---->" {
		t.Errorf("html = %q", got)
	}
	if calls != 2 {
		t.Errorf("memo computed %d times, want 2", calls)
	}

	Never := weft.NewComponent("Never", func(n int, s *weft.RenderSession) any {
		return strconv.Itoa(n)
	}, weft.WithShouldSkipUpdate(func(prev, next int) bool { return true }))
	other := newEnv()
	root = weft.CreateRoot(Never.With(1), other.container, other.rt)
	other.run(t, root.Mount())
	other.run(t, root.Update(Never.With(2)))
	if got := other.container.InnerHTML(); got != "1<!---->" {
		t.Errorf("skipped update rendered %q", got)
	}
}

func TestUseID(t *testing.T) {
	e := newEnv(weft.WithIdentifierPrefix("srv-"))
	var ids [][2]string
	var force func()
	Labels := weft.NewComponent("Labels", func(_ struct{}, s *weft.RenderSession) any {
		ids = append(ids, [2]string{weft.UseID(s), weft.UseID(s)})
		force = func() { s.ForceUpdate() }
		return nil
	})
	root := weft.CreateRoot(Labels.With(struct{}{}), e.container, e.rt)
	e.run(t, root.Mount())
	force()
	e.host.Loop().RunUntilIdle()

	want := [][2]string{{"srv-1", "srv-2"}, {"srv-1", "srv-2"}}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}
}

func TestContext(t *testing.T) {
	theme := weft.NewContext("theme", "light")
	Label := weft.NewComponent("Label", func(_ struct{}, s *weft.RenderSession) any {
		return theme.Use(s)
	})
	Provider := weft.NewComponent("Provider", func(value string, s *weft.RenderSession) any {
		theme.Provide(s, value)
		return Label.With(struct{}{})
	})

	e := newEnv()
	e.run(t, weft.CreateRoot(Label.With(struct{}{}), e.container, e.rt).Mount())
	if got := e.container.InnerHTML(); got != "light<!---->" {
		t.Errorf("default = %q", got)
	}

	e = newEnv()
	root := weft.CreateRoot(Provider.With("dark"), e.container, e.rt)
	e.run(t, root.Mount())
	if got := e.container.InnerHTML(); got != "dark<!---->" {
		t.Errorf("provided = %q", got)
	}

	e = newEnv()
	root = weft.CreateRoot(Label.With(struct{}{}), e.container, e.rt)
	root.Provide(theme, "dim")
	e.run(t, root.Mount())
	if got := e.container.InnerHTML(); got != "dim<!---->" {
		t.Errorf("root provided = %q", got)
	}
	if theme.String() != "Context(theme)" {
		t.Errorf("String() = %q", theme.String())
	}
}

func TestHookOrder(t *testing.T) {
	Conditional := weft.NewComponent("Conditional", func(first bool, s *weft.RenderSession) any {
		if first {
			weft.UseMemo(s, func() int { return 0 }, nil)
		}
		weft.UseState(s, 0)
		return nil
	})
	e := newEnv()
	root := weft.CreateRoot(Conditional.With(false), e.container, e.rt)
	e.run(t, root.Mount())
	e.fail(t, root.Update(Conditional.With(true)), "E201")

	// A hook skipped in front of another shifts the later one into its place.
	e = newEnv()
	root = weft.CreateRoot(Conditional.With(true), e.container, e.rt)
	e.run(t, root.Mount())
	e.fail(t, root.Update(Conditional.With(false)), "E201")

	// A skipped trailing hook is caught when the render returns.
	Trailing := weft.NewComponent("Trailing", func(last bool, s *weft.RenderSession) any {
		weft.UseState(s, 0)
		if last {
			weft.UseMemo(s, func() int { return 0 }, nil)
		}
		return nil
	})
	e = newEnv()
	root = weft.CreateRoot(Trailing.With(true), e.container, e.rt)
	e.run(t, root.Mount())
	e.fail(t, root.Update(Trailing.With(false)), "E201")

	Extra := weft.NewComponent("Extra", func(extra bool, s *weft.RenderSession) any {
		weft.UseState(s, 0)
		if extra {
			weft.UseID(s)
		}
		return nil
	})
	e = newEnv()
	root = weft.CreateRoot(Extra.With(false), e.container, e.rt)
	e.run(t, root.Mount())
	e.fail(t, root.Update(Extra.With(true)), "E202")

	var saved *weft.RenderSession
	Leaky := weft.NewComponent("Leaky", func(_ struct{}, s *weft.RenderSession) any {
		saved = s
		return nil
	})
	e = newEnv()
	e.run(t, weft.CreateRoot(Leaky.With(struct{}{}), e.container, e.rt).Mount())
	wantPanic(t, "E203", func() { weft.UseID(saved) })
}

func TestComponentPropsType(t *testing.T) {
	Typed := weft.NewComponent("Typed", func(n int, s *weft.RenderSession) any { return nil })
	e := newEnv()
	handle := weft.CreateRoot(weft.Directive{Type: Typed, Value: "x"}, e.container, e.rt).Mount()
	e.fail(t, handle, "E101")
}

func TestStateUpdatesBatch(t *testing.T) {
	e := newEnv()
	renders := 0
	var set weft.SetState[int]
	var session *weft.RenderSession
	Counter := weft.NewComponent("Counter", func(_ struct{}, s *weft.RenderSession) any {
		renders++
		n, setN := weft.UseState(s, 0)
		set, session = setN, s
		return strconv.Itoa(n)
	})
	e.run(t, weft.CreateRoot(Counter.With(struct{}{}), e.container, e.rt).Mount())

	set.Set(0)
	e.host.Loop().RunUntilIdle()
	if renders != 1 {
		t.Errorf("setting the same state rendered %d times", renders)
	}

	set.Update(func(n int) int { return n + 1 })
	set.Update(func(n int) int { return n + 2 })
	wait := session.WaitForUpdate()
	if wait.Settled() {
		t.Fatal("WaitForUpdate settled before the update ran")
	}
	e.host.Loop().RunUntilIdle()
	if !wait.Settled() {
		t.Error("WaitForUpdate did not settle")
	}
	if renders != 2 {
		t.Errorf("two updates rendered %d times, want 1", renders-1)
	}
	if got := e.container.InnerHTML(); got != "3<!---->" {
		t.Errorf("html = %q", got)
	}
}

func TestUseDeferredValue(t *testing.T) {
	type render struct{ Value, Deferred string }
	var renders []render
	Search := weft.NewComponent("Search", func(query string, s *weft.RenderSession) any {
		deferred := weft.UseDeferredValue(s, query)
		renders = append(renders, render{query, deferred})
		return deferred
	})
	e := newEnv()
	root := weft.CreateRoot(Search.With("a"), e.container, e.rt)
	e.run(t, root.Mount())
	e.run(t, root.Update(Search.With("b")))

	want := []render{{"a", "a"}, {"b", "a"}, {"b", "b"}}
	if diff := cmp.Diff(want, renders); diff != "" {
		t.Errorf("renders mismatch (-want +got):\n%s", diff)
	}
	if got := e.container.InnerHTML(); got != "b<!---->" {
		t.Errorf("html = %q", got)
	}
}

type store struct {
	value     int
	listeners map[int]func()
	next      int
}

func (s *store) subscribe(fn func()) func() {
	id := s.next
	s.next++
	s.listeners[id] = fn
	return func() { delete(s.listeners, id) }
}

func (s *store) set(v int) {
	s.value = v
	for _, fn := range s.listeners {
		fn()
	}
}

func TestUseSyncExternalStore(t *testing.T) {
	st := &store{value: 1, listeners: make(map[int]func())}
	View := weft.NewComponent("View", func(_ struct{}, s *weft.RenderSession) any {
		v := weft.UseSyncExternalStore(s, st.subscribe, func() int { return st.value })
		return strconv.Itoa(v)
	})
	e := newEnv()
	root := weft.CreateRoot(View.With(struct{}{}), e.container, e.rt)
	e.run(t, root.Mount())
	if len(st.listeners) != 1 {
		t.Fatalf("%d listeners after mount", len(st.listeners))
	}

	st.set(2)
	e.host.Loop().RunUntilIdle()
	if got := e.container.InnerHTML(); got != "2<!---->" {
		t.Errorf("html = %q", got)
	}

	e.run(t, root.Unmount())
	if len(st.listeners) != 0 {
		t.Errorf("%d listeners after unmount", len(st.listeners))
	}
}

func TestRenderErrorReturned(t *testing.T) {
	Broken := weft.NewComponent("Broken", func(_ struct{}, s *weft.RenderSession) any {
		return strconv.ErrSyntax
	})
	e := newEnv()
	handle := weft.CreateRoot(Broken.With(struct{}{}), e.container, e.rt).Mount()
	e.fail(t, handle, "E501")
	if got := e.container.InnerHTML(); got != "" {
		t.Errorf("failed mount left %q", got)
	}
}
