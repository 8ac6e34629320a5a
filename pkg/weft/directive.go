package weft

import (
	"github.com/vango-dev/weft/pkg/dom"
	"github.com/vango-dev/weft/pkg/part"
)

// DirectiveType knows how to create a Binding for a part. Types are compared
// by identity: two directives share a type only if their Type values are ==,
// or if the type implements Equals.
type DirectiveType interface {
	Name() string
	ResolveBinding(value any, p *part.Part, ctx DirectiveContext) Binding
}

// Directive pairs a type with the value it binds, plus an optional slot
// layout and identity key.
type Directive struct {
	Type   DirectiveType
	Value  any
	Layout Layout
	Key    any
}

// Bindable values convert themselves into a Directive on demand.
type Bindable interface {
	ToDirective(p *part.Part, ctx DirectiveContext) Directive
}

// Primitive is a DirectiveType for plain values. EnsureValue rejects values
// the primitive cannot bind at p.
type Primitive interface {
	DirectiveType
	EnsureValue(value any, p *part.Part) error
}

// DirectiveContext resolves values into directives and slots. The Runtime is
// the only implementation outside of tests.
type DirectiveContext interface {
	ResolveDirective(value any, p *part.Part) Directive
	ResolveSlot(value any, p *part.Part) Slot
	ResolveTemplate(strs *TemplateStrings, binds []any, mode TemplateMode) (Template, error)
}

// Binding is the live association of a directive value with a part.
//
// Bind records a pending value. Connect and Disconnect run during render and
// may enqueue work on the session; Commit and Rollback run in the commit
// phase and are the only methods that touch the DOM. Commit applies the
// pending value at most once per Bind, and Rollback is a no-op for a binding
// that was never committed.
type Binding interface {
	Type() DirectiveType
	Value() any
	Part() *part.Part
	ShouldBind(value any) bool
	Bind(value any)
	Hydrate(tree *HydrationTree, session *UpdateSession)
	Connect(session *UpdateSession)
	Disconnect(session *UpdateSession)
	Commit()
	Rollback()
}

// Slot owns the binding at a part and decides how a new value reconciles with
// it. Reconcile reports whether the slot has a pending commit. Owners commit
// dirty slots in their own commit and roll back detached slots when they
// remove the slot's DOM.
type Slot interface {
	Effect
	Value() any
	Part() *part.Part
	Binding() Binding
	Reconcile(value any, session *UpdateSession) bool
	Hydrate(tree *HydrationTree, session *UpdateSession)
	Attach(session *UpdateSession)
	Detach(session *UpdateSession)
	Rollback()
}

// Layout selects the slot variant for a directive.
type Layout interface {
	Name() string
	ResolveSlot(binding Binding, d Directive, ctx DirectiveContext) Slot
}

// Debuggable values are told when they are committed into and removed from
// the DOM, so they can annotate the part for inspection.
type Debuggable interface {
	Debug(p *part.Part)
	Undebug(p *part.Part)
}

// Effect is a unit of commit-phase work.
type Effect interface {
	Commit()
}

// EffectFunc adapts a function to an Effect.
type EffectFunc func()

// Commit calls f.
func (f EffectFunc) Commit() { f() }

// SameDirectiveType reports whether a and b are the same directive type.
func SameDirectiveType(a, b DirectiveType) bool {
	if a == nil || b == nil {
		return a == b
	}
	if eq, ok := a.(interface{ Equals(DirectiveType) bool }); ok {
		return eq.Equals(b)
	}
	return SameValue(a, b)
}

// Template is a parsed template. It is a DirectiveType whose value is the
// []any of bound values, one per hole.
type Template interface {
	DirectiveType
	Arity() int
}

// TemplateMode selects how template markup is parsed.
type TemplateMode uint8

const (
	ModeHTML TemplateMode = iota
	ModeSVG
	ModeMathML
	ModeTextarea
)

// String returns the mode name.
func (m TemplateMode) String() string {
	switch m {
	case ModeHTML:
		return "html"
	case ModeSVG:
		return "svg"
	case ModeMathML:
		return "math"
	case ModeTextarea:
		return "textarea"
	default:
		return "unknown"
	}
}

// Namespace returns the namespace new elements of m are created in.
func (m TemplateMode) Namespace() string {
	switch m {
	case ModeSVG:
		return dom.SVGNamespace
	case ModeMathML:
		return dom.MathMLNamespace
	default:
		return dom.HTMLNamespace
	}
}
