package directive

import (
	"github.com/vango-dev/weft/pkg/part"
	"github.com/vango-dev/weft/pkg/slot"
	"github.com/vango-dev/weft/pkg/weft"
)

type keyed struct {
	key   any
	value any
}

// Keyed binds value under key. When the key changes the old binding is set
// aside and a new one is created, even for the same directive type.
func Keyed(key, value any) weft.Bindable {
	return keyed{key: key, value: value}
}

func (k keyed) ToDirective(p *part.Part, ctx weft.DirectiveContext) weft.Directive {
	d := ctx.ResolveDirective(k.value, p)
	d.Key = k.key
	d.Layout = slot.Keyed
	return d
}

type cached struct {
	key   any
	value any
}

// Cached binds value in a slot that keeps the content of every key it has
// shown, so switching back to a key restores its state.
func Cached(key, value any) weft.Bindable {
	return cached{key: key, value: value}
}

func (c cached) ToDirective(p *part.Part, ctx weft.DirectiveContext) weft.Directive {
	d := ctx.ResolveDirective(c.value, p)
	d.Key = c.key
	d.Layout = slot.Cached(slot.Flexible)
	return d
}

type strict struct {
	value any
}

// Strict binds value in a slot that rejects a change of directive type.
func Strict(value any) weft.Bindable {
	return strict{value: value}
}

func (s strict) ToDirective(p *part.Part, ctx weft.DirectiveContext) weft.Directive {
	d := ctx.ResolveDirective(s.value, p)
	d.Layout = slot.Strict
	return d
}
