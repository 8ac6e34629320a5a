package primitive

import (
	"github.com/vango-dev/weft/pkg/part"
	"github.com/vango-dev/weft/pkg/weft"
)

// Blackhole accepts any value and renders nothing. Hosts use it for nil
// content and for parts that have no effect in their environment.
var Blackhole weft.Primitive = blackholePrimitive{}

type blackholePrimitive struct{}

func (blackholePrimitive) Name() string                      { return "BlackholePrimitive" }
func (blackholePrimitive) EnsureValue(any, *part.Part) error { return nil }

func (t blackholePrimitive) ResolveBinding(value any, p *part.Part, _ weft.DirectiveContext) weft.Binding {
	return &blackholeBinding{base: newBase(t, value, p)}
}

type blackholeBinding struct {
	base
}

func (b *blackholeBinding) ShouldBind(any) bool { return false }
func (b *blackholeBinding) Commit()             { b.take() }
func (b *blackholeBinding) Rollback()           { b.release() }
