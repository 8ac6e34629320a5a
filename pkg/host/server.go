package host

import (
	"context"
	"strings"
	"time"

	"github.com/vango-dev/weft/pkg/dom"
	"github.com/vango-dev/weft/pkg/part"
	"github.com/vango-dev/weft/pkg/primitive"
	"github.com/vango-dev/weft/pkg/scheduler"
	"github.com/vango-dev/weft/pkg/weft"
)

// ServerHost renders markup for serialization. It never yields, runs view
// transitions inline and ignores parts that only matter in a live document:
// events, refs, properties and live properties.
type ServerHost struct {
	base
}

var _ weft.Host = (*ServerHost)(nil)

// NewServer creates a server host.
func NewServer(opts ...Option) *ServerHost {
	c := newConfig(opts)
	return &ServerHost{base: base{loop: c.loop, logger: c.logger}}
}

func (h *ServerHost) ResolvePrimitive(value any, p *part.Part) weft.Primitive {
	switch p.Kind {
	case part.KindEvent, part.KindProperty, part.KindLive:
		return primitive.Blackhole
	case part.KindAttribute:
		if strings.EqualFold(p.Name, ":ref") {
			return primitive.Blackhole
		}
	}
	return resolvePrimitive(value, p)
}

func (h *ServerHost) ShouldYieldToMain(time.Duration) bool { return false }

func (h *ServerHost) StartViewTransition(fn func() error) *scheduler.Task {
	return scheduler.Resolved(fn())
}

// RenderToString mounts value into a detached container, drains the loop and
// returns the container's markup.
func (h *ServerHost) RenderToString(ctx context.Context, value any, opts ...weft.RuntimeOption) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	rt := weft.NewRuntime(h, opts...)
	container := dom.NewElement("div")
	handle := weft.CreateRoot(value, container, rt).Mount()
	h.loop.RunUntilIdle()
	if err := handle.Wait(ctx); err != nil {
		return "", err
	}
	return container.InnerHTML(), nil
}
