package host

import (
	"sync/atomic"
	"time"

	"github.com/vango-dev/weft/pkg/part"
	"github.com/vango-dev/weft/pkg/scheduler"
	"github.com/vango-dev/weft/pkg/weft"
)

// ClientHost renders into a live document. Long frames yield to the loop
// once the loop's frame budget is spent, and view transitions run their
// update as a separate user-blocking task.
type ClientHost struct {
	base
	transitions atomic.Int64
}

var _ weft.Host = (*ClientHost)(nil)

// NewClient creates a client host.
func NewClient(opts ...Option) *ClientHost {
	c := newConfig(opts)
	return &ClientHost{base: base{loop: c.loop, logger: c.logger}}
}

func (h *ClientHost) ResolvePrimitive(value any, p *part.Part) weft.Primitive {
	return resolvePrimitive(value, p)
}

func (h *ClientHost) ShouldYieldToMain(elapsed time.Duration) bool {
	return h.loop.ShouldYield(elapsed)
}

func (h *ClientHost) StartViewTransition(fn func() error) *scheduler.Task {
	h.transitions.Add(1)
	return h.loop.Post(fn, scheduler.UserBlocking)
}

// ViewTransitions returns how many view transitions have started.
func (h *ClientHost) ViewTransitions() int {
	return int(h.transitions.Load())
}
