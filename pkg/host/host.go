package host

import (
	"log/slog"
	"strings"

	"github.com/vango-dev/weft/pkg/directive"
	"github.com/vango-dev/weft/pkg/part"
	"github.com/vango-dev/weft/pkg/primitive"
	"github.com/vango-dev/weft/pkg/scheduler"
	"github.com/vango-dev/weft/pkg/slot"
	"github.com/vango-dev/weft/pkg/template"
	"github.com/vango-dev/weft/pkg/weft"
)

// Option configures a host.
type Option func(*config)

type config struct {
	loop   *scheduler.Loop
	logger *slog.Logger
}

// WithLoop runs the host on loop instead of a private one.
func WithLoop(loop *scheduler.Loop) Option {
	return func(c *config) {
		c.loop = loop
	}
}

// WithLogger sets the host logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

func newConfig(opts []Option) config {
	c := config{}
	for _, opt := range opts {
		opt(&c)
	}
	if c.loop == nil {
		c.loop = scheduler.NewLoop()
	}
	if c.logger == nil {
		c.logger = slog.Default().With("component", "host")
	}
	return c
}

// base implements the parts of weft.Host the client and server share.
type base struct {
	loop   *scheduler.Loop
	logger *slog.Logger
}

// Loop returns the task loop the host schedules on. Tests and embedders drive
// it with RunUntilIdle or Run.
func (h *base) Loop() *scheduler.Loop {
	return h.loop
}

func (h *base) CreateTemplate(strs []string, _ []any, placeholder string, mode weft.TemplateMode) (weft.Template, error) {
	t, err := template.Parse(strs, placeholder, mode)
	if err != nil {
		h.logger.Debug("template parse failed", "mode", mode, "error", err)
		return nil, err
	}
	return t, nil
}

// ResolveLayout gives child content a Flexible slot, so it may change type,
// and every other part a Strict one.
func (h *base) ResolveLayout(_ any, p *part.Part) weft.Layout {
	if p.Kind == part.KindChildNode {
		return slot.Flexible
	}
	return slot.Strict
}

func (h *base) RequestCallback(fn func() error, opts weft.CallbackOptions) *scheduler.Task {
	return h.loop.Post(fn, opts.Priority)
}

func (h *base) GetCurrentTaskPriority() scheduler.Priority {
	return h.loop.CurrentPriority()
}

// YieldToMain continues fn at the current priority, behind anything already
// queued at the same or a higher priority.
func (h *base) YieldToMain(fn func() error) *scheduler.Task {
	return h.loop.Post(fn, h.loop.CurrentPriority())
}

func (h *base) CommitEffects(effects []weft.Effect, _ weft.CommitPhase) {
	for _, e := range effects {
		e.Commit()
	}
}

// resolvePrimitive maps a plain value to the primitive for its part kind.
func resolvePrimitive(value any, p *part.Part) weft.Primitive {
	switch p.Kind {
	case part.KindAttribute:
		switch strings.ToLower(p.Name) {
		case ":ref":
			return primitive.Ref
		case ":style":
			return primitive.Style
		case ":class", ":classlist":
			return primitive.ClassList
		}
		return primitive.Attribute
	case part.KindProperty:
		return primitive.Property
	case part.KindLive:
		return primitive.Live
	case part.KindEvent:
		return primitive.Event
	case part.KindElement:
		return primitive.Spread
	case part.KindText:
		return primitive.Text
	}
	switch value.(type) {
	case nil:
		return primitive.Blackhole
	case []any:
		return directive.List
	}
	return primitive.ChildText
}
