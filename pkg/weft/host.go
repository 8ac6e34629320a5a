package weft

import (
	"time"

	"github.com/vango-dev/weft/pkg/part"
	"github.com/vango-dev/weft/pkg/scheduler"
)

// CommitPhase identifies one of the three effect queues of a frame.
type CommitPhase uint8

const (
	MutationPhase CommitPhase = iota
	LayoutPhase
	PassivePhase
)

// String returns the phase name.
func (p CommitPhase) String() string {
	switch p {
	case MutationPhase:
		return "mutation"
	case LayoutPhase:
		return "layout"
	case PassivePhase:
		return "passive"
	default:
		return "unknown"
	}
}

// CallbackOptions parameterize Host.RequestCallback.
type CallbackOptions struct {
	Priority scheduler.Priority
}

// Host is the environment the runtime renders into: it parses templates,
// picks primitives and layouts for plain values, schedules work and runs
// effects.
type Host interface {
	// CreateTemplate parses strs into a template. placeholder is the unique
	// token the host may use to mark holes while parsing.
	CreateTemplate(strs []string, binds []any, placeholder string, mode TemplateMode) (Template, error)

	// ResolvePrimitive returns the primitive used for a plain value at p.
	ResolvePrimitive(value any, p *part.Part) Primitive

	// ResolveLayout returns the layout used when a directive names none.
	ResolveLayout(value any, p *part.Part) Layout

	RequestCallback(fn func() error, opts CallbackOptions) *scheduler.Task
	GetCurrentTaskPriority() scheduler.Priority
	ShouldYieldToMain(elapsed time.Duration) bool
	YieldToMain(fn func() error) *scheduler.Task
	StartViewTransition(fn func() error) *scheduler.Task
	CommitEffects(effects []Effect, phase CommitPhase)
}
