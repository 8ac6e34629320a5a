package weft

import "time"

// EventKind identifies a runtime event.
type EventKind uint8

const (
	EventUpdateStart EventKind = iota + 1
	EventUpdateEnd
	EventRenderStart
	EventRenderEnd
	EventRenderError
	EventYield
	EventCommitStart
	EventCommitEnd
)

// String returns a human-readable name for the event kind.
func (k EventKind) String() string {
	switch k {
	case EventUpdateStart:
		return "update-start"
	case EventUpdateEnd:
		return "update-end"
	case EventRenderStart:
		return "render-start"
	case EventRenderEnd:
		return "render-end"
	case EventRenderError:
		return "render-error"
	case EventYield:
		return "yield"
	case EventCommitStart:
		return "commit-start"
	case EventCommitEnd:
		return "commit-end"
	default:
		return "unknown"
	}
}

// RuntimeEvent describes one step of a frame. Fields that do not apply to
// the event kind are zero.
type RuntimeEvent struct {
	Kind      EventKind
	FrameID   uint64
	Lanes     Lanes
	Coroutine string
	Phase     CommitPhase
	Effects   int
	Duration  time.Duration
	Err       error
	Handled   bool
	Time      time.Time
}

// Observer receives runtime events synchronously on the loop goroutine.
type Observer interface {
	OnRuntimeEvent(e RuntimeEvent)
}

// ObserverFunc adapts a function to an Observer.
type ObserverFunc func(e RuntimeEvent)

// OnRuntimeEvent calls f.
func (f ObserverFunc) OnRuntimeEvent(e RuntimeEvent) { f(e) }
