package observe

import (
	"context"
	"log/slog"

	"github.com/vango-dev/weft/pkg/weft"
)

// LogObserver writes runtime events to a slog.Logger. Frame lifecycle is
// logged at Debug, render errors caught by a boundary at Warn and failed
// updates at Error.
type LogObserver struct {
	logger *slog.Logger
	level  slog.Level
}

// NewLogObserver creates a LogObserver. A nil logger uses slog.Default.
func NewLogObserver(logger *slog.Logger) *LogObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogObserver{logger: logger, level: slog.LevelDebug}
}

// WithLevel returns a copy logging routine events at level instead of Debug.
func (o *LogObserver) WithLevel(level slog.Level) *LogObserver {
	c := *o
	c.level = level
	return &c
}

// OnRuntimeEvent implements weft.Observer.
func (o *LogObserver) OnRuntimeEvent(e weft.RuntimeEvent) {
	attrs := []any{"frame", e.FrameID, "lanes", e.Lanes.String()}
	if e.Coroutine != "" {
		attrs = append(attrs, "coroutine", e.Coroutine)
	}

	switch e.Kind {
	case weft.EventRenderError:
		attrs = append(attrs, "error", e.Err)
		if e.Handled {
			o.logger.Warn("render error handled", attrs...)
		} else {
			o.logger.Error("render error", attrs...)
		}
		return
	case weft.EventUpdateEnd:
		attrs = append(attrs, "duration", e.Duration)
		if e.Err != nil {
			o.logger.Error("update failed", append(attrs, "error", e.Err)...)
			return
		}
	case weft.EventCommitStart, weft.EventCommitEnd:
		attrs = append(attrs, "phase", e.Phase.String(), "effects", e.Effects)
		if e.Err != nil {
			attrs = append(attrs, "error", e.Err)
		}
	case weft.EventRenderEnd, weft.EventYield:
		attrs = append(attrs, "duration", e.Duration)
	}
	o.logger.Log(context.Background(), o.level, e.Kind.String(), attrs...)
}
