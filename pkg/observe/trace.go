package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/weft/pkg/weft"
)

// Default tracer name for weft runtimes.
const defaultTracerName = "weft"

// TracerConfig configures the OpenTelemetry observer.
type TracerConfig struct {
	// TracerName is the name of the tracer (default: "weft").
	TracerName string

	// Provider supplies the tracer. Default: the global provider.
	Provider trace.TracerProvider

	// Parent is the context update spans are started in.
	Parent context.Context
}

// TracerOption configures the OpenTelemetry observer.
type TracerOption func(*TracerConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TracerOption {
	return func(c *TracerConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(p trace.TracerProvider) TracerOption {
	return func(c *TracerConfig) {
		c.Provider = p
	}
}

// WithParentContext starts every update span as a child of the span in ctx.
func WithParentContext(ctx context.Context) TracerOption {
	return func(c *TracerConfig) {
		c.Parent = ctx
	}
}

type spanKey struct {
	frame uint64
	name  string
}

// Tracer records one span per update frame with child spans for each
// coroutine render and commit phase.
type Tracer struct {
	tracer trace.Tracer
	parent context.Context

	mu      sync.Mutex
	updates map[uint64]context.Context
	spans   map[spanKey]trace.Span
}

// NewTracer creates a tracing observer.
func NewTracer(opts ...TracerOption) *Tracer {
	config := TracerConfig{TracerName: defaultTracerName, Parent: context.Background()}
	for _, opt := range opts {
		opt(&config)
	}
	provider := config.Provider
	if provider == nil {
		provider = otel.GetTracerProvider()
	}
	return &Tracer{
		tracer:  provider.Tracer(config.TracerName),
		parent:  config.Parent,
		updates: make(map[uint64]context.Context),
		spans:   make(map[spanKey]trace.Span),
	}
}

// OnRuntimeEvent implements weft.Observer.
func (t *Tracer) OnRuntimeEvent(e weft.RuntimeEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch e.Kind {
	case weft.EventUpdateStart:
		ctx, _ := t.tracer.Start(t.parent, "weft.update",
			trace.WithTimestamp(e.Time),
			trace.WithAttributes(
				attribute.Int64("weft.frame", int64(e.FrameID)),
				attribute.String("weft.lanes", e.Lanes.String()),
				attribute.String("weft.coroutine", e.Coroutine),
			),
		)
		t.updates[e.FrameID] = ctx

	case weft.EventRenderStart:
		t.start(e, e.Coroutine, "weft.render", attribute.String("weft.coroutine", e.Coroutine))

	case weft.EventRenderEnd:
		t.end(e, e.Coroutine, nil)

	case weft.EventRenderError:
		span := t.spans[spanKey{e.FrameID, e.Coroutine}]
		if span != nil {
			span.SetAttributes(attribute.Bool("weft.handled", e.Handled))
		}
		t.end(e, e.Coroutine, e.Err)

	case weft.EventYield:
		if ctx, ok := t.updates[e.FrameID]; ok {
			trace.SpanFromContext(ctx).AddEvent("yield", trace.WithTimestamp(e.Time))
		}

	case weft.EventCommitStart:
		t.start(e, e.Phase.String(), "weft.commit."+e.Phase.String(), attribute.Int("weft.effects", e.Effects))

	case weft.EventCommitEnd:
		t.end(e, e.Phase.String(), e.Err)

	case weft.EventUpdateEnd:
		ctx, ok := t.updates[e.FrameID]
		if !ok {
			return
		}
		delete(t.updates, e.FrameID)
		finish(trace.SpanFromContext(ctx), e.Err, e)
	}
}

func (t *Tracer) start(e weft.RuntimeEvent, name, spanName string, attrs ...attribute.KeyValue) {
	ctx, ok := t.updates[e.FrameID]
	if !ok {
		ctx = t.parent
	}
	_, span := t.tracer.Start(ctx, spanName, trace.WithTimestamp(e.Time), trace.WithAttributes(attrs...))
	t.spans[spanKey{e.FrameID, name}] = span
}

func (t *Tracer) end(e weft.RuntimeEvent, name string, err error) {
	key := spanKey{e.FrameID, name}
	span, ok := t.spans[key]
	if !ok {
		return
	}
	delete(t.spans, key)
	finish(span, err, e)
}

func finish(span trace.Span, err error, e weft.RuntimeEvent) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End(trace.WithTimestamp(e.Time))
}
