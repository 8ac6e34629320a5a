package weft

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vango-dev/weft/internal/errors"
	"github.com/vango-dev/weft/pkg/part"
	"github.com/vango-dev/weft/pkg/scheduler"
)

// UpdateHandle tracks one scheduled update.
type UpdateHandle struct {
	Lanes    Lanes
	finished *scheduler.Task
}

func settledHandle(lanes Lanes, err error) *UpdateHandle {
	return &UpdateHandle{Lanes: lanes, finished: scheduler.Resolved(err)}
}

// Finished settles after the update's passive effects ran, or with the error
// that aborted its frame.
func (h *UpdateHandle) Finished() *scheduler.Task {
	return h.finished
}

// Wait blocks until the update finished or ctx is done.
func (h *UpdateHandle) Wait(ctx context.Context) error {
	return h.finished.Wait(ctx)
}

// Err returns the update error once settled.
func (h *UpdateHandle) Err() error {
	return h.finished.Err()
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*Runtime)

// WithLogger sets the runtime logger.
func WithLogger(logger *slog.Logger) RuntimeOption {
	return func(r *Runtime) {
		r.logger = logger
	}
}

// WithObserver adds an observer of runtime events.
func WithObserver(o Observer) RuntimeOption {
	return func(r *Runtime) {
		r.observers = append(r.observers, o)
	}
}

// WithClock sets the time source used to measure frames.
func WithClock(now func() time.Time) RuntimeOption {
	return func(r *Runtime) {
		r.now = now
	}
}

// WithIdentifierPrefix sets the prefix of identifiers returned by UseID.
// Server and client runtimes must agree on it for hydration.
func WithIdentifierPrefix(prefix string) RuntimeOption {
	return func(r *Runtime) {
		r.identifierPrefix = prefix
	}
}

type templateKey struct {
	strs *TemplateStrings
	mode TemplateMode
}

type pendingUpdates struct {
	count   int
	waiters []*scheduler.Task
}

type deferredUpdate struct {
	co     Coroutine
	lanes  Lanes
	handle *UpdateHandle
}

type passiveBatch struct {
	frame   *RenderFrame
	effects []Effect
	handle  *UpdateHandle
}

// frameRun is a frame being rendered, possibly across several host tasks.
type frameRun struct {
	frame  *RenderFrame
	handle *UpdateHandle
	start  time.Time
}

// Runtime schedules coroutines, renders them in frames and commits the
// resulting effects through its Host. It is driven from a single goroutine:
// the one running the host's scheduler.
type Runtime struct {
	host      Host
	logger    *slog.Logger
	observers []Observer
	now       func() time.Time

	mu               sync.Mutex
	templates        map[templateKey]Template
	placeholder      string
	identifierPrefix string
	identifierCount  uint64
	frameCount       uint64
	pending          map[Coroutine]*pendingUpdates

	current  *frameRun
	deferred []deferredUpdate
	passive  []*passiveBatch
}

// NewRuntime creates a runtime rendering through host.
func NewRuntime(host Host, opts ...RuntimeOption) *Runtime {
	r := &Runtime{
		host:             host,
		logger:           slog.Default().With("component", "weft"),
		now:              time.Now,
		templates:        make(map[templateKey]Template),
		placeholder:      newPlaceholder(),
		identifierPrefix: ":w",
		pending:          make(map[Coroutine]*pendingUpdates),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func newPlaceholder() string {
	var b [6]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "weft-0"
	}
	return "weft-" + hex.EncodeToString(b[:])
}

// Host returns the runtime's host.
func (r *Runtime) Host() Host {
	return r.host
}

// Logger returns the runtime logger.
func (r *Runtime) Logger() *slog.Logger {
	return r.logger
}

// Placeholder returns the token templates mark holes with while parsing.
func (r *Runtime) Placeholder() string {
	return r.placeholder
}

// ResolveDirective turns value into a Directive. Directives pass through,
// Bindables convert themselves and anything else is bound by the host's
// primitive for p.
func (r *Runtime) ResolveDirective(value any, p *part.Part) Directive {
	switch v := value.(type) {
	case Directive:
		if v.Type == nil {
			panic(errors.New("E103").WithDetailf("directive without type at %s", part.Describe(p)))
		}
		return v
	case *Directive:
		return r.ResolveDirective(*v, p)
	case Bindable:
		return r.ResolveDirective(v.ToDirective(p, r), p)
	}
	primitive := r.host.ResolvePrimitive(value, p)
	if err := primitive.EnsureValue(value, p); err != nil {
		panic(errors.FromError(err, "E101").WithDetailf("%s received %#v", part.Describe(p), value))
	}
	return Directive{Type: primitive, Value: value}
}

// ResolveSlot creates a slot holding value at p.
func (r *Runtime) ResolveSlot(value any, p *part.Part) Slot {
	d := r.ResolveDirective(value, p)
	layout := d.Layout
	if layout == nil {
		layout = r.host.ResolveLayout(d.Value, p)
	}
	binding := d.Type.ResolveBinding(d.Value, p, r)
	return layout.ResolveSlot(binding, d, r)
}

// ResolveTemplate returns the cached template for strs in mode, parsing it
// through the host on first use.
func (r *Runtime) ResolveTemplate(strs *TemplateStrings, binds []any, mode TemplateMode) (Template, error) {
	key := templateKey{strs: strs, mode: mode}
	r.mu.Lock()
	t, ok := r.templates[key]
	r.mu.Unlock()
	if ok {
		return t, nil
	}
	t, err := r.host.CreateTemplate(strs.Parts(), binds, r.placeholder, mode)
	if err != nil {
		return nil, errors.FromError(err, "E301")
	}
	r.mu.Lock()
	r.templates[key] = t
	r.mu.Unlock()
	return t, nil
}

// TemplateDirective resolves a template and pairs it with binds. It panics
// with a template error when the markup is invalid.
func (r *Runtime) TemplateDirective(strs *TemplateStrings, binds []any, mode TemplateMode) Directive {
	return templateDirective(r, strs, binds, mode)
}

func templateDirective(ctx DirectiveContext, strs *TemplateStrings, binds []any, mode TemplateMode) Directive {
	t, err := ctx.ResolveTemplate(strs, binds, mode)
	if err != nil {
		panic(err)
	}
	if t.Arity() != len(binds) {
		panic(errors.New("E302").WithDetailf("template has %d holes, got %d values", t.Arity(), len(binds)))
	}
	return Directive{Type: t, Value: binds}
}

// ScheduleUpdate requests a render of co at the lanes derived from opts.
func (r *Runtime) ScheduleUpdate(co Coroutine, opts UpdateOptions) *UpdateHandle {
	lanes := LanesFromOptions(opts, r.host.GetCurrentTaskPriority())
	co.RequestLanes(lanes)

	if run := r.current; run != nil && run.frame.Lanes&lanes == lanes && run.frame.isPending(co) {
		r.track(co, run.handle.finished)
		return &UpdateHandle{Lanes: lanes, finished: run.handle.finished}
	}

	handle := &UpdateHandle{Lanes: lanes, finished: scheduler.NewTask()}
	r.track(co, handle.finished)
	r.requestFlush(co, lanes, handle)
	return handle
}

func (r *Runtime) requestFlush(co Coroutine, lanes Lanes, handle *UpdateHandle) {
	r.host.RequestCallback(func() error {
		r.runUpdate(co, lanes, handle)
		return nil
	}, CallbackOptions{Priority: PriorityFromLanes(lanes)})
}

// WaitForUpdate returns a task that settles once co has no outstanding
// updates, including updates scheduled while waiting.
func (r *Runtime) WaitForUpdate(co Coroutine) *scheduler.Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pending[co]
	if !ok || p.count == 0 {
		return scheduler.Resolved(nil)
	}
	t := scheduler.NewTask()
	p.waiters = append(p.waiters, t)
	return t
}

func (r *Runtime) track(co Coroutine, finished *scheduler.Task) {
	r.mu.Lock()
	p, ok := r.pending[co]
	if !ok {
		p = &pendingUpdates{}
		r.pending[co] = p
	}
	p.count++
	r.mu.Unlock()

	finished.OnSettled(func(error) {
		r.mu.Lock()
		p.count--
		var waiters []*scheduler.Task
		if p.count == 0 {
			waiters = p.waiters
			p.waiters = nil
			if r.pending[co] == p {
				delete(r.pending, co)
			}
		}
		r.mu.Unlock()
		for _, w := range waiters {
			w.Resolve(nil)
		}
	})
}

func (r *Runtime) runUpdate(co Coroutine, lanes Lanes, handle *UpdateHandle) {
	if r.current != nil {
		r.deferred = append(r.deferred, deferredUpdate{co: co, lanes: lanes, handle: handle})
		return
	}
	r.flushPassive()
	if co.PendingLanes()&lanes == NoLanes {
		handle.finished.Resolve(nil)
		return
	}

	r.mu.Lock()
	r.frameCount++
	id := r.frameCount
	r.mu.Unlock()

	frame := newRenderFrame(id, lanes)
	frame.pendingCoroutines = append(frame.pendingCoroutines, co)
	run := &frameRun{frame: frame, handle: handle, start: r.now()}
	r.current = run
	r.emit(RuntimeEvent{Kind: EventUpdateStart, FrameID: id, Lanes: lanes, Coroutine: co.Name()})
	r.continueFrame(run)
}

func (r *Runtime) continueFrame(run *frameRun) {
	frame := run.frame
	start := r.now()
	for {
		co, ok := frame.popCoroutine()
		if !ok {
			break
		}
		if co.PendingLanes()&frame.Lanes == NoLanes {
			continue
		}
		if err := r.resume(co, frame); err != nil {
			r.finishFrame(run, err)
			return
		}
		if frame.Pending() > 0 && r.host.ShouldYieldToMain(r.now().Sub(start)) {
			r.emit(RuntimeEvent{Kind: EventYield, FrameID: frame.ID, Lanes: frame.Lanes, Duration: r.now().Sub(start)})
			r.host.YieldToMain(func() error {
				r.continueFrame(run)
				return nil
			})
			return
		}
	}
	r.commit(run)
}

func (r *Runtime) resume(co Coroutine, frame *RenderFrame) (err error) {
	staging := frame.staging()
	session := &UpdateSession{Frame: staging, Scope: co.Scope(), Coroutine: co, Runtime: r}
	start := r.now()
	r.emit(RuntimeEvent{Kind: EventRenderStart, FrameID: frame.ID, Lanes: frame.Lanes, Coroutine: co.Name()})

	defer func() {
		rec := recover()
		if rec == nil {
			frame.merge(staging)
			r.emit(RuntimeEvent{Kind: EventRenderEnd, FrameID: frame.ID, Lanes: frame.Lanes, Coroutine: co.Name(), Duration: r.now().Sub(start)})
			return
		}
		renderErr := panicError(co, rec)
		handled := false
		if isRecoverable(renderErr) {
			if scope := co.Scope(); scope != nil && scope.Parent() != nil {
				handled = scope.Parent().handleError(renderErr)
			}
		}
		r.emit(RuntimeEvent{Kind: EventRenderError, FrameID: frame.ID, Lanes: frame.Lanes, Coroutine: co.Name(), Err: renderErr, Handled: handled})
		if handled {
			r.logger.Warn("render error caught by boundary", "coroutine", co.Name(), "error", renderErr)
			return
		}
		err = renderErr
	}()

	co.Resume(session)
	return nil
}

func panicError(co Coroutine, rec any) error {
	if err, ok := rec.(error); ok {
		var we *errors.WeftError
		if stderrors.As(err, &we) {
			return err
		}
		return errors.New("E501").WithDetail(co.Name()).Wrap(err)
	}
	return errors.New("E501").WithDetail(co.Name()).Wrap(fmt.Errorf("panic: %v", rec))
}

// isRecoverable reports whether err may be handled by an error boundary.
// Directive, hook, template and hydration errors are programming errors and
// always abort the frame.
func isRecoverable(err error) bool {
	var we *errors.WeftError
	if !stderrors.As(err, &we) {
		return true
	}
	switch we.Category {
	case errors.CategoryDirective, errors.CategoryHook, errors.CategoryTemplate, errors.CategoryHydration:
		return false
	}
	return true
}

func (r *Runtime) commit(run *frameRun) {
	frame := run.frame
	apply := func() error {
		if err := r.commitPhase(frame, MutationPhase, frame.mutationEffects); err != nil {
			return err
		}
		return r.commitPhase(frame, LayoutPhase, frame.layoutEffects)
	}

	var task *scheduler.Task
	if frame.Lanes&ViewTransitionLane != NoLanes {
		task = r.host.StartViewTransition(apply)
	} else {
		task = scheduler.Resolved(apply())
	}
	task.OnSettled(func(err error) {
		if err != nil {
			r.finishFrame(run, err)
			return
		}
		if len(frame.passiveEffects) == 0 {
			r.finishFrame(run, nil)
			return
		}
		r.passive = append(r.passive, &passiveBatch{frame: frame, effects: frame.passiveEffects, handle: run.handle})
		r.current = nil
		r.host.RequestCallback(func() error {
			r.flushPassive()
			return nil
		}, CallbackOptions{Priority: scheduler.Background})
		r.drainDeferred()
	})
}

func (r *Runtime) finishFrame(run *frameRun, err error) {
	if err != nil {
		r.logger.Error("update failed", "frame", run.frame.ID, "lanes", run.frame.Lanes, "error", err)
	}
	r.emit(RuntimeEvent{Kind: EventUpdateEnd, FrameID: run.frame.ID, Lanes: run.frame.Lanes, Duration: r.now().Sub(run.start), Err: err})
	if r.current == run {
		r.current = nil
	}
	run.handle.finished.Resolve(err)
	r.drainDeferred()
}

// flushPassive runs the passive effects of committed frames. It runs before
// the next frame renders so effects observe commits in order.
func (r *Runtime) flushPassive() {
	batches := r.passive
	r.passive = nil
	for _, b := range batches {
		err := r.commitPhase(b.frame, PassivePhase, b.effects)
		r.emit(RuntimeEvent{Kind: EventUpdateEnd, FrameID: b.frame.ID, Lanes: b.frame.Lanes, Err: err})
		b.handle.finished.Resolve(err)
	}
}

func (r *Runtime) drainDeferred() {
	deferred := r.deferred
	r.deferred = nil
	for _, d := range deferred {
		r.requestFlush(d.co, d.lanes, d.handle)
	}
}

func (r *Runtime) commitPhase(frame *RenderFrame, phase CommitPhase, effects []Effect) (err error) {
	if len(effects) == 0 {
		return nil
	}
	start := r.now()
	r.emit(RuntimeEvent{Kind: EventCommitStart, FrameID: frame.ID, Lanes: frame.Lanes, Phase: phase, Effects: len(effects)})
	defer func() {
		if rec := recover(); rec != nil {
			err = errors.New("E601").WithDetailf("%s effect", phase).Wrap(fmt.Errorf("panic: %v", rec))
		}
		r.emit(RuntimeEvent{Kind: EventCommitEnd, FrameID: frame.ID, Lanes: frame.Lanes, Phase: phase, Effects: len(effects), Duration: r.now().Sub(start), Err: err})
	}()
	r.host.CommitEffects(effects, phase)
	return nil
}

func (r *Runtime) emit(e RuntimeEvent) {
	if len(r.observers) == 0 {
		return
	}
	e.Time = r.now()
	for _, o := range r.observers {
		o.OnRuntimeEvent(e)
	}
}
