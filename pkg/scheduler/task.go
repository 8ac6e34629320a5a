package scheduler

import (
	"context"
	"sync"
)

// Task is an awaitable result of scheduled work. It settles exactly once.
type Task struct {
	mu       sync.Mutex
	done     chan struct{}
	settled  bool
	err      error
	handlers []func(error)
}

// NewTask creates a pending task.
func NewTask() *Task {
	return &Task{done: make(chan struct{})}
}

// Resolved returns a task already settled with err.
func Resolved(err error) *Task {
	t := NewTask()
	t.Resolve(err)
	return t
}

// Resolve settles the task. Later calls are ignored. Handlers registered with
// OnSettled run synchronously on the calling goroutine.
func (t *Task) Resolve(err error) {
	t.mu.Lock()
	if t.settled {
		t.mu.Unlock()
		return
	}
	t.settled = true
	t.err = err
	handlers := t.handlers
	t.handlers = nil
	close(t.done)
	t.mu.Unlock()

	for _, h := range handlers {
		h(err)
	}
}

// Done returns a channel closed when the task settles.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Settled reports whether the task has settled.
func (t *Task) Settled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.settled
}

// Err returns the settled error, or nil while pending.
func (t *Task) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Wait blocks until the task settles or ctx is done.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// OnSettled registers fn to run when the task settles. If it already has,
// fn runs immediately.
func (t *Task) OnSettled(fn func(error)) {
	t.mu.Lock()
	if t.settled {
		err := t.err
		t.mu.Unlock()
		fn(err)
		return
	}
	t.handlers = append(t.handlers, fn)
	t.mu.Unlock()
}

// All returns a task that settles once every task has settled, with the
// first non-nil error in argument order.
func All(tasks ...*Task) *Task {
	all := NewTask()
	if len(tasks) == 0 {
		all.Resolve(nil)
		return all
	}
	var mu sync.Mutex
	remaining := len(tasks)
	errs := make([]error, len(tasks))
	for i, t := range tasks {
		i := i
		t.OnSettled(func(err error) {
			mu.Lock()
			errs[i] = err
			remaining--
			last := remaining == 0
			mu.Unlock()
			if !last {
				return
			}
			for _, e := range errs {
				if e != nil {
					all.Resolve(e)
					return
				}
			}
			all.Resolve(nil)
		})
	}
	return all
}
