// Package scheduler provides the cooperative task loop weft hosts run on.
//
// A Loop owns three FIFO queues, one per Priority. Jobs only ever execute on
// the goroutine driving the loop (Run, RunUntilIdle or Step); any goroutine
// may Post. This keeps engine state single-threaded while letting callers
// outside the loop await results through Task.
//
//	loop := scheduler.NewLoop()
//	task := loop.Post(func() error { return work() }, scheduler.UserVisible)
//	loop.RunUntilIdle()
//	err := task.Err()
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Priority is a host task priority.
type Priority uint8

const (
	// UserBlocking work responds to direct input.
	UserBlocking Priority = iota + 1
	// UserVisible work is visible but not blocking input. It is the default.
	UserVisible
	// Background work can be deferred arbitrarily.
	Background
)

// String returns the priority name as used by the host scheduler API.
func (p Priority) String() string {
	switch p {
	case UserBlocking:
		return "user-blocking"
	case UserVisible:
		return "user-visible"
	case Background:
		return "background"
	default:
		return "unspecified"
	}
}

// DefaultFrameBudget is the elapsed time after which ShouldYield reports true.
const DefaultFrameBudget = 5 * time.Millisecond

type job struct {
	fn       func() error
	task     *Task
	priority Priority
}

// Loop is a priority task queue drained by a single goroutine.
type Loop struct {
	mu      sync.Mutex
	queues  [3][]*job
	wake    chan struct{}
	current Priority
	idle    Priority

	now         func() time.Time
	frameBudget time.Duration
}

// Option configures a Loop.
type Option func(*Loop)

// WithClock replaces the monotonic clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Loop) {
		l.now = now
	}
}

// WithFrameBudget sets the budget used by ShouldYield.
func WithFrameBudget(d time.Duration) Option {
	return func(l *Loop) {
		l.frameBudget = d
	}
}

// WithIdlePriority sets the priority CurrentPriority reports outside of a
// task. It defaults to UserVisible.
func WithIdlePriority(p Priority) Option {
	return func(l *Loop) {
		if p >= UserBlocking && p <= Background {
			l.idle = p
		}
	}
}

// NewLoop creates an idle loop.
func NewLoop(opts ...Option) *Loop {
	l := &Loop{
		wake:        make(chan struct{}, 1),
		idle:        UserVisible,
		now:         time.Now,
		frameBudget: DefaultFrameBudget,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Post enqueues fn at priority p and returns a task settled with fn's error.
// A panic in fn settles the task with an error instead of unwinding the loop.
func (l *Loop) Post(fn func() error, p Priority) *Task {
	if p < UserBlocking || p > Background {
		p = UserVisible
	}
	j := &job{fn: fn, task: NewTask(), priority: p}

	l.mu.Lock()
	l.queues[p-1] = append(l.queues[p-1], j)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return j.task
}

// Pending returns the number of queued jobs.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, q := range l.queues {
		n += len(q)
	}
	return n
}

// Step runs the highest priority queued job and reports whether one ran.
func (l *Loop) Step() bool {
	l.mu.Lock()
	var next *job
	for i := range l.queues {
		if len(l.queues[i]) > 0 {
			next = l.queues[i][0]
			l.queues[i][0] = nil
			l.queues[i] = l.queues[i][1:]
			break
		}
	}
	l.mu.Unlock()

	if next == nil {
		return false
	}
	l.execute(next)
	return true
}

// RunUntilIdle runs jobs until every queue is empty, including jobs posted by
// the jobs themselves, and returns how many ran.
func (l *Loop) RunUntilIdle() int {
	n := 0
	for l.Step() {
		n++
	}
	return n
}

// Run drains the loop until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.RunUntilIdle()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

// CurrentPriority returns the priority of the running job, or UserVisible
// outside of a job.
func (l *Loop) CurrentPriority() Priority {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.current == 0 {
		return l.idle
	}
	return l.current
}

// Now returns the loop clock's current time.
func (l *Loop) Now() time.Time {
	return l.now()
}

// ShouldYield reports whether work started elapsed ago has exhausted the
// frame budget.
func (l *Loop) ShouldYield(elapsed time.Duration) bool {
	return elapsed >= l.frameBudget
}

func (l *Loop) execute(j *job) {
	l.mu.Lock()
	previous := l.current
	l.current = j.priority
	l.mu.Unlock()

	err := runJob(j.fn)

	l.mu.Lock()
	l.current = previous
	l.mu.Unlock()

	j.task.Resolve(err)
}

func runJob(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
				return
			}
			err = fmt.Errorf("scheduler: job panicked: %v", r)
		}
	}()
	return fn()
}
