// Package schedule provides the single UI loop and the deferred-work
// primitives built on it: debounced input and next-frame callbacks.
//
// Everything that touches view state runs on one loop. Timers never run
// work directly; they post it back onto the loop.
package schedule

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// ErrStopped is returned by Do once the loop has stopped.
var ErrStopped = errors.New("loop stopped")

// Task is a unit of work run on the UI loop.
type Task func()

// Poster enqueues a task on the UI loop.
type Poster interface {
	Post(Task)
}

// PosterFunc adapts a function to Poster.
type PosterFunc func(Task)

// Post calls f(t).
func (f PosterFunc) Post(t Task) { f(t) }

// Inline runs posted tasks immediately on the caller's goroutine.
// It is meant for tests and for callers that already run on the loop.
type Inline struct{}

// Post runs t.
func (Inline) Post(t Task) { t() }

// Loop serializes tasks onto a single goroutine.
type Loop struct {
	tasks  chan Task
	done   chan struct{}
	once   sync.Once
	logger *slog.Logger
}

// NewLoop creates a loop. Call Run to start processing.
func NewLoop(logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loop{
		tasks:  make(chan Task, 64),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Post enqueues t. Tasks posted after the loop stopped are dropped.
func (l *Loop) Post(t Task) {
	select {
	case <-l.done:
		l.logger.Debug("loop stopped, dropping task")
	case l.tasks <- t:
	}
}

// Do runs fn on the loop and waits for it to finish.
func (l *Loop) Do(ctx context.Context, fn func() error) error {
	errCh := make(chan error, 1)
	task := func() { errCh <- fn() }
	select {
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	case l.tasks <- task:
	}
	select {
	case err := <-errCh:
		return err
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run processes tasks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	defer l.once.Do(func() { close(l.done) })
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case t := <-l.tasks:
			l.run(t)
		}
	}
}

func (l *Loop) run(t Task) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("task panicked", "panic", r)
		}
	}()
	t()
}
