// Package renderthread implements [framesched.Thread], using an event loop
// (github.com/joeycumines/go-eventloop) as the render (or owner) thread.
//
// The loop runs on the goroutine that calls [Thread.Run], which is what
// [Thread.IsCurrent] identifies.
package renderthread

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/joeycumines/go-eventloop"
	"github.com/joeycumines/go-framesched/internal/goid"
	"github.com/joeycumines/logiface"
)

var (
	// ErrTerminated is returned by Dispatch after the thread has shut down.
	ErrTerminated = errors.New("renderthread: terminated")

	// ErrAlreadyRunning is returned if Run is called more than once.
	ErrAlreadyRunning = errors.New("renderthread: already running")
)

// Thread is a named event loop, with goroutine affinity.
type Thread struct {
	loop    *eventloop.Loop
	logger  *logiface.Logger[logiface.Event]
	name    string
	gid     atomic.Uint64
	running atomic.Bool
}

// New creates a thread, which must be started by calling Run.
func New(name string, opts ...Option) (*Thread, error) {
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	loop, err := eventloop.New()
	if err != nil {
		return nil, fmt.Errorf("renderthread: %s: %w", name, err)
	}
	return &Thread{
		loop: loop,
		name: name,
		logger: cfg.logger.Clone().
			Str(`thread`, name).
			Logger(),
	}, nil
}

// Name returns the name the thread was created with.
func (x *Thread) Name() string { return x.name }

// Run runs the thread on the calling goroutine, until ctx is canceled, or
// Shutdown is called.
func (x *Thread) Run(ctx context.Context) error {
	if !x.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	x.gid.Store(goid.Get())
	x.logger.Debug().Log(`thread started`)
	err := x.loop.Run(ctx)
	x.logger.Debug().Err(err).Log(`thread stopped`)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// Dispatch queues fn, to be run on the thread. It never runs fn inline.
func (x *Thread) Dispatch(fn func()) error {
	if err := x.loop.Submit(fn); err != nil {
		if errors.Is(err, eventloop.ErrLoopTerminated) {
			return fmt.Errorf("%w: %s", ErrTerminated, x.name)
		}
		return fmt.Errorf("renderthread: %s: %w", x.name, err)
	}
	return nil
}

// IsCurrent returns true if called from within the thread.
func (x *Thread) IsCurrent() bool {
	id := x.gid.Load()
	return id != 0 && id == goid.Get()
}

// Do runs fn on the thread, blocking until it returns, or ctx is done.
// If called from the thread itself, fn is run inline.
func (x *Thread) Do(ctx context.Context, fn func()) error {
	if x.IsCurrent() {
		fn()
		return nil
	}
	done := make(chan struct{})
	if err := x.Dispatch(func() {
		defer close(done)
		fn()
	}); err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops the thread, after draining queued tasks. It blocks until
// the thread has stopped, or ctx is done. It is safe to call more than once.
func (x *Thread) Shutdown(ctx context.Context) error {
	err := x.loop.Shutdown(ctx)
	if errors.Is(err, eventloop.ErrLoopTerminated) {
		return nil
	}
	return err
}
