package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/joeycumines/go-framesched"
	"github.com/joeycumines/go-framesched/renderthread"
	"github.com/joeycumines/go-framesched/softvsync"
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
	"golang.org/x/sync/errgroup"
)

const teardownTimeout = 5 * time.Second

func newLogger(w io.Writer, level logiface.Level) *logiface.Logger[logiface.Event] {
	return stumpy.L.New(
		stumpy.L.WithStumpy(stumpy.WithWriter(w)),
		stumpy.L.WithLevel(level),
	).Logger()
}

// run wires up the scheduler, and drives it until the producer finishes, or
// ctx is canceled, then tears everything down, and writes the report.
func run(ctx context.Context, cfg *config, stdout, stderr io.Writer) error {
	logger := newLogger(stderr, cfg.logLevel)

	render, err := renderthread.New(`render`, renderthread.WithLogger(logger))
	if err != nil {
		return err
	}
	ownerThread, err := renderthread.New(`owner`, renderthread.WithLogger(logger))
	if err != nil {
		return err
	}
	source, err := softvsync.New(cfg.interval, softvsync.WithLogger(logger))
	if err != nil {
		return err
	}
	defer source.Close()

	owner := newCompositor(cfg.interval, cfg.compositeCost)

	sched, err := framesched.New(owner, source, render,
		framesched.WithASAP(cfg.asap),
		framesched.WithUnobserveThreshold(cfg.unobserveCount),
		framesched.WithLogger(logger),
		framesched.WithMetrics(true),
		framesched.WithOwnerThread(ownerThread),
		framesched.WithTouchDispatcher(owner),
	)
	if err != nil {
		return err
	}

	// the threads outlive ctx, so that teardown can happen on them
	g, threadCtx := errgroup.WithContext(context.Background())
	g.Go(func() error { return render.Run(threadCtx) })
	g.Go(func() error { return ownerThread.Run(threadCtx) })

	g.Go(func() error {
		produceCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go func() {
			select {
			case <-threadCtx.Done():
				cancel()
			case <-produceCtx.Done():
			}
		}()

		started := time.Now()
		requests := produce(produceCtx, sched, cfg.requestInterval, cfg.duration)
		logger.Info().
			Uint64(`requests`, requests).
			Dur(`elapsed`, time.Since(started)).
			Log(`producer finished`)

		select {
		case <-produceCtx.Done():
		case <-time.After(cfg.idle):
		}

		return teardown(sched, source, render, ownerThread)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	stats := report{
		Scheduler: sched.Metrics().Snapshot(),
		Frames:    owner.frames.Load(),
		Forced:    owner.forced.Load(),
		Touches:   owner.touches.Load(),
	}
	return stats.write(stdout, cfg.format)
}

// produce requests composites, from its own goroutine, until duration
// elapses, or ctx is canceled.
func produce(ctx context.Context, sched *framesched.Scheduler, interval, duration time.Duration) (requests uint64) {
	deadline := time.NewTimer(duration)
	defer deadline.Stop()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		sched.RequestComposite()
		requests++
		select {
		case <-ctx.Done():
			return
		case <-deadline.C:
			return
		case <-ticker.C:
		}
	}
}

func teardown(sched *framesched.Scheduler, source *softvsync.Source, threads ...*renderthread.Thread) error {
	ctx, cancel := context.WithTimeout(context.Background(), teardownTimeout)
	defer cancel()

	render := threads[0]
	if err := render.Do(ctx, sched.Destroy); err != nil {
		return fmt.Errorf("destroy scheduler: %w", err)
	}
	if err := sched.Close(); err != nil {
		return err
	}
	if err := source.Close(); err != nil {
		return err
	}
	for _, thread := range threads {
		if err := thread.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown %s thread: %w", thread.Name(), err)
		}
	}
	return nil
}
