// Package framesched provides a vsync-driven frame scheduler, for compositing
// render pipelines.
//
// # Architecture
//
// A [Scheduler] turns a stream of vertical-sync ticks ([VsyncEvent]) and
// explicit composite requests ([Scheduler.RequestComposite]) into the
// smallest set of composites that keeps the screen current. It owns no
// goroutines. Instead, it is bound to:
//   - a [SignalSource], which delivers ticks while observed
//   - an [Owner], which performs the actual composition
//   - a render [Thread], where every composite, and every mutation of
//     scheduling state, happens
//
// Ticks arrive on whatever goroutine the [SignalSource] uses. The scheduler
// never blocks that goroutine: it posts a composite task to the render
// thread, coalescing bursts of ticks into a single pending task, via a
// [TaskMonitor].
//
// When a number of consecutive ticks produce nothing to do, the scheduler
// stops observing vsync (backoff), and starts again on the next request.
//
// # Thread Safety
//
//   - [Scheduler.RequestComposite] and [Scheduler.SetDisplayEnabled] are
//     safe to call from any goroutine
//   - [Scheduler.OnVsyncNotification] is safe to call from any goroutine,
//     and is normally called via the scheduler's [Observer]
//   - everything else must be called on the render thread
//
// # Teardown
//
// [Scheduler.Destroy] must be called (on the render thread) before the
// scheduler is dropped. Notifications racing with Destroy are absorbed by
// the [Observer], which is detached under its own lock.
//
// # Usage
//
//	render, _ := renderthread.New(`render`)
//	go render.Run(ctx)
//
//	source, _ := softvsync.New(16 * time.Millisecond)
//	defer source.Close()
//
//	sched, err := framesched.New(owner, source, render,
//	    framesched.WithUnobserveThreshold(10),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	sched.RequestComposite()
//	// ...
//	_ = render.Do(ctx, sched.Destroy)
package framesched
