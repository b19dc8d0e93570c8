package framesched

import (
	"time"
)

type (
	// VsyncObserver receives ticks from a [SignalSource].
	// The return value indicates whether the tick was consumed.
	VsyncObserver interface {
		NotifyVsync(event VsyncEvent) bool
	}

	// SignalSource models the display subsystem's vsync signal.
	//
	// ObserveVsync is called with a non-nil observer to start receiving ticks,
	// and with nil to stop. Implementations MUST guarantee that, once the nil
	// call returns, no further notifications are delivered, i.e. the call
	// synchronizes with any in-flight notification.
	SignalSource interface {
		ObserveVsync(observer VsyncObserver)
	}

	// Owner performs the actual composition. All methods are called on the
	// render thread.
	Owner interface {
		// CompositeToTarget composites a frame. The id is zero for composites
		// not driven by a tick. The target and region are nil unless forced.
		CompositeToTarget(id VsyncID, target Target, region *Region)
		// IsPendingComposite reports whether a previous composite is still in
		// progress.
		IsPendingComposite() bool
		// FinishPendingComposite completes the in-progress composite.
		FinishPendingComposite()
		// GetTickInterval returns the expected interval between ticks.
		GetTickInterval() time.Duration
	}

	// TouchDispatcher is notified, on the owner thread, of every tick that
	// reached the composite stage. It is fire-and-forget.
	TouchDispatcher interface {
		NotifyTick(t time.Time)
	}

	// VRDispatcher is notified, on the render thread, of every tick,
	// regardless of whether a composite happened.
	VRDispatcher interface {
		NotifyTick(t time.Time)
	}

	// Thread is a goroutine with a task queue, e.g. the render thread.
	Thread interface {
		// Dispatch queues fn for execution on the thread. It must not block
		// on the execution of other tasks, and must be safe to call from any
		// goroutine.
		Dispatch(fn func()) error
		// IsCurrent returns true if called from the thread itself.
		IsCurrent() bool
	}

	// PresentationOverride may be used to suppress vsync driven composites,
	// e.g. while a VR presentation drives its own frames.
	PresentationOverride interface {
		DrivingFrames() bool
	}

	// DisplayController is an optional strategy, that reports the initial
	// display state, for platforms where compositing is skipped while the
	// display is off. See also [Scheduler.SetDisplayEnabled].
	DisplayController interface {
		DisplayEnabled() bool
	}

	// Clock returns the current time. The default is [time.Now].
	Clock func() time.Time
)
