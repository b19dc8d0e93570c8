package framesched

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/logiface"
)

// Scheduler decides, for each vsync tick, whether to composite a frame.
//
// Scheduling state is owned by the render thread. Other goroutines interact
// only via RequestComposite, SetDisplayEnabled and OnVsyncNotification,
// which either marshal themselves onto the render thread, or post tasks to
// it, via the TaskMonitor.
//
// Instances must be created using New, and torn down using Destroy.
type Scheduler struct { // betteralign:ignore
	// Prevent copying
	_ [0]func()

	owner        Owner
	source       SignalSource
	renderThread Thread
	ownerThread  Thread
	touch        TouchDispatcher
	vr           VRDispatcher
	presentation PresentationOverride
	display      DisplayController
	clock        Clock
	logger       *logiface.Logger[logiface.Event]
	skipLimiter  *catrate.Limiter
	metrics      *Metrics
	monitor      *TaskMonitor

	// observer is nil once Destroy has been called (render thread only)
	observer *Observer

	// State owned by the render thread.
	compositeRequestedAt time.Time
	lastComposeTime      time.Time
	lastVsync            VsyncEvent
	skipped              uint
	observing            bool
	displayEnabled       bool

	// Read-only after New.
	unobserveThreshold uint
	asap               bool
	debugAssertions    bool

	// destroyed mirrors observer == nil, for other goroutines
	destroyed atomic.Bool
	// displayWanted is the most recent SetDisplayEnabled value
	displayWanted atomic.Bool

	// latestTick is the newest tick posted or coalesced into the pending
	// composite task, which consumes it as it clears its slot
	latestTick   VsyncEvent
	latestTickMu sync.Mutex
}

// New creates a scheduler, bound to an owner, a signal source, and the
// render thread. It does not start observing vsync, see RequestComposite.
func New(owner Owner, source SignalSource, renderThread Thread, opts ...SchedulerOption) (*Scheduler, error) {
	switch {
	case owner == nil:
		return nil, ErrNilOwner
	case source == nil:
		return nil, ErrNilSignalSource
	case renderThread == nil:
		return nil, ErrNilRenderThread
	}

	cfg, err := resolveSchedulerOptions(opts)
	if err != nil {
		return nil, err
	}

	skipLimiter, err := newSkipLimiter(cfg.skipLogRates)
	if err != nil {
		return nil, err
	}

	s := &Scheduler{
		owner:              owner,
		source:             source,
		renderThread:       renderThread,
		ownerThread:        cfg.ownerThread,
		touch:              cfg.touch,
		vr:                 cfg.vr,
		presentation:       cfg.presentation,
		display:            cfg.display,
		clock:              cfg.clock,
		logger:             componentLogger(cfg.logger),
		skipLimiter:        skipLimiter,
		monitor:            NewTaskMonitor(renderThread),
		unobserveThreshold: cfg.unobserveThreshold,
		asap:               cfg.asap,
		debugAssertions:    cfg.debugAssertions,
		displayEnabled:     true,
	}
	if cfg.metricsEnabled {
		s.metrics = newMetrics()
	}
	if s.display != nil {
		s.displayEnabled = s.display.DisplayEnabled()
	}
	s.displayWanted.Store(s.displayEnabled)
	s.observer = newObserver(s)

	s.logger.Info().
		Bool(`asap`, s.asap).
		Uint64(`unobserve_threshold`, uint64(s.unobserveThreshold)).
		Log(`scheduler created`)

	return s, nil
}

// RequestComposite marks a composite as needed, and starts observing vsync,
// if not already. It may be called from any goroutine. Off the render
// thread, it marshals itself onto the render thread, and concurrent calls
// collapse into a single task.
func (s *Scheduler) RequestComposite() {
	if !s.renderThread.IsCurrent() {
		if s.destroyed.Load() {
			return
		}
		s.post(NewTask(KindNeedsComposite, func(task *Task) {
			s.monitor.ClearSelf(task)
			s.requestComposite()
		}))
		return
	}
	s.requestComposite()
}

func (s *Scheduler) requestComposite() {
	if s.observer == nil {
		return
	}
	if !s.displayEnabled {
		s.logger.Debug().Log(`composite request ignored, display is off`)
		return
	}
	if s.compositeRequestedAt.IsZero() {
		s.compositeRequestedAt = s.clock()
	}
	if !s.observing {
		s.observeVsync()
	}
}

// OnVsyncNotification handles a tick, on the signal goroutine. It never
// blocks, posting the VR dispatch, and (unless suppressed by the
// PresentationOverride) a composite task. If a composite task is already
// pending, the tick is coalesced into it, and the task composites with the
// latest tick it has been given.
//
// Normally called via the Observer, which guards against calls after
// Destroy.
func (s *Scheduler) OnVsyncNotification(event VsyncEvent) bool {
	if s.presentation == nil || !s.presentation.DrivingFrames() {
		s.postComposite(event)
	}
	s.postVR(event.Time)
	return true
}

// postComposite posts the composite task, or, if one is already pending,
// replaces the tick it will run with, so bursts never replay stale ticks.
func (s *Scheduler) postComposite(event VsyncEvent) {
	s.latestTickMu.Lock()
	defer s.latestTickMu.Unlock()
	s.latestTick = event
	if s.monitor.Pending(KindComposite) {
		s.metrics.recordCoalesced()
		return
	}
	if !s.post(NewTask(KindComposite, s.runComposite)) {
		s.metrics.recordDropped()
	}
}

func (s *Scheduler) runComposite(task *Task) {
	s.latestTickMu.Lock()
	s.monitor.ClearSelf(task)
	event := s.latestTick
	s.latestTickMu.Unlock()
	s.Composite(event)
}

func (s *Scheduler) postVR(t time.Time) {
	if s.vr == nil || s.monitor.Pending(KindVR) {
		return
	}
	s.post(NewTask(KindVR, func(task *Task) {
		s.monitor.ClearSelf(task)
		// may be run elsewhere, while the thread is shutting down
		if !s.renderThread.IsCurrent() {
			return
		}
		s.vr.NotifyTick(t)
	}))
}

func (s *Scheduler) post(task *Task) bool {
	ok, err := s.monitor.PostIfAbsent(task)
	if err != nil {
		s.logger.Warning().
			Err(err).
			Str(`kind`, task.Kind().String()).
			Limit().
			Log(`failed to post task to render thread`)
	}
	return ok
}

// Composite handles a tick on the render thread. It is what the composite
// task runs, after clearing its own slot in the TaskMonitor.
//
// Outside of ASAP mode, ticks older than the last composite are skipped, as
// are ticks that arrive while the owner is still compositing (which is told
// to finish, the request being retained for the next tick). Otherwise, if a
// composite was requested (or in ASAP mode), the owner composites. Ticks
// with nothing to do count towards the unobserve threshold.
func (s *Scheduler) Composite(event VsyncEvent) {
	s.assertRenderThread(`Composite`)

	s.lastVsync = event

	if s.observer == nil {
		return
	}

	if !s.asap {
		if !s.lastComposeTime.IsZero() && event.Time.Before(s.lastComposeTime) {
			// e.g. forced composites can be ahead of the vsync timestamps
			s.skip(skipStale, event)
			return
		}
		if s.owner.IsPendingComposite() {
			s.owner.FinishPendingComposite()
			s.skip(skipPendingComposite, event)
			return
		}
	}

	s.dispatchTouch(event.Time)
	if s.vr != nil {
		s.vr.NotifyTick(event.Time)
	}

	if !s.compositeRequestedAt.IsZero() || s.asap {
		s.compositeRequestedAt = time.Time{}
		s.lastComposeTime = s.clock()
		s.owner.CompositeToTarget(event.ID, nil, nil)
		s.skipped = 0
		s.metrics.recordComposite(s.clock().Sub(event.Time))
		return
	}

	s.skipped++
	s.skip(skipIdle, event)
	if s.skipped > s.unobserveThreshold && s.observing {
		s.unobserveVsync()
	}
}

func (s *Scheduler) skip(reason skipReason, event VsyncEvent) {
	s.metrics.recordSkip(reason)
	s.logSkip(reason, event)
}

func (s *Scheduler) dispatchTouch(t time.Time) {
	if s.touch == nil {
		return
	}
	if s.ownerThread == nil {
		s.touch.NotifyTick(t)
		return
	}
	if err := s.ownerThread.Dispatch(func() { s.touch.NotifyTick(t) }); err != nil {
		s.logger.Warning().
			Err(err).
			Limit().
			Log(`failed to dispatch touch tick to owner thread`)
	}
}

// ForceComposite composites immediately, bypassing the tick pipeline, e.g.
// while resizing a window. Render thread only.
//
// The idle tick counter is reset, as bursts of forced composites leave the
// interleaved ticks with nothing to do, which would otherwise toggle vsync
// observation on and off.
func (s *Scheduler) ForceComposite(target Target, region *Region) {
	s.assertRenderThread(`ForceComposite`)
	s.skipped = 0
	s.lastComposeTime = s.clock()
	s.metrics.recordForced()
	s.owner.CompositeToTarget(0, target, region)
}

// FlushPendingComposite performs any requested composite synchronously,
// canceling the pending composite task, if any. It returns true if it
// composited. Render thread only.
func (s *Scheduler) FlushPendingComposite() bool {
	s.assertRenderThread(`FlushPendingComposite`)
	if s.compositeRequestedAt.IsZero() {
		return false
	}
	s.monitor.Cancel(KindComposite)
	s.compositeRequestedAt = time.Time{}
	s.ForceComposite(nil, nil)
	return true
}

// NeedsComposite returns true if a composite has been requested, but not
// yet performed. Render thread only.
func (s *Scheduler) NeedsComposite() bool {
	s.assertRenderThread(`NeedsComposite`)
	return !s.compositeRequestedAt.IsZero()
}

// ScheduleComposition requests a composite, using a synthetic tick to post
// the first composite task immediately, when vsync is not yet being
// observed (starting observation may be slow). In ASAP mode, it just posts
// the composite task. Render thread only.
func (s *Scheduler) ScheduleComposition() {
	s.assertRenderThread(`ScheduleComposition`)
	if s.observer == nil {
		return
	}

	now := s.clock()
	event := NewVsyncEvent(0, now, s.owner.GetTickInterval())

	if s.asap {
		s.postComposite(event)
		return
	}

	if s.compositeRequestedAt.IsZero() {
		s.compositeRequestedAt = now
	}
	if !s.observing {
		s.observeVsync()
		s.postComposite(event)
	}
}

// Destroy stops observing vsync, detaches the observer, and cancels every
// pending task. It is idempotent. Render thread only.
//
// It must be called before the scheduler is dropped, see also Close.
func (s *Scheduler) Destroy() {
	s.assertRenderThread(`Destroy`)
	if s.observer == nil {
		return
	}

	s.unobserveVsync()
	s.observer.Destroy()
	s.observer = nil
	s.destroyed.Store(true)

	s.compositeRequestedAt = time.Time{}
	s.lastComposeTime = time.Time{}
	s.skipped = 0

	s.monitor.CancelAll()
	if s.display != nil {
		s.displayEnabled = false
	}

	s.logger.Info().Log(`scheduler destroyed`)
}

// Close returns ErrNotDestroyed if Destroy has not been called. It exists to
// catch teardown ordering bugs, and may be called from any goroutine.
func (s *Scheduler) Close() error {
	if !s.destroyed.Load() {
		return ErrNotDestroyed
	}
	return nil
}

func (s *Scheduler) observeVsync() {
	s.source.ObserveVsync(s.observer)
	s.observing = true
	s.metrics.recordObserve(true)
	s.logObserve(true)
}

func (s *Scheduler) unobserveVsync() {
	s.source.ObserveVsync(nil)
	if s.observing {
		s.observing = false
		s.metrics.recordObserve(false)
		s.logObserve(false)
	}
}

// ASAP returns true if the scheduler is in ASAP mode. Any goroutine.
func (s *Scheduler) ASAP() bool { return s.asap }

// Metrics returns the scheduler's metrics, or nil if not enabled.
// Any goroutine.
func (s *Scheduler) Metrics() *Metrics { return s.metrics }

// IsObservingVsync returns true if observing vsync. Render thread only.
func (s *Scheduler) IsObservingVsync() bool {
	s.assertRenderThread(`IsObservingVsync`)
	return s.observing
}

// SkippedNotifications returns the number of consecutive idle ticks.
// Render thread only.
func (s *Scheduler) SkippedNotifications() uint {
	s.assertRenderThread(`SkippedNotifications`)
	return s.skipped
}

// LastVsync returns the most recent tick handled by Composite.
// Render thread only.
func (s *Scheduler) LastVsync() VsyncEvent {
	s.assertRenderThread(`LastVsync`)
	return s.lastVsync
}

// LastComposeTime returns the time of the last composite, or the zero value.
// Render thread only.
func (s *Scheduler) LastComposeTime() time.Time {
	s.assertRenderThread(`LastComposeTime`)
	return s.lastComposeTime
}

// CompositeRequestedAt returns when the pending composite was requested, or
// the zero value, if there is none. Render thread only.
func (s *Scheduler) CompositeRequestedAt() time.Time {
	s.assertRenderThread(`CompositeRequestedAt`)
	return s.compositeRequestedAt
}
