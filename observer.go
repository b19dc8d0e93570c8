package framesched

import (
	"sync"
)

// Observer is the [VsyncObserver] a [Scheduler] registers with its
// [SignalSource]. It forwards ticks to the scheduler while attached, and
// becomes inert once detached.
//
// Detaching happens under the same lock as forwarding, so a notification
// racing with [Scheduler.Destroy] either completes against a live scheduler,
// or observes the detached state, and does nothing.
type Observer struct {
	owner *Scheduler
	mu    sync.Mutex
}

func newObserver(owner *Scheduler) *Observer {
	return &Observer{owner: owner}
}

// NotifyVsync forwards the tick, returning false if detached.
func (x *Observer) NotifyVsync(event VsyncEvent) bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.owner == nil {
		return false
	}
	return x.owner.OnVsyncNotification(event)
}

// Attached returns true until Destroy is called.
func (x *Observer) Attached() bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.owner != nil
}

// Destroy detaches the observer. It blocks until any in-flight notification
// completes. It is safe to call more than once.
func (x *Observer) Destroy() {
	x.mu.Lock()
	x.owner = nil
	x.mu.Unlock()
}
