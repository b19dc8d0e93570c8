package main

import (
	"sync/atomic"
	"time"

	"github.com/joeycumines/go-framesched"
)

// compositor is a simulated owner, where compositing just takes time.
type compositor struct {
	interval time.Duration
	cost     time.Duration
	frames   atomic.Uint64
	forced   atomic.Uint64
	touches  atomic.Uint64
}

func newCompositor(interval, cost time.Duration) *compositor {
	return &compositor{interval: interval, cost: cost}
}

func (x *compositor) CompositeToTarget(id framesched.VsyncID, _ framesched.Target, _ *framesched.Region) {
	if x.cost > 0 {
		time.Sleep(x.cost)
	}
	if id.Valid() {
		x.frames.Add(1)
	} else {
		x.forced.Add(1)
	}
}

func (*compositor) IsPendingComposite() bool { return false }

func (*compositor) FinishPendingComposite() {}

func (x *compositor) GetTickInterval() time.Duration { return x.interval }

// NotifyTick counts touch ticks, delivered on the owner thread.
func (x *compositor) NotifyTick(time.Time) { x.touches.Add(1) }
