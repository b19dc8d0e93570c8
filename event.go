package framesched

import (
	"image"
	"strconv"
	"time"
)

type (
	// VsyncID identifies a single vsync tick. The zero value means "no tick",
	// and is used for composites not driven by vsync, e.g. forced composites.
	VsyncID uint64

	// VsyncEvent describes one tick. It is passed by value, and never
	// modified after creation.
	VsyncEvent struct {
		// Time is the nominal time of the tick.
		Time time.Time
		// OutputTime is when the frame composited for this tick is expected
		// to be presented.
		OutputTime time.Time
		// ID identifies the tick.
		ID VsyncID
	}

	// Target is an opaque render target, passed through to
	// [Owner.CompositeToTarget]. A nil Target means the default (window)
	// target.
	Target any

	// Region restricts a forced composite. A nil *Region means everything.
	Region = image.Rectangle
)

// Next returns the id following x, skipping zero on wrap.
func (x VsyncID) Next() VsyncID {
	if x+1 == 0 {
		return 1
	}
	return x + 1
}

// Valid returns true if x identifies an actual tick.
func (x VsyncID) Valid() bool { return x != 0 }

func (x VsyncID) String() string { return strconv.FormatUint(uint64(x), 10) }

// NewVsyncEvent is a convenience for constructing a [VsyncEvent], where the
// output time is one interval after the tick.
func NewVsyncEvent(id VsyncID, t time.Time, interval time.Duration) VsyncEvent {
	return VsyncEvent{
		ID:         id,
		Time:       t,
		OutputTime: t.Add(interval),
	}
}
