package framesched

import (
	"time"
)

// SetDisplayEnabled records the display's power state. While the display is
// off, composite requests are ignored, and any pending request (along with
// its tasks) is dropped. It may be called from any goroutine, though it is a
// no-op unless configured [WithDisplayController].
//
// Off the render thread, the change is marshaled via a task, that applies
// the most recent value, so rapid toggles collapse without losing the final
// state.
func (s *Scheduler) SetDisplayEnabled(enabled bool) {
	if s.display == nil {
		return
	}
	s.displayWanted.Store(enabled)
	if !s.renderThread.IsCurrent() {
		if s.destroyed.Load() {
			return
		}
		s.post(NewTask(KindDisplay, func(task *Task) {
			s.monitor.ClearSelf(task)
			s.setDisplayEnabled(s.displayWanted.Load())
		}))
		return
	}
	s.setDisplayEnabled(enabled)
}

func (s *Scheduler) setDisplayEnabled(enabled bool) {
	if s.observer == nil || s.displayEnabled == enabled {
		return
	}
	s.displayEnabled = enabled

	s.logger.Info().
		Bool(`enabled`, enabled).
		Log(`display state changed`)

	if enabled {
		return
	}

	s.monitor.Cancel(KindNeedsComposite)
	if !s.compositeRequestedAt.IsZero() {
		s.skip(skipDisplayOff, VsyncEvent{Time: s.compositeRequestedAt})
		s.compositeRequestedAt = time.Time{}
	}
	s.monitor.Cancel(KindComposite)
}

// DisplayEnabled returns the display state, as last applied on the render
// thread. It is always true without a DisplayController. Render thread only.
func (s *Scheduler) DisplayEnabled() bool {
	s.assertRenderThread(`DisplayEnabled`)
	return s.displayEnabled
}
