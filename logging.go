package framesched

import (
	"fmt"
	"time"

	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/logiface"
)

// skipReason categorizes ticks that did not result in a composite, for
// logging and rate limiting purposes.
type skipReason uint8

const (
	skipStale skipReason = iota
	skipPendingComposite
	skipIdle
	skipDisplayOff
)

func (r skipReason) String() string {
	switch r {
	case skipStale:
		return "stale"
	case skipPendingComposite:
		return "pending_composite"
	case skipIdle:
		return "idle"
	case skipDisplayOff:
		return "display_off"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(r))
	}
}

// newSkipLimiter converts a (validated) catrate panic into an error.
// No rates means no limiter, which catrate treats as unlimited.
func newSkipLimiter(rates map[time.Duration]int) (limiter *catrate.Limiter, err error) {
	if len(rates) == 0 {
		return nil, nil
	}
	defer func() {
		if r := recover(); r != nil {
			limiter = nil
			err = fmt.Errorf("framesched: invalid skip log rates: %v", r)
		}
	}()
	return catrate.NewLimiter(rates), nil
}

func componentLogger(logger *logiface.Logger[logiface.Event]) *logiface.Logger[logiface.Event] {
	return logger.Clone().
		Str(`component`, `framesched`).
		Logger()
}

// logSkip is called on the render thread, for every skipped tick.
// The limiter is only consulted if debug logging is enabled, so the catrate
// worker is never started otherwise.
func (s *Scheduler) logSkip(reason skipReason, event VsyncEvent) {
	b := s.logger.Debug()
	if !b.Enabled() {
		return
	}
	if _, ok := s.skipLimiter.Allow(reason); !ok {
		b.Release()
		return
	}
	b.Str(`reason`, reason.String()).
		Uint64(`vsync_id`, uint64(event.ID)).
		Time(`vsync_time`, event.Time).
		Uint64(`skipped`, uint64(s.skipped)).
		Log(`skipped vsync tick`)
}

func (s *Scheduler) logObserve(observe bool) {
	s.logger.Debug().
		Bool(`observe`, observe).
		Uint64(`skipped`, uint64(s.skipped)).
		Log(`vsync observation changed`)
}

// assertRenderThread is the equivalent of a debug-build assertion.
func (s *Scheduler) assertRenderThread(op string) {
	if s.renderThread.IsCurrent() {
		return
	}
	if s.debugAssertions {
		panic(fmt.Errorf("%w: %s", ErrWrongThread, op))
	}
	s.logger.Err().
		Str(`op`, op).
		Limit().
		Log(`render thread operation called from another goroutine`)
}
