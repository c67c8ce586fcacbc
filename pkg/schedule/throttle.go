package schedule

import (
	"time"

	"golang.org/x/time/rate"
)

// DefaultThrottleInterval is used when NewThrottle gets a non-positive interval.
const DefaultThrottleInterval = 80 * time.Millisecond

// Throttle limits a call to once per interval with trailing-edge delivery:
// the last call of a burst always runs, after the interval has elapsed.
type Throttle struct {
	slot
	limiter *rate.Limiter
}

// NewThrottle returns a throttle allowing one run per interval.
func NewThrottle(interval time.Duration, opts ...Option) *Throttle {
	if interval <= 0 {
		interval = DefaultThrottleInterval
	}
	return &Throttle{
		slot:    slot{opts: buildOptions(opts)},
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Schedule runs fn now if the interval allows it and nothing is pending;
// otherwise fn becomes the pending trailing call.
func (t *Throttle) Schedule(fn func()) {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	now := t.opts.clock.Now()
	if t.timer == nil && t.limiter.AllowN(now, 1) {
		t.mu.Unlock()
		fn()
		return
	}

	t.pending = fn
	if t.timer == nil {
		// The reservation claims the token the trailing run will use.
		delay := t.limiter.ReserveN(now, 1).DelayFrom(now)
		t.armLocked(delay, false)
	}
	t.mu.Unlock()
}

var _ Scheduler = (*Throttle)(nil)
