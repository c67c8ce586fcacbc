package schedule

import "time"

// FrameInterval approximates one display frame.
const FrameInterval = 16 * time.Millisecond

// Coalescer runs the latest call requested before the next frame.
type Coalescer struct {
	slot
	delay time.Duration
}

// NewCoalescer returns a coalescer firing delay after the first request of
// a batch. A non-positive delay means FrameInterval.
func NewCoalescer(delay time.Duration, opts ...Option) *Coalescer {
	if delay <= 0 {
		delay = FrameInterval
	}
	return &Coalescer{slot: slot{opts: buildOptions(opts)}, delay: delay}
}

// Schedule replaces the pending call with fn and arms the frame timer.
func (c *Coalescer) Schedule(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	c.pending = fn
	c.armLocked(c.delay, false)
}

// Debouncer runs the latest call once no new call has arrived for delay.
type Debouncer struct {
	slot
	delay time.Duration
}

// DefaultDebounce is the quiet period used for file change notifications.
const DefaultDebounce = 250 * time.Millisecond

// NewDebouncer returns a debouncer with the given quiet period.
func NewDebouncer(delay time.Duration, opts ...Option) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{slot: slot{opts: buildOptions(opts)}, delay: delay}
}

// Schedule replaces the pending call and restarts the quiet period.
func (d *Debouncer) Schedule(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.pending = fn
	d.armLocked(d.delay, true)
}

var (
	_ Scheduler = (*Coalescer)(nil)
	_ Scheduler = (*Debouncer)(nil)
)
