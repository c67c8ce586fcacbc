package schedule

import (
	"sync"
	"time"
)

// Scheduler defers calls through a single-slot buffer.
type Scheduler interface {
	// Schedule requests fn to run. A pending earlier call is replaced.
	Schedule(fn func())

	// Flush runs the pending call now, if any, and reports whether it ran.
	Flush() bool

	// Stop drops any pending call and rejects future ones.
	Stop()
}

// Option configures a scheduler.
type Option func(*options)

type options struct {
	clock    Clock
	dispatch func(func())
}

// WithClock replaces the real clock.
func WithClock(c Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithDispatch routes deferred calls through fn instead of running them on
// the timer goroutine.
func WithDispatch(fn func(func())) Option {
	return func(o *options) { o.dispatch = fn }
}

func buildOptions(opts []Option) options {
	o := options{clock: RealClock{}, dispatch: func(f func()) { f() }}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// slot is the shared single-slot buffer: one pending call, one armed timer.
type slot struct {
	mu      sync.Mutex
	opts    options
	pending func()
	timer   Timer
	seq     uint64
	stopped bool
}

// armLocked starts the timer unless one is running. With reset set a
// running timer is restarted instead.
func (s *slot) armLocked(d time.Duration, reset bool) {
	if s.timer != nil {
		if !reset {
			return
		}
		s.timer.Stop()
	}
	s.seq++
	seq := s.seq
	s.timer = s.opts.clock.AfterFunc(d, func() { s.fire(seq) })
}

func (s *slot) fire(seq uint64) {
	s.mu.Lock()
	if seq != s.seq || s.stopped {
		s.mu.Unlock()
		return
	}
	fn := s.pending
	s.pending, s.timer = nil, nil
	s.mu.Unlock()

	if fn != nil {
		s.opts.dispatch(fn)
	}
}

func (s *slot) takeLocked() func() {
	fn := s.pending
	s.pending = nil
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.seq++
	return fn
}

// Flush runs the pending call on the caller's goroutine.
func (s *slot) Flush() bool {
	s.mu.Lock()
	fn := s.takeLocked()
	s.mu.Unlock()
	if fn == nil {
		return false
	}
	fn()
	return true
}

// Stop drops the pending call.
func (s *slot) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.takeLocked()
	s.stopped = true
}

// Pending reports whether a call is waiting.
func (s *slot) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}
