package schedule

import (
	"sync"
	"time"
)

// DefaultInterval caps foreground recomputes at roughly 30 per second.
const DefaultInterval = 33 * time.Millisecond

// Throttle runs fn at most once per interval. A call that arrives early
// is deferred to the end of the interval; later early calls replace its
// value, so only the latest one runs.
//
// fn runs on the caller's goroutine for immediate calls and on a timer
// goroutine for deferred ones, so it must be safe for concurrent use.
type Throttle[T any] struct {
	clock    Clock
	interval time.Duration
	fn       func(T)

	mu      sync.Mutex
	last    time.Time
	ran     bool
	pending T
	timer   Timer
	seq     uint64 // identifies the live timer
}

// NewThrottle creates a throttle. A nil clock means RealClock.
func NewThrottle[T any](interval time.Duration, clock Clock, fn func(T)) *Throttle[T] {
	if clock == nil {
		clock = RealClock()
	}
	return &Throttle[T]{clock: clock, interval: interval, fn: fn}
}

// Trigger requests a run with v. It reports whether fn ran immediately.
func (t *Throttle[T]) Trigger(v T) bool {
	t.mu.Lock()
	now := t.clock.Now()
	if t.timer == nil && (!t.ran || now.Sub(t.last) >= t.interval) {
		t.last = now
		t.ran = true
		t.mu.Unlock()
		t.fn(v)
		return true
	}

	t.pending = v
	if t.timer == nil {
		t.seq++
		seq := t.seq
		t.timer = t.clock.AfterFunc(t.interval-now.Sub(t.last), func() { t.fire(seq) })
	}
	t.mu.Unlock()
	return false
}

// fire runs the deferred call for the timer numbered seq. A timer that
// was replaced after its Stop lost the race does nothing.
func (t *Throttle[T]) fire(seq uint64) {
	t.mu.Lock()
	if t.timer == nil || t.seq != seq {
		t.mu.Unlock()
		return
	}
	v := t.pending
	var zero T
	t.pending = zero
	t.timer = nil
	t.last = t.clock.Now()
	t.mu.Unlock()
	t.fn(v)
}

// Run cancels any deferred run and runs fn(v) now, restarting the
// interval.
func (t *Throttle[T]) Run(v T) {
	t.mu.Lock()
	t.cancel()
	t.last = t.clock.Now()
	t.ran = true
	t.mu.Unlock()
	t.fn(v)
}

// Pending reports whether a deferred run is scheduled.
func (t *Throttle[T]) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timer != nil
}

// Stop cancels any deferred run.
func (t *Throttle[T]) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancel()
}

// cancel drops the deferred run. t.mu must be held.
func (t *Throttle[T]) cancel() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.seq++
}
