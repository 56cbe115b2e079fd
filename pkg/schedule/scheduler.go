package schedule

import "time"

// Scheduler paces the two halves of an interactive recompute: a
// foreground step that must keep up with the pointer, and a background
// step that only matters once the pointer settles.
type Scheduler[B, R any] struct {
	throttle *Throttle[B]
	worker   *Worker[R]
	bg       func(B, func() bool) (R, bool)
}

// Options configure a Scheduler.
type Options struct {
	Interval time.Duration
	Quiet    time.Duration
	Clock    Clock
}

// DefaultOptions returns the 33 ms throttle and 16 ms debounce.
func DefaultOptions() Options {
	return Options{Interval: DefaultInterval, Quiet: DefaultDebounce}
}

// NewScheduler wires fg through a throttle and bg through a debounced
// worker. Accepted background results are passed to onResult.
func NewScheduler[B, R any](
	opts Options,
	fg func(B),
	bg func(B, func() bool) (R, bool),
	onResult func(R),
) *Scheduler[B, R] {
	return &Scheduler[B, R]{
		throttle: NewThrottle(opts.Interval, opts.Clock, fg),
		worker:   NewWorker(opts.Quiet, onResult),
		bg:       bg,
	}
}

// Changed reports a new input value.
func (s *Scheduler[B, R]) Changed(v B) {
	s.throttle.Trigger(v)
	s.submit(v)
}

func (s *Scheduler[B, R]) submit(v B) {
	if s.bg != nil {
		s.worker.Submit(func(canceled func() bool) (R, bool) {
			return s.bg(v, canceled)
		})
	}
}

// Flush runs the foreground step for v now, dropping any deferred run,
// and submits the background step. Use it for discrete changes such as
// toggles that should not wait out the throttle.
func (s *Scheduler[B, R]) Flush(v B) {
	s.throttle.Run(v)
	s.submit(v)
}

// Cancel supersedes in-flight background work without replacing it.
func (s *Scheduler[B, R]) Cancel() {
	s.worker.Cancel()
}

// Background returns the latest accepted background result.
func (s *Scheduler[B, R]) Background() (R, bool) {
	return s.worker.Current()
}

// Stop drops any deferred foreground run and cancels background work.
func (s *Scheduler[B, R]) Stop() {
	s.throttle.Stop()
	s.worker.Cancel()
}
