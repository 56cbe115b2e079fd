package schedule

import (
	"time"

	"github.com/bep/debounce"
)

// DefaultDebounce is the quiet period before background work starts.
const DefaultDebounce = 16 * time.Millisecond

// Job computes a background result. It should poll canceled and return
// ok=false early once it reports true.
type Job[T any] func(canceled func() bool) (v T, ok bool)

// Worker runs the latest submitted Job after a quiet period and publishes
// its result through a Slot. Superseded jobs never publish.
type Worker[T any] struct {
	slot     Slot[T]
	debounce func(func())
	onCommit func(T)
}

// NewWorker creates a worker. onCommit, if non-nil, is called with every
// accepted result on the job's goroutine.
func NewWorker[T any](quiet time.Duration, onCommit func(T)) *Worker[T] {
	return &Worker[T]{
		debounce: debounce.New(quiet),
		onCommit: onCommit,
	}
}

// Submit schedules job and returns its generation. Jobs submitted earlier
// are canceled at once, even if they are already running.
func (w *Worker[T]) Submit(job Job[T]) uint64 {
	gen := w.slot.Begin()
	w.debounce(func() { w.run(gen, job) })
	return gen
}

// Cancel supersedes every submitted job without scheduling a new one.
func (w *Worker[T]) Cancel() {
	w.slot.Begin()
}

func (w *Worker[T]) run(gen uint64, job Job[T]) {
	canceled := func() bool { return w.slot.Stale(gen) }
	if canceled() {
		return
	}
	v, ok := job(canceled)
	if !ok {
		return
	}
	if w.slot.Commit(gen, v) && w.onCommit != nil {
		w.onCommit(v)
	}
}

// Current returns the latest accepted result and whether there is one.
func (w *Worker[T]) Current() (T, bool) {
	v, _, ok := w.slot.Load()
	return v, ok
}
