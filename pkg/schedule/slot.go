package schedule

import (
	"sync"
	"sync/atomic"
)

type entry[T any] struct {
	gen uint64
	val T
}

// Slot holds the most recent result of a job that may be superseded while
// it runs. Begin issues generations; Commit publishes a result only if its
// generation is still the latest issued and newer than the stored one.
//
// Begin and Commit are serialized, so a generation issued while a commit
// is deciding either rejects it or waits for it to finish. The zero Slot is
// ready to use.
type Slot[T any] struct {
	mu     sync.Mutex
	issued atomic.Uint64
	cur    atomic.Pointer[entry[T]]
}

// commitHook runs inside Commit after the generation checks pass.
var commitHook func()

// Begin starts a new generation and returns it. Any job holding an older
// generation is now stale.
func (s *Slot[T]) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issued.Add(1)
}

// Latest returns the most recently issued generation.
func (s *Slot[T]) Latest() uint64 {
	return s.issued.Load()
}

// Stale reports whether gen has been superseded.
func (s *Slot[T]) Stale(gen uint64) bool {
	return gen != s.issued.Load()
}

// Commit stores v for gen and reports whether it was accepted.
func (s *Slot[T]) Commit(gen uint64, v T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Stale(gen) {
		return false
	}
	if old := s.cur.Load(); old != nil && old.gen >= gen {
		return false
	}
	if commitHook != nil {
		commitHook()
	}
	s.cur.Store(&entry[T]{gen: gen, val: v})
	return true
}

// Load returns the stored value and its generation. ok is false until the
// first commit.
func (s *Slot[T]) Load() (v T, gen uint64, ok bool) {
	e := s.cur.Load()
	if e == nil {
		return v, 0, false
	}
	return e.val, e.gen, true
}

// Current returns the stored value, or the zero value before any commit.
func (s *Slot[T]) Current() T {
	v, _, _ := s.Load()
	return v
}
