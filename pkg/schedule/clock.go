// Package schedule paces recomputation while the user drags a slider.
//
// Foreground work is throttled to a fixed rate, background work is
// debounced, and every background result is tagged with a generation so
// a slow job can never overwrite the result of a newer one.
package schedule

import "time"

// Clock is the time source used by Throttle.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a pending AfterFunc call.
type Timer interface {
	Stop() bool
}

type realClock struct{}

// RealClock returns a Clock backed by package time.
func RealClock() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
