package schedule

import (
	"testing"
	"time"
)

const waitLimit = 2 * time.Second

func constJob(v int) Job[int] {
	return func(func() bool) (int, bool) { return v, true }
}

func TestWorkerRunsOnlyLatest(t *testing.T) {
	results := make(chan int, 10)
	w := NewWorker(DefaultDebounce, func(v int) { results <- v })

	for v := 1; v <= 5; v++ {
		w.Submit(constJob(v))
	}

	select {
	case v := <-results:
		if v != 5 {
			t.Fatalf("expected latest job result 5, got %d", v)
		}
	case <-time.After(waitLimit):
		t.Fatal("worker never committed")
	}
	select {
	case v := <-results:
		t.Fatalf("unexpected extra commit %d", v)
	case <-time.After(5 * DefaultDebounce):
	}
	if v, ok := w.Current(); !ok || v != 5 {
		t.Errorf("Current() = %d, %v", v, ok)
	}
}

func TestWorkerCancelsRunningJob(t *testing.T) {
	results := make(chan int, 10)
	w := NewWorker(time.Millisecond, func(v int) { results <- v })

	started := make(chan struct{})
	release := make(chan struct{})
	sawCancel := make(chan bool, 1)
	w.Submit(func(canceled func() bool) (int, bool) {
		close(started)
		<-release
		sawCancel <- canceled()
		return 1, true
	})

	select {
	case <-started:
	case <-time.After(waitLimit):
		t.Fatal("first job never started")
	}

	w.Submit(constJob(2))
	select {
	case v := <-results:
		if v != 2 {
			t.Fatalf("expected 2, got %d", v)
		}
	case <-time.After(waitLimit):
		t.Fatal("second job never committed")
	}

	close(release)
	if !<-sawCancel {
		t.Error("superseded job did not observe cancellation")
	}
	select {
	case v := <-results:
		t.Fatalf("stale job committed %d", v)
	case <-time.After(20 * time.Millisecond):
	}
	if v, _ := w.Current(); v != 2 {
		t.Errorf("Current() = %d, want 2", v)
	}
}

func TestWorkerJobDeclines(t *testing.T) {
	results := make(chan int, 1)
	w := NewWorker(time.Millisecond, func(v int) { results <- v })
	done := make(chan struct{})
	w.Submit(func(func() bool) (int, bool) {
		defer close(done)
		return 0, false
	})
	<-done
	select {
	case v := <-results:
		t.Fatalf("declined job committed %d", v)
	case <-time.After(20 * time.Millisecond):
	}
	if _, ok := w.Current(); ok {
		t.Error("declined job left a value")
	}
}

func TestSchedulerForegroundAndBackground(t *testing.T) {
	clock := newFakeClock()
	var fg recorder
	bg := make(chan int, 10)
	s := NewScheduler(
		Options{Interval: DefaultInterval, Quiet: time.Millisecond, Clock: clock},
		fg.record,
		func(v int, canceled func() bool) (int, bool) { return v * 10, !canceled() },
		func(r int) { bg <- r },
	)
	defer s.Stop()

	s.Changed(1)
	s.Changed(2)
	s.Changed(3)
	if got := fg.snapshot(); len(got) != 1 || got[0] != 1 {
		t.Fatalf("foreground = %v, want [1]", got)
	}
	clock.Advance(DefaultInterval)
	if got := fg.snapshot(); len(got) != 2 || got[1] != 3 {
		t.Fatalf("foreground = %v, want [1 3]", got)
	}

	select {
	case r := <-bg:
		if r != 30 {
			t.Fatalf("background = %d, want 30", r)
		}
	case <-time.After(waitLimit):
		t.Fatal("background never committed")
	}
	if r, ok := s.Background(); !ok || r != 30 {
		t.Errorf("Background() = %d, %v", r, ok)
	}
}

func TestSchedulerFlushSkipsThrottle(t *testing.T) {
	clock := newFakeClock()
	var fg recorder
	s := NewScheduler[int, int](
		Options{Interval: DefaultInterval, Quiet: time.Millisecond, Clock: clock},
		fg.record, nil, nil,
	)

	s.Changed(1)
	s.Changed(2) // deferred
	s.Flush(3)
	clock.Advance(DefaultInterval)

	got := fg.snapshot()
	if len(got) != 2 || got[1] != 3 {
		t.Fatalf("foreground = %v, want [1 3]", got)
	}
}
