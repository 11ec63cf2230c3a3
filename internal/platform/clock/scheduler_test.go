package clock_test

import (
	"sync/atomic"
	"testing"
	"time"

	"codeclock/internal/platform/clock"
)

func TestSchedulerStopPreventsFurtherTicks(t *testing.T) {
	t.Parallel()
	var ticks atomic.Int64
	s := clock.NewScheduler()
	s.Start(5*time.Millisecond, func(time.Time) { ticks.Add(1) })
	time.Sleep(40 * time.Millisecond)
	s.Stop()
	if s.Running() {
		t.Fatalf("scheduler must report stopped after Stop")
	}
	seen := ticks.Load()
	if seen == 0 {
		t.Fatalf("expected at least one tick before stop")
	}
	time.Sleep(30 * time.Millisecond)
	if got := ticks.Load(); got != seen {
		t.Fatalf("tick fired after Stop: %d -> %d", seen, got)
	}
}

func TestSchedulerRestartInvalidatesOldRun(t *testing.T) {
	t.Parallel()
	var first, second atomic.Int64
	s := clock.NewScheduler()
	s.Start(5*time.Millisecond, func(time.Time) { first.Add(1) })
	s.Start(5*time.Millisecond, func(time.Time) { second.Add(1) })
	time.Sleep(40 * time.Millisecond)
	s.Stop()
	if first.Load() != 0 {
		t.Fatalf("replaced run must not tick, got %d", first.Load())
	}
	if second.Load() == 0 {
		t.Fatalf("active run should have ticked")
	}
}

func TestTwoSchedulersAreIndependent(t *testing.T) {
	t.Parallel()
	var a, b atomic.Int64
	sa := clock.NewScheduler()
	sb := clock.NewScheduler()
	sa.Start(5*time.Millisecond, func(time.Time) { a.Add(1) })
	sb.Start(5*time.Millisecond, func(time.Time) { b.Add(1) })
	time.Sleep(30 * time.Millisecond)
	sa.Stop()
	time.Sleep(30 * time.Millisecond)
	sb.Stop()
	if a.Load() == 0 || b.Load() == 0 {
		t.Fatalf("both schedulers should tick, got %d and %d", a.Load(), b.Load())
	}
	if !sbStoppedCleanly(sb) {
		t.Fatalf("second scheduler should stop cleanly")
	}
}

func sbStoppedCleanly(s *clock.Scheduler) bool {
	return !s.Running()
}
