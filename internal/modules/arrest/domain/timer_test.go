package domain

import (
	"testing"
	"time"
)

var testWindows = Windows{
	RhythmCheckInterval:  2 * time.Minute,
	EpinephrineInterval:  3 * time.Minute,
	PreShockAlertAdvance: 15 * time.Second,
}

func ptrTime(t time.Time) *time.Time { return &t }

func TestComputeTimerStateFrozenBeforePathway(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	sess := Session{
		Phase:          PhaseCPRPendingRhythm,
		StartTime:      ptrTime(start),
		CPRActiveSince: ptrTime(start),
	}

	got := ComputeTimerState(sess, testWindows, start.Add(45*time.Second))

	if got.CPRCycleRemaining != testWindows.RhythmCheckInterval {
		t.Fatalf("cycle remaining = %v, want full %v", got.CPRCycleRemaining, testWindows.RhythmCheckInterval)
	}
	if got.EpiRemaining != testWindows.EpinephrineInterval {
		t.Fatalf("epi remaining = %v, want full %v", got.EpiRemaining, testWindows.EpinephrineInterval)
	}
	if got.TotalElapsed != 45*time.Second {
		t.Fatalf("total elapsed = %v, want 45s", got.TotalElapsed)
	}
	if got.TotalCPRTime != 45*time.Second {
		t.Fatalf("total CPR time = %v, want 45s", got.TotalCPRTime)
	}
	if got.RhythmCheckDue || got.EpiDue || got.PreShockAlert {
		t.Fatalf("no alert should fire before a pathway is known: %+v", got)
	}
}

func TestComputeTimerStateCountdownIsDerived(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	sess := Session{
		Phase:             PhaseShockable,
		CurrentRhythm:     RhythmVFPVT,
		ShockCount:        1,
		StartTime:         ptrTime(start),
		CPRCycleStartTime: ptrTime(start),
		CPRActiveSince:    ptrTime(start),
	}

	at := func(offset time.Duration) TimerState {
		return ComputeTimerState(sess, testWindows, start.Add(offset))
	}

	if got := at(30 * time.Second).CPRCycleRemaining; got != 90*time.Second {
		t.Fatalf("remaining after 30s = %v, want 90s", got)
	}
	// A suspended process self-corrects: reading at t+110s directly yields
	// 10s remaining regardless of any reads in between.
	if got := at(110 * time.Second); got.CPRCycleRemaining != 10*time.Second || !got.PreShockAlert {
		t.Fatalf("at 110s: remaining %v alert %v, want 10s with pre-shock alert", got.CPRCycleRemaining, got.PreShockAlert)
	}
	if got := at(3 * time.Minute); got.CPRCycleRemaining != 0 || !got.RhythmCheckDue || got.PreShockAlert {
		t.Fatalf("past the interval: %+v, want clamped zero and rhythm check due", got)
	}
}

func TestComputeTimerStateEpiDueImmediatelyOnNonShockable(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	sess := Session{
		Phase:             PhaseNonShockable,
		CurrentRhythm:     RhythmAsystole,
		StartTime:         ptrTime(start),
		CPRCycleStartTime: ptrTime(start),
		CPRActiveSince:    ptrTime(start),
	}

	got := ComputeTimerState(sess, testWindows, start.Add(time.Second))
	if got.EpiRemaining != 0 || !got.EpiDue {
		t.Fatalf("first epi on non-shockable: remaining %v due %v, want 0 and due", got.EpiRemaining, got.EpiDue)
	}
}

func TestComputeTimerStateEpiGatedBySecondShock(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	sess := Session{
		Phase:             PhaseShockable,
		CurrentRhythm:     RhythmVFPVT,
		ShockCount:        1,
		StartTime:         ptrTime(start),
		CPRCycleStartTime: ptrTime(start),
		CPRActiveSince:    ptrTime(start),
	}

	if got := ComputeTimerState(sess, testWindows, start.Add(time.Minute)); got.EpiDue {
		t.Fatalf("epi must not be due after a single shock")
	}
	sess.ShockCount = 2
	if got := ComputeTimerState(sess, testWindows, start.Add(time.Minute)); !got.EpiDue || got.EpiRemaining != 0 {
		t.Fatalf("epi should open after the second shock: %+v", got)
	}
}

func TestComputeTimerStateEpiRepeatWindow(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	lastEpi := start.Add(time.Minute)
	sess := Session{
		Phase:               PhaseNonShockable,
		CurrentRhythm:       RhythmPEA,
		EpinephrineCount:    1,
		StartTime:           ptrTime(start),
		CPRCycleStartTime:   ptrTime(start),
		CPRActiveSince:      ptrTime(start),
		LastEpinephrineTime: ptrTime(lastEpi),
	}

	got := ComputeTimerState(sess, testWindows, lastEpi.Add(2*time.Minute))
	if got.EpiRemaining != time.Minute || got.EpiDue {
		t.Fatalf("mid-window: remaining %v due %v, want 1m not due", got.EpiRemaining, got.EpiDue)
	}
	got = ComputeTimerState(sess, testWindows, lastEpi.Add(testWindows.EpinephrineInterval))
	if got.EpiRemaining != 0 || !got.EpiDue {
		t.Fatalf("at window end: remaining %v due %v, want 0 and due", got.EpiRemaining, got.EpiDue)
	}
}

func TestComputeTimerStateCPRTimePausesDuringCheck(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	// Two minutes of compressions already banked, compressions paused.
	sess := Session{
		Phase:             PhaseShockable,
		InRhythmCheck:     true,
		StartTime:         ptrTime(start),
		CPRCycleStartTime: ptrTime(start),
		CPRAccumulatedMS:  (2 * time.Minute).Milliseconds(),
	}

	got := ComputeTimerState(sess, testWindows, start.Add(150*time.Second))
	if got.TotalCPRTime != 2*time.Minute {
		t.Fatalf("CPR time = %v, want frozen 2m", got.TotalCPRTime)
	}
	if got.TotalElapsed != 150*time.Second {
		t.Fatalf("total elapsed = %v, want 150s", got.TotalElapsed)
	}
	if f := got.CPRFraction(); f < 0.79 || f > 0.81 {
		t.Fatalf("CPR fraction = %v, want 0.8", f)
	}
}

func TestShiftTimestampsRoundTrip(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	savedAt := start.Add(80 * time.Second)
	sess := Session{
		Phase:               PhaseShockable,
		CurrentRhythm:       RhythmVFPVT,
		ShockCount:          2,
		StartTime:           ptrTime(start),
		CPRCycleStartTime:   ptrTime(start.Add(10 * time.Second)),
		LastEpinephrineTime: ptrTime(start.Add(20 * time.Second)),
		CPRActiveSince:      ptrTime(start.Add(10 * time.Second)),
	}
	before := ComputeTimerState(sess, testWindows, savedAt)

	gap := 42 * time.Minute
	resumed := ShiftTimestamps(sess, gap)
	after := ComputeTimerState(resumed, testWindows, savedAt.Add(gap))

	if after.CPRCycleRemaining != before.CPRCycleRemaining {
		t.Fatalf("cycle remaining drifted across resume: %v != %v", after.CPRCycleRemaining, before.CPRCycleRemaining)
	}
	if after.EpiRemaining != before.EpiRemaining {
		t.Fatalf("epi remaining drifted across resume: %v != %v", after.EpiRemaining, before.EpiRemaining)
	}
	// Total elapsed spans the gap: the arrest kept running while the app
	// was closed.
	if want := before.TotalElapsed + gap; after.TotalElapsed != want {
		t.Fatalf("total elapsed = %v, want %v", after.TotalElapsed, want)
	}
	if resumed.StartTime == nil || !resumed.StartTime.Equal(start) {
		t.Fatalf("episode start must not shift")
	}
}

func TestShiftTimestampsNilAndNegative(t *testing.T) {
	t.Parallel()

	sess := Session{Phase: PhaseCPRPendingRhythm}
	if got := ShiftTimestamps(sess, time.Hour); got.CPRCycleStartTime != nil || got.LastEpinephrineTime != nil {
		t.Fatalf("nil references must stay nil")
	}

	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	sess.CPRCycleStartTime = ptrTime(start)
	got := ShiftTimestamps(sess, -time.Minute)
	if !got.CPRCycleStartTime.Equal(start) {
		t.Fatalf("negative gap must be treated as zero")
	}
}
