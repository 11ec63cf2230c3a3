package domain

import "time"

// Windows bundles the protocol timing constants the timer derivation needs.
// The service layer maps these from the loaded protocol config.
type Windows struct {
	RhythmCheckInterval  time.Duration
	EpinephrineInterval  time.Duration
	PreShockAlertAdvance time.Duration
}

// TimerState is derived, never authoritative: every field is recomputed from
// Session timestamps and the current wall-clock read. Countdowns are always
// target minus elapsed-since-reference, never decremented tick by tick, so a
// suspended process self-corrects on its next recomputation.
type TimerState struct {
	CPRCycleRemaining time.Duration `json:"cpr_cycle_remaining"`
	EpiRemaining      time.Duration `json:"epi_remaining"`
	TotalElapsed      time.Duration `json:"total_elapsed"`
	TotalCPRTime      time.Duration `json:"total_cpr_time"`
	PreShockAlert     bool          `json:"pre_shock_alert"`
	RhythmCheckDue    bool          `json:"rhythm_check_due"`
	EpiDue            bool          `json:"epi_due"`
}

// CPRFraction is the share of elapsed time spent on active compressions.
func (t TimerState) CPRFraction() float64 {
	if t.TotalElapsed <= 0 {
		return 0
	}
	f := float64(t.TotalCPRTime) / float64(t.TotalElapsed)
	if f > 1 {
		return 1
	}
	return f
}

// ComputeTimerState derives the live timer view of a session at now.
//
// During cpr_pending_rhythm the cycle and epinephrine countdowns are frozen
// at their full values: no pathway is known, so no interval has begun. Total
// elapsed always runs from the episode start, including during a rhythm
// check; CPR time only accrues while compressions are active.
func ComputeTimerState(s Session, w Windows, now time.Time) TimerState {
	t := TimerState{
		CPRCycleRemaining: w.RhythmCheckInterval,
		EpiRemaining:      w.EpinephrineInterval,
	}

	if s.StartTime != nil {
		if d := now.Sub(*s.StartTime); d > 0 {
			t.TotalElapsed = d
		}
	}
	t.TotalCPRTime = time.Duration(s.CPRAccumulatedMS) * time.Millisecond
	if s.CPRActiveSince != nil {
		if d := now.Sub(*s.CPRActiveSince); d > 0 {
			t.TotalCPRTime += d
		}
	}

	if !s.Phase.PathwayKnown() {
		return t
	}

	if s.CPRCycleStartTime != nil {
		t.CPRCycleRemaining = remaining(w.RhythmCheckInterval, *s.CPRCycleStartTime, now)
	}
	switch {
	case s.LastEpinephrineTime != nil:
		t.EpiRemaining = remaining(w.EpinephrineInterval, *s.LastEpinephrineTime, now)
	case s.Phase == PhaseNonShockable:
		t.EpiRemaining = 0
	case s.Phase == PhaseShockable && s.ShockCount >= 2:
		t.EpiRemaining = 0
	}

	t.PreShockAlert = t.CPRCycleRemaining > 0 && t.CPRCycleRemaining <= w.PreShockAlertAdvance
	t.RhythmCheckDue = t.CPRCycleRemaining == 0
	t.EpiDue = s.EpiDue(now, w.EpinephrineInterval)
	return t
}

// ShiftTimestamps moves the in-flight countdown references forward by gap so
// a resumed session continues where it was saved, as if the process had
// never paused. The episode start is deliberately left alone: total elapsed
// time keeps counting across the gap because the arrest did.
func ShiftTimestamps(s Session, gap time.Duration) Session {
	if gap < 0 {
		gap = 0
	}
	shifted := s
	shifted.CPRCycleStartTime = shift(s.CPRCycleStartTime, gap)
	shifted.LastEpinephrineTime = shift(s.LastEpinephrineTime, gap)
	shifted.CPRActiveSince = shift(s.CPRActiveSince, gap)
	return shifted
}

func shift(ts *time.Time, gap time.Duration) *time.Time {
	if ts == nil {
		return nil
	}
	moved := ts.Add(gap)
	return &moved
}

func remaining(target time.Duration, reference, now time.Time) time.Duration {
	left := target - now.Sub(reference)
	if left < 0 {
		return 0
	}
	return left
}
