package dto

import (
	"time"

	"codeclock/internal/modules/arrest/domain"
)

type StartInput struct {
	PathwayMode string
	WeightKg    *float64
}

// RhythmCheckCompletion selects one of the three ways a rhythm check ends.
type RhythmCheckCompletion struct {
	Result string // "shock", "no_shock" or "resume"
	Rhythm string // new rhythm for "no_shock"
}

type ChecklistInput struct {
	List string // "hs_ts", "pregnancy" or "post_rosc"
	Item string
}

type VitalsInput struct {
	SpO2       *float64
	SystolicBP *float64
	ETCO2      *float64
}

// EpisodeOutput is the full live view: the session, the derived timers, the
// advisory banner and the drug eligibility flags the UI renders as buttons.
type EpisodeOutput struct {
	Session        domain.Session
	Timers         domain.TimerState
	Advisory       domain.Advisory
	CanEpinephrine bool
	CanAmiodarone  bool
	CanLidocaine   bool
}

type FinishOutput struct {
	EpisodeID   string
	Outcome     string
	Path        string
	DurationMin int
}

type InterventionView struct {
	At      time.Time
	Elapsed time.Duration
	Kind    string
	Label   string
	Details string
	Value   *float64
	Unit    string
}

type LogOutput struct {
	EpisodeID string
	Entries   []InterventionView
}

// EpisodeSummary is one finished episode from the index.
type EpisodeSummary struct {
	ID               string
	PathwayMode      string
	Outcome          string
	FinalRhythm      string
	StartedAt        time.Time
	DurationMin      int
	ShockCount       int
	EpinephrineCount int
	CPRFraction      float64
}
