package domain

import (
	"errors"
	"fmt"
	"time"
)

const SchemaVersion = 1

var (
	ErrInvalidPhase      = errors.New("action not allowed in current phase")
	ErrUnknownPhase      = errors.New("unknown phase")
	ErrUnknownBranch     = errors.New("unknown branch")
	ErrUnknownGroup      = errors.New("unknown patient group")
	ErrUnknownStability  = errors.New("unknown stability")
	ErrUnknownQRSWidth   = errors.New("unknown qrs width")
	ErrTreatmentGated    = errors.New("treatment not available for this assessment")
	ErrAtropineExhausted = errors.New("atropine dose limit reached")
	ErrSessionEnded      = errors.New("dysrhythmia session has ended")
)

type Phase string

const (
	PhasePatientSelection Phase = "patient_selection"
	PhaseBranchSelection  Phase = "branch_selection"
	PhaseBradyAssessment  Phase = "bradycardia_assessment"
	PhaseBradyTreatment   Phase = "bradycardia_treatment"
	PhaseTachyAssessment  Phase = "tachycardia_assessment"
	PhaseTachySinusVsSVT  Phase = "tachycardia_sinus_vs_svt"
	PhaseTachyTreatment   Phase = "tachycardia_treatment"
	PhaseSessionEnded     Phase = "session_ended"
)

func (p Phase) Validate() error {
	switch p {
	case PhasePatientSelection, PhaseBranchSelection, PhaseBradyAssessment, PhaseBradyTreatment,
		PhaseTachyAssessment, PhaseTachySinusVsSVT, PhaseTachyTreatment, PhaseSessionEnded:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownPhase, p)
	}
}

func (p Phase) Treatment() bool {
	return p == PhaseBradyTreatment || p == PhaseTachyTreatment
}

type PatientGroup string

const (
	GroupAdult     PatientGroup = "adult"
	GroupPediatric PatientGroup = "pediatric"
)

func (g PatientGroup) Validate() error {
	switch g {
	case GroupAdult, GroupPediatric:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownGroup, g)
	}
}

type Branch string

const (
	BranchBradycardia Branch = "bradycardia"
	BranchTachycardia Branch = "tachycardia"
)

func (b Branch) Validate() error {
	switch b {
	case BranchBradycardia, BranchTachycardia:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownBranch, b)
	}
}

type Stability string

const (
	Stable   Stability = "stable"
	Unstable Stability = "unstable"
)

func (s Stability) Validate() error {
	switch s {
	case Stable, Unstable:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownStability, s)
	}
}

type QRSWidth string

const (
	QRSNarrow QRSWidth = "narrow"
	QRSWide   QRSWidth = "wide"
)

func (w QRSWidth) Validate() error {
	switch w {
	case QRSNarrow, QRSWide:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownQRSWidth, w)
	}
}

type SinusVsSVT string

const (
	ProbableSinus SinusVsSVT = "probable_sinus"
	ProbableSVT   SinusVsSVT = "probable_svt"
)

type Outcome string

const (
	OutcomeResolved    Outcome = "resolved"
	OutcomeSwitched    Outcome = "switched_to_arrest"
	OutcomeTransferred Outcome = "transferred"
)

// SinusCriteria is the pediatric differentiation checklist. Criteria that
// hold favor sinus tachycardia over SVT.
type SinusCriteria struct {
	HistoryCompatible  bool `json:"history_compatible"`
	PWavesPresent      bool `json:"p_waves_present"`
	VariableRate       bool `json:"variable_rate"`
	RateBelowThreshold bool `json:"rate_below_threshold"`
}

// DecisionContext accumulates every assessment answer. Interventions carry a
// copy of it so the log shows what was known when each step was taken.
type DecisionContext struct {
	PatientGroup  PatientGroup  `json:"patient_group,omitempty"`
	WeightKg      *float64      `json:"weight_kg,omitempty"`
	Branch        Branch        `json:"branch,omitempty"`
	Stability     Stability     `json:"stability,omitempty"`
	QRSWidth      QRSWidth      `json:"qrs_width,omitempty"`
	RhythmRegular *bool         `json:"rhythm_regular,omitempty"`
	Monomorphic   *bool         `json:"monomorphic,omitempty"`
	SinusVsSVT    SinusVsSVT    `json:"sinus_vs_svt,omitempty"`
	SinusCriteria SinusCriteria `json:"sinus_criteria"`
}

// Session is one bradycardia/tachycardia consultation, independent from the
// arrest machine. Replaced as a whole value on every transition.
type Session struct {
	ID      string  `json:"id"`
	Phase   Phase   `json:"phase"`
	Outcome Outcome `json:"outcome,omitempty"`

	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`

	Context DecisionContext `json:"context"`

	AtropineCount      int `json:"atropine_count"`
	AdenosineCount     int `json:"adenosine_count"`
	CardioversionCount int `json:"cardioversion_count"`

	Interventions []Intervention `json:"interventions"`

	Version int `json:"version"`
}

// AtropineDoseLimit is the adult escalation cap.
const AtropineDoseLimit = 3

func (s Session) CanGiveAtropine() bool {
	if s.Phase != PhaseBradyTreatment || s.Context.Stability != Unstable {
		return false
	}
	return s.Context.PatientGroup != GroupAdult || s.AtropineCount < AtropineDoseLimit
}

// ArrestSeed is the explicit hand-off payload for switchToArrest: enough
// context to start a fresh arrest episode, nothing shared.
type ArrestSeed struct {
	PatientGroup PatientGroup
	WeightKg     *float64
}
