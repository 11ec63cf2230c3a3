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
	ErrUnknownRhythm     = errors.New("unknown rhythm")
	ErrUnknownPathway    = errors.New("unknown pathway mode")
	ErrEpisodeTerminal   = errors.New("episode is terminal")
	ErrNotInRhythmCheck  = errors.New("not in rhythm check")
	ErrAlreadyInCheck    = errors.New("rhythm check already open")
	ErrWeightNonPositive = errors.New("patient weight must be positive")
)

type Phase string

const (
	PhasePathwaySelection Phase = "pathway_selection"
	PhaseCPRPendingRhythm Phase = "cpr_pending_rhythm"
	PhaseShockable        Phase = "shockable_pathway"
	PhaseNonShockable     Phase = "non_shockable_pathway"
	PhasePostROSC         Phase = "post_rosc"
	PhaseCodeEnded        Phase = "code_ended"
)

func (p Phase) Validate() error {
	switch p {
	case PhasePathwaySelection, PhaseCPRPendingRhythm, PhaseShockable, PhaseNonShockable, PhasePostROSC, PhaseCodeEnded:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownPhase, p)
	}
}

// CPRActive reports whether chest compressions are supposed to be running,
// which is what gates the periodic timer recomputation.
func (p Phase) CPRActive() bool {
	switch p {
	case PhaseCPRPendingRhythm, PhaseShockable, PhaseNonShockable:
		return true
	}
	return false
}

// PathwayKnown reports whether a first rhythm has been identified.
func (p Phase) PathwayKnown() bool {
	return p == PhaseShockable || p == PhaseNonShockable
}

func (p Phase) Terminal() bool {
	return p == PhasePostROSC || p == PhaseCodeEnded
}

type Rhythm string

const (
	RhythmVFPVT    Rhythm = "vf_pvt"
	RhythmAsystole Rhythm = "asystole"
	RhythmPEA      Rhythm = "pea"
)

func (r Rhythm) Validate() error {
	switch r {
	case RhythmVFPVT, RhythmAsystole, RhythmPEA:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownRhythm, r)
	}
}

func (r Rhythm) Shockable() bool {
	return r == RhythmVFPVT
}

type Outcome string

const (
	OutcomeROSC     Outcome = "rosc"
	OutcomeDeceased Outcome = "deceased"
)

type PathwayMode string

const (
	PathwayAdult     PathwayMode = "adult"
	PathwayPediatric PathwayMode = "pediatric"
)

func (m PathwayMode) Validate() error {
	switch m {
	case PathwayAdult, PathwayPediatric:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownPathway, m)
	}
}

type AirwayStatus string

const (
	AirwayNone         AirwayStatus = "none"
	AirwayBVM          AirwayStatus = "bvm"
	AirwaySupraglottic AirwayStatus = "supraglottic"
	AirwayETT          AirwayStatus = "ett"
)

// HsAndTs is the reversible-cause checklist worked through during CPR.
type HsAndTs struct {
	Hypovolemia         bool `json:"hypovolemia"`
	Hypoxia             bool `json:"hypoxia"`
	HydrogenIon         bool `json:"hydrogen_ion"`
	HypoHyperkalemia    bool `json:"hypo_hyperkalemia"`
	Hypothermia         bool `json:"hypothermia"`
	TensionPneumothorax bool `json:"tension_pneumothorax"`
	Tamponade           bool `json:"tamponade"`
	Toxins              bool `json:"toxins"`
	ThrombosisPulmonary bool `json:"thrombosis_pulmonary"`
	ThrombosisCoronary  bool `json:"thrombosis_coronary"`
}

type PregnancyChecklist struct {
	Hemorrhage              bool `json:"hemorrhage"`
	MagnesiumToxicity       bool `json:"magnesium_toxicity"`
	AmnioticEmbolism        bool `json:"amniotic_embolism"`
	LeftUterineDisplacement bool `json:"left_uterine_displacement"`
	PerimortemCesarean      bool `json:"perimortem_cesarean"`
}

type PostROSCChecklist struct {
	AirwaySecured        bool     `json:"airway_secured"`
	OxygenTitrated       bool     `json:"oxygen_titrated"`
	PressureSupported    bool     `json:"pressure_supported"`
	TwelveLeadECG        bool     `json:"twelve_lead_ecg"`
	TargetedTemperature  bool     `json:"targeted_temperature"`
	TreatReversibleCause bool     `json:"treat_reversible_cause"`
	SpO2Percent          *float64 `json:"spo2_percent,omitempty"`
	SystolicBP           *float64 `json:"systolic_bp,omitempty"`
	ETCO2                *float64 `json:"etco2,omitempty"`
}

// Session is one cardiac-arrest episode. It is replaced as a whole value on
// every transition; Version increments with each replacement so periodic
// effects can detect that the session they captured is stale.
type Session struct {
	ID              string      `json:"id"`
	PathwayMode     PathwayMode `json:"pathway_mode"`
	PatientWeightKg *float64    `json:"patient_weight_kg,omitempty"`
	Phase           Phase       `json:"phase"`
	InRhythmCheck   bool        `json:"in_rhythm_check"`
	CurrentRhythm   Rhythm      `json:"current_rhythm,omitempty"`
	Outcome         Outcome     `json:"outcome,omitempty"`

	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	ROSCTime  *time.Time `json:"rosc_time,omitempty"`

	ShockCount       int     `json:"shock_count"`
	EpinephrineCount int     `json:"epinephrine_count"`
	AmiodaroneCount  int     `json:"amiodarone_count"`
	LidocaineCount   int     `json:"lidocaine_count"`
	CurrentEnergyJ   float64 `json:"current_energy_j"`

	LastEpinephrineTime *time.Time `json:"last_epinephrine_time,omitempty"`
	LastAmiodaroneTime  *time.Time `json:"last_amiodarone_time,omitempty"`
	CPRCycleStartTime   *time.Time `json:"cpr_cycle_start_time,omitempty"`
	CPRActiveSince      *time.Time `json:"cpr_active_since,omitempty"`
	CPRAccumulatedMS    int64      `json:"cpr_accumulated_ms"`

	AirwayStatus AirwayStatus       `json:"airway_status"`
	CPRRatio     string             `json:"cpr_ratio"`
	HsAndTs      HsAndTs            `json:"hs_and_ts"`
	Pregnancy    PregnancyChecklist `json:"pregnancy"`
	PostROSC     PostROSCChecklist  `json:"post_rosc"`

	Interventions []Intervention `json:"interventions"`

	Version int `json:"version"`
}

// CanGiveEpinephrine: a pathway has been identified and no rhythm check is
// open. Rejection happens here, not in the handler, so an ineligible call is
// a no-op rather than a fault.
func (s Session) CanGiveEpinephrine() bool {
	return s.Phase.PathwayKnown() && !s.InRhythmCheck
}

// CanGiveAmiodarone: shockable pathway, at least three shocks delivered, and
// fewer than two prior doses.
func (s Session) CanGiveAmiodarone() bool {
	return s.Phase == PhaseShockable && s.ShockCount >= 3 && s.AmiodaroneCount < 2 && !s.InRhythmCheck
}

// CanGiveLidocaine mirrors amiodarone eligibility without a dose cap.
func (s Session) CanGiveLidocaine() bool {
	return s.Phase == PhaseShockable && s.ShockCount >= 3 && !s.InRhythmCheck
}

// EpiDue reports whether an epinephrine dose is currently indicated: the
// repeat interval elapsed since the prior dose, or the pathway-specific first
// dose window opened (immediately on the non-shockable pathway, after the
// second shock on the shockable pathway).
func (s Session) EpiDue(now time.Time, repeatInterval time.Duration) bool {
	if s.LastEpinephrineTime != nil {
		return now.Sub(*s.LastEpinephrineTime) >= repeatInterval
	}
	switch s.Phase {
	case PhaseShockable:
		return s.ShockCount >= 2
	case PhaseNonShockable:
		return true
	}
	return false
}
