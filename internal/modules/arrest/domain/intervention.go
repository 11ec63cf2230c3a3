package domain

import (
	"errors"
	"fmt"
	"time"
)

var ErrUnknownInterventionKind = errors.New("unknown intervention kind")

// InterventionKind is a closed tag set. Every consumer that renders or
// exports interventions switches over it exhaustively; adding a kind means
// updating Validate and Label, which in turn breaks the exhaustive switches
// at the advisory and export boundaries.
type InterventionKind string

const (
	KindShock         InterventionKind = "shock"
	KindEpinephrine   InterventionKind = "epinephrine"
	KindAmiodarone    InterventionKind = "amiodarone"
	KindLidocaine     InterventionKind = "lidocaine"
	KindRhythmChange  InterventionKind = "rhythm_change"
	KindROSC          InterventionKind = "rosc"
	KindAirway        InterventionKind = "airway"
	KindCPRStart      InterventionKind = "cpr_start"
	KindCPRPause      InterventionKind = "cpr_pause"
	KindCPRResume     InterventionKind = "cpr_resume"
	KindNote          InterventionKind = "note"
	KindHsTsCheck     InterventionKind = "hs_ts_check"
	KindPregnancy     InterventionKind = "pregnancy_check"
	KindPostROSCCheck InterventionKind = "post_rosc_check"
	KindETCO2         InterventionKind = "etco2"
	KindVitals        InterventionKind = "vitals"
	KindCodeEnd       InterventionKind = "code_end"
)

func (k InterventionKind) Validate() error {
	switch k {
	case KindShock, KindEpinephrine, KindAmiodarone, KindLidocaine, KindRhythmChange,
		KindROSC, KindAirway, KindCPRStart, KindCPRPause, KindCPRResume, KindNote,
		KindHsTsCheck, KindPregnancy, KindPostROSCCheck, KindETCO2, KindVitals, KindCodeEnd:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownInterventionKind, k)
	}
}

// Label is the human-readable column header used by log listings and
// exporters. Localization layers key off the kind itself; this is the
// neutral fallback.
func (k InterventionKind) Label() string {
	switch k {
	case KindShock:
		return "Shock"
	case KindEpinephrine:
		return "Epinephrine"
	case KindAmiodarone:
		return "Amiodarone"
	case KindLidocaine:
		return "Lidocaine"
	case KindRhythmChange:
		return "Rhythm change"
	case KindROSC:
		return "ROSC"
	case KindAirway:
		return "Airway"
	case KindCPRStart:
		return "CPR started"
	case KindCPRPause:
		return "CPR paused"
	case KindCPRResume:
		return "CPR resumed"
	case KindNote:
		return "Note"
	case KindHsTsCheck:
		return "H&T checked"
	case KindPregnancy:
		return "Pregnancy cause"
	case KindPostROSCCheck:
		return "Post-ROSC item"
	case KindETCO2:
		return "ETCO2"
	case KindVitals:
		return "Vitals"
	case KindCodeEnd:
		return "Code ended"
	}
	return string(k)
}

// Intervention is one immutable, timestamped log entry. Entries are appended
// synchronously inside action handlers, so insertion order equals timestamp
// order.
type Intervention struct {
	ID        string           `json:"id"`
	Timestamp time.Time        `json:"timestamp"`
	Kind      InterventionKind `json:"kind"`
	Details   string           `json:"details"`
	Value     *float64         `json:"value,omitempty"`
	Unit      string           `json:"unit,omitempty"`
}

func (i Intervention) Validate() error {
	if i.ID == "" {
		return fmt.Errorf("intervention id is required")
	}
	if i.Timestamp.IsZero() {
		return fmt.Errorf("intervention timestamp is required")
	}
	return i.Kind.Validate()
}
