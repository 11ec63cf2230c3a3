package domain

import (
	"errors"
	"fmt"
	"time"
)

var ErrUnknownInterventionKind = errors.New("unknown intervention kind")

type InterventionKind string

const (
	KindAtropine       InterventionKind = "atropine"
	KindAdenosine      InterventionKind = "adenosine"
	KindCardioversion  InterventionKind = "cardioversion"
	KindProcainamide   InterventionKind = "procainamide"
	KindAmiodarone     InterventionKind = "amiodarone"
	KindEpiInfusion    InterventionKind = "epinephrine_infusion"
	KindPacing         InterventionKind = "pacing"
	KindVagalManeuvers InterventionKind = "vagal_maneuvers"
	KindGuidance       InterventionKind = "guidance"
	KindNote           InterventionKind = "note"
	KindSwitchToArrest InterventionKind = "switch_to_arrest"
	KindResolved       InterventionKind = "resolved"
	KindTransferred    InterventionKind = "transferred"
)

func (k InterventionKind) Validate() error {
	switch k {
	case KindAtropine, KindAdenosine, KindCardioversion, KindProcainamide, KindAmiodarone,
		KindEpiInfusion, KindPacing, KindVagalManeuvers, KindGuidance, KindNote,
		KindSwitchToArrest, KindResolved, KindTransferred:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownInterventionKind, k)
	}
}

func (k InterventionKind) Label() string {
	switch k {
	case KindAtropine:
		return "Atropine"
	case KindAdenosine:
		return "Adenosine"
	case KindCardioversion:
		return "Synchronized cardioversion"
	case KindProcainamide:
		return "Procainamide"
	case KindAmiodarone:
		return "Amiodarone"
	case KindEpiInfusion:
		return "Epinephrine infusion"
	case KindPacing:
		return "Transcutaneous pacing"
	case KindVagalManeuvers:
		return "Vagal maneuvers"
	case KindGuidance:
		return "Guidance"
	case KindNote:
		return "Note"
	case KindSwitchToArrest:
		return "Switched to arrest"
	case KindResolved:
		return "Resolved"
	case KindTransferred:
		return "Transferred"
	}
	return string(k)
}

// Intervention records one decision-tree step. DoseStep is the 1-based
// occurrence for escalating drugs; Context is a copy of the decision context
// at the moment of entry.
type Intervention struct {
	ID             string           `json:"id"`
	Timestamp      time.Time        `json:"timestamp"`
	Kind           InterventionKind `json:"kind"`
	Details        string           `json:"details,omitempty"`
	DoseStep       int              `json:"dose_step,omitempty"`
	CalculatedDose *float64         `json:"calculated_dose,omitempty"`
	Unit           string           `json:"unit,omitempty"`
	Context        DecisionContext  `json:"context"`
}
