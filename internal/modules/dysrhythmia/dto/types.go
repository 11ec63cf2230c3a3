package dto

import "codeclock/internal/modules/dysrhythmia/domain"

type StartInput struct {
	PatientGroup string
	WeightKg     *float64
}

type TachyAssessment struct {
	Stability   string
	QRSWidth    string
	Regular     *bool
	Monomorphic *bool
}

type SinusDifferentiation struct {
	Choice   string
	Criteria domain.SinusCriteria
}

// SessionOutput is the live view: the session plus the gated treatment menu
// for the current phase.
type SessionOutput struct {
	Session    domain.Session
	Treatments []domain.TreatmentOption
}

// SwitchOutput carries the hand-off result: the frozen consultation and the
// seed the caller passes to the arrest machine.
type SwitchOutput struct {
	Session         domain.Session
	Seed            domain.ArrestSeed
	ArrestEpisodeID string
}
