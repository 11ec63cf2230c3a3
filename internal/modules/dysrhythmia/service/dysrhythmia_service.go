package service

import (
	"fmt"

	dosingdomain "codeclock/internal/modules/dosing/domain"
	"codeclock/internal/modules/dysrhythmia/domain"
	"codeclock/internal/platform/clock"
	"codeclock/internal/platform/config"
	"codeclock/internal/platform/id"
)

// DysrhythmiaService walks the brady/tachy decision tree. Same value
// semantics as the arrest machine: sessions in, replacement sessions out.
type DysrhythmiaService struct {
	clock clock.Clock
	idGen id.Generator
	proto config.Protocol
}

func NewDysrhythmiaService(clk clock.Clock, idGen id.Generator, proto config.Protocol) *DysrhythmiaService {
	return &DysrhythmiaService{clock: clk, idGen: idGen, proto: proto}
}

func (s *DysrhythmiaService) NewSession() domain.Session {
	now := s.clock.Now()
	return domain.Session{
		ID:        s.idGen.New(),
		Phase:     domain.PhasePatientSelection,
		StartTime: &now,
		Version:   1,
	}
}

func (s *DysrhythmiaService) SelectPatient(sess domain.Session, group domain.PatientGroup, weightKg *float64) (domain.Session, error) {
	if sess.Phase != domain.PhasePatientSelection {
		return sess, domain.ErrInvalidPhase
	}
	if err := group.Validate(); err != nil {
		return sess, err
	}
	if weightKg != nil && *weightKg <= 0 {
		return sess, fmt.Errorf("patient weight must be positive")
	}
	sess.Context.PatientGroup = group
	if group == domain.GroupPediatric {
		sess.Context.WeightKg = weightKg
	}
	sess.Phase = domain.PhaseBranchSelection
	sess.Version++
	return sess, nil
}

func (s *DysrhythmiaService) SelectBranch(sess domain.Session, branch domain.Branch) (domain.Session, error) {
	if sess.Phase != domain.PhaseBranchSelection {
		return sess, domain.ErrInvalidPhase
	}
	if err := branch.Validate(); err != nil {
		return sess, err
	}
	sess.Context.Branch = branch
	if branch == domain.BranchBradycardia {
		sess.Phase = domain.PhaseBradyAssessment
	} else {
		sess.Phase = domain.PhaseTachyAssessment
	}
	sess.Version++
	return sess, nil
}

func (s *DysrhythmiaService) AssessBradycardia(sess domain.Session, stability domain.Stability) (domain.Session, error) {
	if sess.Phase != domain.PhaseBradyAssessment {
		return sess, domain.ErrInvalidPhase
	}
	if err := stability.Validate(); err != nil {
		return sess, err
	}
	sess.Context.Stability = stability
	sess.Phase = domain.PhaseBradyTreatment
	sess.Version++
	return sess, nil
}

// AssessTachycardia records the full tachycardia assessment. The pediatric
// branch routes through the sinus-vs-SVT differentiation step; adults go
// straight to treatment.
func (s *DysrhythmiaService) AssessTachycardia(sess domain.Session, stability domain.Stability, qrs domain.QRSWidth, regular, monomorphic *bool) (domain.Session, error) {
	if sess.Phase != domain.PhaseTachyAssessment {
		return sess, domain.ErrInvalidPhase
	}
	if err := stability.Validate(); err != nil {
		return sess, err
	}
	if err := qrs.Validate(); err != nil {
		return sess, err
	}
	sess.Context.Stability = stability
	sess.Context.QRSWidth = qrs
	sess.Context.RhythmRegular = regular
	sess.Context.Monomorphic = monomorphic
	if sess.Context.PatientGroup == domain.GroupPediatric {
		sess.Phase = domain.PhaseTachySinusVsSVT
	} else {
		sess.Phase = domain.PhaseTachyTreatment
	}
	sess.Version++
	return sess, nil
}

// DifferentiateSVT resolves the pediatric sinus-vs-SVT step. A probable
// sinus call still moves to treatment, where the menu collapses to
// treat-the-cause guidance.
func (s *DysrhythmiaService) DifferentiateSVT(sess domain.Session, criteria domain.SinusCriteria, choice domain.SinusVsSVT) (domain.Session, error) {
	if sess.Phase != domain.PhaseTachySinusVsSVT {
		return sess, domain.ErrInvalidPhase
	}
	if choice != domain.ProbableSinus && choice != domain.ProbableSVT {
		return sess, fmt.Errorf("unknown differentiation choice: %s", choice)
	}
	sess.Context.SinusCriteria = criteria
	sess.Context.SinusVsSVT = choice
	sess.Phase = domain.PhaseTachyTreatment
	sess.Version++
	return sess, nil
}

func (s *DysrhythmiaService) GiveAtropine(sess domain.Session) (domain.Session, error) {
	if err := s.gate(sess, domain.KindAtropine); err != nil {
		return sess, err
	}
	if sess.Context.PatientGroup == domain.GroupAdult && sess.AtropineCount >= domain.AtropineDoseLimit {
		return sess, domain.ErrAtropineExhausted
	}
	dose := s.strategyFor(sess).Atropine(sess.AtropineCount)
	sess.AtropineCount++
	return s.logDose(sess, domain.KindAtropine, dose, sess.AtropineCount), nil
}

func (s *DysrhythmiaService) GiveAdenosine(sess domain.Session) (domain.Session, error) {
	if err := s.gate(sess, domain.KindAdenosine); err != nil {
		return sess, err
	}
	dose := s.strategyFor(sess).Adenosine(sess.AdenosineCount)
	sess.AdenosineCount++
	return s.logDose(sess, domain.KindAdenosine, dose, sess.AdenosineCount), nil
}

func (s *DysrhythmiaService) Cardiovert(sess domain.Session) (domain.Session, error) {
	if err := s.gate(sess, domain.KindCardioversion); err != nil {
		return sess, err
	}
	dose := s.strategyFor(sess).Cardioversion(sess.CardioversionCount)
	sess.CardioversionCount++
	return s.logDose(sess, domain.KindCardioversion, dose, sess.CardioversionCount), nil
}

func (s *DysrhythmiaService) GiveProcainamide(sess domain.Session) (domain.Session, error) {
	if err := s.gate(sess, domain.KindProcainamide); err != nil {
		return sess, err
	}
	dose := s.strategyFor(sess).Procainamide()
	return s.logDose(sess, domain.KindProcainamide, dose, 1), nil
}

func (s *DysrhythmiaService) GiveAmiodarone(sess domain.Session) (domain.Session, error) {
	if err := s.gate(sess, domain.KindAmiodarone); err != nil {
		return sess, err
	}
	dose := s.strategyFor(sess).Amiodarone(0)
	return s.logDose(sess, domain.KindAmiodarone, dose, 1), nil
}

func (s *DysrhythmiaService) StartEpinephrineInfusion(sess domain.Session) (domain.Session, error) {
	if err := s.gate(sess, domain.KindEpiInfusion); err != nil {
		return sess, err
	}
	sess = s.log(sess, domain.KindEpiInfusion, "Epinephrine infusion 2-10 mcg/min titrated to effect", 0, nil, "")
	sess.Version++
	return sess, nil
}

func (s *DysrhythmiaService) StartPacing(sess domain.Session) (domain.Session, error) {
	if err := s.gate(sess, domain.KindPacing); err != nil {
		return sess, err
	}
	sess = s.log(sess, domain.KindPacing, "Transcutaneous pacing started", 0, nil, "")
	sess.Version++
	return sess, nil
}

func (s *DysrhythmiaService) PerformVagalManeuvers(sess domain.Session) (domain.Session, error) {
	if err := s.gate(sess, domain.KindVagalManeuvers); err != nil {
		return sess, err
	}
	sess = s.log(sess, domain.KindVagalManeuvers, "Vagal maneuvers performed", 0, nil, "")
	sess.Version++
	return sess, nil
}

// RecordGuidance logs a guidance menu entry as followed.
func (s *DysrhythmiaService) RecordGuidance(sess domain.Session, key string) (domain.Session, error) {
	if !sess.Phase.Treatment() {
		return sess, domain.ErrInvalidPhase
	}
	for _, option := range domain.AvailableTreatments(sess.Phase, sess.Context) {
		if option.Key == key && option.Kind == domain.KindGuidance {
			sess = s.log(sess, domain.KindGuidance, option.Guidance, 0, nil, "")
			sess.Version++
			return sess, nil
		}
	}
	return sess, fmt.Errorf("%w: %s", domain.ErrTreatmentGated, key)
}

func (s *DysrhythmiaService) AddNote(sess domain.Session, text string) (domain.Session, error) {
	if sess.Phase == domain.PhaseSessionEnded {
		return sess, domain.ErrSessionEnded
	}
	sess = s.log(sess, domain.KindNote, text, 0, nil, "")
	sess.Version++
	return sess, nil
}

func (s *DysrhythmiaService) Resolve(sess domain.Session) (domain.Session, error) {
	return s.end(sess, domain.OutcomeResolved, domain.KindResolved, "Dysrhythmia resolved")
}

func (s *DysrhythmiaService) Transfer(sess domain.Session) (domain.Session, error) {
	return s.end(sess, domain.OutcomeTransferred, domain.KindTransferred, "Care transferred")
}

// SwitchToArrest freezes this session and returns the seed for a fresh
// arrest episode. The two machines share context, never state.
func (s *DysrhythmiaService) SwitchToArrest(sess domain.Session) (domain.Session, domain.ArrestSeed, error) {
	sess, err := s.end(sess, domain.OutcomeSwitched, domain.KindSwitchToArrest, "Patient arrested, switching to resuscitation")
	if err != nil {
		return sess, domain.ArrestSeed{}, err
	}
	seed := domain.ArrestSeed{PatientGroup: sess.Context.PatientGroup, WeightKg: sess.Context.WeightKg}
	return sess, seed, nil
}

func (s *DysrhythmiaService) end(sess domain.Session, outcome domain.Outcome, kind domain.InterventionKind, details string) (domain.Session, error) {
	if sess.Phase == domain.PhaseSessionEnded {
		return sess, domain.ErrSessionEnded
	}
	now := s.clock.Now()
	sess = s.log(sess, kind, details, 0, nil, "")
	sess.Phase = domain.PhaseSessionEnded
	sess.Outcome = outcome
	sess.EndTime = &now
	sess.Version++
	return sess, nil
}

func (s *DysrhythmiaService) gate(sess domain.Session, kind domain.InterventionKind) error {
	if sess.Phase == domain.PhaseSessionEnded {
		return domain.ErrSessionEnded
	}
	if !sess.Phase.Treatment() {
		return domain.ErrInvalidPhase
	}
	if !domain.TreatmentAllowed(sess.Phase, sess.Context, kind) {
		return fmt.Errorf("%w: %s", domain.ErrTreatmentGated, kind)
	}
	return nil
}

func (s *DysrhythmiaService) strategyFor(sess domain.Session) dosingdomain.Strategy {
	if sess.Context.PatientGroup == domain.GroupPediatric {
		return dosingdomain.PediatricStrategy{WeightKg: sess.Context.WeightKg, CapJoules: s.proto.PediatricCapJoules}
	}
	return dosingdomain.AdultStrategy{InitialJoules: s.proto.AdultInitialJoules, MaxJoules: s.proto.AdultMaxJoules}
}

func (s *DysrhythmiaService) logDose(sess domain.Session, kind domain.InterventionKind, dose dosingdomain.Dose, step int) domain.Session {
	details := fmt.Sprintf("%s %s (dose %d)", kind.Label(), dose.Display, step)
	sess = s.log(sess, kind, details, step, dose.Value, dose.Unit)
	sess.Version++
	return sess
}

func (s *DysrhythmiaService) log(sess domain.Session, kind domain.InterventionKind, details string, step int, value *float64, unit string) domain.Session {
	iv := domain.Intervention{
		ID:             s.idGen.New(),
		Timestamp:      s.clock.Now(),
		Kind:           kind,
		Details:        details,
		DoseStep:       step,
		CalculatedDose: value,
		Unit:           unit,
		Context:        sess.Context,
	}
	interventions := make([]domain.Intervention, len(sess.Interventions), len(sess.Interventions)+1)
	copy(interventions, sess.Interventions)
	sess.Interventions = append(interventions, iv)
	return sess
}
