package service

import (
	"fmt"
	"time"

	"codeclock/internal/modules/arrest/domain"
	dosingdomain "codeclock/internal/modules/dosing/domain"
	"codeclock/internal/platform/clock"
	"codeclock/internal/platform/config"
	"codeclock/internal/platform/id"
)

// ArrestService is the resuscitation state machine. Every method takes a
// Session value and returns the replacement value; callers swap the whole
// session atomically, so there is exactly one writer and no partial state.
type ArrestService struct {
	clock clock.Clock
	idGen id.Generator
	proto config.Protocol
}

func NewArrestService(clk clock.Clock, idGen id.Generator, proto config.Protocol) *ArrestService {
	return &ArrestService{clock: clk, idGen: idGen, proto: proto}
}

// Windows exposes the timing constants for timer derivation.
func (s *ArrestService) Windows() domain.Windows {
	return domain.Windows{
		RhythmCheckInterval:  s.proto.RhythmCheckInterval(),
		EpinephrineInterval:  s.proto.EpinephrineInterval(),
		PreShockAlertAdvance: s.proto.PreShockAlertAdvance(),
	}
}

// NewSession creates a fresh episode at pathway selection. The pathway mode
// is chosen afterwards via SelectPathway.
func (s *ArrestService) NewSession() domain.Session {
	return domain.Session{
		ID:           s.idGen.New(),
		Phase:        domain.PhasePathwaySelection,
		AirwayStatus: domain.AirwayNone,
		Version:      1,
	}
}

// SelectPathway records the adult/pediatric mode and, for pediatric, an
// optional patient weight. Valid only before CPR starts.
func (s *ArrestService) SelectPathway(sess domain.Session, mode domain.PathwayMode, weightKg *float64) (domain.Session, error) {
	if sess.Phase != domain.PhasePathwaySelection {
		return sess, domain.ErrInvalidPhase
	}
	if err := mode.Validate(); err != nil {
		return sess, err
	}
	if weightKg != nil && *weightKg <= 0 {
		return sess, domain.ErrWeightNonPositive
	}
	sess.PathwayMode = mode
	sess.CPRRatio = "30:2"
	if mode == domain.PathwayPediatric {
		sess.CPRRatio = "15:2"
		sess.PatientWeightKg = weightKg
	}
	sess.Version++
	return sess, nil
}

// StartCPR begins the episode clock and compressions.
func (s *ArrestService) StartCPR(sess domain.Session) (domain.Session, error) {
	if sess.Phase != domain.PhasePathwaySelection {
		return sess, domain.ErrInvalidPhase
	}
	if sess.PathwayMode == "" {
		return sess, fmt.Errorf("%w: pathway mode not selected", domain.ErrInvalidPhase)
	}
	now := s.clock.Now()
	sess.StartTime = &now
	sess.CPRActiveSince = &now
	sess.Phase = domain.PhaseCPRPendingRhythm
	sess = s.log(sess, now, domain.KindCPRStart, fmt.Sprintf("CPR started, ratio %s", sess.CPRRatio), nil, "")
	sess.Version++
	return sess, nil
}

// SelectRhythm records the first rhythm identification. A shockable rhythm
// delivers the first shock immediately and pre-arms the escalated energy for
// the next one; either way the two-minute cycle starts now.
func (s *ArrestService) SelectRhythm(sess domain.Session, rhythm domain.Rhythm) (domain.Session, error) {
	if sess.Phase != domain.PhaseCPRPendingRhythm {
		return sess, domain.ErrInvalidPhase
	}
	if err := rhythm.Validate(); err != nil {
		return sess, err
	}
	now := s.clock.Now()
	strategy := s.strategyFor(sess)
	sess.CurrentRhythm = rhythm
	sess = s.log(sess, now, domain.KindRhythmChange, "Initial rhythm: "+rhythmLabel(rhythm), nil, "")
	if rhythm.Shockable() {
		delivered := strategy.ShockEnergy(0)
		sess = s.log(sess, now, domain.KindShock, "Shock delivered "+delivered.Display, delivered.Value, delivered.Unit)
		sess.ShockCount = 1
		if next := strategy.ShockEnergy(1); next.Value != nil {
			sess.CurrentEnergyJ = *next.Value
		}
		sess.Phase = domain.PhaseShockable
	} else {
		sess.Phase = domain.PhaseNonShockable
	}
	sess.CPRCycleStartTime = &now
	sess.Version++
	return sess, nil
}

// StartRhythmCheck opens the rhythm-check sub-mode: CPR-time accrual stops,
// total elapsed keeps running.
func (s *ArrestService) StartRhythmCheck(sess domain.Session) (domain.Session, error) {
	if !sess.Phase.CPRActive() {
		return sess, domain.ErrInvalidPhase
	}
	if sess.InRhythmCheck {
		return sess, domain.ErrAlreadyInCheck
	}
	now := s.clock.Now()
	sess = pauseCPR(sess, now)
	sess.InRhythmCheck = true
	sess = s.log(sess, now, domain.KindCPRPause, "Rhythm check, compressions paused", nil, "")
	sess.Version++
	return sess, nil
}

// CompleteRhythmCheckWithShock delivers a shock at the armed energy, forces
// the shockable pathway, resets the cycle, and re-arms the next energy.
func (s *ArrestService) CompleteRhythmCheckWithShock(sess domain.Session) (domain.Session, error) {
	if !sess.InRhythmCheck {
		return sess, domain.ErrNotInRhythmCheck
	}
	now := s.clock.Now()
	strategy := s.strategyFor(sess)
	delivered := strategy.ShockEnergy(sess.ShockCount)
	sess = s.log(sess, now, domain.KindShock, "Shock delivered "+delivered.Display, delivered.Value, delivered.Unit)
	sess.ShockCount++
	if next := rearm(strategy, sess.ShockCount); next.Value != nil {
		sess.CurrentEnergyJ = *next.Value
	}
	sess.CurrentRhythm = domain.RhythmVFPVT
	sess.Phase = domain.PhaseShockable
	sess = closeRhythmCheck(sess, now)
	sess.Version++
	return sess, nil
}

// CompleteRhythmCheckNoShock records a non-shockable rhythm and moves to the
// non-shockable pathway.
func (s *ArrestService) CompleteRhythmCheckNoShock(sess domain.Session, newRhythm domain.Rhythm) (domain.Session, error) {
	if !sess.InRhythmCheck {
		return sess, domain.ErrNotInRhythmCheck
	}
	if err := newRhythm.Validate(); err != nil {
		return sess, err
	}
	if newRhythm.Shockable() {
		return sess, fmt.Errorf("%w: use the shock completion for %s", domain.ErrUnknownRhythm, newRhythm)
	}
	now := s.clock.Now()
	sess.CurrentRhythm = newRhythm
	sess.Phase = domain.PhaseNonShockable
	sess = s.log(sess, now, domain.KindRhythmChange, "Rhythm: "+rhythmLabel(newRhythm), nil, "")
	sess = closeRhythmCheck(sess, now)
	sess.Version++
	return sess, nil
}

// CompleteRhythmCheckResumeCPR keeps the current rhythm and pathway and just
// restarts the cycle.
func (s *ArrestService) CompleteRhythmCheckResumeCPR(sess domain.Session) (domain.Session, error) {
	if !sess.InRhythmCheck {
		return sess, domain.ErrNotInRhythmCheck
	}
	now := s.clock.Now()
	sess = s.log(sess, now, domain.KindCPRResume, "Rhythm unchanged, compressions resumed", nil, "")
	sess = closeRhythmCheck(sess, now)
	sess.Version++
	return sess, nil
}

// GiveEpinephrine administers one dose and restarts the repeat window.
// Count thresholds are advisory: eligibility is surfaced through the session
// predicates, the handler only insists on an identified pathway outside a
// rhythm check.
func (s *ArrestService) GiveEpinephrine(sess domain.Session) (domain.Session, error) {
	if !sess.CanGiveEpinephrine() {
		return sess, domain.ErrInvalidPhase
	}
	now := s.clock.Now()
	dose := s.strategyFor(sess).Epinephrine(sess.EpinephrineCount)
	sess.EpinephrineCount++
	sess.LastEpinephrineTime = &now
	sess = s.log(sess, now, domain.KindEpinephrine,
		fmt.Sprintf("Epinephrine %s (dose %d)", dose.Display, sess.EpinephrineCount), dose.Value, dose.Unit)
	sess.Version++
	return sess, nil
}

// GiveAmiodarone administers one dose. The two-dose cap lives in
// CanGiveAmiodarone; the handler itself does not hard-block a third call.
func (s *ArrestService) GiveAmiodarone(sess domain.Session) (domain.Session, error) {
	if sess.Phase != domain.PhaseShockable || sess.InRhythmCheck {
		return sess, domain.ErrInvalidPhase
	}
	now := s.clock.Now()
	dose := s.strategyFor(sess).Amiodarone(sess.AmiodaroneCount)
	sess.AmiodaroneCount++
	sess.LastAmiodaroneTime = &now
	sess = s.log(sess, now, domain.KindAmiodarone,
		fmt.Sprintf("Amiodarone %s (dose %d)", dose.Display, sess.AmiodaroneCount), dose.Value, dose.Unit)
	sess.Version++
	return sess, nil
}

func (s *ArrestService) GiveLidocaine(sess domain.Session) (domain.Session, error) {
	if sess.Phase != domain.PhaseShockable || sess.InRhythmCheck {
		return sess, domain.ErrInvalidPhase
	}
	now := s.clock.Now()
	dose := s.strategyFor(sess).Lidocaine(sess.LidocaineCount)
	sess.LidocaineCount++
	sess = s.log(sess, now, domain.KindLidocaine,
		fmt.Sprintf("Lidocaine %s (dose %d)", dose.Display, sess.LidocaineCount), dose.Value, dose.Unit)
	sess.Version++
	return sess, nil
}

func (s *ArrestService) SetAirway(sess domain.Session, status domain.AirwayStatus) (domain.Session, error) {
	if sess.Phase.Terminal() {
		return sess, domain.ErrEpisodeTerminal
	}
	now := s.clock.Now()
	sess.AirwayStatus = status
	sess = s.log(sess, now, domain.KindAirway, "Airway: "+string(status), nil, "")
	sess.Version++
	return sess, nil
}

// AchieveROSC ends the arrest with a pulse. Irreversible except via Reset.
func (s *ArrestService) AchieveROSC(sess domain.Session) (domain.Session, error) {
	if !sess.Phase.CPRActive() {
		return sess, domain.ErrInvalidPhase
	}
	now := s.clock.Now()
	sess = pauseCPR(sess, now)
	sess.InRhythmCheck = false
	sess.Phase = domain.PhasePostROSC
	sess.Outcome = domain.OutcomeROSC
	sess.ROSCTime = &now
	sess.EndTime = &now
	sess = s.log(sess, now, domain.KindROSC, "Return of spontaneous circulation", nil, "")
	sess.Version++
	return sess, nil
}

// TerminateCode ends the arrest without ROSC. Irreversible except via Reset.
func (s *ArrestService) TerminateCode(sess domain.Session) (domain.Session, error) {
	if !sess.Phase.CPRActive() {
		return sess, domain.ErrInvalidPhase
	}
	now := s.clock.Now()
	sess = pauseCPR(sess, now)
	sess.InRhythmCheck = false
	sess.Phase = domain.PhaseCodeEnded
	sess.Outcome = domain.OutcomeDeceased
	sess.EndTime = &now
	sess = s.log(sess, now, domain.KindCodeEnd, "Resuscitation terminated", nil, "")
	sess.Version++
	return sess, nil
}

// AddIntervention is the free-form escape hatch for notes, ETCO2 readings
// and similar entries that have no dedicated handler.
func (s *ArrestService) AddIntervention(sess domain.Session, kind domain.InterventionKind, details string, value *float64, unit string) (domain.Session, error) {
	if err := kind.Validate(); err != nil {
		return sess, err
	}
	if sess.Phase.Terminal() && kind != domain.KindNote && kind != domain.KindPostROSCCheck && kind != domain.KindVitals {
		return sess, domain.ErrEpisodeTerminal
	}
	sess = s.log(sess, s.clock.Now(), kind, details, value, unit)
	sess.Version++
	return sess, nil
}

// MarkHsT checks off one reversible cause and logs it.
func (s *ArrestService) MarkHsT(sess domain.Session, cause string) (domain.Session, error) {
	label, err := applyHsT(&sess.HsAndTs, cause)
	if err != nil {
		return sess, err
	}
	sess = s.log(sess, s.clock.Now(), domain.KindHsTsCheck, "Considered: "+label, nil, "")
	sess.Version++
	return sess, nil
}

// MarkPregnancy checks off one pregnancy-specific cause or intervention.
func (s *ArrestService) MarkPregnancy(sess domain.Session, item string) (domain.Session, error) {
	label, err := applyPregnancy(&sess.Pregnancy, item)
	if err != nil {
		return sess, err
	}
	sess = s.log(sess, s.clock.Now(), domain.KindPregnancy, label, nil, "")
	sess.Version++
	return sess, nil
}

// MarkPostROSC checks off one post-ROSC care item.
func (s *ArrestService) MarkPostROSC(sess domain.Session, item string) (domain.Session, error) {
	if sess.Phase != domain.PhasePostROSC {
		return sess, domain.ErrInvalidPhase
	}
	label, err := applyPostROSC(&sess.PostROSC, item)
	if err != nil {
		return sess, err
	}
	sess = s.log(sess, s.clock.Now(), domain.KindPostROSCCheck, label, nil, "")
	sess.Version++
	return sess, nil
}

// RecordPostROSCVitals stores the latest vitals snapshot; nil fields are
// left unchanged.
func (s *ArrestService) RecordPostROSCVitals(sess domain.Session, spo2, systolicBP, etco2 *float64) (domain.Session, error) {
	if sess.Phase != domain.PhasePostROSC {
		return sess, domain.ErrInvalidPhase
	}
	if spo2 != nil {
		sess.PostROSC.SpO2Percent = spo2
	}
	if systolicBP != nil {
		sess.PostROSC.SystolicBP = systolicBP
	}
	if etco2 != nil {
		sess.PostROSC.ETCO2 = etco2
	}
	sess = s.log(sess, s.clock.Now(), domain.KindVitals, vitalsDetails(spo2, systolicBP, etco2), nil, "")
	sess.Version++
	return sess, nil
}

func (s *ArrestService) strategyFor(sess domain.Session) dosingdomain.Strategy {
	if sess.PathwayMode == domain.PathwayPediatric {
		return dosingdomain.PediatricStrategy{WeightKg: sess.PatientWeightKg, CapJoules: s.proto.PediatricCapJoules}
	}
	return dosingdomain.AdultStrategy{InitialJoules: s.proto.AdultInitialJoules, MaxJoules: s.proto.AdultMaxJoules}
}

func (s *ArrestService) log(sess domain.Session, now time.Time, kind domain.InterventionKind, details string, value *float64, unit string) domain.Session {
	iv := domain.Intervention{
		ID:        s.idGen.New(),
		Timestamp: now,
		Kind:      kind,
		Details:   details,
		Value:     value,
		Unit:      unit,
	}
	interventions := make([]domain.Intervention, len(sess.Interventions), len(sess.Interventions)+1)
	copy(interventions, sess.Interventions)
	sess.Interventions = append(interventions, iv)
	return sess
}

// rearm computes the next armed energy after shocksDelivered shocks. The
// adult table escalates once the second shock has been delivered; the
// pediatric table is keyed directly by the next occurrence index.
func rearm(strategy dosingdomain.Strategy, shocksDelivered int) dosingdomain.Dose {
	if adult, ok := strategy.(dosingdomain.AdultStrategy); ok {
		if shocksDelivered >= 2 {
			return adult.ShockEnergy(1)
		}
		return adult.ShockEnergy(0)
	}
	return strategy.ShockEnergy(shocksDelivered)
}

func pauseCPR(sess domain.Session, now time.Time) domain.Session {
	if sess.CPRActiveSince != nil {
		if d := now.Sub(*sess.CPRActiveSince); d > 0 {
			sess.CPRAccumulatedMS += d.Milliseconds()
		}
		sess.CPRActiveSince = nil
	}
	return sess
}

func closeRhythmCheck(sess domain.Session, now time.Time) domain.Session {
	sess.InRhythmCheck = false
	sess.CPRCycleStartTime = &now
	sess.CPRActiveSince = &now
	return sess
}

func rhythmLabel(r domain.Rhythm) string {
	switch r {
	case domain.RhythmVFPVT:
		return "VF/pVT"
	case domain.RhythmAsystole:
		return "Asystole"
	case domain.RhythmPEA:
		return "PEA"
	}
	return string(r)
}

func vitalsDetails(spo2, sbp, etco2 *float64) string {
	details := "Vitals:"
	if spo2 != nil {
		details += fmt.Sprintf(" SpO2 %.0f%%", *spo2)
	}
	if sbp != nil {
		details += fmt.Sprintf(" SBP %.0f mmHg", *sbp)
	}
	if etco2 != nil {
		details += fmt.Sprintf(" ETCO2 %.0f mmHg", *etco2)
	}
	return details
}

func applyHsT(c *domain.HsAndTs, cause string) (string, error) {
	switch cause {
	case "hypovolemia":
		c.Hypovolemia = true
		return "Hypovolemia", nil
	case "hypoxia":
		c.Hypoxia = true
		return "Hypoxia", nil
	case "hydrogen_ion":
		c.HydrogenIon = true
		return "Hydrogen ion (acidosis)", nil
	case "hypo_hyperkalemia":
		c.HypoHyperkalemia = true
		return "Hypo-/hyperkalemia", nil
	case "hypothermia":
		c.Hypothermia = true
		return "Hypothermia", nil
	case "tension_pneumothorax":
		c.TensionPneumothorax = true
		return "Tension pneumothorax", nil
	case "tamponade":
		c.Tamponade = true
		return "Cardiac tamponade", nil
	case "toxins":
		c.Toxins = true
		return "Toxins", nil
	case "thrombosis_pulmonary":
		c.ThrombosisPulmonary = true
		return "Pulmonary thrombosis", nil
	case "thrombosis_coronary":
		c.ThrombosisCoronary = true
		return "Coronary thrombosis", nil
	default:
		return "", fmt.Errorf("unknown reversible cause: %s", cause)
	}
}

func applyPregnancy(c *domain.PregnancyChecklist, item string) (string, error) {
	switch item {
	case "hemorrhage":
		c.Hemorrhage = true
		return "Cause considered: hemorrhage", nil
	case "magnesium_toxicity":
		c.MagnesiumToxicity = true
		return "Cause considered: magnesium toxicity", nil
	case "amniotic_embolism":
		c.AmnioticEmbolism = true
		return "Cause considered: amniotic embolism", nil
	case "left_uterine_displacement":
		c.LeftUterineDisplacement = true
		return "Left uterine displacement performed", nil
	case "perimortem_cesarean":
		c.PerimortemCesarean = true
		return "Perimortem cesarean considered", nil
	default:
		return "", fmt.Errorf("unknown pregnancy item: %s", item)
	}
}

func applyPostROSC(c *domain.PostROSCChecklist, item string) (string, error) {
	switch item {
	case "airway_secured":
		c.AirwaySecured = true
		return "Airway secured", nil
	case "oxygen_titrated":
		c.OxygenTitrated = true
		return "Oxygen titrated to 94-99%", nil
	case "pressure_supported":
		c.PressureSupported = true
		return "Blood pressure supported", nil
	case "twelve_lead_ecg":
		c.TwelveLeadECG = true
		return "12-lead ECG obtained", nil
	case "targeted_temperature":
		c.TargetedTemperature = true
		return "Targeted temperature management", nil
	case "treat_reversible_cause":
		c.TreatReversibleCause = true
		return "Reversible causes treated", nil
	default:
		return "", fmt.Errorf("unknown post-ROSC item: %s", item)
	}
}
