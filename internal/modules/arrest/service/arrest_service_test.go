package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"codeclock/internal/modules/arrest/domain"
	"codeclock/internal/platform/config"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

type seqIDGen struct {
	n int
}

func (g *seqIDGen) New() string {
	g.n++
	return fmt.Sprintf("id-%d", g.n)
}

func newTestService() (*ArrestService, *fakeClock) {
	clk := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	return NewArrestService(clk, &seqIDGen{}, config.DefaultProtocol()), clk
}

func floatPtr(v float64) *float64 { return &v }

func startedAdult(t *testing.T, svc *ArrestService) domain.Session {
	t.Helper()
	sess := svc.NewSession()
	sess, err := svc.SelectPathway(sess, domain.PathwayAdult, nil)
	if err != nil {
		t.Fatalf("select pathway: %v", err)
	}
	sess, err = svc.StartCPR(sess)
	if err != nil {
		t.Fatalf("start CPR: %v", err)
	}
	return sess
}

func countKind(sess domain.Session, kind domain.InterventionKind) int {
	n := 0
	for _, iv := range sess.Interventions {
		if iv.Kind == kind {
			n++
		}
	}
	return n
}

func TestStartCPRRequiresPathway(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService()

	sess := svc.NewSession()
	if _, err := svc.StartCPR(sess); !errors.Is(err, domain.ErrInvalidPhase) {
		t.Fatalf("start without pathway: err = %v", err)
	}

	sess, err := svc.SelectPathway(sess, domain.PathwayAdult, nil)
	if err != nil {
		t.Fatalf("select pathway: %v", err)
	}
	sess, err = svc.StartCPR(sess)
	if err != nil {
		t.Fatalf("start CPR: %v", err)
	}
	if sess.Phase != domain.PhaseCPRPendingRhythm {
		t.Fatalf("phase = %s", sess.Phase)
	}
	if sess.StartTime == nil || sess.CPRActiveSince == nil {
		t.Fatalf("start must stamp the episode and compression clocks")
	}
	if got := countKind(sess, domain.KindCPRStart); got != 1 {
		t.Fatalf("cpr_start interventions = %d", got)
	}
	if _, err := svc.StartCPR(sess); !errors.Is(err, domain.ErrInvalidPhase) {
		t.Fatalf("double start: err = %v", err)
	}
}

func TestSelectPathwayRejectsBadWeight(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService()

	sess := svc.NewSession()
	if _, err := svc.SelectPathway(sess, domain.PathwayPediatric, floatPtr(-4)); !errors.Is(err, domain.ErrWeightNonPositive) {
		t.Fatalf("negative weight: err = %v", err)
	}
	sess, err := svc.SelectPathway(sess, domain.PathwayPediatric, floatPtr(20))
	if err != nil {
		t.Fatalf("select pathway: %v", err)
	}
	if sess.CPRRatio != "15:2" {
		t.Fatalf("pediatric ratio = %s", sess.CPRRatio)
	}
}

func TestSelectRhythmShockableDeliversFirstShock(t *testing.T) {
	t.Parallel()
	svc, clk := newTestService()
	sess := startedAdult(t, svc)

	clk.advance(10 * time.Second)
	sess, err := svc.SelectRhythm(sess, domain.RhythmVFPVT)
	if err != nil {
		t.Fatalf("select rhythm: %v", err)
	}

	if sess.Phase != domain.PhaseShockable {
		t.Fatalf("phase = %s", sess.Phase)
	}
	if sess.ShockCount != 1 {
		t.Fatalf("shock count = %d", sess.ShockCount)
	}
	// First shock at the initial energy, next one pre-armed at max.
	if got := countKind(sess, domain.KindShock); got != 1 {
		t.Fatalf("shock interventions = %d", got)
	}
	shock := sess.Interventions[len(sess.Interventions)-1]
	if shock.Kind != domain.KindShock || shock.Value == nil || *shock.Value != 120 {
		t.Fatalf("delivered shock = %+v, want 120 J", shock)
	}
	if sess.CurrentEnergyJ != 200 {
		t.Fatalf("armed energy = %v, want 200", sess.CurrentEnergyJ)
	}
	if sess.CPRCycleStartTime == nil || !sess.CPRCycleStartTime.Equal(clk.now) {
		t.Fatalf("cycle must restart at rhythm selection")
	}
	if got := countKind(sess, domain.KindRhythmChange); got != 1 {
		t.Fatalf("rhythm_change interventions = %d", got)
	}
}

func TestSelectRhythmNonShockable(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService()
	sess := startedAdult(t, svc)

	sess, err := svc.SelectRhythm(sess, domain.RhythmAsystole)
	if err != nil {
		t.Fatalf("select rhythm: %v", err)
	}
	if sess.Phase != domain.PhaseNonShockable {
		t.Fatalf("phase = %s", sess.Phase)
	}
	if sess.ShockCount != 0 || countKind(sess, domain.KindShock) != 0 {
		t.Fatalf("no shock on a non-shockable rhythm")
	}
	if _, err := svc.SelectRhythm(sess, domain.RhythmPEA); !errors.Is(err, domain.ErrInvalidPhase) {
		t.Fatalf("second selection: err = %v", err)
	}
}

func TestRhythmCheckPausesAndResumesCPRTime(t *testing.T) {
	t.Parallel()
	svc, clk := newTestService()
	sess := startedAdult(t, svc)
	sess, _ = svc.SelectRhythm(sess, domain.RhythmVFPVT)

	clk.advance(2 * time.Minute)
	sess, err := svc.StartRhythmCheck(sess)
	if err != nil {
		t.Fatalf("start check: %v", err)
	}
	if !sess.InRhythmCheck || sess.CPRActiveSince != nil {
		t.Fatalf("check must pause compression accrual: %+v", sess)
	}
	if sess.CPRAccumulatedMS != (2 * time.Minute).Milliseconds() {
		t.Fatalf("accumulated = %dms", sess.CPRAccumulatedMS)
	}
	if _, err := svc.StartRhythmCheck(sess); !errors.Is(err, domain.ErrAlreadyInCheck) {
		t.Fatalf("nested check: err = %v", err)
	}

	clk.advance(10 * time.Second)
	sess, err = svc.CompleteRhythmCheckResumeCPR(sess)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if sess.InRhythmCheck {
		t.Fatalf("check must close")
	}
	if sess.CPRActiveSince == nil || !sess.CPRActiveSince.Equal(clk.now) {
		t.Fatalf("compressions must resume at completion time")
	}
	if sess.CPRCycleStartTime == nil || !sess.CPRCycleStartTime.Equal(clk.now) {
		t.Fatalf("cycle must reset at completion time")
	}
	if countKind(sess, domain.KindCPRResume) != 1 {
		t.Fatalf("resume must be logged")
	}
}

func TestCompleteRhythmCheckWithShockEscalatesOnce(t *testing.T) {
	t.Parallel()
	svc, clk := newTestService()
	sess := startedAdult(t, svc)
	sess, _ = svc.SelectRhythm(sess, domain.RhythmVFPVT)

	clk.advance(2 * time.Minute)
	sess, _ = svc.StartRhythmCheck(sess)
	sess, err := svc.CompleteRhythmCheckWithShock(sess)
	if err != nil {
		t.Fatalf("shock completion: %v", err)
	}

	if sess.ShockCount != 2 {
		t.Fatalf("shock count = %d", sess.ShockCount)
	}
	// Second shock delivered at the escalated energy, which then holds.
	shocks := 0
	var last domain.Intervention
	for _, iv := range sess.Interventions {
		if iv.Kind == domain.KindShock {
			shocks++
			last = iv
		}
	}
	if shocks != 2 || last.Value == nil || *last.Value != 200 {
		t.Fatalf("shocks = %d, last = %+v, want second shock at 200 J", shocks, last)
	}
	if sess.CurrentEnergyJ != 200 {
		t.Fatalf("armed energy = %v, want steady 200", sess.CurrentEnergyJ)
	}
	if sess.Phase != domain.PhaseShockable || sess.CurrentRhythm != domain.RhythmVFPVT {
		t.Fatalf("shock completion must force the shockable pathway")
	}
}

func TestCompleteRhythmCheckNoShockMovesPathway(t *testing.T) {
	t.Parallel()
	svc, clk := newTestService()
	sess := startedAdult(t, svc)
	sess, _ = svc.SelectRhythm(sess, domain.RhythmVFPVT)
	changesBefore := countKind(sess, domain.KindRhythmChange)

	clk.advance(2 * time.Minute)
	sess, _ = svc.StartRhythmCheck(sess)

	if _, err := svc.CompleteRhythmCheckNoShock(sess, domain.RhythmVFPVT); err == nil {
		t.Fatalf("shockable rhythm through the no-shock completion must fail")
	}

	sess, err := svc.CompleteRhythmCheckNoShock(sess, domain.RhythmPEA)
	if err != nil {
		t.Fatalf("no-shock completion: %v", err)
	}
	if sess.Phase != domain.PhaseNonShockable || sess.CurrentRhythm != domain.RhythmPEA {
		t.Fatalf("phase %s rhythm %s", sess.Phase, sess.CurrentRhythm)
	}
	if got := countKind(sess, domain.KindRhythmChange) - changesBefore; got != 1 {
		t.Fatalf("rhythm_change delta = %d, want exactly 1", got)
	}
	if countKind(sess, domain.KindShock) != 1 {
		t.Fatalf("no new shock may be logged")
	}
}

func TestGiveEpinephrineDosesAndWindow(t *testing.T) {
	t.Parallel()
	svc, clk := newTestService()
	sess := startedAdult(t, svc)

	if _, err := svc.GiveEpinephrine(sess); !errors.Is(err, domain.ErrInvalidPhase) {
		t.Fatalf("epi before pathway: err = %v", err)
	}

	sess, _ = svc.SelectRhythm(sess, domain.RhythmAsystole)
	clk.advance(30 * time.Second)
	sess, err := svc.GiveEpinephrine(sess)
	if err != nil {
		t.Fatalf("give epi: %v", err)
	}
	if sess.EpinephrineCount != 1 {
		t.Fatalf("epi count = %d", sess.EpinephrineCount)
	}
	if sess.LastEpinephrineTime == nil || !sess.LastEpinephrineTime.Equal(clk.now) {
		t.Fatalf("repeat window must restart at dose time")
	}
	iv := sess.Interventions[len(sess.Interventions)-1]
	if iv.Kind != domain.KindEpinephrine || iv.Value == nil || *iv.Value != 1 || iv.Unit != "mg" {
		t.Fatalf("logged dose = %+v, want 1 mg", iv)
	}
}

func TestPediatricDosesScaleByWeight(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService()

	sess := svc.NewSession()
	sess, _ = svc.SelectPathway(sess, domain.PathwayPediatric, floatPtr(20))
	sess, _ = svc.StartCPR(sess)
	sess, err := svc.SelectRhythm(sess, domain.RhythmVFPVT)
	if err != nil {
		t.Fatalf("select rhythm: %v", err)
	}

	shock := sess.Interventions[len(sess.Interventions)-1]
	if shock.Value == nil || *shock.Value != 40 {
		t.Fatalf("first pediatric shock = %+v, want 2 J/kg = 40 J", shock)
	}
	if sess.CurrentEnergyJ != 80 {
		t.Fatalf("armed energy = %v, want 4 J/kg = 80 J", sess.CurrentEnergyJ)
	}

	sess, err = svc.GiveEpinephrine(sess)
	if err != nil {
		t.Fatalf("give epi: %v", err)
	}
	iv := sess.Interventions[len(sess.Interventions)-1]
	if iv.Value == nil || *iv.Value != 0.2 {
		t.Fatalf("pediatric epi = %+v, want 0.01 mg/kg = 0.2 mg", iv)
	}
}

func TestAmiodaroneHandlerDoesNotCapCount(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService()
	sess := startedAdult(t, svc)
	sess, _ = svc.SelectRhythm(sess, domain.RhythmVFPVT)

	var err error
	for i := 0; i < 3; i++ {
		sess, err = svc.GiveAmiodarone(sess)
		if err != nil {
			t.Fatalf("dose %d: %v", i+1, err)
		}
	}
	if sess.AmiodaroneCount != 3 {
		t.Fatalf("count = %d", sess.AmiodaroneCount)
	}
	// Eligibility lives in the predicate, not the handler.
	if sess.CanGiveAmiodarone() {
		t.Fatalf("predicate must report ineligible past two doses")
	}
}

func TestROSCAndTerminationAreTerminal(t *testing.T) {
	t.Parallel()
	svc, clk := newTestService()
	sess := startedAdult(t, svc)
	sess, _ = svc.SelectRhythm(sess, domain.RhythmVFPVT)

	clk.advance(5 * time.Minute)
	sess, err := svc.AchieveROSC(sess)
	if err != nil {
		t.Fatalf("rosc: %v", err)
	}
	if sess.Phase != domain.PhasePostROSC || sess.Outcome != domain.OutcomeROSC {
		t.Fatalf("phase %s outcome %s", sess.Phase, sess.Outcome)
	}
	if sess.ROSCTime == nil || sess.EndTime == nil || sess.CPRActiveSince != nil {
		t.Fatalf("rosc must stamp end times and stop compressions")
	}
	if _, err := svc.StartRhythmCheck(sess); !errors.Is(err, domain.ErrInvalidPhase) {
		t.Fatalf("check after rosc: err = %v", err)
	}
	if _, err := svc.TerminateCode(sess); !errors.Is(err, domain.ErrInvalidPhase) {
		t.Fatalf("terminate after rosc: err = %v", err)
	}

	svc2, _ := newTestService()
	sess2 := startedAdult(t, svc2)
	sess2, err = svc2.TerminateCode(sess2)
	if err != nil {
		t.Fatalf("terminate: %v", err)
	}
	if sess2.Phase != domain.PhaseCodeEnded || sess2.Outcome != domain.OutcomeDeceased {
		t.Fatalf("phase %s outcome %s", sess2.Phase, sess2.Outcome)
	}
}

func TestPostROSCChecklistAndVitals(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService()
	sess := startedAdult(t, svc)
	sess, _ = svc.SelectRhythm(sess, domain.RhythmVFPVT)
	sess, _ = svc.AchieveROSC(sess)

	sess, err := svc.MarkPostROSC(sess, "twelve_lead_ecg")
	if err != nil {
		t.Fatalf("mark: %v", err)
	}
	if !sess.PostROSC.TwelveLeadECG {
		t.Fatalf("checklist item not set")
	}
	sess, err = svc.RecordPostROSCVitals(sess, floatPtr(96), floatPtr(110), nil)
	if err != nil {
		t.Fatalf("vitals: %v", err)
	}
	if sess.PostROSC.SpO2Percent == nil || *sess.PostROSC.SpO2Percent != 96 {
		t.Fatalf("spo2 not recorded")
	}
	if sess.PostROSC.ETCO2 != nil {
		t.Fatalf("nil field must stay unset")
	}
}

func TestMarkHsTLogsCause(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService()
	sess := startedAdult(t, svc)

	sess, err := svc.MarkHsT(sess, "tension_pneumothorax")
	if err != nil {
		t.Fatalf("mark: %v", err)
	}
	if !sess.HsAndTs.TensionPneumothorax {
		t.Fatalf("cause not checked")
	}
	if countKind(sess, domain.KindHsTsCheck) != 1 {
		t.Fatalf("cause must be logged")
	}
	if _, err := svc.MarkHsT(sess, "bad-cause"); err == nil {
		t.Fatalf("unknown cause must fail")
	}
}

func TestVersionIncrementsOnEveryTransition(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService()

	sess := svc.NewSession()
	v := sess.Version
	sess, _ = svc.SelectPathway(sess, domain.PathwayAdult, nil)
	sess, _ = svc.StartCPR(sess)
	sess, _ = svc.SelectRhythm(sess, domain.RhythmVFPVT)
	if sess.Version != v+3 {
		t.Fatalf("version = %d, want %d", sess.Version, v+3)
	}

	// A rejected call must not bump the version.
	before := sess.Version
	if _, err := svc.StartCPR(sess); err == nil {
		t.Fatalf("expected rejection")
	}
	if sess.Version != before {
		t.Fatalf("rejected call mutated the session")
	}
}
