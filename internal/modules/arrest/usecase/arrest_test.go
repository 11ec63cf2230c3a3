package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"codeclock/internal/modules/arrest/domain"
	arrestdto "codeclock/internal/modules/arrest/dto"
	arrestin "codeclock/internal/modules/arrest/port/in"
	"codeclock/internal/modules/arrest/service"
	"codeclock/internal/platform/config"
	apperrors "codeclock/internal/platform/errors"
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

type memorySnapshotStore struct {
	snapshot domain.Snapshot
	present  bool
	saveErr  error
	saves    int
}

func (s *memorySnapshotStore) Save(_ context.Context, snapshot domain.Snapshot) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.snapshot = snapshot
	s.present = true
	s.saves++
	return nil
}

func (s *memorySnapshotStore) Load(_ context.Context) (domain.Snapshot, error) {
	if !s.present {
		return domain.Snapshot{}, apperrors.ErrNoActiveEpisode
	}
	return s.snapshot, nil
}

func (s *memorySnapshotStore) Clear(_ context.Context) error {
	s.present = false
	return nil
}

type memoryArchive struct {
	archived []domain.Session
}

func (a *memoryArchive) Archive(_ context.Context, sess domain.Session) (string, error) {
	a.archived = append(a.archived, sess)
	return "/episodes/" + sess.ID + ".md", nil
}

type memoryProjector struct {
	projected []domain.Session
}

func (p *memoryProjector) Project(_ context.Context, sess domain.Session) error {
	p.projected = append(p.projected, sess)
	return nil
}

func (p *memoryProjector) History(_ context.Context, limit int) ([]domain.EpisodeRecord, error) {
	var records []domain.EpisodeRecord
	for _, sess := range p.projected {
		if limit > 0 && len(records) == limit {
			break
		}
		records = append(records, domain.EpisodeRecord{
			ID:          sess.ID,
			PathwayMode: sess.PathwayMode,
			Outcome:     sess.Outcome,
			ShockCount:  sess.ShockCount,
		})
	}
	return records, nil
}

func newTestInteractor() (arrestin.Usecase, *fakeClock, *memorySnapshotStore, *memoryArchive, *memoryProjector) {
	clk := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	svc := service.NewArrestService(clk, &seqIDGen{}, config.DefaultProtocol())
	store := &memorySnapshotStore{}
	archive := &memoryArchive{}
	projector := &memoryProjector{}
	uc := NewInteractor(svc, clk, store, archive, projector, nil)
	return uc, clk, store, archive, projector
}

func TestStartRejectsSecondEpisode(t *testing.T) {
	t.Parallel()
	uc, _, store, _, _ := newTestInteractor()
	ctx := context.Background()

	out, err := uc.Start(ctx, arrestdto.StartInput{PathwayMode: "adult"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if out.Session.Phase != domain.PhaseCPRPendingRhythm {
		t.Fatalf("phase = %s", out.Session.Phase)
	}
	if !store.present {
		t.Fatalf("start must persist the snapshot")
	}
	if _, err := uc.Start(ctx, arrestdto.StartInput{PathwayMode: "adult"}); !errors.Is(err, apperrors.ErrActiveEpisodeExists) {
		t.Fatalf("second start: err = %v", err)
	}
}

func TestActionsRequireActiveEpisode(t *testing.T) {
	t.Parallel()
	uc, _, _, _, _ := newTestInteractor()
	ctx := context.Background()

	if _, err := uc.GiveEpinephrine(ctx); !errors.Is(err, apperrors.ErrNoActiveEpisode) {
		t.Fatalf("epi without episode: err = %v", err)
	}
	if _, err := uc.Status(ctx); !errors.Is(err, apperrors.ErrNoActiveEpisode) {
		t.Fatalf("status without episode: err = %v", err)
	}
}

func TestMutatePersistsEachTransition(t *testing.T) {
	t.Parallel()
	uc, clk, store, _, _ := newTestInteractor()
	ctx := context.Background()

	if _, err := uc.Start(ctx, arrestdto.StartInput{PathwayMode: "adult"}); err != nil {
		t.Fatalf("start: %v", err)
	}
	clk.advance(10 * time.Second)
	out, err := uc.SelectRhythm(ctx, "vf_pvt")
	if err != nil {
		t.Fatalf("select rhythm: %v", err)
	}
	if out.Session.ShockCount != 1 {
		t.Fatalf("shock count = %d", out.Session.ShockCount)
	}
	if store.snapshot.Session.Version != out.Session.Version {
		t.Fatalf("store lags the returned session")
	}
	if !store.snapshot.SavedAt.Equal(clk.now) {
		t.Fatalf("SavedAt = %v, want %v", store.snapshot.SavedAt, clk.now)
	}
}

func TestSnapshotFailureDoesNotBlockFlow(t *testing.T) {
	t.Parallel()
	uc, _, store, _, _ := newTestInteractor()
	ctx := context.Background()

	if _, err := uc.Start(ctx, arrestdto.StartInput{PathwayMode: "adult"}); err != nil {
		t.Fatalf("start: %v", err)
	}
	store.saveErr = errors.New("disk full")
	out, err := uc.SelectRhythm(ctx, "asystole")
	if err != nil {
		t.Fatalf("transition must survive a failed save: %v", err)
	}
	if out.Session.Phase != domain.PhaseNonShockable {
		t.Fatalf("phase = %s", out.Session.Phase)
	}
}

func TestResumeShiftsCountdownsNotElapsed(t *testing.T) {
	t.Parallel()
	uc, clk, _, _, _ := newTestInteractor()
	ctx := context.Background()

	if _, err := uc.Start(ctx, arrestdto.StartInput{PathwayMode: "adult"}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := uc.SelectRhythm(ctx, "vf_pvt"); err != nil {
		t.Fatalf("select rhythm: %v", err)
	}
	clk.advance(30 * time.Second)
	if err := uc.Touch(ctx); err != nil {
		t.Fatalf("touch: %v", err)
	}
	saved, err := uc.Status(ctx)
	if err != nil {
		t.Fatalf("status: %v", err)
	}

	clk.advance(45 * time.Minute)
	resumed, err := uc.Resume(ctx)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if resumed.Timers.CPRCycleRemaining != saved.Timers.CPRCycleRemaining {
		t.Fatalf("cycle remaining drifted: %v != %v", resumed.Timers.CPRCycleRemaining, saved.Timers.CPRCycleRemaining)
	}
	if want := saved.Timers.TotalElapsed + 45*time.Minute; resumed.Timers.TotalElapsed != want {
		t.Fatalf("total elapsed = %v, want %v", resumed.Timers.TotalElapsed, want)
	}
}

func TestResumeRejectsFinishedEpisode(t *testing.T) {
	t.Parallel()
	uc, _, _, _, _ := newTestInteractor()
	ctx := context.Background()

	if _, err := uc.Start(ctx, arrestdto.StartInput{PathwayMode: "adult"}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := uc.SelectRhythm(ctx, "vf_pvt"); err != nil {
		t.Fatalf("select rhythm: %v", err)
	}
	if _, err := uc.AchieveROSC(ctx); err != nil {
		t.Fatalf("rosc: %v", err)
	}
	if _, err := uc.Resume(ctx); !errors.Is(err, apperrors.ErrEpisodeFinished) {
		t.Fatalf("resume after rosc: err = %v", err)
	}
}

func TestFinishArchivesProjectsAndClears(t *testing.T) {
	t.Parallel()
	uc, clk, store, archive, projector := newTestInteractor()
	ctx := context.Background()

	if _, err := uc.Start(ctx, arrestdto.StartInput{PathwayMode: "adult"}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := uc.Finish(ctx); err == nil {
		t.Fatalf("finish must reject an in-progress episode")
	}

	if _, err := uc.SelectRhythm(ctx, "vf_pvt"); err != nil {
		t.Fatalf("select rhythm: %v", err)
	}
	clk.advance(12 * time.Minute)
	if _, err := uc.AchieveROSC(ctx); err != nil {
		t.Fatalf("rosc: %v", err)
	}
	out, err := uc.Finish(ctx)
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if out.Outcome != "rosc" || out.DurationMin != 12 {
		t.Fatalf("finish output = %+v", out)
	}
	if len(archive.archived) != 1 || len(projector.projected) != 1 {
		t.Fatalf("archive/projection missing: %d/%d", len(archive.archived), len(projector.projected))
	}
	if store.present {
		t.Fatalf("active slot must clear")
	}
	if _, err := uc.Status(ctx); !errors.Is(err, apperrors.ErrNoActiveEpisode) {
		t.Fatalf("status after finish: err = %v", err)
	}
}

func TestHistoryListsFinishedEpisodes(t *testing.T) {
	t.Parallel()
	uc, clk, _, _, _ := newTestInteractor()
	ctx := context.Background()

	if _, err := uc.Start(ctx, arrestdto.StartInput{PathwayMode: "adult"}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := uc.SelectRhythm(ctx, "asystole"); err != nil {
		t.Fatalf("select rhythm: %v", err)
	}
	clk.advance(8 * time.Minute)
	if _, err := uc.TerminateCode(ctx); err != nil {
		t.Fatalf("terminate: %v", err)
	}
	if _, err := uc.Finish(ctx); err != nil {
		t.Fatalf("finish: %v", err)
	}

	episodes, err := uc.History(ctx, 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(episodes) != 1 {
		t.Fatalf("history len = %d, want 1", len(episodes))
	}
	if episodes[0].Outcome != "deceased" || episodes[0].PathwayMode != "adult" {
		t.Fatalf("history entry = %+v", episodes[0])
	}
}

func TestCompleteRhythmCheckRoutesByResult(t *testing.T) {
	t.Parallel()
	uc, clk, _, _, _ := newTestInteractor()
	ctx := context.Background()

	if _, err := uc.Start(ctx, arrestdto.StartInput{PathwayMode: "adult"}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := uc.SelectRhythm(ctx, "vf_pvt"); err != nil {
		t.Fatalf("select rhythm: %v", err)
	}
	clk.advance(2 * time.Minute)
	if _, err := uc.StartRhythmCheck(ctx); err != nil {
		t.Fatalf("start check: %v", err)
	}
	if _, err := uc.CompleteRhythmCheck(ctx, arrestdto.RhythmCheckCompletion{Result: "banana"}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("bad result: err = %v", err)
	}
	out, err := uc.CompleteRhythmCheck(ctx, arrestdto.RhythmCheckCompletion{Result: "no_shock", Rhythm: "pea"})
	if err != nil {
		t.Fatalf("no_shock completion: %v", err)
	}
	if out.Session.Phase != domain.PhaseNonShockable {
		t.Fatalf("phase = %s", out.Session.Phase)
	}
	// First epi opens immediately on the non-shockable pathway.
	if !out.Timers.EpiDue || !out.CanEpinephrine {
		t.Fatalf("epi should be due and allowed: %+v", out.Timers)
	}
}
