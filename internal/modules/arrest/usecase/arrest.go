package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"codeclock/internal/modules/arrest/domain"
	arrestdto "codeclock/internal/modules/arrest/dto"
	arrestin "codeclock/internal/modules/arrest/port/in"
	arrestout "codeclock/internal/modules/arrest/port/out"
	"codeclock/internal/modules/arrest/service"
	"codeclock/internal/platform/clock"
	apperrors "codeclock/internal/platform/errors"
)

// Interactor drives the arrest state machine through the snapshot store:
// every action loads the active episode, applies one transition, and saves
// the replacement. There is exactly one in-flight episode at a time.
type Interactor struct {
	svc       *service.ArrestService
	clock     clock.Clock
	store     arrestout.SnapshotStore
	archive   arrestout.EpisodeArchive
	projector arrestout.EpisodeProjector
	logger    hclog.Logger
}

func NewInteractor(svc *service.ArrestService, clk clock.Clock, store arrestout.SnapshotStore, archive arrestout.EpisodeArchive, projector arrestout.EpisodeProjector, logger hclog.Logger) arrestin.Usecase {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Interactor{svc: svc, clock: clk, store: store, archive: archive, projector: projector, logger: logger}
}

func (i *Interactor) Start(ctx context.Context, input arrestdto.StartInput) (arrestdto.EpisodeOutput, error) {
	if _, err := i.store.Load(ctx); err == nil {
		return arrestdto.EpisodeOutput{}, apperrors.ErrActiveEpisodeExists
	} else if !errors.Is(err, apperrors.ErrNoActiveEpisode) {
		return arrestdto.EpisodeOutput{}, err
	}

	sess := i.svc.NewSession()
	sess, err := i.svc.SelectPathway(sess, domain.PathwayMode(input.PathwayMode), input.WeightKg)
	if err != nil {
		return arrestdto.EpisodeOutput{}, err
	}
	sess, err = i.svc.StartCPR(sess)
	if err != nil {
		return arrestdto.EpisodeOutput{}, err
	}
	if err := i.save(ctx, sess); err != nil {
		return arrestdto.EpisodeOutput{}, err
	}
	return i.output(sess), nil
}

func (i *Interactor) Status(ctx context.Context) (arrestdto.EpisodeOutput, error) {
	snap, err := i.store.Load(ctx)
	if err != nil {
		return arrestdto.EpisodeOutput{}, err
	}
	return i.output(snap.Session), nil
}

// Resume shifts every countdown reference forward by the downtime so timers
// pick up exactly where the last save left them. The episode start is not
// shifted: the arrest kept running while the app was closed.
func (i *Interactor) Resume(ctx context.Context) (arrestdto.EpisodeOutput, error) {
	snap, err := i.store.Load(ctx)
	if err != nil {
		return arrestdto.EpisodeOutput{}, err
	}
	if snap.Session.Phase.Terminal() {
		return arrestdto.EpisodeOutput{}, apperrors.ErrEpisodeFinished
	}
	gap := i.clock.Now().Sub(snap.SavedAt)
	sess := domain.ShiftTimestamps(snap.Session, gap)
	if err := i.save(ctx, sess); err != nil {
		return arrestdto.EpisodeOutput{}, err
	}
	return i.output(sess), nil
}

// Touch re-saves the active episode with a fresh SavedAt so that, if the
// process dies, the resume gap measures the downtime and not the time since
// the last transition.
func (i *Interactor) Touch(ctx context.Context) error {
	snap, err := i.store.Load(ctx)
	if err != nil {
		return err
	}
	return i.save(ctx, snap.Session)
}

func (i *Interactor) SelectRhythm(ctx context.Context, rhythm string) (arrestdto.EpisodeOutput, error) {
	return i.mutate(ctx, func(s domain.Session) (domain.Session, error) {
		return i.svc.SelectRhythm(s, domain.Rhythm(rhythm))
	})
}

func (i *Interactor) StartRhythmCheck(ctx context.Context) (arrestdto.EpisodeOutput, error) {
	return i.mutate(ctx, i.svc.StartRhythmCheck)
}

func (i *Interactor) CompleteRhythmCheck(ctx context.Context, input arrestdto.RhythmCheckCompletion) (arrestdto.EpisodeOutput, error) {
	return i.mutate(ctx, func(s domain.Session) (domain.Session, error) {
		switch input.Result {
		case "shock":
			return i.svc.CompleteRhythmCheckWithShock(s)
		case "no_shock":
			return i.svc.CompleteRhythmCheckNoShock(s, domain.Rhythm(input.Rhythm))
		case "resume":
			return i.svc.CompleteRhythmCheckResumeCPR(s)
		default:
			return s, fmt.Errorf("%w: rhythm check result %q", apperrors.ErrInvalidInput, input.Result)
		}
	})
}

func (i *Interactor) GiveEpinephrine(ctx context.Context) (arrestdto.EpisodeOutput, error) {
	return i.mutate(ctx, i.svc.GiveEpinephrine)
}

func (i *Interactor) GiveAmiodarone(ctx context.Context) (arrestdto.EpisodeOutput, error) {
	return i.mutate(ctx, i.svc.GiveAmiodarone)
}

func (i *Interactor) GiveLidocaine(ctx context.Context) (arrestdto.EpisodeOutput, error) {
	return i.mutate(ctx, i.svc.GiveLidocaine)
}

func (i *Interactor) SetAirway(ctx context.Context, status string) (arrestdto.EpisodeOutput, error) {
	return i.mutate(ctx, func(s domain.Session) (domain.Session, error) {
		return i.svc.SetAirway(s, domain.AirwayStatus(status))
	})
}

func (i *Interactor) MarkChecklist(ctx context.Context, input arrestdto.ChecklistInput) (arrestdto.EpisodeOutput, error) {
	return i.mutate(ctx, func(s domain.Session) (domain.Session, error) {
		switch input.List {
		case "hs_ts":
			return i.svc.MarkHsT(s, input.Item)
		case "pregnancy":
			return i.svc.MarkPregnancy(s, input.Item)
		case "post_rosc":
			return i.svc.MarkPostROSC(s, input.Item)
		default:
			return s, fmt.Errorf("%w: checklist %q", apperrors.ErrInvalidInput, input.List)
		}
	})
}

func (i *Interactor) AddNote(ctx context.Context, text string) (arrestdto.EpisodeOutput, error) {
	if text == "" {
		return arrestdto.EpisodeOutput{}, fmt.Errorf("%w: empty note", apperrors.ErrInvalidInput)
	}
	return i.mutate(ctx, func(s domain.Session) (domain.Session, error) {
		return i.svc.AddIntervention(s, domain.KindNote, text, nil, "")
	})
}

func (i *Interactor) RecordETCO2(ctx context.Context, value float64) (arrestdto.EpisodeOutput, error) {
	return i.mutate(ctx, func(s domain.Session) (domain.Session, error) {
		v := value
		return i.svc.AddIntervention(s, domain.KindETCO2, fmt.Sprintf("ETCO2 %.0f mmHg", value), &v, "mmHg")
	})
}

func (i *Interactor) RecordVitals(ctx context.Context, input arrestdto.VitalsInput) (arrestdto.EpisodeOutput, error) {
	return i.mutate(ctx, func(s domain.Session) (domain.Session, error) {
		return i.svc.RecordPostROSCVitals(s, input.SpO2, input.SystolicBP, input.ETCO2)
	})
}

func (i *Interactor) AchieveROSC(ctx context.Context) (arrestdto.EpisodeOutput, error) {
	return i.mutate(ctx, i.svc.AchieveROSC)
}

func (i *Interactor) TerminateCode(ctx context.Context) (arrestdto.EpisodeOutput, error) {
	return i.mutate(ctx, i.svc.TerminateCode)
}

// Finish archives a terminal episode as a debrief note, mirrors it into the
// index, and clears the active slot.
func (i *Interactor) Finish(ctx context.Context) (arrestdto.FinishOutput, error) {
	snap, err := i.store.Load(ctx)
	if err != nil {
		return arrestdto.FinishOutput{}, err
	}
	sess := snap.Session
	if !sess.Phase.Terminal() {
		return arrestdto.FinishOutput{}, fmt.Errorf("%w: episode still in progress, record ROSC or termination first", apperrors.ErrInvalidInput)
	}

	path := ""
	if i.archive != nil {
		path, err = i.archive.Archive(ctx, sess)
		if err != nil {
			return arrestdto.FinishOutput{}, err
		}
	}
	if i.projector != nil {
		if err := i.projector.Project(ctx, sess); err != nil {
			i.logger.Warn("episode index projection failed", "episode", sess.ID, "error", err)
		}
	}
	if err := i.store.Clear(ctx); err != nil {
		return arrestdto.FinishOutput{}, err
	}

	duration := 0
	if sess.StartTime != nil && sess.EndTime != nil {
		duration = int(sess.EndTime.Sub(*sess.StartTime).Minutes())
	}
	return arrestdto.FinishOutput{
		EpisodeID:   sess.ID,
		Outcome:     string(sess.Outcome),
		Path:        path,
		DurationMin: duration,
	}, nil
}

// Reset discards the active episode without archiving it.
func (i *Interactor) Reset(ctx context.Context) error {
	return i.store.Clear(ctx)
}

func (i *Interactor) Log(ctx context.Context) (arrestdto.LogOutput, error) {
	snap, err := i.store.Load(ctx)
	if err != nil {
		return arrestdto.LogOutput{}, err
	}
	sess := snap.Session
	out := arrestdto.LogOutput{EpisodeID: sess.ID}
	for _, iv := range sess.Interventions {
		entry := arrestdto.InterventionView{
			At:      iv.Timestamp,
			Kind:    string(iv.Kind),
			Label:   iv.Kind.Label(),
			Details: iv.Details,
			Value:   iv.Value,
			Unit:    iv.Unit,
		}
		if sess.StartTime != nil {
			entry.Elapsed = iv.Timestamp.Sub(*sess.StartTime)
		}
		out.Entries = append(out.Entries, entry)
	}
	return out, nil
}

func (i *Interactor) History(ctx context.Context, limit int) ([]arrestdto.EpisodeSummary, error) {
	if i.projector == nil {
		return nil, nil
	}
	records, err := i.projector.History(ctx, limit)
	if err != nil {
		return nil, err
	}
	summaries := make([]arrestdto.EpisodeSummary, 0, len(records))
	for _, rec := range records {
		summaries = append(summaries, arrestdto.EpisodeSummary{
			ID:               rec.ID,
			PathwayMode:      string(rec.PathwayMode),
			Outcome:          string(rec.Outcome),
			FinalRhythm:      string(rec.FinalRhythm),
			StartedAt:        rec.StartedAt,
			DurationMin:      rec.DurationMin,
			ShockCount:       rec.ShockCount,
			EpinephrineCount: rec.EpinephrineCount,
			CPRFraction:      rec.CPRFraction,
		})
	}
	return summaries, nil
}

func (i *Interactor) mutate(ctx context.Context, fn func(domain.Session) (domain.Session, error)) (arrestdto.EpisodeOutput, error) {
	snap, err := i.store.Load(ctx)
	if err != nil {
		return arrestdto.EpisodeOutput{}, err
	}
	sess, err := fn(snap.Session)
	if err != nil {
		return i.output(snap.Session), err
	}
	// A failed save must not block the resuscitation flow; the transition
	// stands and the next save retries.
	if err := i.save(ctx, sess); err != nil {
		i.logger.Warn("episode snapshot save failed", "episode", sess.ID, "error", err)
	}
	return i.output(sess), nil
}

func (i *Interactor) save(ctx context.Context, sess domain.Session) error {
	return i.store.Save(ctx, domain.Snapshot{
		SchemaVersion: domain.SchemaVersion,
		SavedAt:       i.clock.Now(),
		Session:       sess,
	})
}

func (i *Interactor) output(sess domain.Session) arrestdto.EpisodeOutput {
	now := i.clock.Now()
	timers := domain.ComputeTimerState(sess, i.svc.Windows(), now)
	return arrestdto.EpisodeOutput{
		Session:        sess,
		Timers:         timers,
		Advisory:       domain.Advise(sess, timers),
		CanEpinephrine: sess.CanGiveEpinephrine(),
		CanAmiodarone:  sess.CanGiveAmiodarone(),
		CanLidocaine:   sess.CanGiveLidocaine(),
	}
}
