package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"

	arrestdto "codeclock/internal/modules/arrest/dto"
	arrestin "codeclock/internal/modules/arrest/port/in"
	"codeclock/internal/modules/dysrhythmia/domain"
	dysdto "codeclock/internal/modules/dysrhythmia/dto"
	dysin "codeclock/internal/modules/dysrhythmia/port/in"
	dysout "codeclock/internal/modules/dysrhythmia/port/out"
	"codeclock/internal/modules/dysrhythmia/service"
	"codeclock/internal/platform/clock"
	apperrors "codeclock/internal/platform/errors"
)

// Interactor drives the decision tree through its own snapshot store, and
// hands off to the arrest usecase on switchToArrest.
type Interactor struct {
	svc    *service.DysrhythmiaService
	clock  clock.Clock
	store  dysout.SnapshotStore
	arrest arrestin.Usecase
	logger hclog.Logger
}

func NewInteractor(svc *service.DysrhythmiaService, clk clock.Clock, store dysout.SnapshotStore, arrest arrestin.Usecase, logger hclog.Logger) dysin.Usecase {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Interactor{svc: svc, clock: clk, store: store, arrest: arrest, logger: logger}
}

func (i *Interactor) Start(ctx context.Context, input dysdto.StartInput) (dysdto.SessionOutput, error) {
	if snap, err := i.store.Load(ctx); err == nil && snap.Session.Phase != domain.PhaseSessionEnded {
		return dysdto.SessionOutput{}, fmt.Errorf("%w: resolve or reset it first", apperrors.ErrActiveEpisodeExists)
	} else if err != nil && !errors.Is(err, apperrors.ErrNoDysrhythmiaSession) {
		return dysdto.SessionOutput{}, err
	}

	sess := i.svc.NewSession()
	sess, err := i.svc.SelectPatient(sess, domain.PatientGroup(input.PatientGroup), input.WeightKg)
	if err != nil {
		return dysdto.SessionOutput{}, err
	}
	if err := i.save(ctx, sess); err != nil {
		return dysdto.SessionOutput{}, err
	}
	return output(sess), nil
}

func (i *Interactor) Status(ctx context.Context) (dysdto.SessionOutput, error) {
	snap, err := i.store.Load(ctx)
	if err != nil {
		return dysdto.SessionOutput{}, err
	}
	return output(snap.Session), nil
}

func (i *Interactor) SelectBranch(ctx context.Context, branch string) (dysdto.SessionOutput, error) {
	return i.mutate(ctx, func(s domain.Session) (domain.Session, error) {
		return i.svc.SelectBranch(s, domain.Branch(branch))
	})
}

func (i *Interactor) AssessBradycardia(ctx context.Context, stability string) (dysdto.SessionOutput, error) {
	return i.mutate(ctx, func(s domain.Session) (domain.Session, error) {
		return i.svc.AssessBradycardia(s, domain.Stability(stability))
	})
}

func (i *Interactor) AssessTachycardia(ctx context.Context, input dysdto.TachyAssessment) (dysdto.SessionOutput, error) {
	return i.mutate(ctx, func(s domain.Session) (domain.Session, error) {
		return i.svc.AssessTachycardia(s, domain.Stability(input.Stability), domain.QRSWidth(input.QRSWidth), input.Regular, input.Monomorphic)
	})
}

func (i *Interactor) DifferentiateSVT(ctx context.Context, input dysdto.SinusDifferentiation) (dysdto.SessionOutput, error) {
	return i.mutate(ctx, func(s domain.Session) (domain.Session, error) {
		return i.svc.DifferentiateSVT(s, input.Criteria, domain.SinusVsSVT(input.Choice))
	})
}

// Treat applies the menu entry with the given key, routing to the matching
// handler. Gating stays in the service; an entry absent from the current
// menu fails there.
func (i *Interactor) Treat(ctx context.Context, key string) (dysdto.SessionOutput, error) {
	return i.mutate(ctx, func(s domain.Session) (domain.Session, error) {
		for _, option := range domain.AvailableTreatments(s.Phase, s.Context) {
			if option.Key != key {
				continue
			}
			switch option.Kind {
			case domain.KindAtropine:
				return i.svc.GiveAtropine(s)
			case domain.KindAdenosine:
				return i.svc.GiveAdenosine(s)
			case domain.KindCardioversion:
				return i.svc.Cardiovert(s)
			case domain.KindProcainamide:
				return i.svc.GiveProcainamide(s)
			case domain.KindAmiodarone:
				return i.svc.GiveAmiodarone(s)
			case domain.KindEpiInfusion:
				return i.svc.StartEpinephrineInfusion(s)
			case domain.KindPacing:
				return i.svc.StartPacing(s)
			case domain.KindVagalManeuvers:
				return i.svc.PerformVagalManeuvers(s)
			default:
				return i.svc.RecordGuidance(s, key)
			}
		}
		return s, fmt.Errorf("%w: %s", domain.ErrTreatmentGated, key)
	})
}

func (i *Interactor) AddNote(ctx context.Context, text string) (dysdto.SessionOutput, error) {
	if text == "" {
		return dysdto.SessionOutput{}, fmt.Errorf("%w: empty note", apperrors.ErrInvalidInput)
	}
	return i.mutate(ctx, func(s domain.Session) (domain.Session, error) {
		return i.svc.AddNote(s, text)
	})
}

func (i *Interactor) Resolve(ctx context.Context) (dysdto.SessionOutput, error) {
	return i.mutate(ctx, i.svc.Resolve)
}

func (i *Interactor) Transfer(ctx context.Context) (dysdto.SessionOutput, error) {
	return i.mutate(ctx, i.svc.Transfer)
}

// SwitchToArrest freezes the consultation and starts a fresh arrest episode
// seeded with the same patient context. The frozen session stays in the
// store for the record until reset.
func (i *Interactor) SwitchToArrest(ctx context.Context) (dysdto.SwitchOutput, error) {
	snap, err := i.store.Load(ctx)
	if err != nil {
		return dysdto.SwitchOutput{}, err
	}
	sess, seed, err := i.svc.SwitchToArrest(snap.Session)
	if err != nil {
		return dysdto.SwitchOutput{}, err
	}
	if err := i.save(ctx, sess); err != nil {
		i.logger.Warn("dysrhythmia snapshot save failed", "session", sess.ID, "error", err)
	}

	out := dysdto.SwitchOutput{Session: sess, Seed: seed}
	if i.arrest != nil {
		started, err := i.arrest.Start(ctx, arrestdto.StartInput{
			PathwayMode: string(seed.PatientGroup),
			WeightKg:    seed.WeightKg,
		})
		if err != nil {
			return out, err
		}
		out.ArrestEpisodeID = started.Session.ID
	}
	return out, nil
}

func (i *Interactor) Reset(ctx context.Context) error {
	return i.store.Clear(ctx)
}

func (i *Interactor) mutate(ctx context.Context, fn func(domain.Session) (domain.Session, error)) (dysdto.SessionOutput, error) {
	snap, err := i.store.Load(ctx)
	if err != nil {
		return dysdto.SessionOutput{}, err
	}
	sess, err := fn(snap.Session)
	if err != nil {
		return output(snap.Session), err
	}
	if err := i.save(ctx, sess); err != nil {
		i.logger.Warn("dysrhythmia snapshot save failed", "session", sess.ID, "error", err)
	}
	return output(sess), nil
}

func (i *Interactor) save(ctx context.Context, sess domain.Session) error {
	return i.store.Save(ctx, domain.Snapshot{
		SchemaVersion: domain.SchemaVersion,
		SavedAt:       i.clock.Now(),
		Session:       sess,
	})
}

func output(sess domain.Session) dysdto.SessionOutput {
	return dysdto.SessionOutput{
		Session:    sess,
		Treatments: domain.AvailableTreatments(sess.Phase, sess.Context),
	}
}
