package in

import (
	"context"

	"codeclock/internal/modules/arrest/dto"
)

type Usecase interface {
	Start(ctx context.Context, input dto.StartInput) (dto.EpisodeOutput, error)
	Status(ctx context.Context) (dto.EpisodeOutput, error)
	Resume(ctx context.Context) (dto.EpisodeOutput, error)
	Touch(ctx context.Context) error

	SelectRhythm(ctx context.Context, rhythm string) (dto.EpisodeOutput, error)
	StartRhythmCheck(ctx context.Context) (dto.EpisodeOutput, error)
	CompleteRhythmCheck(ctx context.Context, input dto.RhythmCheckCompletion) (dto.EpisodeOutput, error)

	GiveEpinephrine(ctx context.Context) (dto.EpisodeOutput, error)
	GiveAmiodarone(ctx context.Context) (dto.EpisodeOutput, error)
	GiveLidocaine(ctx context.Context) (dto.EpisodeOutput, error)
	SetAirway(ctx context.Context, status string) (dto.EpisodeOutput, error)

	MarkChecklist(ctx context.Context, input dto.ChecklistInput) (dto.EpisodeOutput, error)
	AddNote(ctx context.Context, text string) (dto.EpisodeOutput, error)
	RecordETCO2(ctx context.Context, value float64) (dto.EpisodeOutput, error)
	RecordVitals(ctx context.Context, input dto.VitalsInput) (dto.EpisodeOutput, error)

	AchieveROSC(ctx context.Context) (dto.EpisodeOutput, error)
	TerminateCode(ctx context.Context) (dto.EpisodeOutput, error)
	Finish(ctx context.Context) (dto.FinishOutput, error)
	Reset(ctx context.Context) error

	Log(ctx context.Context) (dto.LogOutput, error)
	History(ctx context.Context, limit int) ([]dto.EpisodeSummary, error)
}
