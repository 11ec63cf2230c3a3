package in

import (
	"context"

	arrestdto "codeclock/internal/modules/arrest/dto"
	arrestin "codeclock/internal/modules/arrest/port/in"
)

type CLIHandler struct {
	usecase arrestin.Usecase
}

func NewCLIHandler(usecase arrestin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Start(ctx context.Context, mode string, weightKg *float64) (arrestdto.EpisodeOutput, error) {
	return h.usecase.Start(ctx, arrestdto.StartInput{PathwayMode: mode, WeightKg: weightKg})
}

func (h CLIHandler) Status(ctx context.Context) (arrestdto.EpisodeOutput, error) {
	return h.usecase.Status(ctx)
}

func (h CLIHandler) Resume(ctx context.Context) (arrestdto.EpisodeOutput, error) {
	return h.usecase.Resume(ctx)
}

func (h CLIHandler) SelectRhythm(ctx context.Context, rhythm string) (arrestdto.EpisodeOutput, error) {
	return h.usecase.SelectRhythm(ctx, rhythm)
}

func (h CLIHandler) RhythmCheck(ctx context.Context) (arrestdto.EpisodeOutput, error) {
	return h.usecase.StartRhythmCheck(ctx)
}

func (h CLIHandler) CompleteRhythmCheck(ctx context.Context, result, rhythm string) (arrestdto.EpisodeOutput, error) {
	return h.usecase.CompleteRhythmCheck(ctx, arrestdto.RhythmCheckCompletion{Result: result, Rhythm: rhythm})
}

func (h CLIHandler) GiveDrug(ctx context.Context, drug string) (arrestdto.EpisodeOutput, error) {
	switch drug {
	case "amiodarone":
		return h.usecase.GiveAmiodarone(ctx)
	case "lidocaine":
		return h.usecase.GiveLidocaine(ctx)
	default:
		return h.usecase.GiveEpinephrine(ctx)
	}
}

func (h CLIHandler) SetAirway(ctx context.Context, status string) (arrestdto.EpisodeOutput, error) {
	return h.usecase.SetAirway(ctx, status)
}

func (h CLIHandler) MarkChecklist(ctx context.Context, list, item string) (arrestdto.EpisodeOutput, error) {
	return h.usecase.MarkChecklist(ctx, arrestdto.ChecklistInput{List: list, Item: item})
}

func (h CLIHandler) AddNote(ctx context.Context, text string) (arrestdto.EpisodeOutput, error) {
	return h.usecase.AddNote(ctx, text)
}

func (h CLIHandler) RecordETCO2(ctx context.Context, value float64) (arrestdto.EpisodeOutput, error) {
	return h.usecase.RecordETCO2(ctx, value)
}

func (h CLIHandler) RecordVitals(ctx context.Context, input arrestdto.VitalsInput) (arrestdto.EpisodeOutput, error) {
	return h.usecase.RecordVitals(ctx, input)
}

func (h CLIHandler) ROSC(ctx context.Context) (arrestdto.EpisodeOutput, error) {
	return h.usecase.AchieveROSC(ctx)
}

func (h CLIHandler) Terminate(ctx context.Context) (arrestdto.EpisodeOutput, error) {
	return h.usecase.TerminateCode(ctx)
}

func (h CLIHandler) Finish(ctx context.Context) (arrestdto.FinishOutput, error) {
	return h.usecase.Finish(ctx)
}

func (h CLIHandler) Reset(ctx context.Context) error {
	return h.usecase.Reset(ctx)
}

func (h CLIHandler) Log(ctx context.Context) (arrestdto.LogOutput, error) {
	return h.usecase.Log(ctx)
}

func (h CLIHandler) History(ctx context.Context, limit int) ([]arrestdto.EpisodeSummary, error) {
	return h.usecase.History(ctx, limit)
}
