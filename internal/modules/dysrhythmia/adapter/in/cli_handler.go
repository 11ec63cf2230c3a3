package in

import (
	"context"

	dysdto "codeclock/internal/modules/dysrhythmia/dto"
	dysin "codeclock/internal/modules/dysrhythmia/port/in"
)

type CLIHandler struct {
	usecase dysin.Usecase
}

func NewCLIHandler(usecase dysin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Start(ctx context.Context, group string, weightKg *float64) (dysdto.SessionOutput, error) {
	return h.usecase.Start(ctx, dysdto.StartInput{PatientGroup: group, WeightKg: weightKg})
}

func (h CLIHandler) Status(ctx context.Context) (dysdto.SessionOutput, error) {
	return h.usecase.Status(ctx)
}

func (h CLIHandler) SelectBranch(ctx context.Context, branch string) (dysdto.SessionOutput, error) {
	return h.usecase.SelectBranch(ctx, branch)
}

func (h CLIHandler) AssessBradycardia(ctx context.Context, stability string) (dysdto.SessionOutput, error) {
	return h.usecase.AssessBradycardia(ctx, stability)
}

func (h CLIHandler) AssessTachycardia(ctx context.Context, stability, qrs string, regular, monomorphic *bool) (dysdto.SessionOutput, error) {
	return h.usecase.AssessTachycardia(ctx, dysdto.TachyAssessment{
		Stability:   stability,
		QRSWidth:    qrs,
		Regular:     regular,
		Monomorphic: monomorphic,
	})
}

func (h CLIHandler) DifferentiateSVT(ctx context.Context, choice string, criteria dysdto.SinusDifferentiation) (dysdto.SessionOutput, error) {
	criteria.Choice = choice
	return h.usecase.DifferentiateSVT(ctx, criteria)
}

func (h CLIHandler) Treat(ctx context.Context, key string) (dysdto.SessionOutput, error) {
	return h.usecase.Treat(ctx, key)
}

func (h CLIHandler) AddNote(ctx context.Context, text string) (dysdto.SessionOutput, error) {
	return h.usecase.AddNote(ctx, text)
}

func (h CLIHandler) Resolve(ctx context.Context) (dysdto.SessionOutput, error) {
	return h.usecase.Resolve(ctx)
}

func (h CLIHandler) Transfer(ctx context.Context) (dysdto.SessionOutput, error) {
	return h.usecase.Transfer(ctx)
}

func (h CLIHandler) SwitchToArrest(ctx context.Context) (dysdto.SwitchOutput, error) {
	return h.usecase.SwitchToArrest(ctx)
}

func (h CLIHandler) Reset(ctx context.Context) error {
	return h.usecase.Reset(ctx)
}
