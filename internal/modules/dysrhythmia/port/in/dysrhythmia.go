package in

import (
	"context"

	"codeclock/internal/modules/dysrhythmia/dto"
)

type Usecase interface {
	Start(ctx context.Context, input dto.StartInput) (dto.SessionOutput, error)
	Status(ctx context.Context) (dto.SessionOutput, error)

	SelectBranch(ctx context.Context, branch string) (dto.SessionOutput, error)
	AssessBradycardia(ctx context.Context, stability string) (dto.SessionOutput, error)
	AssessTachycardia(ctx context.Context, input dto.TachyAssessment) (dto.SessionOutput, error)
	DifferentiateSVT(ctx context.Context, input dto.SinusDifferentiation) (dto.SessionOutput, error)

	Treat(ctx context.Context, key string) (dto.SessionOutput, error)
	AddNote(ctx context.Context, text string) (dto.SessionOutput, error)

	Resolve(ctx context.Context) (dto.SessionOutput, error)
	Transfer(ctx context.Context) (dto.SessionOutput, error)
	SwitchToArrest(ctx context.Context) (dto.SwitchOutput, error)
	Reset(ctx context.Context) error
}
