package usecase

import (
	"context"

	"codeclock/internal/modules/reference/dto"
	referencein "codeclock/internal/modules/reference/port/in"
	"codeclock/internal/modules/reference/service"
)

type Interactor struct {
	svc *service.ReferenceService
}

func NewInteractor(svc *service.ReferenceService) referencein.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) List(ctx context.Context) ([]dto.CardInfo, error) {
	return i.svc.List(ctx)
}

func (i *Interactor) Read(ctx context.Context, input dto.ReadInput) (dto.ReadOutput, error) {
	return i.svc.Read(ctx, input)
}
