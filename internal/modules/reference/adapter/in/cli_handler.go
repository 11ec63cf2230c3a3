package in

import (
	"context"

	"codeclock/internal/modules/reference/dto"
	referencein "codeclock/internal/modules/reference/port/in"
)

type CLIHandler struct {
	usecase referencein.Usecase
}

func NewCLIHandler(usecase referencein.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) List(ctx context.Context) ([]dto.CardInfo, error) {
	return h.usecase.List(ctx)
}

func (h CLIHandler) Read(ctx context.Context, cardID string, page int) (dto.ReadOutput, error) {
	return h.usecase.Read(ctx, dto.ReadInput{CardID: cardID, Page: page})
}
