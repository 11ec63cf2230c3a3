package in

import (
	"context"

	"codeclock/internal/modules/reference/dto"
)

type Usecase interface {
	List(ctx context.Context) ([]dto.CardInfo, error)
	Read(ctx context.Context, input dto.ReadInput) (dto.ReadOutput, error)
}
