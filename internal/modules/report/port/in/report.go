package in

import (
	"context"

	"codeclock/internal/modules/report/dto"
)

type Usecase interface {
	List(ctx context.Context) ([]dto.ExporterInfo, error)
	Doctor(ctx context.Context) ([]dto.DoctorResult, error)
	ListFormats(ctx context.Context, exporterName string) ([]dto.FormatInfo, error)
	Export(ctx context.Context, input dto.ExportInput) (dto.ExportOutput, error)
	Summarize(ctx context.Context, exporterName string) (dto.SummaryOutput, error)
}
