package in

import (
	"context"

	"codeclock/internal/modules/report/dto"
	reportin "codeclock/internal/modules/report/port/in"
)

type CLIHandler struct {
	usecase reportin.Usecase
}

func NewCLIHandler(usecase reportin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) List(ctx context.Context) ([]dto.ExporterInfo, error) {
	return h.usecase.List(ctx)
}

func (h CLIHandler) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	return h.usecase.Doctor(ctx)
}

func (h CLIHandler) ListFormats(ctx context.Context, exporterName string) ([]dto.FormatInfo, error) {
	return h.usecase.ListFormats(ctx, exporterName)
}

func (h CLIHandler) Export(ctx context.Context, input dto.ExportInput) (dto.ExportOutput, error) {
	return h.usecase.Export(ctx, input)
}

func (h CLIHandler) Summarize(ctx context.Context, exporterName string) (dto.SummaryOutput, error) {
	return h.usecase.Summarize(ctx, exporterName)
}
