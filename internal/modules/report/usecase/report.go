package usecase

import (
	"context"

	"codeclock/internal/modules/report/dto"
	reportin "codeclock/internal/modules/report/port/in"
	"codeclock/internal/modules/report/service"
)

type Interactor struct {
	svc *service.ReportService
}

func NewInteractor(svc *service.ReportService) reportin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) List(ctx context.Context) ([]dto.ExporterInfo, error) {
	return i.svc.List(ctx)
}

func (i *Interactor) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	return i.svc.Doctor(ctx)
}

func (i *Interactor) ListFormats(ctx context.Context, exporterName string) ([]dto.FormatInfo, error) {
	return i.svc.ListFormats(ctx, exporterName)
}

func (i *Interactor) Export(ctx context.Context, input dto.ExportInput) (dto.ExportOutput, error) {
	return i.svc.Export(ctx, input)
}

func (i *Interactor) Summarize(ctx context.Context, exporterName string) (dto.SummaryOutput, error) {
	return i.svc.Summarize(ctx, exporterName)
}
