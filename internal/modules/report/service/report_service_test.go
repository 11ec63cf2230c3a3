package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	reportout "codeclock/internal/modules/report/adapter/out"
	"codeclock/internal/modules/report/domain"
	"codeclock/internal/modules/report/dto"
	"codeclock/internal/modules/report/service"
)

func TestDoctorDetectsChecksumMismatch(t *testing.T) {
	t.Parallel()
	tmp := t.TempDir()
	exportersDir := filepath.Join(tmp, "exporters")
	if err := os.MkdirAll(exportersDir, 0o755); err != nil {
		t.Fatalf("mkdir exporters: %v", err)
	}
	binPath := filepath.Join(tmp, "dummy-exporter")
	if err := os.WriteFile(binPath, []byte("not-a-real-exporter"), 0o755); err != nil {
		t.Fatalf("write exporter binary: %v", err)
	}
	manifests := []domain.Manifest{{
		Name:         "debrief",
		Version:      "1.0.0",
		Binary:       binPath,
		SHA256:       strings.Repeat("0", 64),
		Enabled:      true,
		Capabilities: []domain.Capability{domain.CapabilityExport},
	}}
	raw, _ := json.Marshal(manifests)
	if err := os.WriteFile(filepath.Join(exportersDir, "exporters.json"), raw, 0o644); err != nil {
		t.Fatalf("write exporters.json: %v", err)
	}

	svc := service.NewReportService(reportout.NewFileManifestStore(tmp), nil, nil, tmp)
	results, err := svc.Doctor(context.Background())
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected one result, got %d", len(results))
	}
	if results[0].ChecksumValid {
		t.Fatalf("expected checksum mismatch")
	}
	if !results[0].BinaryReachable {
		t.Fatalf("expected binary to be reachable")
	}
}

func TestExportRejectsDisabledExporter(t *testing.T) {
	t.Parallel()
	manifest := manifestWithBinary(t)
	manifest.Enabled = false
	svc := service.NewReportService(fakeManifestStore{manifests: []domain.Manifest{manifest}}, fakeHost{}, fakeEpisodeSource{}, t.TempDir())

	_, err := svc.Export(context.Background(), dto.ExportInput{ExporterName: "debrief", FormatID: "text"})
	if !errors.Is(err, domain.ErrExporterDisabled) {
		t.Fatalf("expected ErrExporterDisabled, got %v", err)
	}
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	t.Parallel()
	manifest := manifestWithBinary(t)
	svc := service.NewReportService(fakeManifestStore{manifests: []domain.Manifest{manifest}}, fakeHost{}, fakeEpisodeSource{}, t.TempDir())

	_, err := svc.Export(context.Background(), dto.ExportInput{ExporterName: "debrief", FormatID: "pdf"})
	if !errors.Is(err, domain.ErrFormatNotFound) {
		t.Fatalf("expected ErrFormatNotFound, got %v", err)
	}
}

func TestSummarizeRequiresCapability(t *testing.T) {
	t.Parallel()
	manifest := manifestWithBinary(t)
	manifest.Capabilities = []domain.Capability{domain.CapabilityExport}
	svc := service.NewReportService(fakeManifestStore{manifests: []domain.Manifest{manifest}}, fakeHost{}, fakeEpisodeSource{}, t.TempDir())

	_, err := svc.Summarize(context.Background(), "debrief")
	if !errors.Is(err, domain.ErrCapabilityMissing) {
		t.Fatalf("expected ErrCapabilityMissing, got %v", err)
	}
}

func TestListRejectsDuplicateNames(t *testing.T) {
	t.Parallel()
	first := manifestWithBinary(t)
	second := manifestWithBinary(t)
	svc := service.NewReportService(fakeManifestStore{manifests: []domain.Manifest{first, second}}, fakeHost{}, fakeEpisodeSource{}, t.TempDir())

	if _, err := svc.List(context.Background()); err == nil {
		t.Fatalf("expected duplicate name error")
	}
}
