package usecase_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"codeclock/internal/modules/report/domain"
	"codeclock/internal/modules/report/dto"
	"codeclock/internal/modules/report/service"
	"codeclock/internal/modules/report/usecase"
)

type fakeManifestStore struct {
	manifests []domain.Manifest
}

func (s fakeManifestStore) Load(context.Context) ([]domain.Manifest, error) {
	return s.manifests, nil
}

type fakeHost struct{}

func (fakeHost) CheckLifecycle(context.Context, domain.Manifest) error { return nil }
func (fakeHost) GetMetadata(context.Context, domain.Manifest) (domain.Metadata, error) {
	return domain.Metadata{Name: "debrief", Version: "1"}, nil
}
func (fakeHost) ListFormats(context.Context, domain.Manifest) ([]domain.FormatDescriptor, error) {
	return []domain.FormatDescriptor{
		{ID: "text", Title: "Text debrief", Extension: "txt", TimeoutMS: 1000},
		{ID: "handoff", Title: "Handoff card", Extension: "md", TimeoutMS: 1500},
	}, nil
}
func (fakeHost) Export(_ context.Context, _ domain.Manifest, req domain.ExportRequest) (domain.ExportResult, error) {
	return domain.ExportResult{Content: "exported " + req.FormatID, ExitCode: 0}, nil
}
func (fakeHost) Summarize(context.Context, domain.Manifest, string) (string, error) {
	return "ROSC at 12 min, 2 shocks, 3 doses epinephrine", nil
}

type fakeEpisodeSource struct{}

func (fakeEpisodeSource) ActiveEpisodeJSON(context.Context) (string, error) {
	return `{"id":"ep-1"}`, nil
}

func TestUsecaseListDoctorAndOperations(t *testing.T) {
	t.Parallel()
	manifest := manifestWithBinary(t)
	svc := service.NewReportService(fakeManifestStore{manifests: []domain.Manifest{manifest}}, fakeHost{}, fakeEpisodeSource{}, t.TempDir())
	uc := usecase.NewInteractor(svc)

	list, err := uc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Name != "debrief" {
		t.Fatalf("unexpected list: %+v", list)
	}

	docs, err := uc.Doctor(context.Background())
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	if len(docs) != 1 || !docs[0].LifecycleOK {
		t.Fatalf("unexpected doctor result: %+v", docs)
	}

	formats, err := uc.ListFormats(context.Background(), "debrief")
	if err != nil {
		t.Fatalf("list formats: %v", err)
	}
	if len(formats) != 2 {
		t.Fatalf("unexpected format count: %d", len(formats))
	}

	exportOut, err := uc.Export(context.Background(), dto.ExportInput{ExporterName: "debrief", FormatID: "text"})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if exportOut.Content != "exported text" || exportOut.ExitCode != 0 {
		t.Fatalf("unexpected export result: %+v", exportOut)
	}

	summary, err := uc.Summarize(context.Background(), "debrief")
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if summary.Summary == "" {
		t.Fatalf("expected summary text")
	}
}

func manifestWithBinary(t *testing.T) domain.Manifest {
	t.Helper()
	binPath := filepath.Join(t.TempDir(), "exporter-bin")
	if err := os.WriteFile(binPath, []byte("binary"), 0o755); err != nil {
		t.Fatalf("write binary: %v", err)
	}
	hash := sha256.Sum256([]byte("binary"))
	return domain.Manifest{
		Name:         "debrief",
		Version:      "1",
		Binary:       binPath,
		SHA256:       hex.EncodeToString(hash[:]),
		Enabled:      true,
		Capabilities: []domain.Capability{domain.CapabilityExport, domain.CapabilitySummary},
	}
}
