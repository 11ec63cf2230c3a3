package service_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"codeclock/internal/modules/report/domain"
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
	}, nil
}
func (fakeHost) Export(context.Context, domain.Manifest, domain.ExportRequest) (domain.ExportResult, error) {
	return domain.ExportResult{Content: "debrief body", ExitCode: 0}, nil
}
func (fakeHost) Summarize(context.Context, domain.Manifest, string) (string, error) {
	return "one-line summary", nil
}

type fakeEpisodeSource struct{}

func (fakeEpisodeSource) ActiveEpisodeJSON(context.Context) (string, error) {
	return `{"id":"ep-1"}`, nil
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
