package out_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	reportout "codeclock/internal/modules/report/adapter/out"
)

func TestFileManifestStoreLoadMissingReturnsEmpty(t *testing.T) {
	t.Parallel()
	store := reportout.NewFileManifestStore(t.TempDir())
	manifests, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load manifests: %v", err)
	}
	if len(manifests) != 0 {
		t.Fatalf("expected empty manifests, got %d", len(manifests))
	}
}

func TestFileManifestStoreResolvesRelativeBinary(t *testing.T) {
	t.Parallel()
	base := t.TempDir()
	exportersDir := filepath.Join(base, "exporters")
	if err := os.MkdirAll(exportersDir, 0o755); err != nil {
		t.Fatalf("mkdir exporters: %v", err)
	}
	raw := `[
  {
    "name": "textreport",
    "version": "1.0.0",
    "binary": "exporters/textreport/textreport",
    "sha256": "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
    "enabled": true,
    "capabilities": ["export"]
  }
]`
	if err := os.WriteFile(filepath.Join(exportersDir, "exporters.json"), []byte(raw), 0o644); err != nil {
		t.Fatalf("write exporters.json: %v", err)
	}
	store := reportout.NewFileManifestStore(base)
	manifests, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load manifests: %v", err)
	}
	if len(manifests) != 1 {
		t.Fatalf("expected one manifest, got %d", len(manifests))
	}
	if !filepath.IsAbs(manifests[0].Binary) {
		t.Fatalf("expected absolute binary path, got %s", manifests[0].Binary)
	}
}

func TestFileManifestStoreRejectsUnknownField(t *testing.T) {
	t.Parallel()
	base := t.TempDir()
	exportersDir := filepath.Join(base, "exporters")
	if err := os.MkdirAll(exportersDir, 0o755); err != nil {
		t.Fatalf("mkdir exporters: %v", err)
	}
	raw := `[
  {
    "name": "textreport",
    "version": "1.0.0",
    "binary": "/tmp/textreport",
    "sha256": "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
    "enabled": true,
    "capabilities": ["export"],
    "unknown_field": true
  }
]`
	if err := os.WriteFile(filepath.Join(exportersDir, "exporters.json"), []byte(raw), 0o644); err != nil {
		t.Fatalf("write exporters.json: %v", err)
	}
	store := reportout.NewFileManifestStore(base)
	if _, err := store.Load(context.Background()); err == nil {
		t.Fatalf("expected unknown field error")
	}
}
