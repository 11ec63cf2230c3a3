package out_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	referenceout "codeclock/internal/modules/reference/adapter/out"
	"codeclock/internal/modules/reference/domain"
)

func TestDirCardCatalogMissingDirReturnsEmpty(t *testing.T) {
	t.Parallel()
	catalog := referenceout.NewDirCardCatalog(t.TempDir())
	cards, err := catalog.List(context.Background())
	if err != nil {
		t.Fatalf("list cards: %v", err)
	}
	if len(cards) != 0 {
		t.Fatalf("expected no cards, got %d", len(cards))
	}
}

func TestDirCardCatalogScansMarkdownAndPDF(t *testing.T) {
	t.Parallel()
	base := t.TempDir()
	dir := filepath.Join(base, "reference")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir reference: %v", err)
	}
	md := "---\ntitle: Adult Cardiac Arrest\n---\n\nShock early.\n"
	if err := os.WriteFile(filepath.Join(dir, "acls-adult.md"), []byte(md), 0o644); err != nil {
		t.Fatalf("write markdown card: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "dose-chart.pdf"), []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatalf("write pdf card: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.docx"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write ignored file: %v", err)
	}

	catalog := referenceout.NewDirCardCatalog(base)
	cards, err := catalog.List(context.Background())
	if err != nil {
		t.Fatalf("list cards: %v", err)
	}
	if len(cards) != 2 {
		t.Fatalf("expected two cards, got %d", len(cards))
	}
	if cards[0].ID != "acls-adult" || cards[0].Kind != domain.CardKindMarkdown {
		t.Fatalf("unexpected first card: %+v", cards[0])
	}
	if cards[0].Title != "Adult Cardiac Arrest" {
		t.Fatalf("expected frontmatter title, got %q", cards[0].Title)
	}
	if cards[1].ID != "dose-chart" || cards[1].Kind != domain.CardKindPDF {
		t.Fatalf("unexpected second card: %+v", cards[1])
	}
	if cards[1].Title != "dose chart" {
		t.Fatalf("expected filename title, got %q", cards[1].Title)
	}
}
