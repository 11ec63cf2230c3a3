package usecase_test

import (
	"context"
	"errors"
	"testing"

	"codeclock/internal/modules/reference/domain"
	"codeclock/internal/modules/reference/dto"
	referencein "codeclock/internal/modules/reference/port/in"
	"codeclock/internal/modules/reference/service"
	"codeclock/internal/modules/reference/usecase"
)

type fakeCatalog struct {
	cards []domain.Card
}

func (c fakeCatalog) List(context.Context) ([]domain.Card, error) {
	return c.cards, nil
}

type fakeMDReader struct{}

func (fakeMDReader) Read(context.Context, string) (string, error) {
	return "# Adult cardiac arrest\n\nShock, CPR, epinephrine.", nil
}

type fakePDFReader struct{}

func (fakePDFReader) ReadPage(_ context.Context, _ string, page int) (domain.Page, int, error) {
	return domain.Page{Number: page, Text: "dose chart"}, 4, nil
}

func newUsecase(cards ...domain.Card) referencein.Usecase {
	return usecase.NewInteractor(service.NewReferenceService(fakeCatalog{cards: cards}, fakeMDReader{}, fakePDFReader{}))
}

func TestListAndReadMarkdownCard(t *testing.T) {
	t.Parallel()
	uc := newUsecase(
		domain.Card{ID: "acls-adult", Title: "Adult cardiac arrest", Kind: domain.CardKindMarkdown, FilePath: "/tmp/acls-adult.md"},
		domain.Card{ID: "dose-chart", Title: "Dose chart", Kind: domain.CardKindPDF, FilePath: "/tmp/dose-chart.pdf"},
	)

	list, err := uc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected two cards, got %d", len(list))
	}

	card, err := uc.Read(context.Background(), dto.ReadInput{CardID: "acls-adult"})
	if err != nil {
		t.Fatalf("read markdown: %v", err)
	}
	if card.Kind != "markdown" || card.Content == "" {
		t.Fatalf("unexpected markdown output: %+v", card)
	}
}

func TestReadPDFCardDefaultsToFirstPage(t *testing.T) {
	t.Parallel()
	uc := newUsecase(domain.Card{ID: "dose-chart", Title: "Dose chart", Kind: domain.CardKindPDF, FilePath: "/tmp/dose-chart.pdf"})

	card, err := uc.Read(context.Background(), dto.ReadInput{CardID: "dose-chart"})
	if err != nil {
		t.Fatalf("read pdf: %v", err)
	}
	if card.Page != 1 || card.TotalPage != 4 || card.Content != "dose chart" {
		t.Fatalf("unexpected pdf output: %+v", card)
	}
}

func TestReadUnknownCard(t *testing.T) {
	t.Parallel()
	uc := newUsecase()

	_, err := uc.Read(context.Background(), dto.ReadInput{CardID: "missing"})
	if !errors.Is(err, domain.ErrCardNotFound) {
		t.Fatalf("expected ErrCardNotFound, got %v", err)
	}
}
