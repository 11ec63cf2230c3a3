package service

import (
	"context"
	"fmt"

	"codeclock/internal/modules/reference/domain"
	"codeclock/internal/modules/reference/dto"
	referenceout "codeclock/internal/modules/reference/port/out"
)

type ReferenceService struct {
	catalog   referenceout.CardCatalog
	mdReader  referenceout.MarkdownReader
	pdfReader referenceout.PDFReader
}

func NewReferenceService(catalog referenceout.CardCatalog, mdReader referenceout.MarkdownReader, pdfReader referenceout.PDFReader) *ReferenceService {
	return &ReferenceService{catalog: catalog, mdReader: mdReader, pdfReader: pdfReader}
}

func (s *ReferenceService) List(ctx context.Context) ([]dto.CardInfo, error) {
	cards, err := s.catalog.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CardInfo, 0, len(cards))
	for _, card := range cards {
		out = append(out, dto.CardInfo{ID: card.ID, Title: card.Title, Kind: string(card.Kind)})
	}
	return out, nil
}

func (s *ReferenceService) Read(ctx context.Context, input dto.ReadInput) (dto.ReadOutput, error) {
	card, err := s.find(ctx, input.CardID)
	if err != nil {
		return dto.ReadOutput{}, err
	}
	switch card.Kind {
	case domain.CardKindMarkdown:
		content, err := s.mdReader.Read(ctx, card.FilePath)
		if err != nil {
			return dto.ReadOutput{}, err
		}
		return dto.ReadOutput{CardID: card.ID, Title: card.Title, Kind: string(card.Kind), Content: content}, nil
	case domain.CardKindPDF:
		page := input.Page
		if page <= 0 {
			page = 1
		}
		pdfPage, total, err := s.pdfReader.ReadPage(ctx, card.FilePath, page)
		if err != nil {
			return dto.ReadOutput{}, err
		}
		return dto.ReadOutput{
			CardID:    card.ID,
			Title:     card.Title,
			Kind:      string(card.Kind),
			Page:      pdfPage.Number,
			TotalPage: total,
			Content:   pdfPage.Text,
		}, nil
	default:
		return dto.ReadOutput{}, fmt.Errorf("unsupported card kind: %s", card.Kind)
	}
}

func (s *ReferenceService) find(ctx context.Context, cardID string) (domain.Card, error) {
	cards, err := s.catalog.List(ctx)
	if err != nil {
		return domain.Card{}, err
	}
	for _, card := range cards {
		if card.ID == cardID {
			return card, nil
		}
	}
	return domain.Card{}, fmt.Errorf("%w: %s", domain.ErrCardNotFound, cardID)
}
