package out

import (
	"context"

	"codeclock/internal/modules/reference/domain"
)

// CardCatalog enumerates the reference documents available on disk.
type CardCatalog interface {
	List(ctx context.Context) ([]domain.Card, error)
}

type MarkdownReader interface {
	Read(ctx context.Context, path string) (string, error)
}

type PDFReader interface {
	ReadPage(ctx context.Context, path string, page int) (domain.Page, int, error)
}
