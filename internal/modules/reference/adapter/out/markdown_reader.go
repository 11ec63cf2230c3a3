package out

import (
	"context"
	"fmt"
	"os"

	referenceout "codeclock/internal/modules/reference/port/out"
)

type LocalMarkdownReader struct{}

func NewLocalMarkdownReader() referenceout.MarkdownReader {
	return &LocalMarkdownReader{}
}

func (r *LocalMarkdownReader) Read(_ context.Context, path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read markdown: %w", err)
	}
	return string(b), nil
}
