package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"codeclock/internal/modules/reference/domain"
	referenceout "codeclock/internal/modules/reference/port/out"
	"codeclock/internal/platform/markdown"
	"codeclock/internal/platform/slug"
)

// DirCardCatalog lists reference cards from <dataPath>/reference. Markdown
// cards may carry a frontmatter title; the filename is the fallback.
type DirCardCatalog struct {
	dir string
}

func NewDirCardCatalog(dataPath string) referenceout.CardCatalog {
	return &DirCardCatalog{dir: filepath.Join(dataPath, "reference")}
}

func (c *DirCardCatalog) List(_ context.Context) ([]domain.Card, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.Card{}, nil
		}
		return nil, fmt.Errorf("read reference dir: %w", err)
	}
	cards := make([]domain.Card, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		kind, ok := kindForExt(filepath.Ext(name))
		if !ok {
			continue
		}
		base := strings.TrimSuffix(name, filepath.Ext(name))
		path := filepath.Join(c.dir, name)
		title := strings.ReplaceAll(base, "-", " ")
		if kind == domain.CardKindMarkdown {
			if t := frontmatterTitle(path); t != "" {
				title = t
			}
		}
		cards = append(cards, domain.Card{
			ID:       slug.Make(base),
			Title:    title,
			Kind:     kind,
			FilePath: path,
		})
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].ID < cards[j].ID })
	return cards, nil
}

func kindForExt(ext string) (domain.CardKind, bool) {
	switch strings.ToLower(ext) {
	case ".md", ".markdown", ".txt":
		return domain.CardKindMarkdown, true
	case ".pdf":
		return domain.CardKindPDF, true
	}
	return "", false
}

func frontmatterTitle(path string) string {
	b, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	meta, _, err := markdown.SplitFrontmatter(string(b))
	if err != nil {
		return ""
	}
	if title, ok := meta["title"].(string); ok {
		return title
	}
	return ""
}
