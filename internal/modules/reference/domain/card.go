package domain

import "errors"

var ErrCardNotFound = errors.New("reference card not found")

// CardKind is derived from the file extension at scan time.
type CardKind string

const (
	CardKindMarkdown CardKind = "markdown"
	CardKindPDF      CardKind = "pdf"
)

// Card is one protocol reference document in the data directory: an
// algorithm card, a dose chart, a local policy.
type Card struct {
	ID       string
	Title    string
	Kind     CardKind
	FilePath string
}

type Page struct {
	Number int
	Text   string
}
