package pipeline

import (
	"context"
	"strings"
)

// RawDocument is the byte payload handed to the pipeline, with an optional
// name used only for logging.
type RawDocument struct {
	Name string
	Data []byte
}

// TextProvider turns a raw document into per-page text. Implementations
// decide what counts as a page; the pipeline only requires a stable count
// and index.
type TextProvider interface {
	PageCount(ctx context.Context, doc *RawDocument) (int, error)
	PageText(ctx context.Context, doc *RawDocument, page int) (string, error)
}

// StructureValidator is implemented by providers that can reject a document
// before text extraction. The pipeline probes for it with a type assertion.
type StructureValidator interface {
	ValidateStructure(ctx context.Context, doc *RawDocument) error
}

// PlainTextProvider treats the document bytes as UTF-8 text with pages
// separated by form feeds. Useful for pre-extracted text and for tests.
type PlainTextProvider struct{}

func NewPlainTextProvider() *PlainTextProvider { return &PlainTextProvider{} }

func (p *PlainTextProvider) PageCount(_ context.Context, doc *RawDocument) (int, error) {
	if len(doc.Data) == 0 {
		return 0, nil
	}
	return len(p.pages(doc)), nil
}

func (p *PlainTextProvider) PageText(_ context.Context, doc *RawDocument, page int) (string, error) {
	pages := p.pages(doc)
	if page < 0 || page >= len(pages) {
		return "", ErrTextExtractionFailed
	}
	return pages[page], nil
}

func (p *PlainTextProvider) pages(doc *RawDocument) []string {
	return strings.Split(string(doc.Data), "\f")
}

var _ TextProvider = (*PlainTextProvider)(nil)
