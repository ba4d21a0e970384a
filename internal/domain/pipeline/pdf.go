package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFProvider extracts per-page text from PDF documents by decoding page
// content streams and collecting the literal strings fed to the text-show
// operators. It does not rasterize and does not OCR; image-only pages come
// back empty and trip the minimum-content check downstream.
type PDFProvider struct {
	conf *model.Configuration

	mu        sync.Mutex
	cachedDoc *RawDocument
	cachedCtx *model.Context
}

// NewPDFProvider returns a provider using relaxed validation, which accepts
// the slightly malformed output real payroll systems produce.
func NewPDFProvider() *PDFProvider {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &PDFProvider{conf: conf}
}

// ValidateStructure parses the document once and maps pdfcpu failures onto
// the pipeline taxonomy. Password-protected files are detected here, before
// any extraction work.
func (p *PDFProvider) ValidateStructure(ctx context.Context, doc *RawDocument) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := p.open(doc)
	return err
}

func (p *PDFProvider) PageCount(ctx context.Context, doc *RawDocument) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	pdfCtx, err := p.open(doc)
	if err != nil {
		return 0, err
	}
	return pdfCtx.PageCount, nil
}

func (p *PDFProvider) PageText(ctx context.Context, doc *RawDocument, page int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	pdfCtx, err := p.open(doc)
	if err != nil {
		return "", err
	}
	if page < 0 || page >= pdfCtx.PageCount {
		return "", fmt.Errorf("%w: page %d out of range", ErrTextExtractionFailed, page)
	}

	// pdfcpu numbers pages from 1.
	r, err := pdfcpu.ExtractPageContent(pdfCtx, page+1)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTextExtractionFailed, err)
	}
	if r == nil {
		return "", nil
	}
	content, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTextExtractionFailed, err)
	}
	return pageTextFromContent(content), nil
}

// open parses and validates the document, reusing the parsed context when
// the pipeline asks about the same document repeatedly.
func (p *PDFProvider) open(doc *RawDocument) (*model.Context, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cachedDoc == doc && p.cachedCtx != nil {
		return p.cachedCtx, nil
	}

	pdfCtx, err := api.ReadValidateAndOptimize(bytes.NewReader(doc.Data), p.conf)
	if err != nil {
		if isEncryptionError(err) {
			return nil, fmt.Errorf("%w: %v", ErrPasswordProtected, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidStructure, err)
	}
	p.cachedDoc = doc
	p.cachedCtx = pdfCtx
	return pdfCtx, nil
}

func isEncryptionError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "password") || strings.Contains(msg, "encrypt")
}

// pageTextFromContent walks a decoded content stream and collects literal
// strings, inserting line breaks on the vertical text-positioning operators
// so tabular layouts keep one row per line.
func pageTextFromContent(content []byte) string {
	var b strings.Builder
	i := 0
	for i < len(content) {
		switch c := content[i]; {
		case c == '(':
			s, next := readLiteralString(content, i)
			b.WriteString(s)
			i = next
		case c == 'T' && i+1 < len(content):
			switch content[i+1] {
			case '*', 'D':
				b.WriteByte('\n')
			case 'd':
				b.WriteByte(' ')
			}
			i += 2
		case c == '\'' || c == '"':
			b.WriteByte('\n')
			i++
		default:
			i++
		}
	}
	return tidyPageText(b.String())
}

// readLiteralString consumes a parenthesized PDF string starting at open,
// honoring nesting and backslash escapes. Returns the decoded text and the
// index just past the closing paren.
func readLiteralString(content []byte, open int) (string, int) {
	var b strings.Builder
	depth := 0
	i := open
	for i < len(content) {
		switch c := content[i]; c {
		case '\\':
			if i+1 < len(content) {
				b.WriteByte(unescapeByte(content[i+1]))
				i += 2
				continue
			}
			i++
		case '(':
			depth++
			if depth > 1 {
				b.WriteByte(c)
			}
			i++
		case ')':
			depth--
			if depth == 0 {
				return b.String(), i + 1
			}
			b.WriteByte(c)
			i++
		default:
			if depth > 0 {
				b.WriteByte(c)
			}
			i++
		}
	}
	return b.String(), i
}

func unescapeByte(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	case 't':
		return '\t'
	case 'b', 'f':
		return ' '
	default:
		return c
	}
}

// tidyPageText trims trailing space per line and collapses runs of blank
// lines, keeping the line structure the positional rules depend on.
func tidyPageText(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimRight(line, " \t\r")
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}

var (
	_ TextProvider       = (*PDFProvider)(nil)
	_ StructureValidator = (*PDFProvider)(nil)
)
