// Package extract converts raw document bytes into normalized text plus
// layout spans for the chunking pipeline. One extractor per source format.
package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dgallion1/docchunk/internal/document"
)

// Extractor converts raw bytes of one format into normalized text and
// ordered layout spans.
type Extractor interface {
	Extract(ctx context.Context, data []byte) (string, []document.LayoutSpan, error)
}

// ForFormat returns the extractor for a document format.
func ForFormat(format document.Format) (Extractor, error) {
	switch format {
	case document.FormatTXT:
		return &TextExtractor{}, nil
	case document.FormatMarkdown:
		return &MarkdownExtractor{}, nil
	case document.FormatHTML:
		return &HTMLExtractor{}, nil
	case document.FormatPDF:
		return &PDFExtractor{}, nil
	case document.FormatDOCX:
		return &DOCXExtractor{}, nil
	default:
		return nil, fmt.Errorf("%w: no extractor for format %q", document.ErrExtraction, format)
	}
}

// Service dispatches extraction by format. It implements the processor's
// extraction collaborator.
type Service struct{}

func NewService() *Service { return &Service{} }

func (s *Service) Extract(ctx context.Context, data []byte, format document.Format) (string, []document.LayoutSpan, error) {
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}
	ex, err := ForFormat(format)
	if err != nil {
		return "", nil, err
	}
	text, spans, err := ex.Extract(ctx, data)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return "", nil, err
		}
		return "", nil, fmt.Errorf("%w: %s: %v", document.ErrExtraction, format, err)
	}
	return text, spans, nil
}

// builder assembles normalized text block by block, recording a layout
// span per block. Blocks are joined with blank lines.
type builder struct {
	sb    strings.Builder
	spans []document.LayoutSpan
}

func (b *builder) add(text string, kind document.SpanKind, level, page int) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if b.sb.Len() > 0 {
		b.sb.WriteString("\n\n")
	}
	start := b.sb.Len()
	b.sb.WriteString(text)
	b.spans = append(b.spans, document.LayoutSpan{
		Start: start,
		End:   b.sb.Len(),
		Kind:  kind,
		Level: level,
		Page:  page,
	})
}

func (b *builder) result() (string, []document.LayoutSpan) {
	return b.sb.String(), b.spans
}
