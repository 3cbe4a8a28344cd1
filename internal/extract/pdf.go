package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/dgallion1/docchunk/internal/document"
	pdflib "github.com/ledongthuc/pdf"
)

// PDFExtractor handles PDF files via ledongthuc/pdf. Each page's text
// becomes one or more page-annotated paragraph spans.
type PDFExtractor struct{}

func (e *PDFExtractor) Extract(ctx context.Context, data []byte) (string, []document.LayoutSpan, error) {
	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", nil, fmt.Errorf("open pdf: %w", err)
	}

	var b builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return "", nil, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			// Pages that fail text extraction are skipped, matching
			// common PDF tooling behavior for image-only pages.
			continue
		}
		for _, para := range strings.Split(pageText, "\n\n") {
			b.add(para, document.KindParagraph, 0, i)
		}
	}
	text, spans := b.result()
	return text, spans, nil
}
