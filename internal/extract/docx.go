package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/dgallion1/docchunk/internal/document"
	"github.com/fumiama/go-docx"
)

// DOCXExtractor handles .docx files. Heading styles map to heading spans;
// everything else becomes paragraph spans.
type DOCXExtractor struct{}

func (e *DOCXExtractor) Extract(ctx context.Context, data []byte) (string, []document.LayoutSpan, error) {
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", nil, fmt.Errorf("parse docx: %w", err)
	}

	var b builder
	for _, item := range doc.Document.Body.Items {
		if err := ctx.Err(); err != nil {
			return "", nil, err
		}
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		text := docxParagraphText(para)
		if text == "" {
			continue
		}
		if level := docxHeadingLevel(para); level > 0 {
			b.add(text, document.KindHeading, level, 0)
		} else {
			b.add(text, document.KindParagraph, 0, 0)
		}
	}
	text, spans := b.result()
	return text, spans, nil
}

func docxHeadingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := strings.ToLower(para.Properties.Style.Val)
	style = strings.ReplaceAll(style, " ", "")
	if rest, ok := strings.CutPrefix(style, "heading"); ok && len(rest) == 1 && rest[0] >= '1' && rest[0] <= '6' {
		return int(rest[0] - '0')
	}
	return 0
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
