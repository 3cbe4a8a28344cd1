package extract

import (
	"bytes"
	"context"
	"strings"

	"github.com/dgallion1/docchunk/internal/document"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownExtractor handles Markdown using goldmark.
type MarkdownExtractor struct{}

func (e *MarkdownExtractor) Extract(ctx context.Context, data []byte) (string, []document.LayoutSpan, error) {
	md := goldmark.New()
	reader := text.NewReader(data)
	doc := md.Parser().Parse(reader)

	var b builder
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			b.add(string(node.Text(data)), document.KindHeading, node.Level, 0)
		case *ast.List:
			if t := blockText(n, data); t != "" {
				b.add(t, document.KindList, 0, 0)
			}
		default:
			if t := blockText(n, data); t != "" {
				b.add(t, document.KindParagraph, 0, 0)
			}
		}
	}
	text, spans := b.result()
	return text, spans, nil
}

// blockText gets the text content of a goldmark AST node.
func blockText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock && n.FirstChild() == nil {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		} else {
			if buf.Len() > 0 && c.Type() == ast.TypeBlock {
				buf.WriteByte('\n')
			}
			buf.WriteString(blockText(c, src))
		}
	}
	return strings.TrimSpace(buf.String())
}
