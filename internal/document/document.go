package document

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Format identifies the source format of a document.
type Format string

const (
	FormatPDF      Format = "pdf"
	FormatDOCX     Format = "docx"
	FormatTXT      Format = "txt"
	FormatMarkdown Format = "md"
	FormatHTML     Format = "html"
)

// FormatForFilename determines the document format from a filename extension.
func FormatForFilename(filename string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return FormatPDF, nil
	case ".docx":
		return FormatDOCX, nil
	case ".txt", ".text":
		return FormatTXT, nil
	case ".md", ".markdown":
		return FormatMarkdown, nil
	case ".html", ".htm":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("%w: unsupported file extension %q", ErrValidation, ext)
	}
}

// Valid reports whether f is a supported source format.
func (f Format) Valid() bool {
	switch f {
	case FormatPDF, FormatDOCX, FormatTXT, FormatMarkdown, FormatHTML:
		return true
	}
	return false
}

// SpanKind classifies a structural region of document text.
type SpanKind string

const (
	KindHeading   SpanKind = "heading"
	KindParagraph SpanKind = "paragraph"
	KindTable     SpanKind = "table"
	KindList      SpanKind = "list"
)

// LayoutSpan is an annotated region of document text. Offsets are byte
// offsets into Document.Text, Start inclusive and End exclusive.
type LayoutSpan struct {
	Start int      `json:"start"`
	End   int      `json:"end"`
	Kind  SpanKind `json:"kind"`
	Level int      `json:"level,omitempty"` // heading level, 0 for non-headings
	Page  int      `json:"page,omitempty"`  // source page, 0 if unknown
}

// Document is the unit of processing. Either Text (already extracted,
// optionally with Layout) or Raw (pending extraction) is populated.
// A Document is immutable once handed to the processor.
type Document struct {
	ID        string
	Filename  string
	Format    Format
	Text      string
	Layout    []LayoutSpan
	Raw       []byte
	CreatedAt time.Time
}

// New creates a document from already-extracted text.
func New(id string, format Format, text string, layout []LayoutSpan) Document {
	return Document{
		ID:        id,
		Format:    format,
		Text:      text,
		Layout:    layout,
		CreatedAt: time.Now(),
	}
}

// NewRaw creates a document from raw bytes that still need extraction.
func NewRaw(id, filename string, format Format, data []byte) Document {
	return Document{
		ID:        id,
		Filename:  filename,
		Format:    format,
		Raw:       data,
		CreatedAt: time.Now(),
	}
}
