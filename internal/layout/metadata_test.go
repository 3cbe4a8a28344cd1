package layout

import (
	"reflect"
	"testing"

	"github.com/dgallion1/docchunk/internal/document"
)

func TestExtract_NestedHeadingPath(t *testing.T) {
	text := "Intro\nBackground\nDetails\nbody text here"
	spans := []document.LayoutSpan{
		{Start: 0, End: 5, Kind: document.KindHeading, Level: 1},    // Intro
		{Start: 6, End: 16, Kind: document.KindHeading, Level: 2},   // Background
		{Start: 17, End: 24, Kind: document.KindHeading, Level: 3},  // Details
		{Start: 25, End: len(text), Kind: document.KindParagraph},
	}

	meta := Extract(text, 25, len(text), spans)
	want := []string{"Intro", "Background", "Details"}
	if !reflect.DeepEqual(meta.SectionPath, want) {
		t.Errorf("expected path %v, got %v", want, meta.SectionPath)
	}
	if meta.HeadingLevel != 3 {
		t.Errorf("expected heading level 3, got %d", meta.HeadingLevel)
	}
}

func TestExtract_SiblingHeadingPopsStack(t *testing.T) {
	text := "One\nSub\nTwo\nbody"
	spans := []document.LayoutSpan{
		{Start: 0, End: 3, Kind: document.KindHeading, Level: 1},  // One
		{Start: 4, End: 7, Kind: document.KindHeading, Level: 2},  // Sub
		{Start: 8, End: 11, Kind: document.KindHeading, Level: 1}, // Two
		{Start: 12, End: 16, Kind: document.KindParagraph},
	}

	meta := Extract(text, 12, 16, spans)
	want := []string{"Two"}
	if !reflect.DeepEqual(meta.SectionPath, want) {
		t.Errorf("expected path %v, got %v", want, meta.SectionPath)
	}
	if meta.HeadingLevel != 1 {
		t.Errorf("expected heading level 1, got %d", meta.HeadingLevel)
	}
}

func TestExtract_StraddlingChunkUsesStartRegion(t *testing.T) {
	text := "First\naaa bbb\nSecond\nccc ddd"
	spans := []document.LayoutSpan{
		{Start: 0, End: 5, Kind: document.KindHeading, Level: 1},   // First
		{Start: 6, End: 13, Kind: document.KindParagraph},
		{Start: 14, End: 20, Kind: document.KindHeading, Level: 1}, // Second
		{Start: 21, End: len(text), Kind: document.KindParagraph},
	}

	// Chunk starts inside the First section but runs into Second.
	meta := Extract(text, 6, len(text), spans)
	want := []string{"First"}
	if !reflect.DeepEqual(meta.SectionPath, want) {
		t.Errorf("expected path %v, got %v", want, meta.SectionPath)
	}
}

func TestExtract_PageAttribution(t *testing.T) {
	text := "page one text page two text"
	spans := []document.LayoutSpan{
		{Start: 0, End: 13, Kind: document.KindParagraph, Page: 1},
		{Start: 14, End: 27, Kind: document.KindParagraph, Page: 2},
	}

	if meta := Extract(text, 0, 13, spans); meta.Page != 1 {
		t.Errorf("expected page 1, got %d", meta.Page)
	}
	if meta := Extract(text, 14, 27, spans); meta.Page != 2 {
		t.Errorf("expected page 2, got %d", meta.Page)
	}
	// Straddling chunk takes the page of its start offset.
	if meta := Extract(text, 5, 27, spans); meta.Page != 1 {
		t.Errorf("expected page 1 for straddling chunk, got %d", meta.Page)
	}
}

func TestExtract_NoHeadings(t *testing.T) {
	text := "plain paragraph"
	spans := []document.LayoutSpan{
		{Start: 0, End: len(text), Kind: document.KindParagraph},
	}
	meta := Extract(text, 0, len(text), spans)
	if meta.SectionPath != nil {
		t.Errorf("expected nil section path, got %v", meta.SectionPath)
	}
	if meta.HeadingLevel != 0 {
		t.Errorf("expected heading level 0, got %d", meta.HeadingLevel)
	}
}
