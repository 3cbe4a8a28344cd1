package chunker

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/dgallion1/docchunk/internal/document"
)

func TestHierarchical_SectionFitsBudget(t *testing.T) {
	s := NewHierarchical(wordsCounter(t))
	text := "Title\n\nPara one. Para two."
	doc := document.New("doc-1", document.FormatMarkdown, text, []document.LayoutSpan{
		{Start: 0, End: 5, Kind: document.KindHeading, Level: 1},
		{Start: 7, End: len(text), Kind: document.KindParagraph},
	})

	chunks, err := s.CreateChunks(context.Background(), doc, Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	c := chunks[0]
	if !reflect.DeepEqual(c.Metadata.SectionPath, []string{"Title"}) {
		t.Errorf("expected section path [Title], got %v", c.Metadata.SectionPath)
	}
	if c.Metadata.HeadingLevel != 1 {
		t.Errorf("expected heading level 1, got %d", c.Metadata.HeadingLevel)
	}
	if c.Start != 0 || c.End != len(text) {
		t.Errorf("expected chunk to cover the section, got [%d,%d)", c.Start, c.End)
	}
	if c.Metadata.Strategy != NameHierarchical {
		t.Errorf("expected strategy %q, got %q", NameHierarchical, c.Metadata.Strategy)
	}
}

func TestHierarchical_NeverCrossesHeadings(t *testing.T) {
	s := NewHierarchical(wordsCounter(t))
	text := "H1\n\naaa bbb ccc\n\nddd eee fff\n\nH2\n\nggg hhh iii\n\njjj kkk lll"
	layout := []document.LayoutSpan{
		{Start: 0, End: 2, Kind: document.KindHeading, Level: 1},
		{Start: 4, End: 15, Kind: document.KindParagraph},
		{Start: 17, End: 28, Kind: document.KindParagraph},
		{Start: 30, End: 32, Kind: document.KindHeading, Level: 1},
		{Start: 34, End: 45, Kind: document.KindParagraph},
		{Start: 47, End: 58, Kind: document.KindParagraph},
	}
	doc := document.New("doc-2", document.FormatMarkdown, text, layout)

	chunks, err := s.CreateChunks(context.Background(), doc, Config{MaxChunkTokens: 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 4 {
		t.Fatalf("expected 4 chunks, got %d", len(chunks))
	}

	// First two chunks belong to H1, last two to H2; no chunk straddles
	// the heading boundary at offset 30.
	for i, c := range chunks {
		wantPath := []string{"H1"}
		if i >= 2 {
			wantPath = []string{"H2"}
		}
		if !reflect.DeepEqual(c.Metadata.SectionPath, wantPath) {
			t.Errorf("chunk %d: expected path %v, got %v", i, wantPath, c.Metadata.SectionPath)
		}
		if c.Start < 30 && c.End > 30 {
			t.Errorf("chunk %d crosses the heading boundary: [%d,%d)", i, c.Start, c.End)
		}
		if c.TokenCount > 4 {
			t.Errorf("chunk %d exceeds budget: %d", i, c.TokenCount)
		}
	}
}

func TestHierarchical_NestedSectionPath(t *testing.T) {
	s := NewHierarchical(wordsCounter(t))
	text := "Top\n\nMid\n\nbody words here"
	layout := []document.LayoutSpan{
		{Start: 0, End: 3, Kind: document.KindHeading, Level: 1},
		{Start: 5, End: 8, Kind: document.KindHeading, Level: 2},
		{Start: 10, End: len(text), Kind: document.KindParagraph},
	}
	doc := document.New("doc-3", document.FormatMarkdown, text, layout)

	chunks, err := s.CreateChunks(context.Background(), doc, Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if !reflect.DeepEqual(chunks[0].Metadata.SectionPath, []string{"Top"}) {
		t.Errorf("expected path [Top], got %v", chunks[0].Metadata.SectionPath)
	}
	if !reflect.DeepEqual(chunks[1].Metadata.SectionPath, []string{"Top", "Mid"}) {
		t.Errorf("expected path [Top Mid], got %v", chunks[1].Metadata.SectionPath)
	}
	if chunks[1].Metadata.HeadingLevel != 2 {
		t.Errorf("expected heading level 2, got %d", chunks[1].Metadata.HeadingLevel)
	}
}

func TestHierarchical_PreambleBeforeFirstHeading(t *testing.T) {
	s := NewHierarchical(wordsCounter(t))
	text := "intro words\n\nHead\n\nbody"
	layout := []document.LayoutSpan{
		{Start: 0, End: 11, Kind: document.KindParagraph},
		{Start: 13, End: 17, Kind: document.KindHeading, Level: 1},
		{Start: 19, End: 23, Kind: document.KindParagraph},
	}
	doc := document.New("doc-4", document.FormatMarkdown, text, layout)

	chunks, err := s.CreateChunks(context.Background(), doc, Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Metadata.SectionPath != nil {
		t.Errorf("expected empty path for preamble, got %v", chunks[0].Metadata.SectionPath)
	}
	if !reflect.DeepEqual(chunks[1].Metadata.SectionPath, []string{"Head"}) {
		t.Errorf("expected path [Head], got %v", chunks[1].Metadata.SectionPath)
	}
}

func TestHierarchical_OversizeParagraphFallsBack(t *testing.T) {
	s := NewHierarchical(wordsCounter(t))
	body := genWords(30)
	text := "Big\n\n" + body
	layout := []document.LayoutSpan{
		{Start: 0, End: 3, Kind: document.KindHeading, Level: 1},
		{Start: 5, End: len(text), Kind: document.KindParagraph},
	}
	doc := document.New("doc-5", document.FormatMarkdown, text, layout)

	chunks, err := s.CreateChunks(context.Background(), doc, Config{MaxChunkTokens: 8})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) < 4 {
		t.Fatalf("expected the oversize paragraph to split, got %d chunks", len(chunks))
	}
	for i, c := range chunks {
		if c.TokenCount > 8 {
			t.Errorf("chunk %d exceeds budget: %d", i, c.TokenCount)
		}
		if !reflect.DeepEqual(c.Metadata.SectionPath, []string{"Big"}) {
			t.Errorf("chunk %d: expected path [Big], got %v", i, c.Metadata.SectionPath)
		}
	}
}

func TestHierarchical_NoLayoutSingleSection(t *testing.T) {
	s := NewHierarchical(wordsCounter(t))
	doc := document.New("doc-6", document.FormatTXT, "para one\n\npara two\n\npara three", nil)

	chunks, err := s.CreateChunks(context.Background(), doc, Config{MaxChunkTokens: 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if c.Metadata.SectionPath != nil {
			t.Errorf("chunk %d: expected nil path without headings, got %v", i, c.Metadata.SectionPath)
		}
	}
	if !strings.Contains(chunks[0].Text, "para one") || !strings.Contains(chunks[0].Text, "para two") {
		t.Errorf("expected first two paragraphs grouped, got %q", chunks[0].Text)
	}
}

func TestHierarchical_Cancellation(t *testing.T) {
	s := NewHierarchical(wordsCounter(t))
	doc := document.New("cancel", document.FormatTXT, genWords(100), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.CreateChunks(ctx, doc, Config{MaxChunkTokens: 10}); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}
