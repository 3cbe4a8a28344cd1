package chunker

import (
	"context"
	"strings"
	"testing"

	"github.com/dgallion1/docchunk/internal/cohesion"
	"github.com/dgallion1/docchunk/internal/document"
)

// scoreTable is a canned scorer keyed by unit text prefixes.
type scoreTable struct {
	score float64
}

func (s scoreTable) Score(a, b string) float64 { return s.score }

func TestSemantic_CohesiveParagraphsGrouped(t *testing.T) {
	s := NewSemantic(wordsCounter(t), scoreTable{score: 0.9})
	text := "first paragraph words\n\nsecond paragraph words\n\nthird paragraph words"
	doc := document.New("doc-1", document.FormatTXT, text, nil)

	chunks, err := s.CreateChunks(context.Background(), doc, Config{MaxChunkTokens: 100})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected cohesive paragraphs in 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Start != 0 || chunks[0].End != len(text) {
		t.Errorf("expected chunk to cover all paragraphs, got [%d,%d)", chunks[0].Start, chunks[0].End)
	}
	if chunks[0].Metadata.Strategy != NameSemantic {
		t.Errorf("expected strategy %q, got %q", NameSemantic, chunks[0].Metadata.Strategy)
	}
}

func TestSemantic_TopicShiftSplits(t *testing.T) {
	s := NewSemantic(wordsCounter(t), scoreTable{score: 0.0})
	text := "first topic paragraph\n\nsecond topic paragraph\n\nthird topic paragraph"
	doc := document.New("doc-2", document.FormatTXT, text, nil)

	chunks, err := s.CreateChunks(context.Background(), doc, Config{MaxChunkTokens: 100})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("expected every topic shift to split, got %d chunks", len(chunks))
	}
}

func TestSemantic_LexicalScorerSplitsOnVocabularyChange(t *testing.T) {
	s := NewSemantic(wordsCounter(t), cohesion.NewLexical())
	text := "Databases store rows. Databases index rows for fast lookup.\n\n" +
		"Databases replicate rows across nodes. Databases shard rows by key.\n\n" +
		"Gardening requires patience. Roses bloom beautifully each spring season."
	doc := document.New("doc-3", document.FormatTXT, text, nil)

	chunks, err := s.CreateChunks(context.Background(), doc, Config{MaxChunkTokens: 100})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks across the topic shift, got %d", len(chunks))
	}
	if !strings.Contains(chunks[0].Text, "Databases shard rows") {
		t.Errorf("expected database paragraphs grouped, got %q", chunks[0].Text)
	}
	if !strings.Contains(chunks[1].Text, "Gardening") {
		t.Errorf("expected gardening paragraph separate, got %q", chunks[1].Text)
	}
}

func TestSemantic_BudgetSplitsDespiteCohesion(t *testing.T) {
	s := NewSemantic(wordsCounter(t), scoreTable{score: 1.0})
	text := genWords(6) + "\n\n" + genWords(6) + "\n\n" + genWords(6)
	doc := document.New("doc-4", document.FormatTXT, text, nil)

	chunks, err := s.CreateChunks(context.Background(), doc, Config{MaxChunkTokens: 12})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected token budget to force a split, got %d chunks", len(chunks))
	}
	for i, c := range chunks {
		if c.TokenCount > 12 {
			t.Errorf("chunk %d exceeds budget: %d", i, c.TokenCount)
		}
	}
}

func TestSemantic_OversizeParagraphFallsBack(t *testing.T) {
	s := NewSemantic(wordsCounter(t), scoreTable{score: 1.0})
	doc := document.New("doc-5", document.FormatTXT, genWords(30), nil)

	chunks, err := s.CreateChunks(context.Background(), doc, Config{MaxChunkTokens: 8})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 4 {
		t.Fatalf("expected 4 chunks from token fallback, got %d", len(chunks))
	}
	for i, c := range chunks {
		if c.TokenCount > 8 {
			t.Errorf("chunk %d exceeds budget: %d", i, c.TokenCount)
		}
	}
}

func TestSemantic_MinTrailingChunkMerged(t *testing.T) {
	s := NewSemantic(wordsCounter(t), scoreTable{score: 0.0})
	text := "alpha beta gamma delta\n\ntail words"
	doc := document.New("doc-6", document.FormatTXT, text, nil)

	chunks, err := s.CreateChunks(context.Background(), doc, Config{MaxChunkTokens: 20, MinChunkTokens: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The 2-word tail is below the minimum; merging stays within the
	// budget so it folds into the predecessor.
	if len(chunks) != 1 {
		t.Fatalf("expected tail merged into 1 chunk, got %d", len(chunks))
	}
	if chunks[0].TokenCount != 6 {
		t.Errorf("expected 6 tokens after merge, got %d", chunks[0].TokenCount)
	}
	if chunks[0].End != len(text) {
		t.Errorf("expected merged chunk to reach document end, got %d", chunks[0].End)
	}
}

func TestSemantic_MinTrailingChunkDropped(t *testing.T) {
	s := NewSemantic(wordsCounter(t), scoreTable{score: 0.0})
	text := genWords(4) + "\n\ntail words"
	doc := document.New("doc-7", document.FormatTXT, text, nil)

	chunks, err := s.CreateChunks(context.Background(), doc, Config{MaxChunkTokens: 4, MinChunkTokens: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Merging would exceed the budget, so the tail is dropped.
	if len(chunks) != 1 {
		t.Fatalf("expected tail dropped, got %d chunks", len(chunks))
	}
	if chunks[0].TokenCount != 4 {
		t.Errorf("expected 4 tokens, got %d", chunks[0].TokenCount)
	}
}

func TestSemantic_NilScorerFallsBackToTokenBased(t *testing.T) {
	s := NewSemantic(wordsCounter(t), nil)
	doc := document.New("doc-8", document.FormatTXT, genWords(20), nil)

	chunks, err := s.CreateChunks(context.Background(), doc, Config{MaxChunkTokens: 8})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}
	for i, c := range chunks {
		if c.Metadata.Strategy != NameTokenBased {
			t.Errorf("chunk %d: expected token_based fallback, got %q", i, c.Metadata.Strategy)
		}
	}
}

func TestSemantic_LayoutSpansAsUnits(t *testing.T) {
	s := NewSemantic(wordsCounter(t), scoreTable{score: 0.0})
	text := "unit one words\nunit two words"
	layout := []document.LayoutSpan{
		{Start: 0, End: 14, Kind: document.KindParagraph},
		{Start: 15, End: 29, Kind: document.KindParagraph},
	}
	doc := document.New("doc-9", document.FormatTXT, text, layout)

	chunks, err := s.CreateChunks(context.Background(), doc, Config{MaxChunkTokens: 100})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// No blank lines, but the layout declares two units and the scorer
	// always splits.
	if len(chunks) != 2 {
		t.Fatalf("expected layout-driven units, got %d chunks", len(chunks))
	}
}

func TestSemantic_Cancellation(t *testing.T) {
	s := NewSemantic(wordsCounter(t), scoreTable{score: 0.0})
	doc := document.New("cancel", document.FormatTXT, "one\n\ntwo\n\nthree", nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.CreateChunks(ctx, doc, Config{MaxChunkTokens: 10}); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}
