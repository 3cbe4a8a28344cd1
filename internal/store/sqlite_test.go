package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgallion1/docchunk/internal/document"
)

func openTestStore(t *testing.T) *ResultStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleResult(taskID, docID string) document.Result {
	return document.Result{
		TaskID:      taskID,
		DocumentID:  docID,
		Status:      document.StatusCompleted,
		ChunkCount:  2,
		TotalTokens: 9,
		Strategy:    "token_based",
		Duration:    125 * time.Millisecond,
		CreatedAt:   time.Now().UTC().Truncate(time.Millisecond),
		CompletedAt: time.Now().UTC().Truncate(time.Millisecond),
		Chunks: []document.Chunk{
			{
				ID: docID + ":0", DocumentID: docID, Index: 0,
				Text: "first chunk text", TokenCount: 3, Start: 0, End: 16,
				Metadata: document.ChunkMetadata{SectionPath: []string{"Intro"}, HeadingLevel: 1, Strategy: "token_based"},
			},
			{
				ID: docID + ":1", DocumentID: docID, Index: 1,
				Text: "second chunk with more words", TokenCount: 6, Start: 17, End: 45,
				Metadata: document.ChunkMetadata{Strategy: "token_based"},
			},
		},
	}
}

func TestResultStore_SaveAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	want := sampleResult("task-1", "doc-1")

	if err := s.SaveResult(ctx, want); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := s.GetResult(ctx, "task-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.TaskID != want.TaskID || got.DocumentID != want.DocumentID {
		t.Errorf("expected ids %q/%q, got %q/%q", want.TaskID, want.DocumentID, got.TaskID, got.DocumentID)
	}
	if got.Status != document.StatusCompleted {
		t.Errorf("expected completed, got %q", got.Status)
	}
	if got.TotalTokens != want.TotalTokens || got.ChunkCount != want.ChunkCount {
		t.Errorf("expected counts %d/%d, got %d/%d", want.ChunkCount, want.TotalTokens, got.ChunkCount, got.TotalTokens)
	}
	if got.Duration != want.Duration {
		t.Errorf("expected duration %v, got %v", want.Duration, got.Duration)
	}
	if len(got.Chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(got.Chunks))
	}
	if got.Chunks[0].Text != want.Chunks[0].Text {
		t.Errorf("expected chunk text %q, got %q", want.Chunks[0].Text, got.Chunks[0].Text)
	}
	if got.Chunks[0].Metadata.SectionPath[0] != "Intro" {
		t.Errorf("expected metadata round-tripped, got %v", got.Chunks[0].Metadata)
	}
	if got.Chunks[1].Index != 1 {
		t.Errorf("expected chunks ordered by index, got %d", got.Chunks[1].Index)
	}
}

func TestResultStore_SaveIsUpsert(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	res := sampleResult("task-u", "doc-u")

	if err := s.SaveResult(ctx, res); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res.Chunks = res.Chunks[:1]
	res.ChunkCount = 1
	res.TotalTokens = 3
	if err := s.SaveResult(ctx, res); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := s.GetResult(ctx, "task-u")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ChunkCount != 1 || len(got.Chunks) != 1 {
		t.Errorf("expected upsert to replace chunks, got %d/%d", got.ChunkCount, len(got.Chunks))
	}
}

func TestResultStore_GetMissing(t *testing.T) {
	s := openTestStore(t)
	_, err := s.GetResult(context.Background(), "nope")
	if err == nil {
		t.Fatal("expected error for missing result")
	}
	if !errors.Is(err, document.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestResultStore_ListByDocument(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	a := sampleResult("task-a", "doc-l")
	a.CreatedAt = time.Now().Add(-time.Hour)
	b := sampleResult("task-b", "doc-l")
	other := sampleResult("task-x", "doc-other")
	for _, r := range []document.Result{a, b, other} {
		if err := s.SaveResult(ctx, r); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	results, err := s.ListResults(ctx, "doc-l", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].TaskID != "task-b" {
		t.Errorf("expected newest first, got %q", results[0].TaskID)
	}
	if len(results[0].Chunks) != 0 {
		t.Errorf("expected listing without chunk bodies, got %d chunks", len(results[0].Chunks))
	}
}

func TestResultStore_Delete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.SaveResult(ctx, sampleResult("task-d", "doc-d")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.DeleteResult(ctx, "task-d"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.GetResult(ctx, "task-d"); !errors.Is(err, document.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	if err := s.DeleteResult(ctx, "task-d"); !errors.Is(err, document.ErrNotFound) {
		t.Errorf("expected ErrNotFound for double delete, got %v", err)
	}
}
