// Package chunker partitions extracted document text into ordered,
// semantically coherent chunks under one of four interchangeable
// strategies.
package chunker

import (
	"context"
	"fmt"
	"strings"

	"github.com/dgallion1/docchunk/internal/cohesion"
	"github.com/dgallion1/docchunk/internal/document"
	"github.com/dgallion1/docchunk/internal/token"
)

// Strategy names accepted by ForName.
const (
	NameTokenBased   = "token_based"
	NameHierarchical = "hierarchical"
	NameSemantic     = "semantic"
	NameAdaptive     = "adaptive"
)

// Strategy turns a document's text and layout into an ordered sequence of
// chunks. Implementations check ctx between chunk emissions so callers can
// cancel cooperatively; none of them mutate the document.
//
// All strategies honor the shared invariants: output ordered by span start,
// spans within document bounds, no zero-token chunk.
type Strategy interface {
	Name() string
	CreateChunks(ctx context.Context, doc document.Document, cfg Config) ([]document.Chunk, error)
}

// ForName resolves a strategy by name. The scorer may be nil, in which
// case the semantic strategy falls back to token-based chunking.
func ForName(name string, counter token.Counter, scorer cohesion.Scorer) (Strategy, error) {
	switch strings.ReplaceAll(strings.ToLower(name), "-", "_") {
	case NameTokenBased, "tokenbased":
		return NewTokenBased(counter), nil
	case NameHierarchical:
		return NewHierarchical(counter), nil
	case NameSemantic:
		return NewSemantic(counter, scorer), nil
	case NameAdaptive:
		return NewAdaptive(counter, scorer), nil
	default:
		return nil, fmt.Errorf("%w: unknown chunking strategy %q", document.ErrConfiguration, name)
	}
}

// buildChunk assembles a chunk for doc.Text[start:end).
func buildChunk(counter token.Counter, doc document.Document, index, start, end int, strategy string, meta document.ChunkMetadata) (document.Chunk, error) {
	text := doc.Text[start:end]
	tokens, err := counter.Count(text)
	if err != nil {
		return document.Chunk{}, err
	}
	meta.Strategy = strategy
	return document.Chunk{
		ID:         document.ChunkID(doc.ID, index),
		DocumentID: doc.ID,
		Index:      index,
		Text:       text,
		TokenCount: tokens,
		Start:      start,
		End:        end,
		Metadata:   meta,
	}, nil
}
