package chunker

import (
	"context"

	"github.com/dgallion1/docchunk/internal/document"
	"github.com/dgallion1/docchunk/internal/token"
)

// TokenBased greedily accumulates text until the token budget is reached,
// preferring sentence boundaries and stepping back by the configured
// overlap before starting the next chunk.
type TokenBased struct {
	counter token.Counter
}

func NewTokenBased(counter token.Counter) *TokenBased {
	return &TokenBased{counter: counter}
}

func (s *TokenBased) Name() string { return NameTokenBased }

func (s *TokenBased) CreateChunks(ctx context.Context, doc document.Document, cfg Config) ([]document.Chunk, error) {
	cfg = cfg.withDefaults(DefaultTokenBasedMax)
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	words := scanWords(doc.Text, 0, len(doc.Text))
	if len(words) == 0 {
		return nil, nil
	}

	spans, err := tokenWindows(ctx, doc.Text, words, s.counter, cfg)
	if err != nil {
		return nil, err
	}

	chunks := make([]document.Chunk, 0, len(spans))
	for _, sp := range spans {
		chunk, err := buildChunk(s.counter, doc, len(chunks), sp.start, sp.end, s.Name(), document.ChunkMetadata{})
		if err != nil {
			return nil, err
		}
		if chunk.TokenCount == 0 {
			continue
		}
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}
