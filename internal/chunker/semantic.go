package chunker

import (
	"context"

	"github.com/dgallion1/docchunk/internal/cohesion"
	"github.com/dgallion1/docchunk/internal/document"
	"github.com/dgallion1/docchunk/internal/token"
)

// Semantic groups consecutive paragraphs while a cohesion score stays
// above the configured threshold, starting a new chunk when cohesion
// drops or the token budget is reached, whichever comes first. Without a
// scorer it falls back to token-based chunking.
type Semantic struct {
	counter token.Counter
	scorer  cohesion.Scorer
}

func NewSemantic(counter token.Counter, scorer cohesion.Scorer) *Semantic {
	return &Semantic{counter: counter, scorer: scorer}
}

func (s *Semantic) Name() string { return NameSemantic }

func (s *Semantic) CreateChunks(ctx context.Context, doc document.Document, cfg Config) ([]document.Chunk, error) {
	cfg = cfg.withDefaults(DefaultSemanticMax)
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if s.scorer == nil {
		return NewTokenBased(s.counter).CreateChunks(ctx, doc, cfg)
	}

	units := semanticUnits(doc)
	if len(units) == 0 {
		return nil, nil
	}

	var chunks []document.Chunk
	var groupStart, groupEnd int
	prevUnit := span{}

	flush := func() error {
		if groupStart >= groupEnd {
			return nil
		}
		err := s.emit(ctx, doc, groupStart, groupEnd, &chunks)
		groupStart, groupEnd = 0, 0
		return err
	}

	for _, u := range units {
		us, ue := trimRange(doc.Text, u.start, u.end)
		if us >= ue {
			continue
		}
		unitTokens, err := s.counter.Count(doc.Text[us:ue])
		if err != nil {
			return nil, err
		}

		// Oversize single unit: flush and split it token-based.
		if unitTokens > cfg.MaxChunkTokens {
			if err := flush(); err != nil {
				return nil, err
			}
			spans, err := tokenWindows(ctx, doc.Text, scanWords(doc.Text, us, ue), s.counter, cfg)
			if err != nil {
				return nil, err
			}
			for _, sp := range spans {
				if err := s.emit(ctx, doc, sp.start, sp.end, &chunks); err != nil {
					return nil, err
				}
			}
			prevUnit = span{start: us, end: ue}
			continue
		}

		if groupStart >= groupEnd {
			groupStart, groupEnd = us, ue
			prevUnit = span{start: us, end: ue}
			continue
		}

		combined, err := s.counter.Count(doc.Text[groupStart:ue])
		if err != nil {
			return nil, err
		}
		score := s.scorer.Score(doc.Text[prevUnit.start:prevUnit.end], doc.Text[us:ue])
		if combined > cfg.MaxChunkTokens || score < cfg.CohesionThreshold {
			if err := flush(); err != nil {
				return nil, err
			}
			groupStart, groupEnd = us, ue
		} else {
			groupEnd = ue
		}
		prevUnit = span{start: us, end: ue}
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return s.applyMin(doc, chunks, cfg)
}

// semanticUnits returns the text units grouped by cohesion: the document's
// layout spans when present, blank-line paragraphs otherwise.
func semanticUnits(doc document.Document) []span {
	if len(doc.Layout) == 0 {
		return paragraphRanges(doc.Text, 0, len(doc.Text))
	}
	units := make([]span, 0, len(doc.Layout))
	for _, sp := range doc.Layout {
		units = append(units, span{start: sp.Start, end: sp.End})
	}
	return units
}

func (s *Semantic) emit(ctx context.Context, doc document.Document, start, end int, chunks *[]document.Chunk) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	chunk, err := buildChunk(s.counter, doc, len(*chunks), start, end, s.Name(), document.ChunkMetadata{})
	if err != nil {
		return err
	}
	if chunk.TokenCount == 0 {
		return nil
	}
	*chunks = append(*chunks, chunk)
	return nil
}

// applyMin merges an undersized trailing chunk into its predecessor when
// the result still fits the budget, and drops it otherwise.
func (s *Semantic) applyMin(doc document.Document, chunks []document.Chunk, cfg Config) ([]document.Chunk, error) {
	if cfg.MinChunkTokens <= 0 || len(chunks) < 2 {
		return chunks, nil
	}
	last := chunks[len(chunks)-1]
	if last.TokenCount >= cfg.MinChunkTokens {
		return chunks, nil
	}
	prev := chunks[len(chunks)-2]
	combined, err := s.counter.Count(doc.Text[prev.Start:last.End])
	if err != nil {
		return nil, err
	}
	if combined <= cfg.MaxChunkTokens {
		merged, err := buildChunk(s.counter, doc, prev.Index, prev.Start, last.End, s.Name(), prev.Metadata)
		if err != nil {
			return nil, err
		}
		chunks[len(chunks)-2] = merged
	}
	return chunks[:len(chunks)-1], nil
}
