package chunker

import (
	"context"

	"github.com/dgallion1/docchunk/internal/cohesion"
	"github.com/dgallion1/docchunk/internal/document"
	"github.com/dgallion1/docchunk/internal/token"
)

// Adaptive selects among the other three strategies based on document
// characteristics. It is a pure selector, not a fifth algorithm: given
// identical input and configuration it always picks the same delegate.
type Adaptive struct {
	counter token.Counter
	scorer  cohesion.Scorer
}

func NewAdaptive(counter token.Counter, scorer cohesion.Scorer) *Adaptive {
	return &Adaptive{counter: counter, scorer: scorer}
}

func (s *Adaptive) Name() string { return NameAdaptive }

// Select applies the fixed decision policy: no layout spans means
// token-based; at least one heading per HeadingsPerParagraphs paragraphs
// means hierarchical; anything else means semantic.
func Select(doc document.Document, cfg Config) string {
	cfg = cfg.withDefaults(DefaultTokenBasedMax)
	if len(doc.Layout) == 0 {
		return NameTokenBased
	}
	headings, paragraphs := 0, 0
	for _, sp := range doc.Layout {
		switch sp.Kind {
		case document.KindHeading:
			headings++
		default:
			paragraphs++
		}
	}
	if headings > 0 && paragraphs <= headings*cfg.HeadingsPerParagraphs {
		return NameHierarchical
	}
	return NameSemantic
}

func (s *Adaptive) CreateChunks(ctx context.Context, doc document.Document, cfg Config) ([]document.Chunk, error) {
	var delegate Strategy
	switch Select(doc, cfg) {
	case NameTokenBased:
		delegate = NewTokenBased(s.counter)
	case NameHierarchical:
		delegate = NewHierarchical(s.counter)
	default:
		delegate = NewSemantic(s.counter, s.scorer)
	}
	return delegate.CreateChunks(ctx, doc, cfg)
}
