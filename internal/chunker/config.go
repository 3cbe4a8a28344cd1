package chunker

import (
	"fmt"

	"github.com/dgallion1/docchunk/internal/document"
)

// Strategy-specific default token budgets.
const (
	DefaultTokenBasedMax   = 512
	DefaultHierarchicalMax = 1024
	DefaultSemanticMax     = 512

	// DefaultCohesionThreshold is the minimum cohesion score for the
	// semantic strategy to keep extending a chunk.
	DefaultCohesionThreshold = 0.25

	// DefaultHeadingsPerParagraphs is N in the adaptive policy: a
	// document is well-structured when it has at least one heading per
	// N paragraphs.
	DefaultHeadingsPerParagraphs = 5

	// sentenceLookback bounds how many words back a strategy searches
	// for a sentence boundary before falling back to a hard cut.
	sentenceLookback = 8
)

// Config controls chunking behavior. The zero value selects
// strategy-specific defaults.
type Config struct {
	MaxChunkTokens        int     `json:"max_chunk_tokens"`
	OverlapTokens         int     `json:"overlap_tokens"`
	MinChunkTokens        int     `json:"min_chunk_tokens"`
	CohesionThreshold     float64 `json:"cohesion_threshold"`
	HeadingsPerParagraphs int     `json:"headings_per_paragraphs"`
}

// withDefaults fills unset options, using the given strategy-specific
// token budget.
func (c Config) withDefaults(maxTokens int) Config {
	if c.MaxChunkTokens <= 0 {
		c.MaxChunkTokens = maxTokens
	}
	if c.CohesionThreshold <= 0 {
		c.CohesionThreshold = DefaultCohesionThreshold
	}
	if c.HeadingsPerParagraphs <= 0 {
		c.HeadingsPerParagraphs = DefaultHeadingsPerParagraphs
	}
	return c
}

// validate rejects option combinations that cannot make progress. It runs
// after defaults are applied, before any chunking starts.
func (c Config) validate() error {
	if c.OverlapTokens < 0 {
		return fmt.Errorf("%w: overlap_tokens must be >= 0, got %d", document.ErrConfiguration, c.OverlapTokens)
	}
	if c.OverlapTokens >= c.MaxChunkTokens {
		return fmt.Errorf("%w: overlap_tokens (%d) must be < max_chunk_tokens (%d)", document.ErrConfiguration, c.OverlapTokens, c.MaxChunkTokens)
	}
	if c.MinChunkTokens < 0 {
		return fmt.Errorf("%w: min_chunk_tokens must be >= 0, got %d", document.ErrConfiguration, c.MinChunkTokens)
	}
	return nil
}
