// Package token counts tokens in text spans under a configurable scheme.
// Counters are stateless and deterministic; one scheme is used for all
// budgets within a single processing run.
package token

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/docchunk/internal/document"
)

// Scheme identifies a tokenization scheme.
type Scheme string

const (
	// SchemeWords counts one token per whitespace-delimited word.
	SchemeWords Scheme = "words"
	// SchemeHeuristic estimates ~1.33 tokens per English word, matching
	// common BPE tokenizers closely enough for chunk budgeting.
	SchemeHeuristic Scheme = "heuristic"
)

// DefaultScheme is used when no scheme is configured.
const DefaultScheme = SchemeWords

// Counter converts text spans to token counts.
type Counter struct {
	scheme Scheme
}

// NewCounter returns a counter for the given scheme.
func NewCounter(scheme Scheme) (Counter, error) {
	switch scheme {
	case SchemeWords, SchemeHeuristic:
		return Counter{scheme: scheme}, nil
	case "":
		return Counter{scheme: DefaultScheme}, nil
	default:
		return Counter{}, fmt.Errorf("%w: unknown tokenizer scheme %q", document.ErrConfiguration, scheme)
	}
}

// Scheme returns the scheme this counter was built with.
func (c Counter) Scheme() Scheme {
	if c.scheme == "" {
		return DefaultScheme
	}
	return c.scheme
}

// Count returns the number of tokens in text. Empty text counts as zero;
// text that is not valid UTF-8 fails.
func (c Counter) Count(text string) (int, error) {
	if text == "" {
		return 0, nil
	}
	if !utf8.ValidString(text) {
		return 0, fmt.Errorf("%w: text is not valid UTF-8", document.ErrInvalidInput)
	}
	words := len(strings.Fields(text))
	switch c.Scheme() {
	case SchemeHeuristic:
		tokens := int(float64(words) * 1.33)
		if tokens < 1 {
			tokens = 1
		}
		return tokens, nil
	default:
		return words, nil
	}
}
