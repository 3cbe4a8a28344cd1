// Package cohesion measures semantic relatedness between adjacent text
// units. The semantic chunking strategy treats the scorer as a pluggable
// capability; the default implementation here is a lexical-overlap
// heuristic, so no embedding model is required.
package cohesion

import (
	"math"
	"regexp"
	"strings"
)

// Scorer scores the relatedness of two adjacent text units in [0, 1].
type Scorer interface {
	Score(a, b string) float64
}

// Lexical scores cohesion as the cosine similarity of stopword-filtered
// term-frequency vectors.
type Lexical struct {
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

// NewLexical creates the default lexical scorer.
func NewLexical() *Lexical {
	return &Lexical{
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`),
		stopwords:    defaultStopwords(),
	}
}

// Score returns the cosine similarity of the two units' term-frequency
// vectors. Units with no content terms score zero.
func (l *Lexical) Score(a, b string) float64 {
	ta := l.termFreq(a)
	tb := l.termFreq(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	var dot, na, nb float64
	for term, fa := range ta {
		na += fa * fa
		if fb, ok := tb[term]; ok {
			dot += fa * fb
		}
	}
	for _, fb := range tb {
		nb += fb * fb
	}
	if dot == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func (l *Lexical) termFreq(text string) map[string]float64 {
	tokens := l.tokenPattern.FindAllString(strings.ToLower(text), -1)
	freq := make(map[string]float64, len(tokens))
	for _, tok := range tokens {
		if _, isStop := l.stopwords[tok]; isStop {
			continue
		}
		freq[tok]++
	}
	return freq
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "out", "off", "own", "same", "too", "very", "can", "will", "just", "not", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
