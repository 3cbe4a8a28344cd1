package chunker

import (
	"context"
	"strings"
	"unicode"

	"github.com/dgallion1/docchunk/internal/token"
)

// span is a half-open byte range into the source text.
type span struct {
	start, end int
}

// wordSpan locates one whitespace-delimited word in the source text.
type wordSpan struct {
	start, end int
}

// scanWords returns the byte offsets of every whitespace-delimited word in
// text[from:to).
func scanWords(text string, from, to int) []wordSpan {
	var words []wordSpan
	inWord := false
	start := 0
	for i := from; i < to; i++ {
		// Multi-byte runes never contain ASCII whitespace bytes, so a
		// byte-wise scan is offset-exact for UTF-8 input.
		isSpace := text[i] == ' ' || text[i] == '\t' || text[i] == '\n' || text[i] == '\r' || text[i] == '\f' || text[i] == '\v'
		if isSpace {
			if inWord {
				words = append(words, wordSpan{start: start, end: i})
				inWord = false
			}
		} else if !inWord {
			start = i
			inWord = true
		}
	}
	if inWord {
		words = append(words, wordSpan{start: start, end: to})
	}
	return words
}

// endsSentence reports whether a word terminates a sentence.
func endsSentence(word string) bool {
	trimmed := strings.TrimRightFunc(word, func(r rune) bool {
		return r == '"' || r == '\'' || r == ')' || r == ']' || r == '”' || r == '’'
	})
	if trimmed == "" {
		return false
	}
	last := rune(trimmed[len(trimmed)-1])
	if last >= unicode.MaxASCII {
		// Only ASCII terminators are recognized here.
		return false
	}
	return last == '.' || last == '!' || last == '?'
}

// tokenWindows greedily partitions words into spans of at most
// cfg.MaxChunkTokens tokens. A cut prefers the nearest preceding sentence
// boundary within a small lookback window, otherwise it falls back to a
// hard cut at the word boundary. Consecutive spans share up to
// cfg.OverlapTokens tokens. A single word exceeding the budget is emitted
// alone. Checks ctx between emissions.
func tokenWindows(ctx context.Context, text string, words []wordSpan, counter token.Counter, cfg Config) ([]span, error) {
	var spans []span
	start := 0
	for start < len(words) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// Expand the window while the budget holds. The first word is
		// always taken: an atomic unit larger than the budget is
		// emitted on its own.
		end := start + 1
		for end < len(words) {
			n, err := counter.Count(text[words[start].start:words[end].end])
			if err != nil {
				return nil, err
			}
			if n > cfg.MaxChunkTokens {
				break
			}
			end++
		}

		cut := end
		if end < len(words) && end-start > 1 {
			cut = sentenceCut(text, words, start, end)
		}

		spans = append(spans, span{start: words[start].start, end: words[cut-1].end})

		if cut >= len(words) {
			break
		}

		next := cut
		if cfg.OverlapTokens > 0 {
			for next > start+1 {
				n, err := counter.Count(text[words[next-1].start:words[cut-1].end])
				if err != nil {
					return nil, err
				}
				if n > cfg.OverlapTokens {
					break
				}
				next--
			}
		}
		start = next
	}

	return mergeTrailing(text, spans, counter, cfg)
}

// sentenceCut searches backwards from the hard cut for a word ending a
// sentence, within the lookback window. Returns the word index to cut
// before; the hard cut when no boundary is found.
func sentenceCut(text string, words []wordSpan, start, end int) int {
	low := end - sentenceLookback
	if low <= start {
		low = start + 1
	}
	for c := end; c > low; c-- {
		if endsSentence(text[words[c-1].start:words[c-1].end]) {
			return c
		}
	}
	return end
}

// mergeTrailing applies MinChunkTokens to the final span: merged into its
// predecessor when the combined span still fits the budget, dropped
// otherwise.
func mergeTrailing(text string, spans []span, counter token.Counter, cfg Config) ([]span, error) {
	if cfg.MinChunkTokens <= 0 || len(spans) < 2 {
		return spans, nil
	}
	last := spans[len(spans)-1]
	n, err := counter.Count(text[last.start:last.end])
	if err != nil {
		return nil, err
	}
	if n >= cfg.MinChunkTokens {
		return spans, nil
	}
	prev := spans[len(spans)-2]
	combined, err := counter.Count(text[prev.start:last.end])
	if err != nil {
		return nil, err
	}
	if combined <= cfg.MaxChunkTokens {
		spans[len(spans)-2] = span{start: prev.start, end: last.end}
	}
	return spans[:len(spans)-1], nil
}

// trimRange shrinks [start, end) to exclude leading and trailing
// whitespace. Returns start >= end when the range is blank.
func trimRange(text string, start, end int) (int, int) {
	for start < end && isSpaceByte(text[start]) {
		start++
	}
	for end > start && isSpaceByte(text[end-1]) {
		end--
	}
	return start, end
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f' || b == '\v'
}

// paragraphRanges splits text[from:to) on blank lines, returning trimmed
// byte ranges. Used when a document carries no layout annotations.
func paragraphRanges(text string, from, to int) []span {
	var ranges []span
	start := from
	i := from
	for i < to {
		if text[i] == '\n' {
			j := i + 1
			for j < to && (text[j] == ' ' || text[j] == '\t' || text[j] == '\r') {
				j++
			}
			if j < to && text[j] == '\n' {
				s, e := trimRange(text, start, i)
				if s < e {
					ranges = append(ranges, span{start: s, end: e})
				}
				for j < to && isSpaceByte(text[j]) {
					j++
				}
				start = j
				i = j
				continue
			}
		}
		i++
	}
	s, e := trimRange(text, start, to)
	if s < e {
		ranges = append(ranges, span{start: s, end: e})
	}
	return ranges
}
