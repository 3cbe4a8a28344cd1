package extract

import (
	"bufio"
	"bytes"
	"context"
	"regexp"
	"strings"
	"unicode"

	"github.com/dgallion1/docchunk/internal/document"
)

// TextExtractor handles plain text. Paragraphs are delimited by blank
// lines; headings and list items are detected heuristically.
type TextExtractor struct{}

func (e *TextExtractor) Extract(ctx context.Context, data []byte) (string, []document.LayoutSpan, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var blocks []string
	var current strings.Builder
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if current.Len() > 0 {
				blocks = append(blocks, current.String())
				current.Reset()
			}
		} else {
			if current.Len() > 0 {
				current.WriteString("\n")
			}
			current.WriteString(line)
		}
	}
	if current.Len() > 0 {
		blocks = append(blocks, current.String())
	}
	if err := scanner.Err(); err != nil {
		return "", nil, err
	}

	var b builder
	for _, block := range blocks {
		if level := headingLevel(block); level > 0 {
			b.add(headingText(block), document.KindHeading, level, 0)
		} else if isListBlock(block) {
			b.add(block, document.KindList, 0, 0)
		} else {
			b.add(block, document.KindParagraph, 0, 0)
		}
	}
	text, spans := b.result()
	return text, spans, nil
}

var headingNumberPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)*[.)]?\s+`)

// headingLevel guesses whether a block is a heading and at what level.
// Recognizes markdown-style '#' prefixes, numbered section titles and
// short mostly-uppercase lines.
func headingLevel(block string) int {
	trimmed := strings.TrimSpace(block)
	if trimmed == "" || strings.Contains(trimmed, "\n") {
		return 0
	}
	if strings.HasPrefix(trimmed, "#") {
		level := 0
		for level < len(trimmed) && trimmed[level] == '#' {
			level++
		}
		if level <= 6 {
			return level
		}
		return 0
	}
	if len([]rune(trimmed)) <= 80 {
		if m := headingNumberPattern.FindString(trimmed); m != "" {
			num := strings.TrimRight(strings.TrimSpace(m), ".)")
			return strings.Count(num, ".") + 1
		}
		totalLetters, upperLetters := 0, 0
		for _, r := range trimmed {
			if unicode.IsLetter(r) {
				totalLetters++
				if unicode.IsUpper(r) {
					upperLetters++
				}
			}
		}
		if totalLetters > 0 && float64(upperLetters) >= 0.6*float64(totalLetters) {
			return 1
		}
	}
	return 0
}

func headingText(block string) string {
	trimmed := strings.TrimSpace(block)
	return strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
}

func isListBlock(block string) bool {
	for _, line := range strings.Split(block, "\n") {
		t := strings.TrimSpace(line)
		if t == "" {
			continue
		}
		if !strings.HasPrefix(t, "-") && !strings.HasPrefix(t, "*") && !strings.HasPrefix(t, "•") {
			return false
		}
	}
	return true
}
