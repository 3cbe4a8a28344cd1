// Package layout derives structural metadata from layout-annotated text.
package layout

import "github.com/dgallion1/docchunk/internal/document"

// Extract returns the metadata for a chunk span given the document's
// layout spans. The heading path is the ordered sequence of enclosing
// heading texts, outermost first. When a chunk straddles two layout
// regions, metadata is attributed to the region containing the chunk's
// start offset.
func Extract(text string, start, end int, spans []document.LayoutSpan) document.ChunkMetadata {
	meta := document.ChunkMetadata{}

	type pathEntry struct {
		title string
		level int
	}
	var stack []pathEntry

	for _, sp := range spans {
		if sp.Start > start {
			break
		}
		if sp.Kind == document.KindHeading {
			level := sp.Level
			if level <= 0 {
				level = 1
			}
			for len(stack) > 0 && stack[len(stack)-1].level >= level {
				stack = stack[:len(stack)-1]
			}
			stack = append(stack, pathEntry{title: spanText(text, sp), level: level})
		}
	}

	for _, e := range stack {
		meta.SectionPath = append(meta.SectionPath, e.title)
	}
	if len(stack) > 0 {
		meta.HeadingLevel = stack[len(stack)-1].level
	}
	meta.Page = pageAt(spans, start)
	return meta
}

// pageAt returns the page of the last span starting at or before offset.
func pageAt(spans []document.LayoutSpan, offset int) int {
	page := 0
	for _, sp := range spans {
		if sp.Start > offset {
			break
		}
		if sp.Page > 0 {
			page = sp.Page
		}
	}
	return page
}

func spanText(text string, sp document.LayoutSpan) string {
	if sp.Start < 0 || sp.End > len(text) || sp.Start >= sp.End {
		return ""
	}
	return text[sp.Start:sp.End]
}
