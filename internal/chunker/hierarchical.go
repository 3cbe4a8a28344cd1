package chunker

import (
	"context"

	"github.com/dgallion1/docchunk/internal/document"
	"github.com/dgallion1/docchunk/internal/token"
)

// Hierarchical splits along layout-declared boundaries first: one chunk
// per heading-delimited section when it fits the budget, paragraph
// accumulation when it does not, and token-based splitting of a single
// paragraph that alone exceeds the budget. Chunk boundaries never cross a
// heading boundary except inside that last fallback.
type Hierarchical struct {
	counter token.Counter
}

func NewHierarchical(counter token.Counter) *Hierarchical {
	return &Hierarchical{counter: counter}
}

func (s *Hierarchical) Name() string { return NameHierarchical }

// section is a heading-delimited region with its heading path.
type section struct {
	start, end int
	path       []string
	level      int
	page       int
}

func (s *Hierarchical) CreateChunks(ctx context.Context, doc document.Document, cfg Config) ([]document.Chunk, error) {
	cfg = cfg.withDefaults(DefaultHierarchicalMax)
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	var chunks []document.Chunk
	for _, sec := range sections(doc) {
		if err := s.chunkSection(ctx, doc, cfg, sec, &chunks); err != nil {
			return nil, err
		}
	}
	return chunks, nil
}

// sections derives heading-delimited sections from the document layout. A
// document without heading spans is one section with an empty path.
func sections(doc document.Document) []section {
	var headings []document.LayoutSpan
	for _, sp := range doc.Layout {
		if sp.Kind == document.KindHeading {
			headings = append(headings, sp)
		}
	}
	if len(headings) == 0 {
		return []section{{start: 0, end: len(doc.Text)}}
	}

	var secs []section
	if headings[0].Start > 0 {
		secs = append(secs, section{start: 0, end: headings[0].Start, page: pageOf(doc.Layout, 0)})
	}

	type pathEntry struct {
		title string
		level int
	}
	var stack []pathEntry
	for i, h := range headings {
		level := h.Level
		if level <= 0 {
			level = 1
		}
		for len(stack) > 0 && stack[len(stack)-1].level >= level {
			stack = stack[:len(stack)-1]
		}
		stack = append(stack, pathEntry{title: doc.Text[h.Start:h.End], level: level})

		end := len(doc.Text)
		if i+1 < len(headings) {
			end = headings[i+1].Start
		}
		path := make([]string, len(stack))
		for j, e := range stack {
			path[j] = e.title
		}
		secs = append(secs, section{start: h.Start, end: end, path: path, level: level, page: h.Page})
	}
	return secs
}

func pageOf(spans []document.LayoutSpan, offset int) int {
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

func (s *Hierarchical) chunkSection(ctx context.Context, doc document.Document, cfg Config, sec section, chunks *[]document.Chunk) error {
	start, end := trimRange(doc.Text, sec.start, sec.end)
	if start >= end {
		return nil
	}

	tokens, err := s.counter.Count(doc.Text[start:end])
	if err != nil {
		return err
	}
	if tokens <= cfg.MaxChunkTokens {
		return s.emit(ctx, doc, sec, start, end, chunks)
	}

	// Section exceeds the budget: accumulate its blocks.
	var groupStart, groupEnd int
	flush := func() error {
		if groupStart >= groupEnd {
			return nil
		}
		err := s.emit(ctx, doc, sec, groupStart, groupEnd, chunks)
		groupStart, groupEnd = 0, 0
		return err
	}

	for _, block := range sectionBlocks(doc, start, end) {
		bs, be := trimRange(doc.Text, block.start, block.end)
		if bs >= be {
			continue
		}
		blockTokens, err := s.counter.Count(doc.Text[bs:be])
		if err != nil {
			return err
		}

		// A single block above the budget is handed to token-based
		// splitting.
		if blockTokens > cfg.MaxChunkTokens {
			if err := flush(); err != nil {
				return err
			}
			spans, err := tokenWindows(ctx, doc.Text, scanWords(doc.Text, bs, be), s.counter, cfg)
			if err != nil {
				return err
			}
			for _, sp := range spans {
				if err := s.emit(ctx, doc, sec, sp.start, sp.end, chunks); err != nil {
					return err
				}
			}
			continue
		}

		if groupStart >= groupEnd {
			groupStart, groupEnd = bs, be
			continue
		}
		combined, err := s.counter.Count(doc.Text[groupStart:be])
		if err != nil {
			return err
		}
		if combined > cfg.MaxChunkTokens {
			if err := flush(); err != nil {
				return err
			}
			groupStart, groupEnd = bs, be
		} else {
			groupEnd = be
		}
	}
	return flush()
}

// sectionBlocks lists the accumulation units inside a section: regions
// between consecutive layout-span starts, or blank-line paragraphs when
// the section carries no annotations.
func sectionBlocks(doc document.Document, start, end int) []span {
	var starts []int
	for _, sp := range doc.Layout {
		if sp.Start >= start && sp.Start < end {
			starts = append(starts, sp.Start)
		}
	}
	if len(starts) == 0 {
		return paragraphRanges(doc.Text, start, end)
	}
	if starts[0] > start {
		starts = append([]int{start}, starts...)
	}
	blocks := make([]span, len(starts))
	for i, s := range starts {
		e := end
		if i+1 < len(starts) {
			e = starts[i+1]
		}
		blocks[i] = span{start: s, end: e}
	}
	return blocks
}

func (s *Hierarchical) emit(ctx context.Context, doc document.Document, sec section, start, end int, chunks *[]document.Chunk) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	meta := document.ChunkMetadata{
		SectionPath:  sec.path,
		HeadingLevel: sec.level,
		Page:         sec.page,
	}
	chunk, err := buildChunk(s.counter, doc, len(*chunks), start, end, s.Name(), meta)
	if err != nil {
		return err
	}
	if chunk.TokenCount == 0 {
		return nil
	}
	*chunks = append(*chunks, chunk)
	return nil
}
