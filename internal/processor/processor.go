package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dgallion1/docchunk/internal/chunker"
	"github.com/dgallion1/docchunk/internal/cohesion"
	"github.com/dgallion1/docchunk/internal/document"
	"github.com/dgallion1/docchunk/internal/layout"
	"github.com/dgallion1/docchunk/internal/token"
)

// ExtractionService is the external text+layout extraction collaborator.
type ExtractionService interface {
	Extract(ctx context.Context, data []byte, format document.Format) (string, []document.LayoutSpan, error)
}

// Processor runs documents through validation, extraction, chunking and
// metadata enrichment, recording every transition on the status tracker.
type Processor struct {
	tracker   *Tracker
	extractor ExtractionService
	counter   token.Counter
	scorer    cohesion.Scorer
	log       *slog.Logger
}

// New creates a processor. The extractor may be nil when all documents
// arrive with text already extracted.
func New(tracker *Tracker, extractor ExtractionService, counter token.Counter, scorer cohesion.Scorer, log *slog.Logger) *Processor {
	return &Processor{
		tracker:   tracker,
		extractor: extractor,
		counter:   counter,
		scorer:    scorer,
		log:       log,
	}
}

// Tracker returns the injected status tracker.
func (p *Processor) Tracker() *Tracker {
	return p.tracker
}

// Validate is the pre-flight check: it rejects documents that processing
// would reject, without running chunking.
func (p *Processor) Validate(doc document.Document) error {
	if doc.ID == "" {
		return fmt.Errorf("%w: document id is empty", document.ErrValidation)
	}
	if doc.Text == "" && len(doc.Raw) == 0 {
		return fmt.Errorf("%w: document is empty", document.ErrValidation)
	}
	if doc.Text != "" && strings.TrimSpace(doc.Text) == "" {
		return fmt.Errorf("%w: document text is blank", document.ErrValidation)
	}
	if !utf8.ValidString(doc.Text) {
		return fmt.Errorf("%w: document text is not valid UTF-8", document.ErrInvalidInput)
	}
	if len(doc.Raw) > 0 && !doc.Format.Valid() {
		return fmt.Errorf("%w: unsupported format %q", document.ErrValidation, doc.Format)
	}
	for _, sp := range doc.Layout {
		if sp.Start < 0 || sp.End > len(doc.Text) || sp.Start >= sp.End {
			return fmt.Errorf("%w: layout span [%d,%d) out of bounds", document.ErrValidation, sp.Start, sp.End)
		}
	}
	return nil
}

// Process runs one document through the pipeline under the given task id
// and returns the terminal result. A fresh id is generated when taskID is
// empty. The call is synchronous; submit through an Orchestrator to poll
// status instead.
func (p *Processor) Process(ctx context.Context, taskID string, doc document.Document, strategyName string, cfg chunker.Config) (document.Result, error) {
	if taskID == "" {
		taskID = NewTaskID()
	}
	rec, err := p.tracker.Begin(ctx, taskID, doc.ID)
	if err != nil {
		return document.Result{}, err
	}
	return p.run(rec, doc, strategyName, cfg)
}

// run executes a task that has already been registered with the tracker.
func (p *Processor) run(rec *Record, doc document.Document, strategyName string, cfg chunker.Config) (document.Result, error) {
	start := time.Now()
	ctx := rec.Context()
	log := p.log.With("task_id", rec.taskID, "document_id", doc.ID)

	fail := func(err error) (document.Result, error) {
		if ctx.Err() != nil && !errors.Is(err, document.ErrCancelled) {
			err = fmt.Errorf("%w: %v", document.ErrCancelled, err)
		}
		reason := document.ReasonFor(err)
		log.Warn("processing failed", "reason", reason, "error", err)
		return rec.fail(reason, err.Error(), strategyName, time.Since(start)), err
	}

	if err := p.Validate(doc); err != nil {
		return fail(err)
	}

	rec.start()

	if doc.Text == "" {
		if p.extractor == nil {
			return fail(fmt.Errorf("%w: no extraction service configured", document.ErrExtraction))
		}
		text, spans, err := p.extractor.Extract(ctx, doc.Raw, doc.Format)
		if err != nil {
			return fail(err)
		}
		if strings.TrimSpace(text) == "" {
			return fail(fmt.Errorf("%w: no extractable text", document.ErrValidation))
		}
		doc.Text, doc.Layout = text, spans
		log.Info("extracted document", "format", doc.Format, "bytes", len(text), "layout_spans", len(spans))
	}

	strategy, err := chunker.ForName(strategyName, p.counter, p.scorer)
	if err != nil {
		return fail(err)
	}

	chunks, err := strategy.CreateChunks(ctx, doc, cfg)
	if err != nil {
		return fail(err)
	}
	if len(chunks) == 0 {
		return fail(fmt.Errorf("%w: no chunks produced", document.ErrValidation))
	}

	// Metadata enrichment, with a cancellation checkpoint between chunks.
	totalTokens := 0
	for i := range chunks {
		if err := ctx.Err(); err != nil {
			return fail(err)
		}
		if len(doc.Layout) > 0 && chunks[i].Metadata.SectionPath == nil {
			meta := layout.Extract(doc.Text, chunks[i].Start, chunks[i].End, doc.Layout)
			meta.Strategy = chunks[i].Metadata.Strategy
			chunks[i].Metadata = meta
		}
		totalTokens += chunks[i].TokenCount
	}

	res := document.Result{
		DocumentID:  doc.ID,
		Chunks:      chunks,
		ChunkCount:  len(chunks),
		TotalTokens: totalTokens,
		Strategy:    strategyName,
		Duration:    time.Since(start),
	}
	rec.complete(res)

	log.Info("processing complete",
		"strategy", strategyName,
		"chunks", len(chunks),
		"tokens", totalTokens,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return rec.snapshot(), nil
}
