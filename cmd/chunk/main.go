// Command chunk runs the extraction and chunking pipeline on a single
// file and writes the result as JSON to stdout.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dgallion1/docchunk/internal/chunker"
	"github.com/dgallion1/docchunk/internal/cohesion"
	"github.com/dgallion1/docchunk/internal/document"
	"github.com/dgallion1/docchunk/internal/extract"
	"github.com/dgallion1/docchunk/internal/processor"
	"github.com/dgallion1/docchunk/internal/token"
)

func main() {
	var (
		strategy  = flag.String("strategy", "adaptive", "chunking strategy: token_based, hierarchical, semantic or adaptive")
		maxTokens = flag.Int("max-tokens", 0, "maximum tokens per chunk (0 uses the strategy default)")
		overlap   = flag.Int("overlap", 0, "overlap tokens between consecutive chunks")
		minTokens = flag.Int("min-tokens", 0, "minimum tokens for a trailing chunk")
		scheme    = flag.String("scheme", string(token.DefaultScheme), "token counting scheme: words or heuristic")
		pretty    = flag.Bool("pretty", false, "indent JSON output")
		quiet     = flag.Bool("quiet", false, "suppress progress logging")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: chunk [flags] <file>")
		flag.PrintDefaults()
		os.Exit(2)
	}
	path := flag.Arg(0)

	level := slog.LevelInfo
	if *quiet {
		level = slog.LevelError
	}
	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	counter, err := token.NewCounter(token.Scheme(*scheme))
	if err != nil {
		log.Error("invalid token scheme", "scheme", *scheme, "error", err)
		os.Exit(1)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Error("failed to read file", "path", path, "error", err)
		os.Exit(1)
	}

	filename := filepath.Base(path)
	format, err := document.FormatForFilename(filename)
	if err != nil {
		log.Error("unsupported file type", "path", path, "error", err)
		os.Exit(1)
	}

	tracker := processor.NewTracker(0)
	proc := processor.New(tracker, extract.NewService(), counter, cohesion.NewLexical(), log)

	doc := document.NewRaw(filename, filename, format, data)
	cfg := chunker.Config{
		MaxChunkTokens: *maxTokens,
		OverlapTokens:  *overlap,
		MinChunkTokens: *minTokens,
	}

	res, err := proc.Process(context.Background(), "", doc, *strategy, cfg)
	if err != nil {
		log.Error("processing failed", "error", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	if *pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(res); err != nil {
		log.Error("failed to encode result", "error", err)
		os.Exit(1)
	}
}
