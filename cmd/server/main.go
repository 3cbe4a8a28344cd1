package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dgallion1/docchunk/internal/api"
	"github.com/dgallion1/docchunk/internal/cohesion"
	"github.com/dgallion1/docchunk/internal/config"
	"github.com/dgallion1/docchunk/internal/extract"
	"github.com/dgallion1/docchunk/internal/processor"
	"github.com/dgallion1/docchunk/internal/store"
	"github.com/dgallion1/docchunk/internal/token"
)

func main() {
	_ = godotenv.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	counter, err := token.NewCounter(token.Scheme(cfg.TokenScheme))
	if err != nil {
		log.Error("invalid token scheme", "scheme", cfg.TokenScheme, "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Result persistence.
	var results *store.ResultStore
	if cfg.DBPath != "" {
		results, err = store.Open(ctx, cfg.DBPath)
		if err != nil {
			log.Error("failed to open result store", "path", cfg.DBPath, "error", err)
			os.Exit(1)
		}
	}

	// Initialize processing pipeline.
	tracker := processor.NewTracker(cfg.TaskRetention)
	proc := processor.New(tracker, extract.NewService(), counter, cohesion.NewLexical(), log)

	var sink processor.ResultSink
	if results != nil {
		sink = results
	}
	orch := processor.NewOrchestrator(proc, sink, cfg.WorkerCount, cfg.MaxQueueSize, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, proc, results, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		// Stop accepting requests before the pool closes its queue.
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()

		if results != nil {
			results.Close()
		}
	}()

	log.Info("starting docchunk", "port", cfg.Port, "workers", cfg.WorkerCount)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
