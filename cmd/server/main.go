package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/docquiz/internal/api"
	"github.com/dgallion1/docquiz/internal/config"
	"github.com/dgallion1/docquiz/internal/llm"
	"github.com/dgallion1/docquiz/internal/models"
	"github.com/dgallion1/docquiz/internal/ocr"
	"github.com/dgallion1/docquiz/internal/parser"
	"github.com/dgallion1/docquiz/internal/pipeline"
	"github.com/dgallion1/docquiz/internal/store"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.ValidateServer(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize clients.
	stats := llm.NewLLMStats(time.Hour)
	registry := models.New(cfg, stats, log)

	var pageOCR parser.PageOCR
	ocrSvc, err := ocr.New(ctx, cfg, log)
	if err != nil {
		log.Error("ocr setup failed", "engine", cfg.OCREngine, "error", err)
		os.Exit(1)
	}
	if ocrSvc != nil {
		pageOCR = ocrSvc
	}

	db, err := store.Open(cfg.DatabasePath)
	if err != nil {
		log.Error("open database", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}

	// Initialize pipeline.
	p := pipeline.New(cfg, registry, pageOCR, log)
	orch := pipeline.NewOrchestrator(pipeline.OrchestratorConfig{
		Workers:   cfg.WorkerCount,
		QueueSize: cfg.MaxQueueSize,
		JobTTL:    cfg.JobTTL,
	}, pipeline.NewWorker(p, db, log), log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, db, stats, log, cfg)

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

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		registry.Close()
		if ocrSvc != nil {
			ocrSvc.Close()
		}
		db.Close()
	}()

	log.Info("starting docquiz", "port", cfg.Port, "workers", cfg.WorkerCount, "ocr", cfg.OCREngine)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
