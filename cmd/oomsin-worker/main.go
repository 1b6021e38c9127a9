package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"oomsin/internal/amqp"
	"oomsin/internal/config"
	"oomsin/internal/export"
	"oomsin/internal/kv"
	applog "oomsin/internal/log"
	"oomsin/internal/services"
	"oomsin/internal/store"
	"oomsin/internal/store/memory"
	"oomsin/internal/store/sqlite"
	"oomsin/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentWorker)
	applog.SetDefault(logger)

	logger.Info("Starting oomsin-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	var backend store.Store
	switch cfg.DataBackend {
	case "sqlite":
		repo, err := sqlite.NewRepository(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to initialize SQLite store", "error", err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		defer repo.Close()
		backend = repo
	default:
		backend = memory.New()
	}

	snapshots, err := kv.New(cfg.SnapshotDir)
	if err != nil {
		logger.Error("Failed to initialize snapshot store", "error", err, "dir", cfg.SnapshotDir)
		os.Exit(1)
	}

	// Ledger export is optional.
	var ledger export.LedgerWriter
	if cfg.SheetsEnabled() {
		exporter, err := export.NewSheetsExporter(context.Background(), cfg)
		if err != nil {
			logger.Error("Failed to initialize Sheets exporter", "error", err)
			os.Exit(1)
		}
		ledger = exporter
		logger.Info("Sheets ledger export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)
	} else {
		logger.Info("Sheets ledger export disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	goals := services.NewGoalService(backend, store.NewFeed(), nil)
	mirror := worker.NewMirrorWorker(backend, snapshots, goals, ledger, cfg.SyncBatchSize)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return amqpClient.ConsumeChanges(ctx, func(msg *amqp.ChangeMessage) error {
			return mirror.HandleChangeMessage(ctx, msg)
		})
	})

	g.Go(func() error {
		return mirror.RunReconcileLoop(ctx, cfg.ReconcileInterval)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("Worker shutdown complete")
}
