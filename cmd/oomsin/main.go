package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"oomsin/internal/amqp"
	"oomsin/internal/config"
	apphttp "oomsin/internal/http"
	"oomsin/internal/kv"
	applog "oomsin/internal/log"
	"oomsin/internal/services"
	"oomsin/internal/store"
	"oomsin/internal/store/memory"
	"oomsin/internal/store/sqlite"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentApp)
	applog.SetDefault(logger)

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
		logger.Info("Initialized SQLite backend", "path", cfg.SQLiteDBPath)
	default:
		backend = memory.New()
		logger.Info("Initialized memory backend")
	}

	feed := store.NewFeed()

	// AMQP is optional: without it, writes still land locally and the
	// periodic reconcile catches the mirror up.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, continuing without change publishing", "error", err)
		} else {
			amqpClient = client
			defer amqpClient.Close()
			logger.Info("Connected to AMQP", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	var snapshots *kv.Store
	if cfg.SnapshotDir != "" {
		s, err := kv.New(cfg.SnapshotDir)
		if err != nil {
			logger.Warn("Snapshot store unavailable", "error", err, "dir", cfg.SnapshotDir)
		} else {
			snapshots = s
		}
	}

	txns := services.NewTransactionService(backend, feed, amqpClient)
	goals := services.NewGoalService(backend, feed, amqpClient)
	summaries := services.NewSummaryService(backend)

	srv := apphttp.NewServer(":"+cfg.Port, txns, goals, summaries, feed, snapshots)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting oomsin server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
