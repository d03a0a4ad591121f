package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"bilancio/internal/amqp"
	"bilancio/internal/config"
	"bilancio/internal/core"
	"bilancio/internal/log"
	"bilancio/internal/services"
	"bilancio/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig()).WithComponent(log.ComponentWorker)
	log.SetDefault(logger)

	logger.Info("Starting recurring-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	// AMQP is optional: materialization still runs without it, the batches
	// just are not announced downstream.
	var publisher services.Publisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without event publishing", "error", err)
		} else {
			defer amqpClient.Close()
			publisher = amqpClient
		}
	}

	scheduler := services.NewScheduler(repo, publisher)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Materialization scheduler configured",
		"interval", cfg.WorkerInterval,
		"sqlite_db", cfg.SQLiteDBPath)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ticker := time.NewTicker(cfg.WorkerInterval)
		defer ticker.Stop()

		// Run once on startup so a restart never waits a full interval.
		runOnce(ctx, logger, scheduler)

		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				runOnce(ctx, logger, scheduler)
			}
		}
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Recurring-worker shutdown complete")
}

func runOnce(ctx context.Context, logger *log.Logger, scheduler *services.Scheduler) {
	inserted, err := scheduler.MaterializeCurrentMonth(ctx, core.DateOf(time.Now()))
	if err != nil {
		logger.Error("Materialization run failed", "error", err)
		return
	}
	logger.Info("Materialization run complete", "occurrences_inserted", inserted)
}
