package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"fintrack/internal/config"
	"fintrack/internal/feed"
	"fintrack/internal/log"
	"fintrack/internal/repository"
	"fintrack/internal/storage"
	"fintrack/internal/worker"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.New(log.DefaultConfig()).Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	level, _ := cfg.SlogLevel()
	logger := log.New(log.Config{Level: level, Component: log.ComponentWorker})
	log.SetDefault(logger)

	if !cfg.FeedEnabled() {
		logger.Error("feed-worker requires AMQP_URL to be set")
		os.Exit(1)
	}

	store, err := storage.Open(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open transaction store", log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer store.Close()

	client, err := feed.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to connect change feed", log.FieldError, err)
		os.Exit(1)
	}
	defer client.Close()

	// Read-side repository only; the worker never publishes.
	repo := repository.New(store, nil)
	feedWorker := worker.NewFeedWorker(repo, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("feed-worker started",
		log.FieldExchange, cfg.AMQPExchange,
		log.FieldQueue, cfg.AMQPQueue)

	if err := client.Consume(ctx, feedWorker.HandleMessage); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Feed consumption failed", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("feed-worker stopped gracefully")
}
