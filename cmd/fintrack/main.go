package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"fintrack/internal/config"
	"fintrack/internal/controllers"
	"fintrack/internal/feed"
	"fintrack/internal/log"
	"fintrack/internal/repository"
	"fintrack/internal/storage"
)

func main() {
	// Load .env for local development (ignore errors in production)
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.New(log.DefaultConfig()).Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	level, _ := cfg.SlogLevel()
	logger := log.New(log.Config{Level: level, Component: log.ComponentApp})
	log.SetDefault(logger)

	store, err := storage.Open(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open transaction store", log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer store.Close()

	var publisher *feed.Client
	if cfg.FeedEnabled() {
		publisher, err = feed.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to connect change feed", log.FieldError, err)
			os.Exit(1)
		}
		defer publisher.Close()
		logger.Info("Change feed enabled",
			log.FieldExchange, cfg.AMQPExchange,
			log.FieldQueue, cfg.AMQPQueue)
	} else {
		logger.Info("Change feed disabled - no AMQP_URL provided")
	}

	repo := repository.New(store, publisher)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary := controllers.NewSummaryController(repo)
	defer summary.Close()

	states := summary.ObserveState(ctx)
	effects := summary.Effects()
	summary.Start(ctx)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ctrl := logger.WithComponent(log.ComponentController)
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case s := <-states:
				if s.Err != "" {
					ctrl.WarnContext(gctx, "Summary in error state", log.FieldError, s.Err)
					continue
				}
				if s.IsLoading {
					continue
				}
				ctrl.InfoContext(gctx, "Summary updated",
					"transactions", len(s.Transactions),
					"total_income", s.TotalIncome,
					"total_expenses", s.TotalExpenses,
					"balance", s.Balance)
			}
		}
	})

	g.Go(func() error {
		ctrl := logger.WithComponent(log.ComponentController)
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case effect := <-effects:
				if msg, ok := effect.(controllers.ShowMessage); ok {
					ctrl.InfoContext(gctx, "Notification", "message", msg.Text)
				}
			}
		}
	})

	logger.Info("fintrack session started",
		"db_path", cfg.SQLiteDBPath,
		"feed_enabled", cfg.FeedEnabled())

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Session terminated", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("fintrack stopped gracefully")
}
