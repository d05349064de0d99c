package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/awardrobe/pricetracker/internal/adapter/registry"
	"github.com/awardrobe/pricetracker/internal/config"
	"github.com/awardrobe/pricetracker/internal/fetch"
	"github.com/awardrobe/pricetracker/internal/ingest"
	"github.com/awardrobe/pricetracker/internal/log"
	"github.com/awardrobe/pricetracker/internal/pricediff"
	"github.com/awardrobe/pricetracker/internal/repository"
	"github.com/awardrobe/pricetracker/internal/storage/db"
	"github.com/awardrobe/pricetracker/internal/storage/lock"
	"github.com/awardrobe/pricetracker/internal/telemetry"
	"github.com/awardrobe/pricetracker/pkg/cmdutil"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("error running ingest application: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	time.Local = time.UTC

	type Config struct {
		Log      config.Log
		Postgres config.Postgres
		Otel     config.Otel
		Fetch    config.Fetch
		Ingest   config.Ingest
		Redis    config.Redis
	}
	cfg, err := config.New[Config]()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logger := log.NewSlogLogger(cfg.Log, "pt-ingest")

	cleanupTracer, err := telemetry.InitTracer(ctx, cfg.Otel)
	if err != nil {
		return fmt.Errorf("error initializing tracer: %w", err)
	}
	defer func() {
		if err := cleanupTracer(ctx); err != nil {
			logger.ErrorContext(ctx, "error cleaning up tracer", slog.Any("error", err))
		}
	}()

	pgxPool, err := db.NewPgxPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("error creating pgx pool: %w", err)
	}
	defer pgxPool.Close()

	dbClient := db.NewClient(pgxPool)

	locker, closeLocker, err := lock.New(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("error creating locker: %w", err)
	}
	defer func() {
		if err := closeLocker(); err != nil {
			logger.ErrorContext(ctx, "error closing locker", slog.Any("error", err))
		}
	}()

	fetcher, err := fetch.New(cfg.Fetch)
	if err != nil {
		return fmt.Errorf("error creating fetcher: %w", err)
	}

	productRepository := repository.NewProductRepository(dbClient)
	outboxMsgRepository := repository.NewOutboxMsgRepository(dbClient)
	engine := pricediff.NewEngine(repository.NewPriceLedger(dbClient, outboxMsgRepository))

	ingestService := ingest.NewService(
		cfg.Ingest,
		logger,
		registry.Default(fetcher, cfg.Fetch),
		repository.NewStoreRepository(dbClient),
		productRepository,
		engine,
	)
	if err := ingestService.SeedStores(ctx); err != nil {
		return fmt.Errorf("error seeding stores: %w", err)
	}

	scheduler := ingest.NewScheduler(cfg.Ingest, logger, ingestService, productRepository, locker)
	cleanup := scheduler.Run(ctx)
	logger.InfoContext(ctx, "ingest scheduler started", slog.Duration("interval", cfg.Ingest.Interval))

	<-cmdutil.InterruptChan()

	logger.InfoContext(ctx, "ingest scheduler is shutting down")
	cleanup()
	logger.InfoContext(ctx, "ingest scheduler is stopped")

	return nil
}
