package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/awardrobe/pricetracker/internal/adapter/registry"
	"github.com/awardrobe/pricetracker/internal/config"
	"github.com/awardrobe/pricetracker/internal/event"
	"github.com/awardrobe/pricetracker/internal/fetch"
	"github.com/awardrobe/pricetracker/internal/http"
	"github.com/awardrobe/pricetracker/internal/ingest"
	"github.com/awardrobe/pricetracker/internal/log"
	"github.com/awardrobe/pricetracker/internal/notify"
	"github.com/awardrobe/pricetracker/internal/pricediff"
	"github.com/awardrobe/pricetracker/internal/relay"
	"github.com/awardrobe/pricetracker/internal/repository"
	"github.com/awardrobe/pricetracker/internal/service"
	"github.com/awardrobe/pricetracker/internal/storage/db"
	"github.com/awardrobe/pricetracker/internal/storage/lock"
	"github.com/awardrobe/pricetracker/internal/storage/mq"
	"github.com/awardrobe/pricetracker/internal/telemetry"
	"github.com/awardrobe/pricetracker/pkg/cmdutil"
	"github.com/awardrobe/pricetracker/pkg/validator"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("error running standalone application: %v\n", err)
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
		HTTP     config.HTTP
		Relay    config.Relay
		Kafka    config.Kafka
		Otel     config.Otel
		Fetch    config.Fetch
		Ingest   config.Ingest
		Redis    config.Redis
	}
	cfg, err := config.New[Config]()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logger := log.NewSlogLogger(cfg.Log, "pt-standalone")

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

	kafkaProducer, err := mq.NewKafkaProducer(ctx, cfg.Kafka)
	if err != nil {
		return fmt.Errorf("error creating kafka producer: %w", err)
	}
	defer kafkaProducer.Close()

	kafkaConsumer, err := mq.NewKafkaConsumer(ctx, cfg.Kafka, logger)
	if err != nil {
		return fmt.Errorf("error creating kafka consumer: %w", err)
	}

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

	v, err := validator.NewDefaultValidator()
	if err != nil {
		return fmt.Errorf("error creating validator: %w", err)
	}

	storeRepository := repository.NewStoreRepository(dbClient)
	productRepository := repository.NewProductRepository(dbClient)
	priceRepository := repository.NewPriceRepository(dbClient)
	notificationRepository := repository.NewNotificationRepository(dbClient)
	outboxMsgRepository := repository.NewOutboxMsgRepository(dbClient)

	engine := pricediff.NewEngine(repository.NewPriceLedger(dbClient, outboxMsgRepository))
	ingestService := ingest.NewService(
		cfg.Ingest,
		logger,
		registry.Default(fetcher, cfg.Fetch),
		storeRepository,
		productRepository,
		engine,
	)
	if err := ingestService.SeedStores(ctx); err != nil {
		return fmt.Errorf("error seeding stores: %w", err)
	}

	productService := service.NewProductService(productRepository, priceRepository, notificationRepository)
	notifyService := notify.NewService(logger, notificationRepository, notify.NewKafkaSink(kafkaProducer))

	interruptChan := cmdutil.InterruptChan()
	var wg sync.WaitGroup

	wg.Go(func() {
		svc := event.New(logger, kafkaConsumer, notifyService)
		cleanup, err := svc.Run(ctx)
		if err != nil {
			panic(fmt.Errorf("error running event service: %w", err))
		}
		logger.InfoContext(ctx, "event service started")

		<-interruptChan

		logger.InfoContext(ctx, "event service is shutting down")
		cleanup()

		logger.InfoContext(ctx, "event service is stopped")
	})

	wg.Go(func() {
		svc := http.New(cfg.HTTP, logger, prometheus.DefaultRegisterer, v, dbClient, productService, ingestService)
		cleanup, err := svc.Run(ctx)
		if err != nil {
			panic(fmt.Errorf("error running http service: %w", err))
		}

		logger.InfoContext(ctx, "http service started", slog.String("address", fmt.Sprintf(":%d", cfg.HTTP.Port)))

		<-interruptChan

		logger.InfoContext(ctx, "http service is shutting down")
		if err := cleanup(ctx); err != nil {
			logger.ErrorContext(ctx, "error shutting down http service", slog.Any("error", err))
		}

		logger.InfoContext(ctx, "http service is stopped")
	})

	wg.Go(func() {
		svc := relay.NewService(cfg.Relay, logger, dbClient, outboxMsgRepository, kafkaProducer)
		cleanup := svc.Run(ctx)
		logger.InfoContext(ctx, "relay service started")

		<-interruptChan

		logger.InfoContext(ctx, "relay service is shutting down")
		cleanup()

		logger.InfoContext(ctx, "relay service is stopped")
	})

	wg.Go(func() {
		svc := ingest.NewScheduler(cfg.Ingest, logger, ingestService, productRepository, locker)
		cleanup := svc.Run(ctx)
		logger.InfoContext(ctx, "ingest scheduler started", slog.Duration("interval", cfg.Ingest.Interval))

		<-interruptChan

		logger.InfoContext(ctx, "ingest scheduler is shutting down")
		cleanup()

		logger.InfoContext(ctx, "ingest scheduler is stopped")
	})

	wg.Wait()

	return nil
}
