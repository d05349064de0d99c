package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/awardrobe/pricetracker/internal/config"
	"github.com/awardrobe/pricetracker/internal/event"
	"github.com/awardrobe/pricetracker/internal/log"
	"github.com/awardrobe/pricetracker/internal/notify"
	"github.com/awardrobe/pricetracker/internal/repository"
	"github.com/awardrobe/pricetracker/internal/storage/db"
	"github.com/awardrobe/pricetracker/internal/storage/mq"
	"github.com/awardrobe/pricetracker/internal/telemetry"
	"github.com/awardrobe/pricetracker/pkg/cmdutil"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("error running notify application: %v\n", err)
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
		Kafka    config.Kafka
		Otel     config.Otel
	}
	cfg, err := config.New[Config]()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logger := log.NewSlogLogger(cfg.Log, "pt-notify")

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

	notifyService := notify.NewService(
		logger,
		repository.NewNotificationRepository(dbClient),
		notify.NewKafkaSink(kafkaProducer),
	)

	svc := event.New(logger, kafkaConsumer, notifyService)
	cleanup, err := svc.Run(ctx)
	if err != nil {
		return fmt.Errorf("error running event service: %w", err)
	}
	logger.InfoContext(ctx, "event service started")

	<-cmdutil.InterruptChan()

	logger.InfoContext(ctx, "event service is shutting down")
	cleanup()
	logger.InfoContext(ctx, "event service is stopped")

	return nil
}
