// Package event consumes price events published by the outbox relay.
package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/awardrobe/pricetracker/internal/notify"
	"github.com/awardrobe/pricetracker/internal/pricediff"
	"github.com/awardrobe/pricetracker/internal/storage/mq"
)

// ChangeHandler reacts to a price or stock change.
type ChangeHandler interface {
	HandleChangeEvent(ctx context.Context, ev pricediff.ChangeEvent) ([]notify.Trigger, error)
}

// Service is the event service.
type Service struct {
	logger     *slog.Logger
	mqConsumer mq.Consumer
	changes    ChangeHandler
}

// New creates a new event service.
func New(
	logger *slog.Logger,
	mqConsumer mq.Consumer,
	changes ChangeHandler,
) *Service {
	return &Service{
		logger:     logger.With(slog.String("service", "event")),
		mqConsumer: mqConsumer,
		changes:    changes,
	}
}

type CleanupFunc func()

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	if err := s.Register(s.mqConsumer); err != nil {
		return nil, err
	}

	mqCleanup, err := s.mqConsumer.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("run mq consumer: %w", err)
	}

	cleanup := func() {
		mqCleanup()
	}

	return cleanup, nil
}

// Register attaches the price event handlers to consumer.
func (s *Service) Register(consumer mq.Consumer) error {
	if err := consumer.RegisterHandler(pricediff.TopicPriceCreated, decoded(s.handlePriceCreated)); err != nil {
		return fmt.Errorf("register price created handler: %w", err)
	}
	if err := consumer.RegisterHandler(pricediff.TopicPriceChanged, decoded(s.handlePriceChanged)); err != nil {
		return fmt.Errorf("register price changed handler: %w", err)
	}
	return nil
}

func decoded[T any](fn func(ctx context.Context, ev T) error) mq.HandlerFunc {
	return func(ctx context.Context, topic string, payload []byte) error {
		var ev T
		if err := json.Unmarshal(payload, &ev); err != nil {
			return fmt.Errorf("unmarshal %s event: %w", topic, err)
		}
		return fn(ctx, ev)
	}
}
