package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/awardrobe/pricetracker/internal/model"
	"github.com/awardrobe/pricetracker/internal/pricediff"
)

var triggersSent = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "pricetracker_notification_triggers_total",
	Help: "Qualified notification triggers handed to the sink",
}, []string{"result"})

// RuleSource loads the watch rules of a product.
type RuleSource interface {
	ListNotificationsByProduct(ctx context.Context, productPublicID uuid.UUID) ([]model.ProductNotification, error)
}

// Sink delivers qualified triggers. Delivery itself happens elsewhere.
type Sink interface {
	Send(ctx context.Context, trigger Trigger) error
}

type Service struct {
	logger *slog.Logger
	rules  RuleSource
	sink   Sink
}

func NewService(logger *slog.Logger, rules RuleSource, sink Sink) *Service {
	return &Service{
		logger: logger.With(slog.String("service", "notify")),
		rules:  rules,
		sink:   sink,
	}
}

// HandleChangeEvent evaluates the product's rules against ev and sends every
// trigger. A failed send does not stop the others.
func (s *Service) HandleChangeEvent(ctx context.Context, ev pricediff.ChangeEvent) ([]Trigger, error) {
	rules, err := s.rules.ListNotificationsByProduct(ctx, ev.ProductID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	triggers := Evaluate(rules, ev)

	var errs []error
	for _, trigger := range triggers {
		if err := s.sink.Send(ctx, trigger); err != nil {
			triggersSent.WithLabelValues("error").Inc()
			errs = append(errs, fmt.Errorf("send trigger %s: %w", trigger.NotificationID, err))
			continue
		}
		triggersSent.WithLabelValues("ok").Inc()
	}

	if len(triggers) > 0 {
		s.logger.InfoContext(ctx, "notification triggers evaluated",
			slog.String("variant_id", ev.VariantID.String()),
			slog.Int("rules", len(rules)),
			slog.Int("triggers", len(triggers)),
			slog.Int("failed", len(errs)),
		)
	}

	return triggers, errors.Join(errs...)
}
