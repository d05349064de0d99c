// Package pricediff compares fresh observations with a variant's history and
// appends a price row only when something changed.
package pricediff

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/awardrobe/pricetracker/internal/model"
)

var (
	tracer = otel.Tracer("internal/pricediff")

	observations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pricetracker_price_observations_total",
		Help: "Price observations by outcome",
	}, []string{"outcome"})
)

// Tx is the view of the ledger available while a variant is locked.
type Tx interface {
	// LatestPrice returns the price the variant's latest pointer refers to, or
	// nil when the variant has no history.
	LatestPrice(ctx context.Context, variantID int64) (*model.Price, error)
	// AppendPrice inserts the price and moves the variant's latest pointer to it.
	AppendPrice(ctx context.Context, price model.Price) (model.Price, error)
	// Emit records an event to be published once the transaction commits.
	Emit(ctx context.Context, topic string, key string, payload any) error
}

// Ledger serializes work on one variant. Everything done through Tx commits or
// rolls back together.
type Ledger interface {
	WithinVariantLock(ctx context.Context, variantID int64, fn func(Tx) error) error
}

// Observation is a freshly fetched price and stock state for one variant.
type Observation struct {
	VariantID       int64
	VariantPublicID uuid.UUID
	ProductPublicID uuid.UUID
	PriceInCents    int64
	InStock         bool
}

// Outcome reports what Record did. Previous is nil for a first observation.
type Outcome struct {
	Appended bool
	Previous *model.Price
	Current  model.Price
}

type Engine struct {
	ledger Ledger
	now    func() time.Time
}

type Option func(*Engine)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func NewEngine(ledger Ledger, opts ...Option) *Engine {
	e := &Engine{ledger: ledger, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Record compares obs with the variant's latest price and appends a new row
// when price or stock differ, or when there is no history yet.
func (e *Engine) Record(ctx context.Context, obs Observation) (Outcome, error) {
	ctx, span := tracer.Start(ctx, "Engine.Record",
		trace.WithAttributes(
			attribute.String("variant.id", obs.VariantPublicID.String()),
			attribute.Int64("price.cents", obs.PriceInCents),
			attribute.Bool("price.in_stock", obs.InStock),
		),
	)
	defer span.End()

	var outcome Outcome
	err := e.ledger.WithinVariantLock(ctx, obs.VariantID, func(tx Tx) error {
		outcome = Outcome{}

		latest, err := tx.LatestPrice(ctx, obs.VariantID)
		if err != nil {
			return fmt.Errorf("get latest price: %w", err)
		}

		if latest != nil && latest.SameState(obs.PriceInCents, obs.InStock) {
			outcome.Previous = latest
			outcome.Current = *latest
			return nil
		}

		appended, err := tx.AppendPrice(ctx, model.Price{
			VariantID:    obs.VariantID,
			PriceInCents: obs.PriceInCents,
			InStock:      obs.InStock,
			Timestamp:    e.nextTimestamp(latest),
		})
		if err != nil {
			return fmt.Errorf("append price: %w", err)
		}

		outcome = Outcome{Appended: true, Previous: latest, Current: appended}

		key := obs.VariantPublicID.String()
		if latest == nil {
			err = tx.Emit(ctx, TopicPriceCreated, key, CreatedEvent{
				VariantID: obs.VariantPublicID,
				ProductID: obs.ProductPublicID,
				Current:   stateOf(appended),
			})
		} else {
			err = tx.Emit(ctx, TopicPriceChanged, key, ChangeEvent{
				VariantID: obs.VariantPublicID,
				ProductID: obs.ProductPublicID,
				Previous:  stateOf(*latest),
				Current:   stateOf(appended),
			})
		}
		if err != nil {
			return fmt.Errorf("emit price event: %w", err)
		}

		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "record price failed")
		return Outcome{}, err
	}

	switch {
	case !outcome.Appended:
		observations.WithLabelValues("unchanged").Inc()
	case outcome.Previous == nil:
		observations.WithLabelValues("created").Inc()
	default:
		observations.WithLabelValues("changed").Inc()
	}
	span.SetAttributes(attribute.Bool("price.appended", outcome.Appended))

	return outcome, nil
}

// nextTimestamp is now at database precision, pushed past the latest row so
// history stays strictly increasing even when the clock steps backwards.
func (e *Engine) nextTimestamp(latest *model.Price) time.Time {
	ts := e.now().UTC().Truncate(time.Microsecond)
	if latest != nil && !ts.After(latest.Timestamp) {
		ts = latest.Timestamp.Add(time.Microsecond)
	}
	return ts
}
