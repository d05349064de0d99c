package event_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awardrobe/pricetracker/internal/event"
	"github.com/awardrobe/pricetracker/internal/notify"
	"github.com/awardrobe/pricetracker/internal/pricediff"
	"github.com/awardrobe/pricetracker/internal/storage/mq"
)

type fakeConsumer struct {
	handlers map[string]mq.HandlerFunc
}

func (c *fakeConsumer) RegisterHandler(topic string, handler mq.HandlerFunc) error {
	if c.handlers == nil {
		c.handlers = map[string]mq.HandlerFunc{}
	}
	if _, ok := c.handlers[topic]; ok {
		return errors.New("already registered")
	}
	c.handlers[topic] = handler
	return nil
}

func (c *fakeConsumer) Run(context.Context) (mq.CleanupFunc, error) {
	return func() {}, nil
}

type fakeChanges struct {
	events []pricediff.ChangeEvent
	err    error
}

func (f *fakeChanges) HandleChangeEvent(_ context.Context, ev pricediff.ChangeEvent) ([]notify.Trigger, error) {
	f.events = append(f.events, ev)
	return nil, f.err
}

func TestService(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("Should register both price topics", func(t *testing.T) {
		consumer := &fakeConsumer{}
		svc := event.New(logger, consumer, &fakeChanges{})

		cleanup, err := svc.Run(context.Background())
		require.NoError(t, err)
		defer cleanup()

		assert.Contains(t, consumer.handlers, pricediff.TopicPriceCreated)
		assert.Contains(t, consumer.handlers, pricediff.TopicPriceChanged)
	})

	t.Run("Should pass decoded change events on", func(t *testing.T) {
		consumer := &fakeConsumer{}
		changes := &fakeChanges{}
		require.NoError(t, event.New(logger, consumer, changes).Register(consumer))

		ev := pricediff.ChangeEvent{
			VariantID: uuid.New(),
			ProductID: uuid.New(),
			Previous:  pricediff.PriceState{PriceInCents: 1999, InStock: true, Timestamp: time.Now().UTC()},
			Current:   pricediff.PriceState{PriceInCents: 1799, InStock: true, Timestamp: time.Now().UTC()},
		}
		payload, err := json.Marshal(ev)
		require.NoError(t, err)

		err = consumer.handlers[pricediff.TopicPriceChanged](context.Background(), pricediff.TopicPriceChanged, payload)
		require.NoError(t, err)

		require.Len(t, changes.events, 1)
		assert.Equal(t, ev.VariantID, changes.events[0].VariantID)
		assert.Equal(t, int64(1799), changes.events[0].Current.PriceInCents)
	})

	t.Run("Should reject malformed payloads", func(t *testing.T) {
		consumer := &fakeConsumer{}
		changes := &fakeChanges{}
		require.NoError(t, event.New(logger, consumer, changes).Register(consumer))

		err := consumer.handlers[pricediff.TopicPriceChanged](context.Background(), pricediff.TopicPriceChanged, []byte(`{`))

		assert.Error(t, err)
		assert.Empty(t, changes.events)
	})

	t.Run("Should surface handler failures", func(t *testing.T) {
		consumer := &fakeConsumer{}
		require.NoError(t, event.New(logger, consumer, &fakeChanges{err: errors.New("sink down")}).Register(consumer))

		err := consumer.handlers[pricediff.TopicPriceChanged](context.Background(), pricediff.TopicPriceChanged, []byte(`{}`))
		assert.ErrorContains(t, err, "sink down")
	})
}
