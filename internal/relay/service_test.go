package relay_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awardrobe/pricetracker/internal/config"
	"github.com/awardrobe/pricetracker/internal/relay"
	"github.com/awardrobe/pricetracker/internal/repository"
	"github.com/awardrobe/pricetracker/internal/storage/db"
	"github.com/awardrobe/pricetracker/internal/storage/mq"
	"github.com/awardrobe/pricetracker/pkg/correlationid"
	"github.com/awardrobe/pricetracker/pkg/ptr"
)

type txDB struct {
	db.DB
	txs int
}

func (d *txDB) WithTx(_ context.Context, fn func(db.DB) error) error {
	d.txs++
	return fn(d)
}

type memOutbox struct {
	pending []repository.ListUnprocessedOutboxMsgsResult
	updates []repository.BulkUpdateOutboxMsgsParams
}

func (r *memOutbox) WithDB(db.DB) repository.OutboxMsgRepository { return r }

func (r *memOutbox) CreateOutboxMsg(context.Context, repository.CreateOutboxMsgParams) error {
	return nil
}

func (r *memOutbox) ListUnprocessedOutboxMsgs(_ context.Context, params repository.ListUnprocessedOutboxMsgsParams) ([]repository.ListUnprocessedOutboxMsgsResult, error) {
	return r.pending[:min(len(r.pending), int(params.BatchSize))], nil
}

func (r *memOutbox) BulkUpdateOutboxMsgs(_ context.Context, params repository.BulkUpdateOutboxMsgsParams) error {
	r.updates = append(r.updates, params)
	return nil
}

type recordingProducer struct {
	mu             sync.Mutex
	msgs           []mq.ProduceMsg
	correlationIDs []string
	failTopic      string
}

func (p *recordingProducer) Produce(ctx context.Context, msg mq.ProduceMsg) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if msg.Topic == p.failTopic {
		return errors.New("broker unavailable")
	}
	p.msgs = append(p.msgs, msg)
	id, _ := correlationid.FromContext(ctx)
	p.correlationIDs = append(p.correlationIDs, id)
	return nil
}

func pendingMsg(topic string) repository.ListUnprocessedOutboxMsgsResult {
	return repository.ListUnprocessedOutboxMsgsResult{
		ID:           uuid.New(),
		Topic:        topic,
		Headers:      map[string]string{correlationid.Header: "corr-" + topic},
		Payload:      []byte(`{}`),
		PartitionKey: ptr.New("variant-1"),
	}
}

func TestRelayBatch(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Relay{BatchSize: 10, MaxAttempts: 3}

	t.Run("Should publish pending messages and mark them", func(t *testing.T) {
		store := &memOutbox{pending: []repository.ListUnprocessedOutboxMsgsResult{
			pendingMsg("price.created"),
			pendingMsg("price.changed"),
		}}
		producer := &recordingProducer{}
		svc := relay.NewService(cfg, logger, &txDB{}, store, producer)

		delivered, err := svc.RelayBatch(context.Background())
		require.NoError(t, err)

		assert.Equal(t, 2, delivered)
		assert.Len(t, producer.msgs, 2)
		assert.ElementsMatch(t, []string{"corr-price.created", "corr-price.changed"}, producer.correlationIDs)
		require.Len(t, store.updates, 1)
		assert.Equal(t, int32(3), store.updates[0].MaxAttempts)
		for _, item := range store.updates[0].Items {
			assert.Nil(t, item.Error)
		}
	})

	t.Run("Should record the error of failed deliveries", func(t *testing.T) {
		failing := pendingMsg("notification.triggered")
		store := &memOutbox{pending: []repository.ListUnprocessedOutboxMsgsResult{
			pendingMsg("price.changed"),
			failing,
		}}
		producer := &recordingProducer{failTopic: "notification.triggered"}
		svc := relay.NewService(cfg, logger, &txDB{}, store, producer)

		delivered, err := svc.RelayBatch(context.Background())
		require.NoError(t, err)

		assert.Equal(t, 1, delivered)
		require.Len(t, store.updates, 1)
		for _, item := range store.updates[0].Items {
			if item.ID == failing.ID {
				require.NotNil(t, item.Error)
				assert.Contains(t, *item.Error, "broker unavailable")
			} else {
				assert.Nil(t, item.Error)
			}
		}
	})

	t.Run("Should skip the update when nothing is pending", func(t *testing.T) {
		store := &memOutbox{}
		svc := relay.NewService(cfg, logger, &txDB{}, store, &recordingProducer{})

		delivered, err := svc.RelayBatch(context.Background())
		require.NoError(t, err)

		assert.Zero(t, delivered)
		assert.Empty(t, store.updates)
	})
}

func TestRun(t *testing.T) {
	t.Run("Should tolerate repeated cleanup", func(t *testing.T) {
		cfg := config.Relay{BatchSize: 10, Interval: 10 * time.Millisecond, MaxAttempts: 3}
		svc := relay.NewService(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), &txDB{}, &memOutbox{}, &recordingProducer{})

		cleanup := svc.Run(context.Background())

		assert.NotPanics(t, func() {
			cleanup()
			cleanup()
		})
	})
}
