package notify_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awardrobe/pricetracker/internal/model"
	"github.com/awardrobe/pricetracker/internal/notify"
	"github.com/awardrobe/pricetracker/internal/pricediff"
	"github.com/awardrobe/pricetracker/internal/storage/mq"
	"github.com/awardrobe/pricetracker/pkg/ptr"
)

var (
	productID = uuid.MustParse("01890a5d-ac96-774b-bcce-b302099a8001")
	variantA  = uuid.MustParse("01890a5d-ac96-774b-bcce-b302099a80aa")
	variantB  = uuid.MustParse("01890a5d-ac96-774b-bcce-b302099a80bb")
)

func change(prevCents, curCents int64, prevStock, curStock bool) pricediff.ChangeEvent {
	return pricediff.ChangeEvent{
		VariantID: variantA,
		ProductID: productID,
		Previous:  pricediff.PriceState{PriceInCents: prevCents, InStock: prevStock},
		Current:   pricediff.PriceState{PriceInCents: curCents, InStock: curStock},
	}
}

func TestEvaluate(t *testing.T) {
	t.Run("Should fire a threshold rule when the price drops to it", func(t *testing.T) {
		rules := []model.ProductNotification{{PublicID: uuid.New(), UserID: "u1", PriceThresholdCents: ptr.New(int64(1800))}}

		got := notify.Evaluate(rules, change(1999, 1799, true, true))

		require.Len(t, got, 1)
		assert.Equal(t, []notify.Reason{notify.ReasonPriceThreshold}, got[0].Reasons)
		assert.Equal(t, int64(1799), got[0].PriceInCents)
		assert.Equal(t, "u1", got[0].UserID)
	})

	t.Run("Should fire at exactly the threshold", func(t *testing.T) {
		rules := []model.ProductNotification{{PriceThresholdCents: ptr.New(int64(1800))}}

		assert.Len(t, notify.Evaluate(rules, change(1999, 1800, true, true)), 1)
		assert.Empty(t, notify.Evaluate(rules, change(1999, 1801, true, true)))
	})

	t.Run("Should fire a restock rule only on an out of stock to in stock edge", func(t *testing.T) {
		rules := []model.ProductNotification{{NotifyOnRestock: true}}

		got := notify.Evaluate(rules, change(1999, 1999, false, true))
		require.Len(t, got, 1)
		assert.Equal(t, []notify.Reason{notify.ReasonRestock}, got[0].Reasons)

		assert.Empty(t, notify.Evaluate(rules, change(1999, 1799, true, true)))
		assert.Empty(t, notify.Evaluate(rules, change(1999, 1999, true, false)))
	})

	t.Run("Should report both reasons in one trigger", func(t *testing.T) {
		rules := []model.ProductNotification{{NotifyOnRestock: true, PriceThresholdCents: ptr.New(int64(2000))}}

		got := notify.Evaluate(rules, change(1999, 1799, false, true))

		require.Len(t, got, 1)
		assert.Equal(t, []notify.Reason{notify.ReasonPriceThreshold, notify.ReasonRestock}, got[0].Reasons)
	})

	t.Run("Should honour the variant filter", func(t *testing.T) {
		rules := []model.ProductNotification{
			{UserID: "any", PriceThresholdCents: ptr.New(int64(1800))},
			{UserID: "a", VariantPublicID: &variantA, PriceThresholdCents: ptr.New(int64(1800))},
			{UserID: "b", VariantPublicID: &variantB, PriceThresholdCents: ptr.New(int64(1800))},
		}

		got := notify.Evaluate(rules, change(1999, 1799, true, true))

		require.Len(t, got, 2)
		assert.Equal(t, "any", got[0].UserID)
		assert.Equal(t, "a", got[1].UserID)
	})

	t.Run("Should ignore rules without conditions", func(t *testing.T) {
		assert.Empty(t, notify.Evaluate([]model.ProductNotification{{}}, change(1999, 1, false, true)))
	})
}

type ruleSource struct {
	rules []model.ProductNotification
	err   error
	asked uuid.UUID
}

func (r *ruleSource) ListNotificationsByProduct(_ context.Context, id uuid.UUID) ([]model.ProductNotification, error) {
	r.asked = id
	return r.rules, r.err
}

type recordingSink struct {
	sent []notify.Trigger
	fail map[string]bool
}

func (s *recordingSink) Send(_ context.Context, trigger notify.Trigger) error {
	if s.fail[trigger.UserID] {
		return errors.New("sink down")
	}
	s.sent = append(s.sent, trigger)
	return nil
}

func TestHandleChangeEvent(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("Should send every trigger even when one send fails", func(t *testing.T) {
		rules := &ruleSource{rules: []model.ProductNotification{
			{UserID: "u1", PriceThresholdCents: ptr.New(int64(1800))},
			{UserID: "u2", PriceThresholdCents: ptr.New(int64(1800))},
		}}
		sink := &recordingSink{fail: map[string]bool{"u1": true}}
		svc := notify.NewService(logger, rules, sink)

		triggers, err := svc.HandleChangeEvent(t.Context(), change(1999, 1799, true, true))

		require.Error(t, err)
		assert.Len(t, triggers, 2)
		require.Len(t, sink.sent, 1)
		assert.Equal(t, "u2", sink.sent[0].UserID)
		assert.Equal(t, productID, rules.asked)
	})

	t.Run("Should return rule loading errors", func(t *testing.T) {
		svc := notify.NewService(logger, &ruleSource{err: errors.New("db down")}, &recordingSink{})

		_, err := svc.HandleChangeEvent(t.Context(), change(1999, 1799, true, true))

		assert.ErrorContains(t, err, "db down")
	})
}

type fakeProducer struct {
	msgs []mq.ProduceMsg
}

func (p *fakeProducer) Produce(_ context.Context, msg mq.ProduceMsg) error {
	p.msgs = append(p.msgs, msg)
	return nil
}

func TestKafkaSink(t *testing.T) {
	producer := &fakeProducer{}
	sink := notify.NewKafkaSink(producer)

	err := sink.Send(t.Context(), notify.Trigger{UserID: "u1", PriceInCents: 1799, Reasons: []notify.Reason{notify.ReasonPriceThreshold}})

	require.NoError(t, err)
	require.Len(t, producer.msgs, 1)
	msg := producer.msgs[0]
	assert.Equal(t, notify.TopicNotificationTriggered, msg.Topic)
	require.NotNil(t, msg.PartitionKey)
	assert.Equal(t, "u1", *msg.PartitionKey)

	var decoded notify.Trigger
	require.NoError(t, json.Unmarshal(msg.Payload, &decoded))
	assert.Equal(t, int64(1799), decoded.PriceInCents)
}
