package pricediff_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awardrobe/pricetracker/internal/model"
	"github.com/awardrobe/pricetracker/internal/pricediff"
)

type emitted struct {
	topic   string
	key     string
	payload any
}

// memLedger keeps history in memory. A transaction works on copies and only
// publishes them when fn succeeds.
type memLedger struct {
	mu      sync.Mutex
	locks   map[int64]*sync.Mutex
	prices  map[int64][]model.Price
	latest  map[int64]int64
	events  []emitted
	nextID  int64
	failing bool
}

func newMemLedger() *memLedger {
	return &memLedger{
		locks:  map[int64]*sync.Mutex{},
		prices: map[int64][]model.Price{},
		latest: map[int64]int64{},
	}
}

func (l *memLedger) variantLock(id int64) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.locks[id]; !ok {
		l.locks[id] = &sync.Mutex{}
	}
	return l.locks[id]
}

func (l *memLedger) WithinVariantLock(_ context.Context, variantID int64, fn func(pricediff.Tx) error) error {
	lock := l.variantLock(variantID)
	lock.Lock()
	defer lock.Unlock()

	tx := &memTx{l: l}
	if err := fn(tx); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, p := range tx.appended {
		l.prices[p.VariantID] = append(l.prices[p.VariantID], p)
		l.latest[p.VariantID] = p.ID
	}
	l.events = append(l.events, tx.events...)
	return nil
}

func (l *memLedger) history(variantID int64) []model.Price {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]model.Price(nil), l.prices[variantID]...)
}

func (l *memLedger) emitted() []emitted {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]emitted(nil), l.events...)
}

type memTx struct {
	l        *memLedger
	appended []model.Price
	events   []emitted
}

func (t *memTx) LatestPrice(_ context.Context, variantID int64) (*model.Price, error) {
	t.l.mu.Lock()
	defer t.l.mu.Unlock()
	id, ok := t.l.latest[variantID]
	if !ok {
		return nil, nil
	}
	for _, p := range t.l.prices[variantID] {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, errors.New("dangling latest pointer")
}

func (t *memTx) AppendPrice(_ context.Context, price model.Price) (model.Price, error) {
	t.l.mu.Lock()
	defer t.l.mu.Unlock()
	t.l.nextID++
	price.ID = t.l.nextID
	t.appended = append(t.appended, price)
	return price, nil
}

func (t *memTx) Emit(_ context.Context, topic string, key string, payload any) error {
	if t.l.failing {
		return errors.New("outbox unavailable")
	}
	t.events = append(t.events, emitted{topic: topic, key: key, payload: payload})
	return nil
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func observation(cents int64, inStock bool) pricediff.Observation {
	return pricediff.Observation{
		VariantID:       7,
		VariantPublicID: uuid.MustParse("01890a5d-ac96-774b-bcce-b302099a8057"),
		ProductPublicID: uuid.MustParse("01890a5d-ac96-774b-bcce-b302099a8058"),
		PriceInCents:    cents,
		InStock:         inStock,
	}
}

func TestRecord(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Should append and emit a created event for the first observation", func(t *testing.T) {
		ledger := newMemLedger()
		engine := pricediff.NewEngine(ledger, pricediff.WithClock(func() time.Time { return t0 }))

		outcome, err := engine.Record(t.Context(), observation(1999, true))

		require.NoError(t, err)
		assert.True(t, outcome.Appended)
		assert.Nil(t, outcome.Previous)
		assert.Equal(t, t0, outcome.Current.Timestamp)

		events := ledger.emitted()
		require.Len(t, events, 1)
		assert.Equal(t, pricediff.TopicPriceCreated, events[0].topic)
		assert.Equal(t, "01890a5d-ac96-774b-bcce-b302099a8057", events[0].key)
	})

	t.Run("Should append only on change", func(t *testing.T) {
		ledger := newMemLedger()
		clock := &fakeClock{now: t0}
		engine := pricediff.NewEngine(ledger, pricediff.WithClock(clock.Now))

		_, err := engine.Record(t.Context(), observation(1999, true))
		require.NoError(t, err)

		clock.Set(t0.Add(time.Hour))
		second, err := engine.Record(t.Context(), observation(1999, true))
		require.NoError(t, err)
		assert.False(t, second.Appended)

		clock.Set(t0.Add(2 * time.Hour))
		third, err := engine.Record(t.Context(), observation(1799, true))
		require.NoError(t, err)
		assert.True(t, third.Appended)

		history := ledger.history(7)
		require.Len(t, history, 2)
		assert.Equal(t, int64(1999), history[0].PriceInCents)
		assert.Equal(t, int64(1799), history[1].PriceInCents)

		events := ledger.emitted()
		require.Len(t, events, 2)
		assert.Equal(t, pricediff.TopicPriceChanged, events[1].topic)
		change, ok := events[1].payload.(pricediff.ChangeEvent)
		require.True(t, ok)
		assert.Equal(t, int64(1999), change.Previous.PriceInCents)
		assert.Equal(t, int64(1799), change.Current.PriceInCents)
		assert.True(t, change.Current.InStock)
	})

	t.Run("Should treat a stock change alone as a change", func(t *testing.T) {
		ledger := newMemLedger()
		engine := pricediff.NewEngine(ledger)

		_, err := engine.Record(t.Context(), observation(1999, false))
		require.NoError(t, err)
		outcome, err := engine.Record(t.Context(), observation(1999, true))
		require.NoError(t, err)

		assert.True(t, outcome.Appended)
		require.NotNil(t, outcome.Previous)
		assert.False(t, outcome.Previous.InStock)
	})

	t.Run("Should keep timestamps strictly increasing when the clock stalls", func(t *testing.T) {
		ledger := newMemLedger()
		engine := pricediff.NewEngine(ledger, pricediff.WithClock(func() time.Time { return t0 }))

		for _, cents := range []int64{1999, 1799, 1999} {
			_, err := engine.Record(t.Context(), observation(cents, true))
			require.NoError(t, err)
		}

		history := ledger.history(7)
		require.Len(t, history, 3)
		assert.True(t, history[1].Timestamp.After(history[0].Timestamp))
		assert.True(t, history[2].Timestamp.After(history[1].Timestamp))
	})

	t.Run("Should persist nothing when the event cannot be recorded", func(t *testing.T) {
		ledger := newMemLedger()
		ledger.failing = true
		engine := pricediff.NewEngine(ledger)

		_, err := engine.Record(t.Context(), observation(1999, true))

		require.Error(t, err)
		assert.Empty(t, ledger.history(7))
	})
}

func TestRecordConcurrently(t *testing.T) {
	ledger := newMemLedger()
	engine := pricediff.NewEngine(ledger)

	var wg sync.WaitGroup
	for i := range 64 {
		wg.Go(func() {
			cents := int64(1999)
			if i%3 == 0 {
				cents = 1799
			}
			_, err := engine.Record(context.Background(), observation(cents, i%2 == 0))
			assert.NoError(t, err)
		})
	}
	wg.Wait()

	history := ledger.history(7)
	require.NotEmpty(t, history)
	for i := 1; i < len(history); i++ {
		prev, cur := history[i-1], history[i]
		assert.True(t, cur.Timestamp.After(prev.Timestamp), "timestamps must strictly increase")
		assert.False(t, prev.SameState(cur.PriceInCents, cur.InStock), "consecutive rows must differ")
	}

	ledger.mu.Lock()
	latestID := ledger.latest[7]
	ledger.mu.Unlock()
	assert.Equal(t, history[len(history)-1].ID, latestID)
	assert.Len(t, ledger.emitted(), len(history))
}
