package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/awardrobe/pricetracker/internal/apperr"
	"github.com/awardrobe/pricetracker/internal/model"
	"github.com/awardrobe/pricetracker/internal/pricediff"
	"github.com/awardrobe/pricetracker/internal/storage/db"
	"github.com/awardrobe/pricetracker/pkg/outbox"
	"github.com/awardrobe/pricetracker/pkg/ptr"
)

var _ pricediff.Ledger = (*PriceLedger)(nil)

// PriceLedger is the only writer of prices and of latest_price_id. Each call
// runs in one transaction holding the variant row lock, and its events go to
// the outbox in that same transaction.
type PriceLedger struct {
	db         db.DB
	outboxRepo OutboxMsgRepository
}

func NewPriceLedger(db db.DB, outboxRepo OutboxMsgRepository) *PriceLedger {
	return &PriceLedger{db: db, outboxRepo: outboxRepo}
}

func (l *PriceLedger) WithinVariantLock(ctx context.Context, variantID int64, fn func(pricediff.Tx) error) error {
	return l.db.WithTx(ctx, func(tx db.DB) error {
		var locked int64
		if err := tx.QueryRow(ctx, `
			SELECT id FROM product_variants WHERE id = @id FOR UPDATE
		`, pgx.NamedArgs{"id": variantID}).Scan(&locked); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return &apperr.NotFoundError{Resource: "variant", Key: strconv.FormatInt(variantID, 10)}
			}
			return fmt.Errorf("lock variant: %w", err)
		}

		return fn(&ledgerTx{db: tx, outboxRepo: l.outboxRepo.WithDB(tx)})
	})
}

type ledgerTx struct {
	db         db.DB
	outboxRepo OutboxMsgRepository
}

func (t *ledgerTx) LatestPrice(ctx context.Context, variantID int64) (*model.Price, error) {
	var p model.Price
	err := t.db.QueryRow(ctx, `
		SELECT p.id, p.variant_id, p.price_in_cents, p.in_stock, p.created_at
		FROM product_variants v
		JOIN prices p ON p.id = v.latest_price_id
		WHERE v.id = @variant_id
	`, pgx.NamedArgs{"variant_id": variantID}).Scan(&p.ID, &p.VariantID, &p.PriceInCents, &p.InStock, &p.Timestamp)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get latest price: %w", err)
	}

	return &p, nil
}

func (t *ledgerTx) AppendPrice(ctx context.Context, price model.Price) (model.Price, error) {
	if err := t.db.QueryRow(ctx, `
		INSERT INTO prices (variant_id, price_in_cents, in_stock, created_at)
		VALUES (@variant_id, @price_in_cents, @in_stock, @created_at)
		RETURNING id
	`, pgx.NamedArgs{
		"variant_id":     price.VariantID,
		"price_in_cents": price.PriceInCents,
		"in_stock":       price.InStock,
		"created_at":     price.Timestamp,
	}).Scan(&price.ID); err != nil {
		return model.Price{}, fmt.Errorf("insert price: %w", err)
	}

	if _, err := t.db.Exec(ctx, `
		UPDATE product_variants SET latest_price_id = @price_id WHERE id = @variant_id
	`, pgx.NamedArgs{"price_id": price.ID, "variant_id": price.VariantID}); err != nil {
		return model.Price{}, fmt.Errorf("move latest price: %w", err)
	}

	return price, nil
}

func (t *ledgerTx) Emit(ctx context.Context, topic string, key string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", topic, err)
	}

	if err := t.outboxRepo.CreateOutboxMsg(ctx, CreateOutboxMsgParams{
		Topic:        topic,
		Headers:      outbox.BuildHeaders(ctx),
		Payload:      b,
		PartitionKey: ptr.New(key),
	}); err != nil {
		return fmt.Errorf("create outbox msg: %w", err)
	}

	return nil
}
