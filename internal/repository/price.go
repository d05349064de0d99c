package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/awardrobe/pricetracker/internal/model"
	"github.com/awardrobe/pricetracker/internal/storage/db"
)

type ListPriceHistoryParams struct {
	VariantID int64
	Since     time.Time
	Limit     int32
}

// PriceRepository reads price history. Writes go through PriceLedger.
type PriceRepository interface {
	WithDB(db db.DB) PriceRepository
	ListPriceHistory(ctx context.Context, params ListPriceHistoryParams) ([]model.Price, error)
}

type priceRepository struct {
	db db.DB
}

func NewPriceRepository(db db.DB) PriceRepository {
	return &priceRepository{db: db}
}

func (r priceRepository) WithDB(db db.DB) PriceRepository {
	return &priceRepository{db: db}
}

func (r priceRepository) ListPriceHistory(ctx context.Context, params ListPriceHistoryParams) ([]model.Price, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, variant_id, price_in_cents, in_stock, created_at
		FROM prices
		WHERE variant_id = @variant_id AND created_at >= @since
		ORDER BY created_at
		LIMIT @limit
	`, pgx.NamedArgs{
		"variant_id": params.VariantID,
		"since":      params.Since,
		"limit":      params.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list price history: %w", err)
	}
	defer rows.Close()

	prices := []model.Price{}
	for rows.Next() {
		var p model.Price
		if err := rows.Scan(&p.ID, &p.VariantID, &p.PriceInCents, &p.InStock, &p.Timestamp); err != nil {
			return nil, fmt.Errorf("scan price: %w", err)
		}
		prices = append(prices, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate prices: %w", err)
	}

	return prices, nil
}
