package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/awardrobe/pricetracker/internal/apperr"
	"github.com/awardrobe/pricetracker/internal/model"
)

func (r productRepository) EnsureVariants(ctx context.Context, productID int64, variants []model.ProductVariant) ([]model.ProductVariant, error) {
	if len(variants) == 0 {
		return []model.ProductVariant{}, nil
	}

	batch := &pgx.Batch{}
	for _, v := range variants {
		publicID, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("new variant id: %w", err)
		}
		attributes, err := json.Marshal(v.Attributes)
		if err != nil {
			return nil, fmt.Errorf("marshal attributes: %w", err)
		}

		// the no-op update makes RETURNING yield rows that already existed
		batch.Queue(`
			INSERT INTO product_variants (public_id, product_id, product_url, attributes, attributes_key)
			VALUES (@public_id, @product_id, @product_url, @attributes, @attributes_key)
			ON CONFLICT (product_id, attributes_key) DO UPDATE
			SET product_url = EXCLUDED.product_url
			RETURNING id, public_id, latest_price_id
		`, pgx.NamedArgs{
			"public_id":      publicID,
			"product_id":     productID,
			"product_url":    v.ProductURL,
			"attributes":     attributes,
			"attributes_key": v.AttributesKey,
		})
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	out := make([]model.ProductVariant, len(variants))
	for i, v := range variants {
		v.ProductID = productID
		if err := results.QueryRow().Scan(&v.ID, &v.PublicID, &v.LatestPriceID); err != nil {
			return nil, fmt.Errorf("upsert variant %s: %w", v.AttributesKey, err)
		}
		out[i] = v
	}

	if err := results.Close(); err != nil {
		return nil, fmt.Errorf("close variant batch: %w", err)
	}

	return out, nil
}

const variantColumns = `
	v.id, v.public_id, v.product_id, v.product_url, v.attributes, v.attributes_key, v.latest_price_id,
	lp.id, lp.price_in_cents, lp.in_stock, lp.created_at`

func scanVariant(row pgx.Row) (model.ProductVariant, error) {
	var (
		v          model.ProductVariant
		attributes []byte
		priceID    *int64
		cents      *int64
		inStock    *bool
		ts         *time.Time
	)
	if err := row.Scan(
		&v.ID, &v.PublicID, &v.ProductID, &v.ProductURL, &attributes, &v.AttributesKey, &v.LatestPriceID,
		&priceID, &cents, &inStock, &ts,
	); err != nil {
		return v, err
	}

	if err := json.Unmarshal(attributes, &v.Attributes); err != nil {
		return v, fmt.Errorf("unmarshal attributes: %w", err)
	}

	if priceID != nil {
		v.LatestPrice = &model.Price{
			ID:           *priceID,
			VariantID:    v.ID,
			PriceInCents: *cents,
			InStock:      *inStock,
			Timestamp:    *ts,
		}
	}

	return v, nil
}

func (r productRepository) ListVariantsByProduct(ctx context.Context, productID int64) ([]model.ProductVariant, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+variantColumns+`
		FROM product_variants v
		LEFT JOIN prices lp ON lp.id = v.latest_price_id
		WHERE v.product_id = @product_id
		ORDER BY v.id
	`, pgx.NamedArgs{"product_id": productID})
	if err != nil {
		return nil, fmt.Errorf("list variants: %w", err)
	}
	defer rows.Close()

	variants := []model.ProductVariant{}
	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan variant: %w", err)
		}
		variants = append(variants, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate variants: %w", err)
	}

	return variants, nil
}

func (r productRepository) GetVariantByPublicID(ctx context.Context, publicID uuid.UUID) (model.ProductVariant, error) {
	v, err := scanVariant(r.db.QueryRow(ctx, `
		SELECT `+variantColumns+`
		FROM product_variants v
		LEFT JOIN prices lp ON lp.id = v.latest_price_id
		WHERE v.public_id = @public_id
	`, pgx.NamedArgs{"public_id": publicID}))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ProductVariant{}, &apperr.NotFoundError{Resource: "variant", Key: publicID.String()}
		}
		return model.ProductVariant{}, fmt.Errorf("get variant: %w", err)
	}

	return v, nil
}
