package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/awardrobe/pricetracker/internal/apperr"
	"github.com/awardrobe/pricetracker/internal/model"
	"github.com/awardrobe/pricetracker/internal/storage/db"
)

type StoreRepository interface {
	WithDB(db db.DB) StoreRepository
	// EnsureStores inserts missing stores and refreshes the rest, keyed by handle.
	EnsureStores(ctx context.Context, stores []model.Store) error
	GetStoreByHandle(ctx context.Context, handle string) (model.Store, error)
}

type storeRepository struct {
	db db.DB
}

func NewStoreRepository(db db.DB) StoreRepository {
	return &storeRepository{db: db}
}

func (r storeRepository) WithDB(db db.DB) StoreRepository {
	return &storeRepository{db: db}
}

func (r storeRepository) EnsureStores(ctx context.Context, stores []model.Store) error {
	batch := &pgx.Batch{}
	for _, store := range stores {
		publicID, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("new store id: %w", err)
		}

		batch.Queue(`
			INSERT INTO stores (public_id, handle, name, external_url, url_prefixes)
			VALUES (@public_id, @handle, @name, @external_url, @url_prefixes)
			ON CONFLICT (handle) DO UPDATE
			SET name         = EXCLUDED.name,
				external_url = EXCLUDED.external_url,
				url_prefixes = EXCLUDED.url_prefixes
		`, pgx.NamedArgs{
			"public_id":    publicID,
			"handle":       store.Handle,
			"name":         store.Name,
			"external_url": store.ExternalURL,
			"url_prefixes": store.URLPrefixes,
		})
	}

	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upsert stores: %w", err)
	}

	return nil
}

func (r storeRepository) GetStoreByHandle(ctx context.Context, handle string) (model.Store, error) {
	var store model.Store
	err := r.db.QueryRow(ctx, `
		SELECT id, public_id, handle, name, external_url, url_prefixes
		FROM stores
		WHERE handle = @handle
	`, pgx.NamedArgs{"handle": handle}).Scan(
		&store.ID, &store.PublicID, &store.Handle, &store.Name, &store.ExternalURL, &store.URLPrefixes,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Store{}, &apperr.NotFoundError{Resource: "store", Key: handle}
		}
		return model.Store{}, fmt.Errorf("get store by handle: %w", err)
	}

	return store, nil
}
