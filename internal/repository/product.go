package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/awardrobe/pricetracker/internal/apperr"
	"github.com/awardrobe/pricetracker/internal/model"
	"github.com/awardrobe/pricetracker/internal/storage/db"
)

type CreateProductParams struct {
	StoreID     int64
	StoreHandle string
	ProductCode string
	Name        string
	// Variants must carry ProductURL, Attributes and AttributesKey.
	Variants []model.ProductVariant
}

type ListProductsParams struct {
	Limit  int32
	Offset int32
}

type ProductRepository interface {
	WithDB(db db.DB) ProductRepository
	// CreateProductWithVariants inserts the product and its variants atomically.
	// A product already tracked for the store is a ConflictError.
	CreateProductWithVariants(ctx context.Context, params CreateProductParams) (model.Product, []model.ProductVariant, error)
	GetProductByPublicID(ctx context.Context, publicID uuid.UUID) (model.Product, error)
	ProductExists(ctx context.Context, storeID int64, productCode string) (bool, error)
	ListProducts(ctx context.Context, params ListProductsParams) ([]model.Product, error)
	// ListTrackedProducts pages through every product by ascending id.
	ListTrackedProducts(ctx context.Context, afterID int64, limit int32) ([]model.Product, error)

	// EnsureVariants inserts new variants and returns every given variant with
	// its stored ids, in input order.
	EnsureVariants(ctx context.Context, productID int64, variants []model.ProductVariant) ([]model.ProductVariant, error)
	ListVariantsByProduct(ctx context.Context, productID int64) ([]model.ProductVariant, error)
	GetVariantByPublicID(ctx context.Context, publicID uuid.UUID) (model.ProductVariant, error)
}

type productRepository struct {
	db db.DB
}

func NewProductRepository(db db.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r productRepository) WithDB(db db.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r productRepository) CreateProductWithVariants(ctx context.Context, params CreateProductParams) (model.Product, []model.ProductVariant, error) {
	publicID, err := uuid.NewV7()
	if err != nil {
		return model.Product{}, nil, fmt.Errorf("new product id: %w", err)
	}

	product := model.Product{
		PublicID:    publicID,
		StoreID:     params.StoreID,
		StoreHandle: params.StoreHandle,
		ProductCode: params.ProductCode,
		Name:        params.Name,
		CreatedAt:   time.Now(),
	}

	var variants []model.ProductVariant
	if err := r.db.WithTx(ctx, func(tx db.DB) error {
		if err := tx.QueryRow(ctx, `
			INSERT INTO products (public_id, store_id, product_code, name, created_at)
			VALUES (@public_id, @store_id, @product_code, @name, @created_at)
			RETURNING id
		`, pgx.NamedArgs{
			"public_id":    product.PublicID,
			"store_id":     product.StoreID,
			"product_code": product.ProductCode,
			"name":         product.Name,
			"created_at":   product.CreatedAt,
		}).Scan(&product.ID); err != nil {
			if isUniqueViolation(err) {
				return &apperr.ConflictError{
					Resource: "product",
					Key:      fmt.Sprintf("%s/%s", params.StoreHandle, params.ProductCode),
				}
			}
			return fmt.Errorf("insert product: %w", err)
		}

		var err error
		variants, err = r.WithDB(tx).EnsureVariants(ctx, product.ID, params.Variants)
		if err != nil {
			return fmt.Errorf("ensure variants: %w", err)
		}

		return nil
	}); err != nil {
		return model.Product{}, nil, err
	}

	return product, variants, nil
}

const productColumns = `p.id, p.public_id, p.store_id, s.handle, p.product_code, p.name, p.created_at`

func scanProduct(row pgx.Row) (model.Product, error) {
	var p model.Product
	err := row.Scan(&p.ID, &p.PublicID, &p.StoreID, &p.StoreHandle, &p.ProductCode, &p.Name, &p.CreatedAt)
	return p, err
}

func (r productRepository) GetProductByPublicID(ctx context.Context, publicID uuid.UUID) (model.Product, error) {
	product, err := scanProduct(r.db.QueryRow(ctx, `
		SELECT `+productColumns+`
		FROM products p
		JOIN stores s ON s.id = p.store_id
		WHERE p.public_id = @public_id
	`, pgx.NamedArgs{"public_id": publicID}))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Product{}, &apperr.NotFoundError{Resource: "product", Key: publicID.String()}
		}
		return model.Product{}, fmt.Errorf("get product: %w", err)
	}

	return product, nil
}

func (r productRepository) ProductExists(ctx context.Context, storeID int64, productCode string) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM products WHERE store_id = @store_id AND product_code = @product_code)
	`, pgx.NamedArgs{"store_id": storeID, "product_code": productCode}).Scan(&exists); err != nil {
		return false, fmt.Errorf("product exists: %w", err)
	}

	return exists, nil
}

func (r productRepository) ListProducts(ctx context.Context, params ListProductsParams) ([]model.Product, error) {
	return r.listProducts(ctx, `
		SELECT `+productColumns+`
		FROM products p
		JOIN stores s ON s.id = p.store_id
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT @limit OFFSET @offset
	`, pgx.NamedArgs{"limit": params.Limit, "offset": params.Offset})
}

func (r productRepository) ListTrackedProducts(ctx context.Context, afterID int64, limit int32) ([]model.Product, error) {
	return r.listProducts(ctx, `
		SELECT `+productColumns+`
		FROM products p
		JOIN stores s ON s.id = p.store_id
		WHERE p.id > @after_id
		ORDER BY p.id
		LIMIT @limit
	`, pgx.NamedArgs{"after_id": afterID, "limit": limit})
}

func (r productRepository) listProducts(ctx context.Context, query string, args pgx.NamedArgs) ([]model.Product, error) {
	rows, err := r.db.Query(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}
