package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/awardrobe/pricetracker/internal/apperr"
	"github.com/awardrobe/pricetracker/internal/model"
	"github.com/awardrobe/pricetracker/internal/repository"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

type ListProductsParams struct {
	Limit  int
	Offset int
}

type ListPriceHistoryParams struct {
	VariantID uuid.UUID
	Since     time.Time
	Limit     int
}

type CreateNotificationParams struct {
	UserID              string
	ProductID           uuid.UUID
	VariantID           *uuid.UUID
	PriceThresholdCents *int64
	NotifyOnRestock     bool
}

// ProductDetails is a tracked product with its variants and their latest price.
type ProductDetails struct {
	model.Product
	Variants []model.ProductVariant `json:"variants"`
}

// ProductService is the read side of the tracker plus watch rule management.
type ProductService interface {
	ListProducts(ctx context.Context, params ListProductsParams) ([]model.Product, error)
	GetProduct(ctx context.Context, productID uuid.UUID) (ProductDetails, error)
	ListPriceHistory(ctx context.Context, params ListPriceHistoryParams) ([]model.Price, error)
	CreateNotification(ctx context.Context, params CreateNotificationParams) (model.ProductNotification, error)
}

type productService struct {
	productRepo      repository.ProductRepository
	priceRepo        repository.PriceRepository
	notificationRepo repository.NotificationRepository
}

func NewProductService(
	productRepo repository.ProductRepository,
	priceRepo repository.PriceRepository,
	notificationRepo repository.NotificationRepository,
) ProductService {
	return &productService{
		productRepo:      productRepo,
		priceRepo:        priceRepo,
		notificationRepo: notificationRepo,
	}
}

func (s *productService) ListProducts(ctx context.Context, params ListProductsParams) ([]model.Product, error) {
	products, err := s.productRepo.ListProducts(ctx, repository.ListProductsParams{
		Limit:  int32(pageSize(params.Limit)),
		Offset: int32(max(params.Offset, 0)),
	})
	if err != nil {
		return nil, fmt.Errorf("product repository list products: %w", err)
	}

	return products, nil
}

func (s *productService) GetProduct(ctx context.Context, productID uuid.UUID) (ProductDetails, error) {
	product, err := s.productRepo.GetProductByPublicID(ctx, productID)
	if err != nil {
		return ProductDetails{}, fmt.Errorf("product repository get product: %w", err)
	}

	variants, err := s.productRepo.ListVariantsByProduct(ctx, product.ID)
	if err != nil {
		return ProductDetails{}, fmt.Errorf("product repository list variants: %w", err)
	}

	return ProductDetails{Product: product, Variants: variants}, nil
}

// ListPriceHistory returns the variant's price rows, newest first.
func (s *productService) ListPriceHistory(ctx context.Context, params ListPriceHistoryParams) ([]model.Price, error) {
	variant, err := s.productRepo.GetVariantByPublicID(ctx, params.VariantID)
	if err != nil {
		return nil, fmt.Errorf("product repository get variant: %w", err)
	}

	prices, err := s.priceRepo.ListPriceHistory(ctx, repository.ListPriceHistoryParams{
		VariantID: variant.ID,
		Since:     params.Since,
		Limit:     int32(pageSize(params.Limit)),
	})
	if err != nil {
		return nil, fmt.Errorf("price repository list price history: %w", err)
	}

	return prices, nil
}

func (s *productService) CreateNotification(ctx context.Context, params CreateNotificationParams) (model.ProductNotification, error) {
	product, err := s.productRepo.GetProductByPublicID(ctx, params.ProductID)
	if err != nil {
		return model.ProductNotification{}, fmt.Errorf("product repository get product: %w", err)
	}

	var variantID *int64
	if params.VariantID != nil {
		variant, err := s.productRepo.GetVariantByPublicID(ctx, *params.VariantID)
		if err != nil {
			return model.ProductNotification{}, fmt.Errorf("product repository get variant: %w", err)
		}
		// a rule may only watch variants of its own product
		if variant.ProductID != product.ID {
			return model.ProductNotification{}, &apperr.NotFoundError{Resource: "variant", Key: params.VariantID.String()}
		}
		variantID = &variant.ID
	}

	notification, err := s.notificationRepo.CreateNotification(ctx, repository.CreateNotificationParams{
		UserID:              params.UserID,
		ProductID:           product.ID,
		VariantID:           variantID,
		PriceThresholdCents: params.PriceThresholdCents,
		NotifyOnRestock:     params.NotifyOnRestock,
	})
	if err != nil {
		return model.ProductNotification{}, fmt.Errorf("notification repository create notification: %w", err)
	}

	return notification, nil
}

func pageSize(limit int) int {
	if limit <= 0 {
		return defaultPageSize
	}
	return min(limit, maxPageSize)
}
