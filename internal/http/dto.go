package http

import (
	"time"

	"github.com/google/uuid"

	"github.com/awardrobe/pricetracker/internal/ingest"
	"github.com/awardrobe/pricetracker/internal/model"
)

type CreateProductRequest struct {
	ProductURL string `json:"productUrl" validate:"required,weburl,max=2048"`
}

type CreateNotificationRequest struct {
	UserID              string     `json:"userId" validate:"required,max=128"`
	VariantID           *uuid.UUID `json:"variantId"`
	PriceThresholdCents *int64     `json:"priceThresholdCents" validate:"omitempty,gte=0"`
	NotifyOnRestock     bool       `json:"notifyOnRestock"`
}

type DiscoverRequest struct {
	StoreHandle string `validate:"required,storehandle"`
	Limit       int    `validate:"gte=0,lte=10000"`
}

type ProductResponse struct {
	ID          uuid.UUID `json:"id"`
	StoreHandle string    `json:"storeHandle"`
	ProductCode string    `json:"productCode"`
	Name        string    `json:"name"`
	CreatedAt   time.Time `json:"createdAt"`
}

type PriceResponse struct {
	PriceInCents int64     `json:"priceInCents"`
	InStock      bool      `json:"inStock"`
	Timestamp    time.Time `json:"timestamp"`
}

type AttributeResponse struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type VariantResponse struct {
	ID          uuid.UUID           `json:"id"`
	ProductURL  string              `json:"productUrl"`
	Attributes  []AttributeResponse `json:"attributes"`
	LatestPrice *PriceResponse      `json:"latestPrice,omitempty"`
}

type ProductDetailsResponse struct {
	ProductResponse
	Variants []VariantResponse `json:"variants"`
}

type NotificationResponse struct {
	ID                  uuid.UUID  `json:"id"`
	UserID              string     `json:"userId"`
	ProductID           uuid.UUID  `json:"productId"`
	VariantID           *uuid.UUID `json:"variantId,omitempty"`
	PriceThresholdCents *int64     `json:"priceThresholdCents,omitempty"`
	NotifyOnRestock     bool       `json:"notifyOnRestock"`
	CreatedAt           time.Time  `json:"createdAt"`
}

type DiscoverResponse struct {
	Discovered int `json:"discovered"`
	Added      int `json:"added"`
	Existing   int `json:"existing"`
	Failed     int `json:"failed"`
}

func toProductResponse(p model.Product) ProductResponse {
	return ProductResponse{
		ID:          p.PublicID,
		StoreHandle: p.StoreHandle,
		ProductCode: p.ProductCode,
		Name:        p.Name,
		CreatedAt:   p.CreatedAt,
	}
}

func toPriceResponse(p model.Price) PriceResponse {
	return PriceResponse{PriceInCents: p.PriceInCents, InStock: p.InStock, Timestamp: p.Timestamp}
}

func toVariantResponse(v model.ProductVariant) VariantResponse {
	res := VariantResponse{
		ID:         v.PublicID,
		ProductURL: v.ProductURL,
		Attributes: make([]AttributeResponse, 0, len(v.Attributes)),
	}
	for _, a := range v.Attributes {
		res.Attributes = append(res.Attributes, AttributeResponse{Name: a.Name, Value: a.Value})
	}
	if v.LatestPrice != nil {
		price := toPriceResponse(*v.LatestPrice)
		res.LatestPrice = &price
	}
	return res
}

func toProductDetailsResponse(p model.Product, variants []model.ProductVariant) ProductDetailsResponse {
	res := ProductDetailsResponse{
		ProductResponse: toProductResponse(p),
		Variants:        make([]VariantResponse, 0, len(variants)),
	}
	for _, v := range variants {
		res.Variants = append(res.Variants, toVariantResponse(v))
	}
	return res
}

func toNotificationResponse(n model.ProductNotification, productID uuid.UUID) NotificationResponse {
	return NotificationResponse{
		ID:                  n.PublicID,
		UserID:              n.UserID,
		ProductID:           productID,
		VariantID:           n.VariantPublicID,
		PriceThresholdCents: n.PriceThresholdCents,
		NotifyOnRestock:     n.NotifyOnRestock,
		CreatedAt:           n.CreatedAt,
	}
}

func toDiscoverResponse(r ingest.DiscoverResult) DiscoverResponse {
	return DiscoverResponse(r)
}
