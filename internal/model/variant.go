package model

import (
	"github.com/google/uuid"
)

// VariantAttribute is one canonical (name, value) dimension of a variant, e.g. Color or Size.
type VariantAttribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type ProductVariant struct {
	ID         int64              `json:"-"`
	PublicID   uuid.UUID          `json:"id"`
	ProductID  int64              `json:"-"`
	ProductURL string             `json:"product_url"`
	Attributes []VariantAttribute `json:"attributes"`
	// AttributesKey is the variant identity within its product.
	AttributesKey string `json:"-"`
	// LatestPriceID points at the chronologically last price row. Only the price diff engine writes it.
	LatestPriceID *int64 `json:"-"`
	LatestPrice   *Price `json:"latest_price,omitempty"`
}
