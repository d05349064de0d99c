// Package adapter defines the contract every store integration implements and
// the helpers they share.
package adapter

import (
	"context"

	"github.com/awardrobe/pricetracker/internal/model"
)

// Canonical attribute names. Only these take part in the completeness check.
const (
	AttrColor  = "Color"
	AttrSize   = "Size"
	AttrLength = "Length"
)

// ProductPrice is one purchasable variant as observed upstream.
type ProductPrice struct {
	ProductURL   string
	Attributes   []model.VariantAttribute
	PriceInCents int64
	InStock      bool
}

// ProductDetails is the normalized result of one product fetch.
type ProductDetails struct {
	Name     string
	Variants []ProductPrice
}

// Adapter translates one store's API into the canonical model.
//
// Implementations never swallow errors: every upstream failure surfaces as an
// apperr type, and a result is returned only when every response it depends on
// was fetched and validated.
type Adapter interface {
	// Handle is the unique store identifier, e.g. "uniqlo-us".
	Handle() string
	// Name is the display name used when seeding the store table.
	Name() string
	// URLPrefixes lists the product URL prefixes this store owns.
	URLPrefixes() []string

	// DiscoverProducts lists product codes. A non-positive limit pages until the
	// total reported by the store.
	DiscoverProducts(ctx context.Context, limit int) ([]string, error)
	// ResolveProductCode extracts the product code from a user supplied URL and
	// confirms the product exists upstream.
	ResolveProductCode(ctx context.Context, productURL string) (string, error)
	// FetchProductDetails returns the product name and its complete variants.
	FetchProductDetails(ctx context.Context, productCode string) (ProductDetails, error)
}
