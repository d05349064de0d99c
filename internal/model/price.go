package model

import "time"

// Price is an append-only observation of a variant's price and stock.
type Price struct {
	ID           int64     `json:"-"`
	VariantID    int64     `json:"-"`
	PriceInCents int64     `json:"price_in_cents"`
	InStock      bool      `json:"in_stock"`
	Timestamp    time.Time `json:"timestamp"`
}

// SameState reports whether p and other describe the same price and stock.
func (p Price) SameState(priceInCents int64, inStock bool) bool {
	return p.PriceInCents == priceInCents && p.InStock == inStock
}
