package pricediff

import (
	"time"

	"github.com/google/uuid"

	"github.com/awardrobe/pricetracker/internal/model"
)

const (
	TopicPriceCreated = "price.created"
	TopicPriceChanged = "price.changed"
)

// PriceState is the observable state of a variant at one point in time.
type PriceState struct {
	PriceInCents int64     `json:"price_in_cents"`
	InStock      bool      `json:"in_stock"`
	Timestamp    time.Time `json:"timestamp"`
}

func stateOf(p model.Price) PriceState {
	return PriceState{PriceInCents: p.PriceInCents, InStock: p.InStock, Timestamp: p.Timestamp}
}

// CreatedEvent is emitted for the first observation of a variant.
type CreatedEvent struct {
	VariantID uuid.UUID  `json:"variant_id"`
	ProductID uuid.UUID  `json:"product_id"`
	Current   PriceState `json:"current"`
}

// ChangeEvent is emitted when a tracked variant's price or stock changed.
type ChangeEvent struct {
	VariantID uuid.UUID  `json:"variant_id"`
	ProductID uuid.UUID  `json:"product_id"`
	Previous  PriceState `json:"previous"`
	Current   PriceState `json:"current"`
}
