// Package notify decides which watch rules a price change satisfies.
package notify

import (
	"github.com/google/uuid"

	"github.com/awardrobe/pricetracker/internal/model"
	"github.com/awardrobe/pricetracker/internal/pricediff"
	"github.com/awardrobe/pricetracker/pkg/ptr"
)

type Reason string

const (
	ReasonPriceThreshold Reason = "price_threshold"
	ReasonRestock        Reason = "restock"
)

// Trigger is one watch rule satisfied by one change event.
type Trigger struct {
	NotificationID      uuid.UUID `json:"notification_id"`
	UserID              string    `json:"user_id"`
	ProductID           uuid.UUID `json:"product_id"`
	VariantID           uuid.UUID `json:"variant_id"`
	Reasons             []Reason  `json:"reasons"`
	PriceInCents        int64     `json:"price_in_cents"`
	PriceThresholdCents *int64    `json:"price_threshold_cents,omitempty"`
	InStock             bool      `json:"in_stock"`
}

// Evaluate returns a trigger for every rule ev satisfies, in rule order.
func Evaluate(rules []model.ProductNotification, ev pricediff.ChangeEvent) []Trigger {
	var triggers []Trigger
	for _, rule := range rules {
		// rules without a variant watch every variant of the product
		if ptr.Deref(rule.VariantPublicID, ev.VariantID) != ev.VariantID {
			continue
		}

		var reasons []Reason
		if rule.PriceThresholdCents != nil && ev.Current.PriceInCents <= *rule.PriceThresholdCents {
			reasons = append(reasons, ReasonPriceThreshold)
		}
		if rule.NotifyOnRestock && !ev.Previous.InStock && ev.Current.InStock {
			reasons = append(reasons, ReasonRestock)
		}
		if len(reasons) == 0 {
			continue
		}

		triggers = append(triggers, Trigger{
			NotificationID:      rule.PublicID,
			UserID:              rule.UserID,
			ProductID:           ev.ProductID,
			VariantID:           ev.VariantID,
			Reasons:             reasons,
			PriceInCents:        ev.Current.PriceInCents,
			PriceThresholdCents: rule.PriceThresholdCents,
			InStock:             ev.Current.InStock,
		})
	}
	return triggers
}
