package model

import (
	"time"

	"github.com/google/uuid"
)

// ProductNotification is a user's watch rule on a product.
type ProductNotification struct {
	ID        int64
	PublicID  uuid.UUID
	UserID    string
	ProductID int64
	// VariantPublicID restricts the rule to one variant; nil matches every variant.
	VariantPublicID     *uuid.UUID
	PriceThresholdCents *int64
	NotifyOnRestock     bool
	CreatedAt           time.Time
}
