package model

import (
	"time"

	"github.com/google/uuid"
)

type Store struct {
	ID          int64     `json:"-"`
	PublicID    uuid.UUID `json:"id"`
	Handle      string    `json:"handle"`
	Name        string    `json:"name"`
	ExternalURL string    `json:"external_url"`
	URLPrefixes []string  `json:"url_prefixes"`
}

// Product is identified naturally by (StoreID, ProductCode).
type Product struct {
	ID          int64     `json:"-"`
	PublicID    uuid.UUID `json:"id"`
	StoreID     int64     `json:"-"`
	StoreHandle string    `json:"store_handle"`
	ProductCode string    `json:"product_code"`
	Name        string    `json:"name"`
	CreatedAt   time.Time `json:"created_at"`
}
