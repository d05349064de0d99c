package config

import "time"

type Fetch struct {
	Timeout   time.Duration `env:"FETCH_TIMEOUT" envDefault:"15s" validate:"gt=0"`
	UserAgent string        `env:"FETCH_USER_AGENT" envDefault:"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"`
	// ProxyURLs is the rotating upstream proxy pool. Empty disables proxying.
	ProxyURLs []string `env:"FETCH_PROXY_URLS" envSeparator:"," validate:"required_if=UseProxy true"`
	UseProxy  bool     `env:"FETCH_USE_PROXY" envDefault:"false"`

	// StoreRPS and StoreBurst bound the request rate sent to each store.
	StoreRPS   float64 `env:"FETCH_STORE_RPS" envDefault:"2" validate:"gt=0"`
	StoreBurst int     `env:"FETCH_STORE_BURST" envDefault:"4" validate:"min=1"`
}
