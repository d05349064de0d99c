package config

import "time"

type Ingest struct {
	Interval time.Duration `env:"INGEST_INTERVAL" envDefault:"1h" validate:"gt=0"`
	Workers  int           `env:"INGEST_WORKERS" envDefault:"4" validate:"min=1"`
	// LeaseTTL bounds how long one process may hold a product while polling it.
	LeaseTTL time.Duration `env:"INGEST_LEASE_TTL" envDefault:"5m" validate:"gt=0"`

	RetryAttempts uint64        `env:"INGEST_RETRY_ATTEMPTS" envDefault:"3"`
	RetryBackoff  time.Duration `env:"INGEST_RETRY_BACKOFF" envDefault:"500ms" validate:"gte=0"`

	// DiscoverStores lists store handles whose catalogue is discovered on every run.
	DiscoverStores []string `env:"INGEST_DISCOVER_STORES" envSeparator:","`
	DiscoverLimit  int      `env:"INGEST_DISCOVER_LIMIT" envDefault:"0" validate:"gte=0"`
}
