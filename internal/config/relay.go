package config

import "time"

type Relay struct {
	BatchSize uint32        `env:"RELAY_BATCH_SIZE" envDefault:"100" validate:"gt=0"`
	Interval  time.Duration `env:"RELAY_INTERVAL" envDefault:"1s" validate:"gt=0"`
	// MaxAttempts bounds deliveries of one message before it is parked with its error.
	MaxAttempts uint32 `env:"RELAY_MAX_ATTEMPTS" envDefault:"5" validate:"gt=0"`
}
