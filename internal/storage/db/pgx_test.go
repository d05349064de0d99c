package db

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/awardrobe/pricetracker/internal/config"
)

func TestConnectionString(t *testing.T) {
	t.Run("Should prefer an explicit url", func(t *testing.T) {
		cfg := config.Postgres{URL: "postgres://a:b@db:6432/x", Host: "ignored"}
		assert.Equal(t, "postgres://a:b@db:6432/x", connectionString(cfg))
	})

	t.Run("Should escape credentials", func(t *testing.T) {
		cfg := config.Postgres{Host: "db", Port: 5432, User: "tracker", Password: "p@ss/word", DB: "prices", SSLMode: "disable"}
		assert.Equal(t, "postgres://tracker:p%40ss%2Fword@db:5432/prices?sslmode=disable", connectionString(cfg))
	})
}
