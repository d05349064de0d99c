package registry

import (
	"github.com/awardrobe/pricetracker/internal/adapter"
	"github.com/awardrobe/pricetracker/internal/adapter/abercrombie"
	"github.com/awardrobe/pricetracker/internal/adapter/uniqlo"
	"github.com/awardrobe/pricetracker/internal/config"
	"github.com/awardrobe/pricetracker/internal/fetch"
)

// Default registers every supported store against the production APIs. Each
// store gets its own rate limiter.
func Default(fetcher fetch.Fetcher, cfg config.Fetch) *Registry {
	return New(
		uniqlo.New(adapter.NewClient(fetcher, cfg), ""),
		abercrombie.New(adapter.NewClient(fetcher, cfg), ""),
	)
}
