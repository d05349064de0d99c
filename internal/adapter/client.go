package adapter

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/awardrobe/pricetracker/internal/config"
	"github.com/awardrobe/pricetracker/internal/fetch"
	"github.com/awardrobe/pricetracker/internal/schema"
)

// Client is the rate limited fetch path shared by the requests of one store.
type Client struct {
	fetcher  fetch.Fetcher
	limiter  *rate.Limiter
	useProxy bool
}

// NewClient creates a client for one store. A non-positive StoreRPS disables
// rate limiting.
func NewClient(fetcher fetch.Fetcher, cfg config.Fetch) *Client {
	limit := rate.Inf
	if cfg.StoreRPS > 0 {
		limit = rate.Limit(cfg.StoreRPS)
	}
	burst := cfg.StoreBurst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		fetcher:  fetcher,
		limiter:  rate.NewLimiter(limit, burst),
		useProxy: cfg.UseProxy,
	}
}

// Get waits for the store's rate limiter and fetches rawURL.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("wait for rate limiter: %w", err)
	}

	resp, err := c.fetcher.Fetch(ctx, rawURL, fetch.Options{UseProxy: c.useProxy})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// GetJSON fetches rawURL and validates the body against shape.
func GetJSON[T any](ctx context.Context, c *Client, rawURL string, shape schema.Shape) (T, error) {
	body, err := c.Get(ctx, rawURL)
	if err != nil {
		var zero T
		return zero, err
	}
	return schema.Decode[T](body, shape)
}
