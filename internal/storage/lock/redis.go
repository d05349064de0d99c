package lock

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/awardrobe/pricetracker/internal/config"
)

//go:embed scripts/release.lua
var releaseScript string

var _ Locker = (*Redis)(nil)

// Redis holds leases as SET NX PX keys so they expire if a worker dies.
type Redis struct {
	rdb     *redis.Client
	release *redis.Script
	prefix  string
}

// NewRedis connects to Redis and verifies the connection.
func NewRedis(ctx context.Context, cfg config.Redis) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		//nolint:errcheck
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Redis{
		rdb:     rdb,
		release: redis.NewScript(releaseScript),
		prefix:  "pricetracker:lease:",
	}, nil
}

func (r *Redis) TryAcquire(ctx context.Context, key string, ttl time.Duration) (ReleaseFunc, bool, error) {
	fullKey := r.prefix + key
	token := uuid.NewString()

	ok, err := r.rdb.SetNX(ctx, fullKey, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("set lease %s: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}

	return func(ctx context.Context) error {
		// only the holder may delete the key; an expired lease may belong to someone else now
		if err := r.release.Run(ctx, r.rdb, []string{fullKey}, token).Err(); err != nil {
			return fmt.Errorf("release lease %s: %w", key, err)
		}
		return nil
	}, true, nil
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}
