// Package lock provides short leases that keep two ingest workers off the same
// product. Leases are advisory; database row locks remain the source of truth.
package lock

import (
	"context"
	"sync"
	"time"

	"github.com/awardrobe/pricetracker/internal/config"
)

// ReleaseFunc gives a lease back. It is safe to call more than once.
type ReleaseFunc func(ctx context.Context) error

type Locker interface {
	// TryAcquire takes the lease on key for at most ttl. ok is false when
	// another holder has it.
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (release ReleaseFunc, ok bool, err error)
}

var _ Locker = (*Local)(nil)

// Local is an in-process Locker for single-instance deployments and tests.
type Local struct {
	mu     sync.Mutex
	leases map[string]time.Time
	now    func() time.Time
}

func NewLocal() *Local {
	return &Local{leases: map[string]time.Time{}, now: time.Now}
}

func (l *Local) TryAcquire(_ context.Context, key string, ttl time.Duration) (ReleaseFunc, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if expires, held := l.leases[key]; held && now.Before(expires) {
		return nil, false, nil
	}
	expires := now.Add(ttl)
	l.leases[key] = expires

	var once sync.Once
	return func(context.Context) error {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			if l.leases[key].Equal(expires) {
				delete(l.leases, key)
			}
		})
		return nil
	}, true, nil
}

// New returns a Redis backed Locker when an address is configured and a Local
// one otherwise. The returned close func releases the Redis connection.
func New(ctx context.Context, cfg config.Redis) (Locker, func() error, error) {
	if cfg.Addr == "" {
		return NewLocal(), func() error { return nil }, nil
	}

	r, err := NewRedis(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return r, r.Close, nil
}
