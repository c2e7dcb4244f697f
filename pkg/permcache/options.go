package permcache

import (
	"log/slog"
	"time"
)

const (
	DefaultTTL          = time.Minute
	DefaultCapacity     = 10_000
	DefaultFetchTimeout = 10 * time.Second
)

// Option configures a Cache.
type Option func(*Cache)

// WithTTL sets how long a fetched set is considered fresh. Stale sets are
// still served while a background fetch refreshes them.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithCapacity bounds the number of users kept in memory.
func WithCapacity(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// WithFetchTimeout bounds each fetch independently of the caller's context.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.fetchTimeout = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithStore shares fetched sets with other instances through s.
func WithStore(s Store) Option {
	return func(c *Cache) {
		c.store = s
	}
}
