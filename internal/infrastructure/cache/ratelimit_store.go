// Package cache provides the fixed-window counters behind rate limiting.
package cache

import (
	"context"
	"time"
)

// RateLimitStore counts requests per key within a fixed window. Incr
// returns the count after the increment; the first call of a window
// starts it.
type RateLimitStore interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
	Close() error
}
