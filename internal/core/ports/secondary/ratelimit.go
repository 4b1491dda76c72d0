package secondary

import (
	"context"
	"time"
)

// RateLimiter counts hits per key inside a window
type RateLimiter interface {
	// Allow records one hit for key and reports whether it is within limit
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
