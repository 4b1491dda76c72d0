package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"gitlab.com/codeprep.net/internal/core/ports/secondary"
)

const keyPrefix = "ratelimit:"

var _ secondary.RateLimiter = (*Limiter)(nil)

// Limiter enforces fixed windows with a counter per key
type Limiter struct {
	redisClient *redis.Client
	timeout     time.Duration
}

func NewLimiter(redisClient *redis.Client, timeout time.Duration) *Limiter {
	if timeout <= 0 {
		timeout = 500 * time.Millisecond
	}
	return &Limiter{redisClient: redisClient, timeout: timeout}
}

func (l *Limiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if limit <= 0 {
		return true, nil
	}
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	redisKey := keyPrefix + key
	acquired, err := l.redisClient.SetNX(ctx, redisKey, 1, window).Result()
	if err != nil {
		return false, fmt.Errorf("rate limit check failed: %w", err)
	}
	count := int64(1)
	if !acquired {
		count, err = l.redisClient.Incr(ctx, redisKey).Result()
		if err != nil {
			return false, fmt.Errorf("rate limit check failed: %w", err)
		}
		// a key left without expiry would block forever
		if ttl, err := l.redisClient.TTL(ctx, redisKey).Result(); err == nil && ttl < 0 {
			_ = l.redisClient.Expire(ctx, redisKey, window).Err()
		}
	}
	return count <= int64(limit), nil
}
