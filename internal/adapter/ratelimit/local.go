// Package ratelimit holds the in-process limiter used when redis is disabled.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"gitlab.com/codeprep.net/internal/core/ports/secondary"
)

var _ secondary.RateLimiter = (*LocalLimiter)(nil)

// LocalLimiter keeps one token bucket per key. A bucket refills limit
// tokens per window and bursts up to limit. Buckets idle for a whole window
// are full again, so they are swept instead of kept forever.
type LocalLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
	now       func() time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	window   time.Duration
	lastSeen time.Time
}

func NewLocalLimiter() *LocalLimiter {
	return &LocalLimiter{
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

func (l *LocalLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	if limit <= 0 || window <= 0 {
		return true, nil
	}
	every := rate.Every(window / time.Duration(limit))
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= window {
		l.sweep(now)
		l.lastSweep = now
	}

	b, ok := l.buckets[key]
	if !ok || b.limiter.Burst() != limit || b.limiter.Limit() != every {
		b = &bucket{limiter: rate.NewLimiter(every, limit), window: window}
		l.buckets[key] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1), nil
}

func (l *LocalLimiter) sweep(now time.Time) {
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) >= b.window {
			delete(l.buckets, key)
		}
	}
}

// size reports how many keys are tracked
func (l *LocalLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
