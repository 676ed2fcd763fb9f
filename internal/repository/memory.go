package repository

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// MemoryRateLimiter is the in-process fallback. Token buckets approximate
// the redis rolling window well enough for a single process.
type MemoryRateLimiter struct {
	limiters sync.Map
}

func NewMemoryRateLimiter() *MemoryRateLimiter {
	return &MemoryRateLimiter{}
}

func (r *MemoryRateLimiter) CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error) {
	if limit <= 0 || window <= 0 {
		return true, nil
	}

	lim := r.getLimiter(userID, limit, window)
	return lim.Allow(), nil
}

func (r *MemoryRateLimiter) getLimiter(userID int64, limit int, window time.Duration) *rate.Limiter {
	if v, ok := r.limiters.Load(userID); ok {
		if lim, ok := v.(*rate.Limiter); ok {
			return lim
		}
	}

	lim := rate.NewLimiter(rate.Limit(float64(limit)/window.Seconds()), limit)
	actual, loaded := r.limiters.LoadOrStore(userID, lim)
	if loaded {
		if actualLim, ok := actual.(*rate.Limiter); ok {
			return actualLim
		}
	}
	return lim
}
