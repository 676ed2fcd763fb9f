package repository

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *RedisRateLimiter) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, NewRedisRateLimiter(client)
}

func TestRedisRateLimiter(t *testing.T) {
	mr, limiter := setupRedis(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := limiter.CheckRateLimit(ctx, 42, 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should pass", i+1)
	}

	allowed, err := limiter.CheckRateLimit(ctx, 42, 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed, "fourth request must be limited")

	// another user has an independent counter
	allowed, err = limiter.CheckRateLimit(ctx, 43, 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)

	// window expiry resets the counter
	mr.FastForward(time.Minute + time.Second)
	allowed, err = limiter.CheckRateLimit(ctx, 42, 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestMemoryRateLimiter(t *testing.T) {
	limiter := NewMemoryRateLimiter()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		allowed, err := limiter.CheckRateLimit(ctx, 1, 5, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, err := limiter.CheckRateLimit(ctx, 1, 5, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)

	// zero limit means unlimited
	allowed, err = limiter.CheckRateLimit(ctx, 1, 0, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

type failingLimiter struct{ err error }

func (f *failingLimiter) CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error) {
	return false, f.err
}

func TestFailoverFallsBackToMemory(t *testing.T) {
	logger := zerolog.New(io.Discard)
	primary := &failingLimiter{err: errors.New("redis down")}
	limiter := NewFailoverRateLimiter(primary, NewMemoryRateLimiter(), &logger)
	ctx := context.Background()

	allowed, err := limiter.CheckRateLimit(ctx, 1, 5, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed, "fallback limiter must answer when primary fails")

	// subsequent calls skip the broken primary entirely
	for i := 0; i < 4; i++ {
		_, err := limiter.CheckRateLimit(ctx, 1, 5, time.Minute)
		require.NoError(t, err)
	}

	allowed, err = limiter.CheckRateLimit(ctx, 1, 5, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed, "fallback enforces the limit")
}

func TestFailoverPrefersPrimary(t *testing.T) {
	logger := zerolog.New(io.Discard)
	_, redisLimiter := setupRedis(t)
	limiter := NewFailoverRateLimiter(redisLimiter, NewMemoryRateLimiter(), &logger)
	ctx := context.Background()

	allowed, err := limiter.CheckRateLimit(ctx, 9, 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = limiter.CheckRateLimit(ctx, 9, 1, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed, "primary enforces the limit")
}
