package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter enforces a fixed-window request limit per client key,
// backed by Redis so the limit holds across server instances.
type RateLimiter struct {
	client      *redis.Client
	maxRequests int
	window      time.Duration
}

// NewFixedWindowLimiter creates a limiter allowing maxRequests per window.
func NewFixedWindowLimiter(client *redis.Client, maxRequests int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		client:      client,
		maxRequests: maxRequests,
		window:      window,
	}
}

// allowScript increments the per-key counter and reports the verdict in
// one atomic round trip. Concurrent requests cannot both pass the boundary.
var allowScript = redis.NewScript(`
	local key = KEYS[1]
	local max_requests = tonumber(ARGV[1])
	local window = tonumber(ARGV[2])
	local current_time = tonumber(ARGV[3])

	local current = redis.call('GET', key)

	if current == false then
		redis.call('SET', key, 1, 'EX', window)
		return {1, max_requests - 1, current_time + window}
	end

	current = tonumber(current)
	if current < max_requests then
		redis.call('INCR', key)
		local ttl = redis.call('TTL', key)
		return {1, max_requests - current - 1, current_time + ttl}
	end

	local ttl = redis.call('TTL', key)
	return {0, 0, current_time + ttl}
`)

// Allow reports whether a request under key may proceed, along with the
// remaining quota and when the window resets.
func (rl *RateLimiter) Allow(ctx context.Context, key string) (bool, int, time.Time, error) {
	redisKey := fmt.Sprintf("ratelimit:%s", key)

	now := time.Now()
	result, err := allowScript.Run(
		ctx,
		rl.client,
		[]string{redisKey},
		rl.maxRequests,
		int(rl.window.Seconds()),
		now.Unix(),
	).Result()
	if err != nil {
		return false, 0, time.Time{}, fmt.Errorf("rate limit check failed: %w", err)
	}

	resultSlice, ok := result.([]interface{})
	if !ok || len(resultSlice) != 3 {
		return false, 0, time.Time{}, fmt.Errorf("unexpected result format")
	}

	allowed := resultSlice[0].(int64) == 1
	remaining := int(resultSlice[1].(int64))
	resetTime := time.Unix(resultSlice[2].(int64), 0)

	return allowed, remaining, resetTime, nil
}

// Reset clears the rate limit for a key
func (rl *RateLimiter) Reset(ctx context.Context, key string) error {
	redisKey := fmt.Sprintf("ratelimit:%s", key)
	return rl.client.Del(ctx, redisKey).Err()
}

// MaxRequests returns the maximum number of requests allowed per window.
func (rl *RateLimiter) MaxRequests() int {
	return rl.maxRequests
}
