package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"linkhub/internal/domain"
	"linkhub/internal/metrics"

	"github.com/redis/go-redis/v9"
)

// Cache holds the public profile page payload in Redis.
// This implements the CACHE-ASIDE PATTERN:
// 1. Check cache first
// 2. If miss, build from the database
// 3. Store in cache for next time
// Any profile or link mutation invalidates the owner's entry.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache creates a new Redis cache
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{
		client: client,
		ttl:    ttl,
	}
}

// profileKey builds the cache key for a username.
// Key naming convention: "profile:{username}"
func profileKey(username string) string {
	return fmt.Sprintf("profile:%s", username)
}

// GetProfilePage retrieves a cached page payload.
// Returns nil on a cache miss - a miss is not an error.
func (c *Cache) GetProfilePage(ctx context.Context, username string) (*domain.ProfilePage, error) {
	start := time.Now()
	defer func() {
		metrics.CacheOperationDuration.WithLabelValues("get").Observe(time.Since(start).Seconds())
	}()

	data, err := c.client.Get(ctx, profileKey(username)).Result()
	if err == redis.Nil {
		metrics.RecordCacheMiss()
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get error: %w", err)
	}

	metrics.RecordCacheHit()

	var page domain.ProfilePage
	if err := json.Unmarshal([]byte(data), &page); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached profile page: %w", err)
	}

	return &page, nil
}

// SetProfilePage stores a page payload with the configured TTL.
func (c *Cache) SetProfilePage(ctx context.Context, username string, page *domain.ProfilePage) error {
	start := time.Now()
	defer func() {
		metrics.CacheOperationDuration.WithLabelValues("set").Observe(time.Since(start).Seconds())
	}()

	data, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("failed to marshal profile page: %w", err)
	}

	if err := c.client.Set(ctx, profileKey(username), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set error: %w", err)
	}

	return nil
}

// DeleteProfilePage invalidates a cached payload after a mutation.
func (c *Cache) DeleteProfilePage(ctx context.Context, username string) error {
	start := time.Now()
	defer func() {
		metrics.CacheOperationDuration.WithLabelValues("delete").Observe(time.Since(start).Seconds())
	}()

	if err := c.client.Del(ctx, profileKey(username)).Err(); err != nil {
		return fmt.Errorf("redis delete error: %w", err)
	}

	return nil
}

// Clear removes every cached profile page.
// Useful for testing or bulk invalidation.
func (c *Cache) Clear(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, "profile:*", 0).Iterator()

	keys := []string{}
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}

	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan error: %w", err)
	}

	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("redis delete error: %w", err)
		}
	}

	return nil
}

// InitRedis creates a new Redis client
func InitRedis(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,

		// Connection pool settings
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}
