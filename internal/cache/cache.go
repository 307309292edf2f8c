package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a best-effort Redis wrapper. Every method degrades to a no-op or
// a miss when Redis is unreachable; callers continue against the database.
type Cache struct {
	client *redis.Client
}

// Connect dials Redis. On failure the returned Cache is disabled rather than
// nil so callers never have to branch.
func Connect(redisURL string) *Cache {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("[Cache] Invalid Redis URL, caching disabled: %v", err)
		return &Cache{}
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("[Cache] Redis ping failed, caching disabled: %v", err)
		return &Cache{}
	}

	return &Cache{client: client}
}

// Disabled returns a cache that always misses. Used in tests and when no
// Redis is configured.
func Disabled() *Cache {
	return &Cache{}
}

// Enabled reports whether a live Redis connection backs this cache.
func (c *Cache) Enabled() bool {
	return c.client != nil
}

// GetJSON loads a cached JSON value into dest. Returns false on miss, on a
// Redis error, or on a corrupt payload.
func (c *Cache) GetJSON(ctx context.Context, key string, dest interface{}) bool {
	if c.client == nil {
		return false
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("[Cache] Get %s failed (continuing without cache): %v", key, err)
		}
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		log.Printf("[Cache] Corrupt payload for %s (continuing without cache): %v", key, err)
		return false
	}

	return true
}

// SetJSON stores a JSON value with a TTL.
func (c *Cache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if c.client == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		log.Printf("[Cache] Marshal for %s failed: %v", key, err)
		return
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		log.Printf("[Cache] Set %s failed: %v", key, err)
	}
}

// Delete removes keys.
func (c *Cache) Delete(ctx context.Context, keys ...string) {
	if c.client == nil || len(keys) == 0 {
		return
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		log.Printf("[Cache] Del failed: %v", err)
	}
}

// CountWindow increments a fixed-window counter and returns the count within
// the window. Returns 0 when Redis is unavailable so throttles fail open.
func (c *Cache) CountWindow(ctx context.Context, key string, window time.Duration) int64 {
	if c.client == nil {
		return 0
	}

	count, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		log.Printf("[Cache] Incr %s failed (failing open): %v", key, err)
		return 0
	}

	if count == 1 {
		if err := c.client.Expire(ctx, key, window).Err(); err != nil {
			log.Printf("[Cache] Expire %s failed: %v", key, err)
		}
	}

	return count
}

// Increment bumps a plain counter key and returns the new value.
func (c *Cache) Increment(ctx context.Context, key string) int64 {
	if c.client == nil {
		return 0
	}

	count, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		log.Printf("[Cache] Incr %s failed: %v", key, err)
		return 0
	}
	return count
}

// GetCount reads a plain counter key, 0 on miss or error.
func (c *Cache) GetCount(ctx context.Context, key string) int64 {
	if c.client == nil {
		return 0
	}

	count, err := c.client.Get(ctx, key).Int64()
	if err != nil {
		if err != redis.Nil {
			log.Printf("[Cache] Get %s failed: %v", key, err)
		}
		return 0
	}
	return count
}

// ZIncr bumps a member's score inside a sorted set.
func (c *Cache) ZIncr(ctx context.Context, set, member string) {
	if c.client == nil {
		return
	}

	if err := c.client.ZIncrBy(ctx, set, 1, member).Err(); err != nil {
		log.Printf("[Cache] ZIncrBy %s failed: %v", set, err)
	}
}

// ZTop returns the n highest-scored members of a sorted set.
func (c *Cache) ZTop(ctx context.Context, set string, n int64) []string {
	if c.client == nil {
		return nil
	}

	members, err := c.client.ZRevRange(ctx, set, 0, n-1).Result()
	if err != nil {
		log.Printf("[Cache] ZRevRange %s failed: %v", set, err)
		return nil
	}
	return members
}
