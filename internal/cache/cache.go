// Package cache wraps Redis for the two hot read paths: per-input
// resolution results and per-date gate verdicts. The cache is optional;
// callers treat a nil *RedisCache as cache-off and hit the database.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"ncaam_v5/resolution/internal/metrics"
)

// Config holds Redis connection settings
type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// RedisCache is a thin JSON-over-Redis cache
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects and pings; callers decide whether a failure is
// fatal (the worker logs a warning and runs without a cache).
func NewRedisCache(cfg Config) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisCache{client: client}, nil
}

// ResolutionKey is the cache key for one provider input. Inputs are folded
// to lowercase so "Duke" and "DUKE" share an entry.
func ResolutionKey(source, input string) string {
	return fmt.Sprintf("resolve:%s:%s", source, strings.ToLower(input))
}

// GateKey is the cache key for one slate date (YYYY-MM-DD)
func GateKey(date string) string {
	return fmt.Sprintf("gate:%s", date)
}

// Get unmarshals the cached value into dest. Returns false on a miss.
func (c *RedisCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if c == nil {
		return false, nil
	}

	start := time.Now()
	data, err := c.client.Get(ctx, key).Bytes()
	metrics.RecordCacheOperation("get", time.Since(start).Seconds())

	if err == redis.Nil {
		metrics.RecordCacheMiss()
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("cache unmarshal %s: %w", key, err)
	}

	metrics.RecordCacheHit()
	return true, nil
}

// Set stores the value as JSON with a TTL
func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal %s: %w", key, err)
	}

	start := time.Now()
	err = c.client.Set(ctx, key, data, ttl).Err()
	metrics.RecordCacheOperation("set", time.Since(start).Seconds())

	if err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// Delete removes keys; unknown keys are not an error
func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if c == nil || len(keys) == 0 {
		return nil
	}

	start := time.Now()
	err := c.client.Del(ctx, keys...).Err()
	metrics.RecordCacheOperation("delete", time.Since(start).Seconds())

	if err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

// Close releases the underlying client
func (c *RedisCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
