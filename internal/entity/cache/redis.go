// Package cache provides the Redis-backed stats cache for the admin
// dashboard read path.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"sanctionwatch/internal/entity/models"
)

const statsKey = "sanctionwatch:admin:stats"

// RedisStatsCache stores the aggregated stats document under a single key
// with a TTL. Syncs invalidate it so the dashboard never serves counts from
// a replaced dataset for longer than one read.
type RedisStatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStatsCache(client *redis.Client, ttl time.Duration) *RedisStatsCache {
	return &RedisStatsCache{client: client, ttl: ttl}
}

// Get returns the cached stats, or (nil, nil) on a miss.
func (c *RedisStatsCache) Get(ctx context.Context) (*models.SourceStats, error) {
	payload, err := c.client.Get(ctx, statsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read stats cache: %w", err)
	}

	var stats models.SourceStats
	if err := json.Unmarshal(payload, &stats); err != nil {
		// A corrupt cache entry behaves like a miss; the next Set overwrites it.
		return nil, nil
	}
	return &stats, nil
}

// Set stores the stats document with the configured TTL.
func (c *RedisStatsCache) Set(ctx context.Context, stats *models.SourceStats) error {
	payload, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}
	if err := c.client.Set(ctx, statsKey, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("write stats cache: %w", err)
	}
	return nil
}

// Invalidate drops the cached stats document.
func (c *RedisStatsCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, statsKey).Err(); err != nil {
		return fmt.Errorf("invalidate stats cache: %w", err)
	}
	return nil
}
