package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"atomichabits/model"
	"atomichabits/utils"

	"github.com/redis/go-redis/v9"
)

// StatsCache keeps computed activity stats in Redis. Entries are keyed by a
// per-user version that Invalidate bumps, so stale entries are never read
// and simply expire. A nil cache always misses.
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStatsCache(client *redis.Client, ttl time.Duration) *StatsCache {
	return &StatsCache{client: client, ttl: ttl}
}

func versionKey(userID string) string {
	return fmt.Sprintf("stats_version:%s", userID)
}

func (c *StatsCache) key(ctx context.Context, userID, window string) (string, error) {
	version, err := c.client.Get(ctx, versionKey(userID)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	return fmt.Sprintf("stats:%s:v%d:%s", userID, version, window), nil
}

// GetStats returns nil, nil on a cache miss.
func (c *StatsCache) GetStats(ctx context.Context, userID, window string) (*model.ActivityStats, error) {
	if c == nil {
		return nil, nil
	}
	key, err := c.key(ctx, userID, window)
	if err != nil {
		return nil, fmt.Errorf("failed to read stats version: %w", err)
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		utils.TrackCacheOperation("stats", false)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stats from cache: %w", err)
	}

	var stats model.ActivityStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stats: %w", err)
	}
	utils.TrackCacheOperation("stats", true)
	return &stats, nil
}

func (c *StatsCache) SetStats(ctx context.Context, userID, window string, stats *model.ActivityStats) error {
	if c == nil {
		return nil
	}
	key, err := c.key(ctx, userID, window)
	if err != nil {
		return fmt.Errorf("failed to read stats version: %w", err)
	}

	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

func (c *StatsCache) Invalidate(ctx context.Context, userID string) error {
	if c == nil {
		return nil
	}
	return c.client.Incr(ctx, versionKey(userID)).Err()
}
