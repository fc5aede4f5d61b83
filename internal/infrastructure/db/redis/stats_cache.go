package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/superapp/auth-service/internal/api/metrics"
	"github.com/superapp/auth-service/internal/core/domain"
)

const (
	statsKey        = "auth:admin:stats"
	defaultStatsTTL = 30 * time.Second
)

// StatsCache holds the admin dashboard summary for a short TTL.
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStatsCache(client *redis.Client, ttl time.Duration) *StatsCache {
	if ttl <= 0 {
		ttl = defaultStatsTTL
	}
	return &StatsCache{client: client, ttl: ttl}
}

// Get reports a miss (false, nil) when nothing is cached.
func (c *StatsCache) Get(ctx context.Context) (*domain.Stats, bool, error) {
	raw, err := c.client.Get(ctx, statsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.StatsCacheTotal.WithLabelValues("miss").Inc()
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("stats cache get: %w", err)
	}

	var stats domain.Stats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, false, fmt.Errorf("stats cache decode: %w", err)
	}
	metrics.StatsCacheTotal.WithLabelValues("hit").Inc()
	return &stats, true, nil
}

func (c *StatsCache) Set(ctx context.Context, stats *domain.Stats) error {
	raw, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("stats cache encode: %w", err)
	}
	return c.client.Set(ctx, statsKey, raw, c.ttl).Err()
}

func (c *StatsCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, statsKey).Err()
}
