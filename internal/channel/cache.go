package channel

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	statsKeyPrefix  = "channel:stats:v1:"
	defaultStatsTTL = 30 * time.Second
)

// StatsCache keeps channel subscription counts in Redis for a short TTL so
// hot channel profiles do not hit the aggregate query on every request. A
// nil *StatsCache is valid and disables caching.
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStatsCache builds a cache on top of client. A non-positive ttl falls
// back to the default.
func NewStatsCache(client *redis.Client, ttl time.Duration) *StatsCache {
	if ttl <= 0 {
		ttl = defaultStatsTTL
	}
	return &StatsCache{client: client, ttl: ttl}
}

// Get returns the cached stats for the channel, reporting a miss (or any
// cache failure) as ok=false so callers fall through to the store.
func (c *StatsCache) Get(ctx context.Context, channelID uuid.UUID) (Stats, bool) {
	if c == nil {
		return Stats{}, false
	}
	raw, err := c.client.Get(ctx, statsKeyPrefix+channelID.String()).Result()
	if err != nil {
		return Stats{}, false
	}
	var stats Stats
	if err := json.Unmarshal([]byte(raw), &stats); err != nil {
		return Stats{}, false
	}
	return stats, true
}

// Set caches the stats, best effort.
func (c *StatsCache) Set(ctx context.Context, channelID uuid.UUID, stats Stats) {
	if c == nil {
		return
	}
	payload, err := json.Marshal(stats)
	if err != nil {
		return
	}
	c.client.Set(ctx, statsKeyPrefix+channelID.String(), payload, c.ttl)
}

// Invalidate drops cached stats for the given channels after a
// subscription change.
func (c *StatsCache) Invalidate(ctx context.Context, channelIDs ...uuid.UUID) {
	if c == nil || len(channelIDs) == 0 {
		return
	}
	keys := make([]string, 0, len(channelIDs))
	for _, id := range channelIDs {
		keys = append(keys, statsKeyPrefix+id.String())
	}
	// Best effort; stale counts age out at the TTL anyway.
	c.client.Del(ctx, keys...)
}
