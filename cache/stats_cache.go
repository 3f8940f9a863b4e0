package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"musewave/logger"
	"musewave/model"

	"github.com/go-redis/redis/v8"
)

// Stats cache TTL. Aggregates are cheap to recompute; the cache only absorbs
// read bursts, so a short lifetime is fine.
const statsTTL = 60 * time.Second

// StatsCache keeps derived user/track aggregates in Redis. A nil cache (or
// one without a client) behaves as a permanent miss, so local mode can run
// without Redis.
type StatsCache struct {
	client *redis.Client
}

// NewStatsCache creates a stats cache over the given client.
func NewStatsCache(client *redis.Client) *StatsCache {
	return &StatsCache{client: client}
}

func userStatsKey(userID int64) string {
	return fmt.Sprintf("stats:user:%d", userID)
}

func trackStatsKey(trackID int64) string {
	return fmt.Sprintf("stats:track:%d", trackID)
}

func (c *StatsCache) get(ctx context.Context, key string, target interface{}) bool {
	if c == nil || c.client == nil {
		return false
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("stats cache read failed", logger.String("key", key), logger.ErrorField(err))
		}
		return false
	}
	if err := json.Unmarshal(data, target); err != nil {
		logger.Warn("stats cache entry corrupt", logger.String("key", key), logger.ErrorField(err))
		return false
	}
	return true
}

func (c *StatsCache) set(ctx context.Context, key string, value interface{}) {
	if c == nil || c.client == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, data, statsTTL).Err(); err != nil {
		logger.Warn("stats cache write failed", logger.String("key", key), logger.ErrorField(err))
	}
}

func (c *StatsCache) invalidate(ctx context.Context, keys ...string) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		logger.Warn("stats cache invalidation failed", logger.ErrorField(err))
	}
}

// GetUserStats returns cached user aggregates, if present.
func (c *StatsCache) GetUserStats(ctx context.Context, userID int64) (*model.UserStats, bool) {
	stats := &model.UserStats{}
	if !c.get(ctx, userStatsKey(userID), stats) {
		return nil, false
	}
	return stats, true
}

// SetUserStats caches user aggregates.
func (c *StatsCache) SetUserStats(ctx context.Context, stats *model.UserStats) {
	c.set(ctx, userStatsKey(stats.UserID), stats)
}

// GetTrackStats returns cached track aggregates, if present.
func (c *StatsCache) GetTrackStats(ctx context.Context, trackID int64) (*model.TrackStats, bool) {
	stats := &model.TrackStats{}
	if !c.get(ctx, trackStatsKey(trackID), stats) {
		return nil, false
	}
	return stats, true
}

// SetTrackStats caches track aggregates.
func (c *StatsCache) SetTrackStats(ctx context.Context, stats *model.TrackStats) {
	c.set(ctx, trackStatsKey(stats.TrackID), stats)
}

// InvalidateUser drops a user's cached aggregates.
func (c *StatsCache) InvalidateUser(ctx context.Context, userID int64) {
	c.invalidate(ctx, userStatsKey(userID))
}

// InvalidateTrack drops a track's cached aggregates, and the owner's, since
// track events feed both.
func (c *StatsCache) InvalidateTrack(ctx context.Context, trackID, ownerID int64) {
	c.invalidate(ctx, trackStatsKey(trackID), userStatsKey(ownerID))
}
