package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"musewave/logger"
	"musewave/model"

	"github.com/go-redis/redis/v8"
)

const searchSnapshotKey = "search:index"

// IndexSnapshot is the persisted form of the search index: the full document
// sets, written wholesale after every rebuild.
type IndexSnapshot struct {
	Tracks []model.TrackDocument `json:"tracks"`
	Users  []model.UserDocument  `json:"users"`
}

// SearchCache persists search index snapshots in Redis so a restarted server
// can serve queries before its first rebuild. Nil-safe like StatsCache.
type SearchCache struct {
	client *redis.Client
}

// NewSearchCache creates a search cache over the given client.
func NewSearchCache(client *redis.Client) *SearchCache {
	return &SearchCache{client: client}
}

// SaveSnapshot stores the full index. No TTL: the snapshot is replaced on
// every rebuild and only ever read as a warm-start hint.
func (c *SearchCache) SaveSnapshot(ctx context.Context, snapshot *IndexSnapshot) {
	if c == nil || c.client == nil {
		return
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		logger.Warn("failed to encode search snapshot", logger.ErrorField(err))
		return
	}
	if err := c.client.Set(ctx, searchSnapshotKey, data, 0).Err(); err != nil {
		logger.Warn("failed to persist search snapshot", logger.ErrorField(err))
	}
}

// LoadSnapshot retrieves the stored index, if any.
func (c *SearchCache) LoadSnapshot(ctx context.Context) (*IndexSnapshot, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}
	data, err := c.client.Get(ctx, searchSnapshotKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load search snapshot: %w", err)
	}
	snapshot := &IndexSnapshot{}
	if err := json.Unmarshal(data, snapshot); err != nil {
		return nil, fmt.Errorf("search snapshot corrupt: %w", err)
	}
	return snapshot, nil
}
