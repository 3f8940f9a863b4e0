package cache

import (
	"context"
	"testing"

	"musewave/model"

	"github.com/stretchr/testify/assert"
)

// Without a Redis client every operation is a silent miss, so file-mode
// deployments run cache-free instead of crashing.

func TestStatsCacheNilClientIsAMiss(t *testing.T) {
	ctx := context.Background()
	c := NewStatsCache(nil)

	c.SetUserStats(ctx, &model.UserStats{UserID: 1, TrackCount: 3})
	_, ok := c.GetUserStats(ctx, 1)
	assert.False(t, ok)

	c.SetTrackStats(ctx, &model.TrackStats{TrackID: 1, Plays: 9})
	_, ok = c.GetTrackStats(ctx, 1)
	assert.False(t, ok)

	c.InvalidateUser(ctx, 1)
	c.InvalidateTrack(ctx, 1, 2)
}

func TestStatsCacheNilReceiver(t *testing.T) {
	ctx := context.Background()
	var c *StatsCache

	_, ok := c.GetUserStats(ctx, 1)
	assert.False(t, ok)
	c.SetUserStats(ctx, &model.UserStats{UserID: 1})
	c.InvalidateTrack(ctx, 1, 2)
}

func TestSearchCacheNilClient(t *testing.T) {
	ctx := context.Background()
	c := NewSearchCache(nil)

	c.SaveSnapshot(ctx, &IndexSnapshot{Tracks: []model.TrackDocument{{TrackID: 1}}})
	snapshot, err := c.LoadSnapshot(ctx)
	assert.NoError(t, err)
	assert.Nil(t, snapshot)

	var nilCache *SearchCache
	nilCache.SaveSnapshot(ctx, &IndexSnapshot{})
	snapshot, err = nilCache.LoadSnapshot(ctx)
	assert.NoError(t, err)
	assert.Nil(t, snapshot)
}
