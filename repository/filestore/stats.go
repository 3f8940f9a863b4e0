package filestore

import (
	"time"

	"musewave/model"
	"musewave/repository"
)

// UserStats computes a user's aggregates by scanning the collections.
func (s *Store) UserStats(userID int64) (*model.UserStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &model.UserStats{UserID: userID}

	ownTracks := make(map[int64]bool)
	for _, t := range s.tracks {
		if t.UserID == userID {
			ownTracks[t.ID] = true
			stats.TrackCount++
			stats.TotalPlays += t.Plays
			stats.TotalLikes += t.Likes
		}
	}
	for _, f := range s.follows {
		if f.FollowingID == userID {
			stats.FollowerCount++
		}
		if f.FollowerID == userID {
			stats.FollowingCount++
		}
	}

	cutoff := time.Now().AddDate(0, 0, -model.MonthlyListenerWindowDays)
	listeners := make(map[int64]bool)
	for _, p := range s.plays {
		if ownTracks[p.TrackID] && p.CreatedAt.After(cutoff) {
			listeners[p.UserID] = true
		}
	}
	stats.MonthlyListeners = int64(len(listeners))

	return stats, nil
}

// TrackStats computes a track's aggregates from its counters and play log.
func (s *Store) TrackStats(trackID int64) (*model.TrackStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t := s.trackByID(trackID)
	if t == nil {
		return nil, repository.ErrNotFound
	}

	stats := &model.TrackStats{
		TrackID:   trackID,
		Plays:     t.Plays,
		Likes:     t.Likes,
		Downloads: t.Downloads,
	}

	listeners := make(map[int64]bool)
	var completed int64
	for _, p := range s.plays {
		if p.TrackID != trackID {
			continue
		}
		listeners[p.UserID] = true
		if p.Completed {
			completed++
		}
	}
	stats.UniqueListeners = int64(len(listeners))
	if stats.Plays > 0 {
		stats.CompletionRate = float64(completed) / float64(stats.Plays)
	}

	return stats, nil
}
