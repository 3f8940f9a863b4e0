package repository

import (
	"database/sql"
	"fmt"

	"musewave/model"
)

// mysqlStatsRepository implements StatsRepository with aggregate queries.
type mysqlStatsRepository struct {
	db *sql.DB
}

// NewMySQLStatsRepository creates a new mysqlStatsRepository.
func NewMySQLStatsRepository(db *sql.DB) StatsRepository {
	return &mysqlStatsRepository{db: db}
}

// UserStats computes a user's aggregates from their tracks and social graph.
func (r *mysqlStatsRepository) UserStats(userID int64) (*model.UserStats, error) {
	stats := &model.UserStats{UserID: userID}

	err := r.db.QueryRow(`SELECT COUNT(*), COALESCE(SUM(plays), 0), COALESCE(SUM(likes), 0)
	                       FROM tracks WHERE user_id = ?`, userID).
		Scan(&stats.TrackCount, &stats.TotalPlays, &stats.TotalLikes)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate tracks for user %d: %w", userID, err)
	}

	err = r.db.QueryRow("SELECT COUNT(*) FROM follows WHERE following_id = ?", userID).Scan(&stats.FollowerCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count followers for user %d: %w", userID, err)
	}
	err = r.db.QueryRow("SELECT COUNT(*) FROM follows WHERE follower_id = ?", userID).Scan(&stats.FollowingCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count following for user %d: %w", userID, err)
	}

	// Distinct listeners on the user's tracks inside the trailing window.
	err = r.db.QueryRow(fmt.Sprintf(`SELECT COUNT(DISTINCT p.user_id)
	                       FROM plays p JOIN tracks t ON p.track_id = t.id
	                       WHERE t.user_id = ? AND p.created_at >= NOW() - INTERVAL %d DAY`,
		model.MonthlyListenerWindowDays), userID).
		Scan(&stats.MonthlyListeners)
	if err != nil {
		return nil, fmt.Errorf("failed to count monthly listeners for user %d: %w", userID, err)
	}

	return stats, nil
}

// TrackStats computes a track's aggregates from its counters and play log.
func (r *mysqlStatsRepository) TrackStats(trackID int64) (*model.TrackStats, error) {
	stats := &model.TrackStats{TrackID: trackID}

	err := r.db.QueryRow("SELECT plays, likes, downloads FROM tracks WHERE id = ?", trackID).
		Scan(&stats.Plays, &stats.Likes, &stats.Downloads)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read counters for track %d: %w", trackID, err)
	}

	var completed int64
	err = r.db.QueryRow(`SELECT COUNT(DISTINCT user_id), COALESCE(SUM(completed), 0)
	                      FROM plays WHERE track_id = ?`, trackID).
		Scan(&stats.UniqueListeners, &completed)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate plays for track %d: %w", trackID, err)
	}
	if stats.Plays > 0 {
		stats.CompletionRate = float64(completed) / float64(stats.Plays)
	}

	return stats, nil
}
