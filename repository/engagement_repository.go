package repository

import (
	"database/sql"
	"fmt"

	"musewave/model"
)

// mysqlEngagementRepository implements EngagementRepository for MySQL.
type mysqlEngagementRepository struct {
	db *sql.DB
}

// NewMySQLEngagementRepository creates a new mysqlEngagementRepository.
func NewMySQLEngagementRepository(db *sql.DB) EngagementRepository {
	return &mysqlEngagementRepository{db: db}
}

// CreateLike inserts the like and bumps the track counter atomically.
// Re-liking returns the existing record and leaves the counter alone.
func (r *mysqlEngagementRepository) CreateLike(userID, trackID int64) (*model.Like, bool, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin like transaction: %w", err)
	}
	defer tx.Rollback()

	existing := &model.Like{}
	err = tx.QueryRow("SELECT id, user_id, track_id, created_at FROM likes WHERE user_id = ? AND track_id = ?",
		userID, trackID).Scan(&existing.ID, &existing.UserID, &existing.TrackID, &existing.CreatedAt)
	if err == nil {
		return existing, false, nil
	}
	if err != sql.ErrNoRows {
		return nil, false, fmt.Errorf("failed to check existing like: %w", err)
	}

	res, err := tx.Exec("INSERT INTO likes (user_id, track_id) VALUES (?, ?)", userID, trackID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to insert like: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, false, fmt.Errorf("failed to get like insert ID: %w", err)
	}
	if _, err := tx.Exec("UPDATE tracks SET likes = likes + 1 WHERE id = ?", trackID); err != nil {
		return nil, false, fmt.Errorf("failed to bump like counter: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("failed to commit like: %w", err)
	}

	return r.getLike(id)
}

func (r *mysqlEngagementRepository) getLike(id int64) (*model.Like, bool, error) {
	like := &model.Like{}
	err := r.db.QueryRow("SELECT id, user_id, track_id, created_at FROM likes WHERE id = ?", id).
		Scan(&like.ID, &like.UserID, &like.TrackID, &like.CreatedAt)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read back like %d: %w", id, err)
	}
	return like, true, nil
}

// DeleteLike removes the like and decrements the counter; reports whether a
// like existed.
func (r *mysqlEngagementRepository) DeleteLike(userID, trackID int64) (bool, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return false, fmt.Errorf("failed to begin unlike transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec("DELETE FROM likes WHERE user_id = ? AND track_id = ?", userID, trackID)
	if err != nil {
		return false, fmt.Errorf("failed to delete like: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return false, nil
	}
	if _, err := tx.Exec("UPDATE tracks SET likes = GREATEST(likes - 1, 0) WHERE id = ?", trackID); err != nil {
		return false, fmt.Errorf("failed to drop like counter: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit unlike: %w", err)
	}
	return true, nil
}

// GetLike retrieves a like record for the (user, track) pair.
func (r *mysqlEngagementRepository) GetLike(userID, trackID int64) (*model.Like, error) {
	like := &model.Like{}
	err := r.db.QueryRow("SELECT id, user_id, track_id, created_at FROM likes WHERE user_id = ? AND track_id = ?",
		userID, trackID).Scan(&like.ID, &like.UserID, &like.TrackID, &like.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan like: %w", err)
	}
	return like, nil
}

// ListLikedTracks retrieves the tracks a user has liked, newest like first.
func (r *mysqlEngagementRepository) ListLikedTracks(userID int64) ([]*model.Track, error) {
	query := `SELECT ` + prefixedTrackColumns("t") + `
	           FROM tracks t JOIN likes l ON l.track_id = t.id
	           WHERE l.user_id = ? ORDER BY l.created_at DESC`
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query liked tracks: %w", err)
	}
	defer rows.Close()

	tracks := make([]*model.Track, 0)
	for rows.Next() {
		track, err := scanTrack(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan liked track: %w", err)
		}
		tracks = append(tracks, track)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration in ListLikedTracks: %w", err)
	}
	return tracks, nil
}

// CreateFollow inserts the follow edge; idempotent like CreateLike.
func (r *mysqlEngagementRepository) CreateFollow(followerID, followingID int64) (*model.Follow, bool, error) {
	existing := &model.Follow{}
	err := r.db.QueryRow("SELECT id, follower_id, following_id, created_at FROM follows WHERE follower_id = ? AND following_id = ?",
		followerID, followingID).Scan(&existing.ID, &existing.FollowerID, &existing.FollowingID, &existing.CreatedAt)
	if err == nil {
		return existing, false, nil
	}
	if err != sql.ErrNoRows {
		return nil, false, fmt.Errorf("failed to check existing follow: %w", err)
	}

	res, err := r.db.Exec("INSERT INTO follows (follower_id, following_id) VALUES (?, ?)", followerID, followingID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to insert follow: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, false, fmt.Errorf("failed to get follow insert ID: %w", err)
	}

	follow := &model.Follow{}
	err = r.db.QueryRow("SELECT id, follower_id, following_id, created_at FROM follows WHERE id = ?", id).
		Scan(&follow.ID, &follow.FollowerID, &follow.FollowingID, &follow.CreatedAt)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read back follow %d: %w", id, err)
	}
	return follow, true, nil
}

// DeleteFollow removes the follow edge; reports whether one existed.
func (r *mysqlEngagementRepository) DeleteFollow(followerID, followingID int64) (bool, error) {
	res, err := r.db.Exec("DELETE FROM follows WHERE follower_id = ? AND following_id = ?", followerID, followingID)
	if err != nil {
		return false, fmt.Errorf("failed to delete follow: %w", err)
	}
	affected, _ := res.RowsAffected()
	return affected > 0, nil
}

// GetFollow retrieves a follow edge.
func (r *mysqlEngagementRepository) GetFollow(followingID, followerID int64) (*model.Follow, error) {
	follow := &model.Follow{}
	err := r.db.QueryRow("SELECT id, follower_id, following_id, created_at FROM follows WHERE follower_id = ? AND following_id = ?",
		followerID, followingID).Scan(&follow.ID, &follow.FollowerID, &follow.FollowingID, &follow.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan follow: %w", err)
	}
	return follow, nil
}

func (r *mysqlEngagementRepository) listFollowUsers(query string, id int64) ([]*model.User, error) {
	rows, err := r.db.Query(query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query follow users: %w", err)
	}
	defer rows.Close()

	users := make([]*model.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan follow user: %w", err)
		}
		users = append(users, user)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration in follow users: %w", err)
	}
	return users, nil
}

// ListFollowers retrieves the users following userID.
func (r *mysqlEngagementRepository) ListFollowers(userID int64) ([]*model.User, error) {
	query := `SELECT ` + prefixedUserColumns("u") + `
	           FROM users u JOIN follows f ON f.follower_id = u.id
	           WHERE f.following_id = ? ORDER BY f.created_at DESC`
	return r.listFollowUsers(query, userID)
}

// ListFollowing retrieves the users userID follows.
func (r *mysqlEngagementRepository) ListFollowing(userID int64) ([]*model.User, error) {
	query := `SELECT ` + prefixedUserColumns("u") + `
	           FROM users u JOIN follows f ON f.following_id = u.id
	           WHERE f.follower_id = ? ORDER BY f.created_at DESC`
	return r.listFollowUsers(query, userID)
}

// CreatePlay appends the event and bumps the play counter in one transaction.
func (r *mysqlEngagementRepository) CreatePlay(play *model.Play) (int64, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin play transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec("INSERT INTO plays (user_id, track_id, listened_duration, completed) VALUES (?, ?, ?, ?)",
		play.UserID, play.TrackID, play.ListenedDuration, play.Completed)
	if err != nil {
		return 0, fmt.Errorf("failed to insert play: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get play insert ID: %w", err)
	}
	if _, err := tx.Exec("UPDATE tracks SET plays = plays + 1 WHERE id = ?", play.TrackID); err != nil {
		return 0, fmt.Errorf("failed to bump play counter: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit play: %w", err)
	}
	return id, nil
}

func (r *mysqlEngagementRepository) listPlays(query string, id int64) ([]*model.Play, error) {
	rows, err := r.db.Query(query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query plays: %w", err)
	}
	defer rows.Close()

	plays := make([]*model.Play, 0)
	for rows.Next() {
		play := &model.Play{}
		err := rows.Scan(&play.ID, &play.UserID, &play.TrackID, &play.ListenedDuration, &play.Completed, &play.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan play: %w", err)
		}
		plays = append(plays, play)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration in plays: %w", err)
	}
	return plays, nil
}

// ListPlaysByTrack retrieves a track's play log, newest first.
func (r *mysqlEngagementRepository) ListPlaysByTrack(trackID int64) ([]*model.Play, error) {
	return r.listPlays("SELECT id, user_id, track_id, listened_duration, completed, created_at FROM plays WHERE track_id = ? ORDER BY created_at DESC", trackID)
}

// ListPlaysByUser retrieves a user's play log, newest first.
func (r *mysqlEngagementRepository) ListPlaysByUser(userID int64) ([]*model.Play, error) {
	return r.listPlays("SELECT id, user_id, track_id, listened_duration, completed, created_at FROM plays WHERE user_id = ? ORDER BY created_at DESC", userID)
}

// CreateDownload appends the event and bumps the download counter in one
// transaction.
func (r *mysqlEngagementRepository) CreateDownload(userID, trackID int64) (*model.Download, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin download transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec("INSERT INTO downloads (user_id, track_id) VALUES (?, ?)", userID, trackID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert download: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get download insert ID: %w", err)
	}
	if _, err := tx.Exec("UPDATE tracks SET downloads = downloads + 1 WHERE id = ?", trackID); err != nil {
		return nil, fmt.Errorf("failed to bump download counter: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit download: %w", err)
	}

	download := &model.Download{}
	err = r.db.QueryRow("SELECT id, user_id, track_id, created_at FROM downloads WHERE id = ?", id).
		Scan(&download.ID, &download.UserID, &download.TrackID, &download.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to read back download %d: %w", id, err)
	}
	return download, nil
}

// ListDownloadsByTrack retrieves a track's download log, newest first.
func (r *mysqlEngagementRepository) ListDownloadsByTrack(trackID int64) ([]*model.Download, error) {
	rows, err := r.db.Query("SELECT id, user_id, track_id, created_at FROM downloads WHERE track_id = ? ORDER BY created_at DESC", trackID)
	if err != nil {
		return nil, fmt.Errorf("failed to query downloads: %w", err)
	}
	defer rows.Close()

	downloads := make([]*model.Download, 0)
	for rows.Next() {
		d := &model.Download{}
		if err := rows.Scan(&d.ID, &d.UserID, &d.TrackID, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan download: %w", err)
		}
		downloads = append(downloads, d)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration in downloads: %w", err)
	}
	return downloads, nil
}
