package model

import "time"

// Like marks that a user liked a track. (userID, trackID) is a set:
// liking twice yields the same record.
type Like struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	TrackID   int64     `json:"trackId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Follow links a follower to the user they follow. Idempotent like Like.
type Follow struct {
	ID          int64     `json:"id"`
	FollowerID  int64     `json:"followerId"`
	FollowingID int64     `json:"followingId"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Play is one playback event. Append-only.
type Play struct {
	ID               int64     `json:"id"`
	UserID           int64     `json:"userId"`
	TrackID          int64     `json:"trackId"`
	ListenedDuration float64   `json:"listenedDuration,omitempty"` // seconds
	Completed        bool      `json:"completed"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Download is one download event. Append-only.
type Download struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	TrackID   int64     `json:"trackId"`
	CreatedAt time.Time `json:"createdAt"`
}
