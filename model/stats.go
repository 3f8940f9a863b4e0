package model

// MonthlyListenerWindowDays is the trailing window for the distinct-listener count.
const MonthlyListenerWindowDays = 30

// UserStats are aggregates derived from a user's tracks and social graph.
// Computed on read and cached; never a source of truth.
type UserStats struct {
	UserID           int64 `json:"userId"`
	TrackCount       int64 `json:"trackCount"`
	TotalPlays       int64 `json:"totalPlays"`
	TotalLikes       int64 `json:"totalLikes"`
	FollowerCount    int64 `json:"followerCount"`
	FollowingCount   int64 `json:"followingCount"`
	MonthlyListeners int64 `json:"monthlyListeners"`
}

// TrackStats are aggregates derived from a track's event logs.
type TrackStats struct {
	TrackID         int64   `json:"trackId"`
	Plays           int64   `json:"plays"`
	Likes           int64   `json:"likes"`
	Downloads       int64   `json:"downloads"`
	UniqueListeners int64   `json:"uniqueListeners"`
	CompletionRate  float64 `json:"completionRate"` // completed plays / plays
}
