package model

import "time"

// Album groups a user's tracks under one release.
type Album struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"userId"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	CoverURL    string     `json:"coverUrl,omitempty"`
	ReleaseDate *time.Time `json:"releaseDate,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// AlbumUpdate carries the mutable album fields for PATCH requests.
type AlbumUpdate struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	CoverURL    *string    `json:"coverUrl"`
	ReleaseDate *time.Time `json:"releaseDate"`
}

// AlbumWithTracks is an album plus its member tracks.
type AlbumWithTracks struct {
	Album  Album    `json:"album"`
	Tracks []*Track `json:"tracks"`
}
