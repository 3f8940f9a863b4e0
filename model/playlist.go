package model

import "time"

// Playlist is a user-curated, ordered set of tracks.
// Stored through GORM; tags mirror the table layout.
type Playlist struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	UserID      int64     `json:"userId" gorm:"index;not null"`
	Title       string    `json:"title" gorm:"size:255;not null"`
	Description string    `json:"description,omitempty" gorm:"type:text"`
	Public      bool      `json:"public" gorm:"default:true"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	Entries []PlaylistEntry `json:"entries,omitempty" gorm:"foreignKey:PlaylistID"`
}

// PlaylistEntry places a track at a position inside a playlist.
type PlaylistEntry struct {
	ID         int64     `json:"id" gorm:"primaryKey"`
	PlaylistID int64     `json:"playlistId" gorm:"uniqueIndex:uq_playlist_track;not null"`
	TrackID    int64     `json:"trackId" gorm:"uniqueIndex:uq_playlist_track;not null"`
	Position   int       `json:"position" gorm:"not null"`
	CreatedAt  time.Time `json:"createdAt"`
}

// TableName keeps the historical table name.
func (PlaylistEntry) TableName() string { return "playlist_entries" }
