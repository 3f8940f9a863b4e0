package model

import "time"

// Track represents an uploaded audio track.
type Track struct {
	ID         int64  `json:"id"`
	UserID     int64  `json:"userId"`
	AlbumID    int64  `json:"albumId,omitempty"` // 0 means no album
	Title      string `json:"title"`
	Artist     string `json:"artist"`     // display name shown on the track
	ArtistSlug string `json:"artistSlug"` // derived from Artist, not guaranteed unique
	Genre      string `json:"genre,omitempty"`
	Mood       string `json:"mood,omitempty"`
	Tags       Tags   `json:"tags,omitempty"`

	AudioURL  string  `json:"audioUrl"`
	AudioSize int64   `json:"audioSize,omitempty"`
	Duration  float64 `json:"duration,omitempty"` // seconds
	Format    string  `json:"format,omitempty"`
	CoverURL  string  `json:"coverUrl,omitempty"`

	Plays     int64 `json:"plays"`
	Likes     int64 `json:"likes"`
	Downloads int64 `json:"downloads"`
	Shares    int64 `json:"shares"`

	Published   bool       `json:"published"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"` // set once, on first publish

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Tags is a set of free-form labels stored as a JSON array column.
type Tags []string

// Contains reports whether tag is present.
func (t Tags) Contains(tag string) bool {
	for _, v := range t {
		if v == tag {
			return true
		}
	}
	return false
}

// TrackUpdate carries the mutable track fields for PATCH requests.
type TrackUpdate struct {
	Title     *string  `json:"title"`
	Genre     *string  `json:"genre"`
	Mood      *string  `json:"mood"`
	Tags      *Tags    `json:"tags"`
	AlbumID   *int64   `json:"albumId"`
	CoverURL  *string  `json:"coverUrl"`
	Duration  *float64 `json:"duration"`
	Published *bool    `json:"published"`
}

// TrackFilter narrows and orders track listings.
type TrackFilter struct {
	UserID    int64
	AlbumID   int64
	Genre     string
	Mood      string
	Tag       string
	Published *bool
	SortBy    string // createdAt, plays, likes, downloads
	SortOrder string // asc, desc
	Limit     int
	Offset    int
}

// Track listing defaults.
const (
	DefaultTrackLimit = 50
	MaxTrackLimit     = 200
)
