// Package repository defines the data-access interfaces and their MySQL
// implementations. A JSON-file-backed implementation for local mode lives in
// the filestore subpackage.
package repository

import (
	"errors"

	"musewave/model"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint (username, email)
	// would be violated.
	ErrDuplicate = errors.New("record already exists")
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	CreateUser(user *model.User) (int64, error)
	GetUserByID(id int64) (*model.User, error)
	GetUserByUsername(username string) (*model.User, error)
	GetUserByEmail(email string) (*model.User, error)
	UpdateUser(id int64, update model.UserUpdate) (*model.User, error)
	ListUsers() ([]*model.User, error)
	// ListArtists returns users owning at least one published track,
	// with published-track and follower counts attached.
	ListArtists() ([]*model.Artist, error)
}

// TrackRepository defines the interface for track data operations.
type TrackRepository interface {
	CreateTrack(track *model.Track) (int64, error)
	GetTrackByID(id int64) (*model.Track, error)
	ListTracks(filter model.TrackFilter) ([]*model.Track, error)
	// UpdateTrack applies the patch. The published flag transition sets
	// publishedAt exactly once; unpublishing never clears it.
	UpdateTrack(id int64, update model.TrackUpdate) (*model.Track, error)
	// DeleteTrack removes the track and its likes, plays, downloads and
	// comments in one transaction.
	DeleteTrack(id int64) error
}

// EngagementRepository covers likes, follows and the play/download event logs.
type EngagementRepository interface {
	// CreateLike is idempotent: a second like of the same (user, track)
	// returns the existing record with created=false and leaves the
	// counter untouched.
	CreateLike(userID, trackID int64) (like *model.Like, created bool, err error)
	// DeleteLike reports whether a like existed. The counter only moves
	// when one did.
	DeleteLike(userID, trackID int64) (bool, error)
	GetLike(userID, trackID int64) (*model.Like, error)
	ListLikedTracks(userID int64) ([]*model.Track, error)

	CreateFollow(followerID, followingID int64) (follow *model.Follow, created bool, err error)
	DeleteFollow(followerID, followingID int64) (bool, error)
	GetFollow(followingID, followerID int64) (*model.Follow, error)
	ListFollowers(userID int64) ([]*model.User, error)
	ListFollowing(userID int64) ([]*model.User, error)

	// CreatePlay appends the event and bumps the track play counter in the
	// same transaction.
	CreatePlay(play *model.Play) (int64, error)
	ListPlaysByTrack(trackID int64) ([]*model.Play, error)
	ListPlaysByUser(userID int64) ([]*model.Play, error)

	CreateDownload(userID, trackID int64) (*model.Download, error)
	ListDownloadsByTrack(trackID int64) ([]*model.Download, error)
}

// AlbumRepository defines the interface for album data operations.
type AlbumRepository interface {
	CreateAlbum(album *model.Album) (int64, error)
	GetAlbumByID(id int64) (*model.Album, error)
	ListAlbumsByUser(userID int64) ([]*model.Album, error)
	UpdateAlbum(id int64, update model.AlbumUpdate) (*model.Album, error)
	// DeleteAlbum detaches member tracks rather than deleting them.
	DeleteAlbum(id int64) error
	ListAlbumTracks(albumID int64) ([]*model.Track, error)
}

// StatsRepository computes the derived aggregates. Results are cached by the
// caller; implementations always compute from the underlying records.
type StatsRepository interface {
	UserStats(userID int64) (*model.UserStats, error)
	TrackStats(trackID int64) (*model.TrackStats, error)
}
