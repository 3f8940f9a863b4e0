package repository

import (
	"errors"
	"fmt"

	"musewave/model"

	"gorm.io/gorm"
)

// PlaylistRepository covers user-curated playlists. Implemented on GORM;
// the playlist module postdates the raw-SQL repositories and follows the
// newer convention.
type PlaylistRepository interface {
	CreatePlaylist(playlist *model.Playlist) (int64, error)
	GetPlaylistByID(id int64) (*model.Playlist, error)
	ListPlaylistsByUser(userID int64) ([]*model.Playlist, error)
	UpdatePlaylist(id int64, title, description *string, public *bool) (*model.Playlist, error)
	DeletePlaylist(id int64) error
	// AddTrack appends the track at the end of the playlist; adding an
	// already-present track is a no-op.
	AddTrack(playlistID, trackID int64) error
	RemoveTrack(playlistID, trackID int64) error
}

type gormPlaylistRepository struct {
	db *gorm.DB
}

// NewGormPlaylistRepository creates a new gormPlaylistRepository.
func NewGormPlaylistRepository(db *gorm.DB) PlaylistRepository {
	return &gormPlaylistRepository{db: db}
}

func (r *gormPlaylistRepository) CreatePlaylist(playlist *model.Playlist) (int64, error) {
	if err := r.db.Create(playlist).Error; err != nil {
		return 0, fmt.Errorf("failed to create playlist: %w", err)
	}
	return playlist.ID, nil
}

func (r *gormPlaylistRepository) GetPlaylistByID(id int64) (*model.Playlist, error) {
	var playlist model.Playlist
	err := r.db.Preload("Entries", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).First(&playlist, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load playlist %d: %w", id, err)
	}
	return &playlist, nil
}

func (r *gormPlaylistRepository) ListPlaylistsByUser(userID int64) ([]*model.Playlist, error) {
	var playlists []*model.Playlist
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&playlists).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list playlists for user %d: %w", userID, err)
	}
	return playlists, nil
}

func (r *gormPlaylistRepository) UpdatePlaylist(id int64, title, description *string, public *bool) (*model.Playlist, error) {
	updates := map[string]interface{}{}
	if title != nil {
		updates["title"] = *title
	}
	if description != nil {
		updates["description"] = *description
	}
	if public != nil {
		updates["public"] = *public
	}
	if len(updates) > 0 {
		res := r.db.Model(&model.Playlist{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, fmt.Errorf("failed to update playlist %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, ErrNotFound
		}
	}
	return r.GetPlaylistByID(id)
}

func (r *gormPlaylistRepository) DeletePlaylist(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("playlist_id = ?", id).Delete(&model.PlaylistEntry{}).Error; err != nil {
			return fmt.Errorf("failed to delete playlist entries: %w", err)
		}
		res := tx.Delete(&model.Playlist{}, id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete playlist %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *gormPlaylistRepository) AddTrack(playlistID, trackID int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.PlaylistEntry{}).
			Where("playlist_id = ? AND track_id = ?", playlistID, trackID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check playlist membership: %w", err)
		}
		if count > 0 {
			return nil
		}

		var maxPos int
		row := tx.Model(&model.PlaylistEntry{}).
			Where("playlist_id = ?", playlistID).
			Select("COALESCE(MAX(position), -1)").Row()
		if err := row.Scan(&maxPos); err != nil {
			return fmt.Errorf("failed to read playlist tail position: %w", err)
		}

		entry := model.PlaylistEntry{PlaylistID: playlistID, TrackID: trackID, Position: maxPos + 1}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("failed to append playlist entry: %w", err)
		}
		return nil
	})
}

func (r *gormPlaylistRepository) RemoveTrack(playlistID, trackID int64) error {
	res := r.db.Where("playlist_id = ? AND track_id = ?", playlistID, trackID).
		Delete(&model.PlaylistEntry{})
	if res.Error != nil {
		return fmt.Errorf("failed to remove playlist entry: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
