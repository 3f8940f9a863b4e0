package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"musewave/model"
)

// mysqlAlbumRepository implements AlbumRepository for MySQL.
type mysqlAlbumRepository struct {
	db *sql.DB
}

// NewMySQLAlbumRepository creates a new mysqlAlbumRepository.
func NewMySQLAlbumRepository(db *sql.DB) AlbumRepository {
	return &mysqlAlbumRepository{db: db}
}

const albumColumns = "id, user_id, title, description, cover_url, release_date, created_at, updated_at"

func scanAlbum(row interface{ Scan(...interface{}) error }) (*model.Album, error) {
	album := &model.Album{}
	var releaseDate sql.NullTime
	err := row.Scan(&album.ID, &album.UserID, &album.Title, &album.Description,
		&album.CoverURL, &releaseDate, &album.CreatedAt, &album.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if releaseDate.Valid {
		t := releaseDate.Time
		album.ReleaseDate = &t
	}
	return album, nil
}

// CreateAlbum adds a new album to the database.
func (r *mysqlAlbumRepository) CreateAlbum(album *model.Album) (int64, error) {
	query := "INSERT INTO albums (user_id, title, description, cover_url, release_date) VALUES (?, ?, ?, ?, ?)"
	stmt, err := r.db.Prepare(query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement for CreateAlbum: %w", err)
	}
	defer stmt.Close()

	var releaseDate interface{}
	if album.ReleaseDate != nil {
		releaseDate = *album.ReleaseDate
	}
	res, err := stmt.Exec(album.UserID, album.Title, album.Description, album.CoverURL, releaseDate)
	if err != nil {
		return 0, fmt.Errorf("failed to execute CreateAlbum: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for CreateAlbum: %w", err)
	}
	return id, nil
}

// GetAlbumByID retrieves an album by its ID.
func (r *mysqlAlbumRepository) GetAlbumByID(id int64) (*model.Album, error) {
	row := r.db.QueryRow("SELECT "+albumColumns+" FROM albums WHERE id = ?", id)
	album, err := scanAlbum(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan album by ID %d: %w", id, err)
	}
	return album, nil
}

// ListAlbumsByUser retrieves a user's albums, newest first.
func (r *mysqlAlbumRepository) ListAlbumsByUser(userID int64) ([]*model.Album, error) {
	rows, err := r.db.Query("SELECT "+albumColumns+" FROM albums WHERE user_id = ? ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query albums for user %d: %w", userID, err)
	}
	defer rows.Close()

	albums := make([]*model.Album, 0)
	for rows.Next() {
		album, err := scanAlbum(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan album in ListAlbumsByUser: %w", err)
		}
		albums = append(albums, album)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration in ListAlbumsByUser: %w", err)
	}
	return albums, nil
}

// UpdateAlbum applies the patch and returns the updated record.
func (r *mysqlAlbumRepository) UpdateAlbum(id int64, update model.AlbumUpdate) (*model.Album, error) {
	sets := make([]string, 0, 4)
	args := make([]interface{}, 0, 5)
	if update.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *update.Title)
	}
	if update.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *update.Description)
	}
	if update.CoverURL != nil {
		sets = append(sets, "cover_url = ?")
		args = append(args, *update.CoverURL)
	}
	if update.ReleaseDate != nil {
		sets = append(sets, "release_date = ?")
		args = append(args, *update.ReleaseDate)
	}
	if len(sets) > 0 {
		sets = append(sets, "updated_at = NOW()")
		args = append(args, id)
		query := "UPDATE albums SET " + strings.Join(sets, ", ") + " WHERE id = ?"
		if _, err := r.db.Exec(query, args...); err != nil {
			return nil, fmt.Errorf("failed to update album %d: %w", id, err)
		}
	}
	return r.GetAlbumByID(id)
}

// DeleteAlbum removes the album and detaches its member tracks.
func (r *mysqlAlbumRepository) DeleteAlbum(id int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin delete album transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("UPDATE tracks SET album_id = NULL WHERE album_id = ?", id); err != nil {
		return fmt.Errorf("failed to detach album tracks: %w", err)
	}
	res, err := tx.Exec("DELETE FROM albums WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete album %d: %w", id, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

// ListAlbumTracks retrieves the album's tracks in upload order.
func (r *mysqlAlbumRepository) ListAlbumTracks(albumID int64) ([]*model.Track, error) {
	rows, err := r.db.Query("SELECT "+trackColumns+" FROM tracks WHERE album_id = ? ORDER BY created_at ASC", albumID)
	if err != nil {
		return nil, fmt.Errorf("failed to query album tracks: %w", err)
	}
	defer rows.Close()

	tracks := make([]*model.Track, 0)
	for rows.Next() {
		track, err := scanTrack(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan album track: %w", err)
		}
		tracks = append(tracks, track)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration in ListAlbumTracks: %w", err)
	}
	return tracks, nil
}
