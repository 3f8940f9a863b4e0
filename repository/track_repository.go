package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"musewave/model"
)

// mysqlTrackRepository implements TrackRepository for MySQL.
type mysqlTrackRepository struct {
	db *sql.DB
}

// NewMySQLTrackRepository creates a new instance of mysqlTrackRepository.
func NewMySQLTrackRepository(db *sql.DB) TrackRepository {
	return &mysqlTrackRepository{db: db}
}

const trackColumns = `id, user_id, album_id, title, artist, artist_slug, genre, mood, tags,
	audio_url, audio_size, duration, format, cover_url,
	plays, likes, downloads, shares, published, published_at, created_at, updated_at`

func scanTrack(row interface{ Scan(...interface{}) error }) (*model.Track, error) {
	track := &model.Track{}
	var albumID sql.NullInt64
	var tagsJSON sql.NullString
	var publishedAt sql.NullTime
	err := row.Scan(&track.ID, &track.UserID, &albumID, &track.Title, &track.Artist,
		&track.ArtistSlug, &track.Genre, &track.Mood, &tagsJSON,
		&track.AudioURL, &track.AudioSize, &track.Duration, &track.Format, &track.CoverURL,
		&track.Plays, &track.Likes, &track.Downloads, &track.Shares,
		&track.Published, &publishedAt, &track.CreatedAt, &track.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if albumID.Valid {
		track.AlbumID = albumID.Int64
	}
	if tagsJSON.Valid && tagsJSON.String != "" {
		if err := json.Unmarshal([]byte(tagsJSON.String), &track.Tags); err != nil {
			return nil, fmt.Errorf("failed to decode tags for track %d: %w", track.ID, err)
		}
	}
	if publishedAt.Valid {
		t := publishedAt.Time
		track.PublishedAt = &t
	}
	return track, nil
}

func encodeTags(tags model.Tags) (string, error) {
	if len(tags) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("failed to encode tags: %w", err)
	}
	return string(b), nil
}

func nullableAlbumID(id int64) interface{} {
	if id == 0 {
		return nil
	}
	return id
}

// CreateTrack adds a new track to the database.
func (r *mysqlTrackRepository) CreateTrack(track *model.Track) (int64, error) {
	tags, err := encodeTags(track.Tags)
	if err != nil {
		return 0, err
	}

	query := `INSERT INTO tracks (user_id, album_id, title, artist, artist_slug, genre, mood, tags,
	             audio_url, audio_size, duration, format, cover_url, published, published_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	stmt, err := r.db.Prepare(query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement for CreateTrack: %w", err)
	}
	defer stmt.Close()

	var publishedAt interface{}
	if track.Published {
		now := time.Now()
		track.PublishedAt = &now
		publishedAt = now
	}

	res, err := stmt.Exec(track.UserID, nullableAlbumID(track.AlbumID), track.Title, track.Artist,
		track.ArtistSlug, track.Genre, track.Mood, tags,
		track.AudioURL, track.AudioSize, track.Duration, track.Format, track.CoverURL,
		track.Published, publishedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to execute CreateTrack: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for CreateTrack: %w", err)
	}
	return id, nil
}

// GetTrackByID retrieves a track by its ID.
func (r *mysqlTrackRepository) GetTrackByID(id int64) (*model.Track, error) {
	row := r.db.QueryRow("SELECT "+trackColumns+" FROM tracks WHERE id = ?", id)
	track, err := scanTrack(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan track by ID %d: %w", id, err)
	}
	return track, nil
}

var trackSortColumns = map[string]string{
	"createdAt": "created_at",
	"plays":     "plays",
	"likes":     "likes",
	"downloads": "downloads",
}

// ListTracks retrieves tracks matching the filter, sorted and paginated.
func (r *mysqlTrackRepository) ListTracks(filter model.TrackFilter) ([]*model.Track, error) {
	where := make([]string, 0, 6)
	args := make([]interface{}, 0, 6)
	if filter.UserID != 0 {
		where = append(where, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.AlbumID != 0 {
		where = append(where, "album_id = ?")
		args = append(args, filter.AlbumID)
	}
	if filter.Genre != "" {
		where = append(where, "genre = ?")
		args = append(args, filter.Genre)
	}
	if filter.Mood != "" {
		where = append(where, "mood = ?")
		args = append(args, filter.Mood)
	}
	if filter.Tag != "" {
		where = append(where, "JSON_CONTAINS(tags, JSON_QUOTE(?))")
		args = append(args, filter.Tag)
	}
	if filter.Published != nil {
		where = append(where, "published = ?")
		args = append(args, *filter.Published)
	}

	query := "SELECT " + trackColumns + " FROM tracks"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	sortCol, ok := trackSortColumns[filter.SortBy]
	if !ok {
		sortCol = "created_at"
	}
	order := "DESC"
	if strings.EqualFold(filter.SortOrder, "asc") {
		order = "ASC"
	}
	query += fmt.Sprintf(" ORDER BY %s %s", sortCol, order)

	limit := filter.Limit
	if limit <= 0 {
		limit = model.DefaultTrackLimit
	}
	if limit > model.MaxTrackLimit {
		limit = model.MaxTrackLimit
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, filter.Offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	tracks := make([]*model.Track, 0)
	for rows.Next() {
		track, err := scanTrack(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan track in ListTracks: %w", err)
		}
		tracks = append(tracks, track)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration in ListTracks: %w", err)
	}
	return tracks, nil
}

// UpdateTrack applies the patch and returns the updated record.
// The publish transition sets published_at only when it is still NULL.
func (r *mysqlTrackRepository) UpdateTrack(id int64, update model.TrackUpdate) (*model.Track, error) {
	sets := make([]string, 0, 8)
	args := make([]interface{}, 0, 9)
	if update.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *update.Title)
	}
	if update.Genre != nil {
		sets = append(sets, "genre = ?")
		args = append(args, *update.Genre)
	}
	if update.Mood != nil {
		sets = append(sets, "mood = ?")
		args = append(args, *update.Mood)
	}
	if update.Tags != nil {
		tags, err := encodeTags(*update.Tags)
		if err != nil {
			return nil, err
		}
		sets = append(sets, "tags = ?")
		args = append(args, tags)
	}
	if update.AlbumID != nil {
		sets = append(sets, "album_id = ?")
		args = append(args, nullableAlbumID(*update.AlbumID))
	}
	if update.CoverURL != nil {
		sets = append(sets, "cover_url = ?")
		args = append(args, *update.CoverURL)
	}
	if update.Duration != nil {
		sets = append(sets, "duration = ?")
		args = append(args, *update.Duration)
	}
	if update.Published != nil {
		sets = append(sets, "published = ?")
		args = append(args, *update.Published)
		if *update.Published {
			sets = append(sets, "published_at = COALESCE(published_at, NOW())")
		}
	}
	if len(sets) > 0 {
		sets = append(sets, "updated_at = NOW()")
		args = append(args, id)
		query := "UPDATE tracks SET " + strings.Join(sets, ", ") + " WHERE id = ?"
		res, err := r.db.Exec(query, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to update track %d: %w", id, err)
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			// RowsAffected is 0 for both "missing" and "no change"; let the
			// read below settle it.
			if _, err := r.GetTrackByID(id); err != nil {
				return nil, err
			}
		}
	}
	return r.GetTrackByID(id)
}

// DeleteTrack removes the track and its dependent records in one transaction.
func (r *mysqlTrackRepository) DeleteTrack(id int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin delete track transaction: %w", err)
	}
	defer tx.Rollback()

	for _, query := range []string{
		"DELETE FROM likes WHERE track_id = ?",
		"DELETE FROM plays WHERE track_id = ?",
		"DELETE FROM downloads WHERE track_id = ?",
		"DELETE FROM comments WHERE track_id = ?",
		"DELETE FROM playlist_entries WHERE track_id = ?",
	} {
		if _, err := tx.Exec(query, id); err != nil {
			return fmt.Errorf("failed to delete track dependents: %w", err)
		}
	}

	res, err := tx.Exec("DELETE FROM tracks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete track %d: %w", id, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}
