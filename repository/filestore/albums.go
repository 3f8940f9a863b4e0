package filestore

import (
	"sort"
	"time"

	"musewave/model"
	"musewave/repository"
)

// CreateAlbum adds a new album.
func (s *Store) CreateAlbum(album *model.Album) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	stored := *album
	stored.ID = nextAlbumID(s.albums)
	stored.CreatedAt = now
	stored.UpdatedAt = now
	s.albums = append(s.albums, &stored)

	if err := s.saveCollection(albumsFile, s.albums); err != nil {
		s.albums = s.albums[:len(s.albums)-1]
		return 0, err
	}
	return stored.ID, nil
}

// GetAlbumByID retrieves an album by ID.
func (s *Store) GetAlbumByID(id int64) (*model.Album, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.albums {
		if a.ID == id {
			cpy := *a
			return &cpy, nil
		}
	}
	return nil, repository.ErrNotFound
}

// ListAlbumsByUser retrieves a user's albums, newest first.
func (s *Store) ListAlbumsByUser(userID int64) ([]*model.Album, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	albums := make([]*model.Album, 0)
	for _, a := range s.albums {
		if a.UserID == userID {
			cpy := *a
			albums = append(albums, &cpy)
		}
	}
	sort.Slice(albums, func(i, j int) bool { return albums[i].CreatedAt.After(albums[j].CreatedAt) })
	return albums, nil
}

// UpdateAlbum applies the patch.
func (s *Store) UpdateAlbum(id int64, update model.AlbumUpdate) (*model.Album, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var target *model.Album
	for _, a := range s.albums {
		if a.ID == id {
			target = a
			break
		}
	}
	if target == nil {
		return nil, repository.ErrNotFound
	}

	if update.Title != nil {
		target.Title = *update.Title
	}
	if update.Description != nil {
		target.Description = *update.Description
	}
	if update.CoverURL != nil {
		target.CoverURL = *update.CoverURL
	}
	if update.ReleaseDate != nil {
		t := *update.ReleaseDate
		target.ReleaseDate = &t
	}
	target.UpdatedAt = time.Now()

	if err := s.saveCollection(albumsFile, s.albums); err != nil {
		return nil, err
	}
	cpy := *target
	return &cpy, nil
}

// DeleteAlbum removes the album and detaches its member tracks.
func (s *Store) DeleteAlbum(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, a := range s.albums {
		if a.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return repository.ErrNotFound
	}
	s.albums = append(s.albums[:idx], s.albums[idx+1:]...)
	for _, t := range s.tracks {
		if t.AlbumID == id {
			t.AlbumID = 0
		}
	}

	if err := s.saveCollection(albumsFile, s.albums); err != nil {
		return err
	}
	return s.saveCollection(tracksFile, s.tracks)
}

// ListAlbumTracks retrieves the album's tracks in upload order.
func (s *Store) ListAlbumTracks(albumID int64) ([]*model.Track, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tracks := make([]*model.Track, 0)
	for _, t := range s.tracks {
		if t.AlbumID == albumID {
			cpy := *t
			tracks = append(tracks, &cpy)
		}
	}
	sort.Slice(tracks, func(i, j int) bool { return tracks[i].CreatedAt.Before(tracks[j].CreatedAt) })
	return tracks, nil
}
