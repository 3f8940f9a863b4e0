package filestore

import (
	"sort"
	"strings"
	"time"

	"musewave/model"
	"musewave/repository"
)

// CreateTrack adds a new track.
func (s *Store) CreateTrack(track *model.Track) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	stored := *track
	stored.ID = nextTrackID(s.tracks)
	stored.CreatedAt = now
	stored.UpdatedAt = now
	if stored.Published && stored.PublishedAt == nil {
		stored.PublishedAt = &now
	}
	s.tracks = append(s.tracks, &stored)

	if err := s.saveCollection(tracksFile, s.tracks); err != nil {
		s.tracks = s.tracks[:len(s.tracks)-1]
		return 0, err
	}
	return stored.ID, nil
}

func (s *Store) trackByID(id int64) *model.Track {
	for _, t := range s.tracks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// GetTrackByID retrieves a track by ID.
func (s *Store) GetTrackByID(id int64) (*model.Track, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t := s.trackByID(id)
	if t == nil {
		return nil, repository.ErrNotFound
	}
	cpy := *t
	return &cpy, nil
}

// ListTracks scans, filters, sorts and paginates the track collection.
func (s *Store) ListTracks(filter model.TrackFilter) ([]*model.Track, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*model.Track, 0)
	for _, t := range s.tracks {
		if filter.UserID != 0 && t.UserID != filter.UserID {
			continue
		}
		if filter.AlbumID != 0 && t.AlbumID != filter.AlbumID {
			continue
		}
		if filter.Genre != "" && t.Genre != filter.Genre {
			continue
		}
		if filter.Mood != "" && t.Mood != filter.Mood {
			continue
		}
		if filter.Tag != "" && !t.Tags.Contains(filter.Tag) {
			continue
		}
		if filter.Published != nil && t.Published != *filter.Published {
			continue
		}
		cpy := *t
		matched = append(matched, &cpy)
	}

	asc := strings.EqualFold(filter.SortOrder, "asc")
	less := func(a, b *model.Track) bool { return a.CreatedAt.Before(b.CreatedAt) }
	switch filter.SortBy {
	case "plays":
		less = func(a, b *model.Track) bool { return a.Plays < b.Plays }
	case "likes":
		less = func(a, b *model.Track) bool { return a.Likes < b.Likes }
	case "downloads":
		less = func(a, b *model.Track) bool { return a.Downloads < b.Downloads }
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if asc {
			return less(matched[i], matched[j])
		}
		return less(matched[j], matched[i])
	})

	limit := filter.Limit
	if limit <= 0 {
		limit = model.DefaultTrackLimit
	}
	if limit > model.MaxTrackLimit {
		limit = model.MaxTrackLimit
	}
	offset := filter.Offset
	if offset >= len(matched) {
		return []*model.Track{}, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

// UpdateTrack applies the patch. publishedAt is set once, on the first
// publish, and survives unpublish.
func (s *Store) UpdateTrack(id int64, update model.TrackUpdate) (*model.Track, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.trackByID(id)
	if t == nil {
		return nil, repository.ErrNotFound
	}

	if update.Title != nil {
		t.Title = *update.Title
	}
	if update.Genre != nil {
		t.Genre = *update.Genre
	}
	if update.Mood != nil {
		t.Mood = *update.Mood
	}
	if update.Tags != nil {
		t.Tags = *update.Tags
	}
	if update.AlbumID != nil {
		t.AlbumID = *update.AlbumID
	}
	if update.CoverURL != nil {
		t.CoverURL = *update.CoverURL
	}
	if update.Duration != nil {
		t.Duration = *update.Duration
	}
	if update.Published != nil {
		t.Published = *update.Published
		if t.Published && t.PublishedAt == nil {
			now := time.Now()
			t.PublishedAt = &now
		}
	}
	t.UpdatedAt = time.Now()

	if err := s.saveCollection(tracksFile, s.tracks); err != nil {
		return nil, err
	}
	cpy := *t
	return &cpy, nil
}

// DeleteTrack removes the track and its likes, plays and downloads.
func (s *Store) DeleteTrack(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, t := range s.tracks {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return repository.ErrNotFound
	}
	s.tracks = append(s.tracks[:idx], s.tracks[idx+1:]...)

	likes := s.likes[:0]
	for _, l := range s.likes {
		if l.TrackID != id {
			likes = append(likes, l)
		}
	}
	s.likes = likes

	plays := s.plays[:0]
	for _, p := range s.plays {
		if p.TrackID != id {
			plays = append(plays, p)
		}
	}
	s.plays = plays

	downloads := s.downloads[:0]
	for _, d := range s.downloads {
		if d.TrackID != id {
			downloads = append(downloads, d)
		}
	}
	s.downloads = downloads

	if err := s.saveCollection(tracksFile, s.tracks); err != nil {
		return err
	}
	if err := s.saveCollection(likesFile, s.likes); err != nil {
		return err
	}
	if err := s.saveCollection(playsFile, s.plays); err != nil {
		return err
	}
	return s.saveCollection(downloadsFile, s.downloads)
}
