package filestore

import (
	"sort"
	"time"

	"musewave/model"
	"musewave/repository"
)

// CreateLike records a like; re-liking returns the existing record.
func (s *Store) CreateLike(userID, trackID int64) (*model.Like, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, l := range s.likes {
		if l.UserID == userID && l.TrackID == trackID {
			cpy := *l
			return &cpy, false, nil
		}
	}

	var maxID int64
	for _, l := range s.likes {
		if l.ID > maxID {
			maxID = l.ID
		}
	}
	like := &model.Like{ID: maxID + 1, UserID: userID, TrackID: trackID, CreatedAt: time.Now()}
	s.likes = append(s.likes, like)
	if t := s.trackByID(trackID); t != nil {
		t.Likes++
	}

	if err := s.saveCollection(likesFile, s.likes); err != nil {
		return nil, false, err
	}
	if err := s.saveCollection(tracksFile, s.tracks); err != nil {
		return nil, false, err
	}
	cpy := *like
	return &cpy, true, nil
}

// DeleteLike removes a like; reports whether one existed.
func (s *Store) DeleteLike(userID, trackID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, l := range s.likes {
		if l.UserID == userID && l.TrackID == trackID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, nil
	}
	s.likes = append(s.likes[:idx], s.likes[idx+1:]...)
	if t := s.trackByID(trackID); t != nil && t.Likes > 0 {
		t.Likes--
	}

	if err := s.saveCollection(likesFile, s.likes); err != nil {
		return false, err
	}
	if err := s.saveCollection(tracksFile, s.tracks); err != nil {
		return false, err
	}
	return true, nil
}

// GetLike retrieves a like for the (user, track) pair.
func (s *Store) GetLike(userID, trackID int64) (*model.Like, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, l := range s.likes {
		if l.UserID == userID && l.TrackID == trackID {
			cpy := *l
			return &cpy, nil
		}
	}
	return nil, repository.ErrNotFound
}

// ListLikedTracks retrieves the tracks a user liked, newest like first.
func (s *Store) ListLikedTracks(userID int64) ([]*model.Track, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	likes := make([]*model.Like, 0)
	for _, l := range s.likes {
		if l.UserID == userID {
			likes = append(likes, l)
		}
	}
	sort.Slice(likes, func(i, j int) bool { return likes[i].CreatedAt.After(likes[j].CreatedAt) })

	tracks := make([]*model.Track, 0, len(likes))
	for _, l := range likes {
		if t := s.trackByID(l.TrackID); t != nil {
			cpy := *t
			tracks = append(tracks, &cpy)
		}
	}
	return tracks, nil
}

// CreateFollow records a follow edge; idempotent.
func (s *Store) CreateFollow(followerID, followingID int64) (*model.Follow, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range s.follows {
		if f.FollowerID == followerID && f.FollowingID == followingID {
			cpy := *f
			return &cpy, false, nil
		}
	}

	var maxID int64
	for _, f := range s.follows {
		if f.ID > maxID {
			maxID = f.ID
		}
	}
	follow := &model.Follow{ID: maxID + 1, FollowerID: followerID, FollowingID: followingID, CreatedAt: time.Now()}
	s.follows = append(s.follows, follow)

	if err := s.saveCollection(followsFile, s.follows); err != nil {
		return nil, false, err
	}
	cpy := *follow
	return &cpy, true, nil
}

// DeleteFollow removes a follow edge; reports whether one existed.
func (s *Store) DeleteFollow(followerID, followingID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, f := range s.follows {
		if f.FollowerID == followerID && f.FollowingID == followingID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, nil
	}
	s.follows = append(s.follows[:idx], s.follows[idx+1:]...)
	if err := s.saveCollection(followsFile, s.follows); err != nil {
		return false, err
	}
	return true, nil
}

// GetFollow retrieves a follow edge.
func (s *Store) GetFollow(followingID, followerID int64) (*model.Follow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, f := range s.follows {
		if f.FollowerID == followerID && f.FollowingID == followingID {
			cpy := *f
			return &cpy, nil
		}
	}
	return nil, repository.ErrNotFound
}

// ListFollowers retrieves the users following userID.
func (s *Store) ListFollowers(userID int64) ([]*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*model.User, 0)
	for _, f := range s.follows {
		if f.FollowingID != userID {
			continue
		}
		for _, u := range s.users {
			if u.ID == f.FollowerID {
				cpy := *u
				users = append(users, &cpy)
				break
			}
		}
	}
	return users, nil
}

// ListFollowing retrieves the users userID follows.
func (s *Store) ListFollowing(userID int64) ([]*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*model.User, 0)
	for _, f := range s.follows {
		if f.FollowerID != userID {
			continue
		}
		for _, u := range s.users {
			if u.ID == f.FollowingID {
				cpy := *u
				users = append(users, &cpy)
				break
			}
		}
	}
	return users, nil
}

// CreatePlay appends the event and bumps the play counter under one lock.
func (s *Store) CreatePlay(play *model.Play) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var maxID int64
	for _, p := range s.plays {
		if p.ID > maxID {
			maxID = p.ID
		}
	}
	stored := *play
	stored.ID = maxID + 1
	stored.CreatedAt = time.Now()
	s.plays = append(s.plays, &stored)
	if t := s.trackByID(play.TrackID); t != nil {
		t.Plays++
	}

	if err := s.saveCollection(playsFile, s.plays); err != nil {
		return 0, err
	}
	if err := s.saveCollection(tracksFile, s.tracks); err != nil {
		return 0, err
	}
	return stored.ID, nil
}

func (s *Store) listPlays(match func(*model.Play) bool) []*model.Play {
	plays := make([]*model.Play, 0)
	for _, p := range s.plays {
		if match(p) {
			cpy := *p
			plays = append(plays, &cpy)
		}
	}
	sort.Slice(plays, func(i, j int) bool { return plays[i].CreatedAt.After(plays[j].CreatedAt) })
	return plays
}

// ListPlaysByTrack retrieves a track's play log, newest first.
func (s *Store) ListPlaysByTrack(trackID int64) ([]*model.Play, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listPlays(func(p *model.Play) bool { return p.TrackID == trackID }), nil
}

// ListPlaysByUser retrieves a user's play log, newest first.
func (s *Store) ListPlaysByUser(userID int64) ([]*model.Play, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listPlays(func(p *model.Play) bool { return p.UserID == userID }), nil
}

// CreateDownload appends the event and bumps the download counter.
func (s *Store) CreateDownload(userID, trackID int64) (*model.Download, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var maxID int64
	for _, d := range s.downloads {
		if d.ID > maxID {
			maxID = d.ID
		}
	}
	download := &model.Download{ID: maxID + 1, UserID: userID, TrackID: trackID, CreatedAt: time.Now()}
	s.downloads = append(s.downloads, download)
	if t := s.trackByID(trackID); t != nil {
		t.Downloads++
	}

	if err := s.saveCollection(downloadsFile, s.downloads); err != nil {
		return nil, err
	}
	if err := s.saveCollection(tracksFile, s.tracks); err != nil {
		return nil, err
	}
	cpy := *download
	return &cpy, nil
}

// ListDownloadsByTrack retrieves a track's download log, newest first.
func (s *Store) ListDownloadsByTrack(trackID int64) ([]*model.Download, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	downloads := make([]*model.Download, 0)
	for _, d := range s.downloads {
		if d.TrackID == trackID {
			cpy := *d
			downloads = append(downloads, &cpy)
		}
	}
	sort.Slice(downloads, func(i, j int) bool { return downloads[i].CreatedAt.After(downloads[j].CreatedAt) })
	return downloads, nil
}
