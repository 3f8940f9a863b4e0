package filestore

import (
	"fmt"
	"sort"
	"time"

	"musewave/core/utils"
	"musewave/model"
	"musewave/repository"
)

// CreateUser adds a new user; username and email must be unused.
func (s *Store) CreateUser(user *model.User) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == user.Username || u.Email == user.Email {
			return 0, fmt.Errorf("username or email taken: %w", repository.ErrDuplicate)
		}
	}

	now := time.Now()
	stored := *user
	stored.ID = nextUserID(s.users)
	stored.CreatedAt = now
	stored.UpdatedAt = now
	s.users = append(s.users, &stored)

	if err := s.saveUsers(); err != nil {
		s.users = s.users[:len(s.users)-1]
		return 0, err
	}
	return stored.ID, nil
}

func (s *Store) findUser(match func(*model.User) bool) (*model.User, error) {
	for _, u := range s.users {
		if match(u) {
			cpy := *u
			return &cpy, nil
		}
	}
	return nil, repository.ErrNotFound
}

// GetUserByID retrieves a user by ID.
func (s *Store) GetUserByID(id int64) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findUser(func(u *model.User) bool { return u.ID == id })
}

// GetUserByUsername retrieves a user by username.
func (s *Store) GetUserByUsername(username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findUser(func(u *model.User) bool { return u.Username == username })
}

// GetUserByEmail retrieves a user by email.
func (s *Store) GetUserByEmail(email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findUser(func(u *model.User) bool { return u.Email == email })
}

// UpdateUser applies a profile patch.
func (s *Store) UpdateUser(id int64, update model.UserUpdate) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var target *model.User
	for _, u := range s.users {
		if u.ID == id {
			target = u
			break
		}
	}
	if target == nil {
		return nil, repository.ErrNotFound
	}

	if update.Email != nil {
		for _, u := range s.users {
			if u.ID != id && u.Email == *update.Email {
				return nil, fmt.Errorf("email taken: %w", repository.ErrDuplicate)
			}
		}
		target.Email = *update.Email
	}
	if update.DisplayName != nil {
		target.DisplayName = *update.DisplayName
	}
	if update.Bio != nil {
		target.Bio = *update.Bio
	}
	if update.AvatarURL != nil {
		target.AvatarURL = *update.AvatarURL
	}
	target.UpdatedAt = time.Now()

	if err := s.saveUsers(); err != nil {
		return nil, err
	}
	cpy := *target
	return &cpy, nil
}

// ListUsers retrieves every user, newest first.
func (s *Store) ListUsers() ([]*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*model.User, 0, len(s.users))
	for _, u := range s.users {
		cpy := *u
		users = append(users, &cpy)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, nil
}

// ListArtists retrieves users with at least one published track.
func (s *Store) ListArtists() ([]*model.Artist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	published := make(map[int64]int)
	for _, t := range s.tracks {
		if t.Published {
			published[t.UserID]++
		}
	}
	followers := make(map[int64]int)
	for _, f := range s.follows {
		followers[f.FollowingID]++
	}

	artists := make([]*model.Artist, 0)
	for _, u := range s.users {
		count, ok := published[u.ID]
		if !ok {
			continue
		}
		name := u.DisplayName
		if name == "" {
			name = u.Username
		}
		artists = append(artists, &model.Artist{
			User:           *u,
			ArtistSlug:     utils.ArtistSlug(name),
			PublishedCount: count,
			FollowerCount:  followers[u.ID],
		})
	}
	sort.Slice(artists, func(i, j int) bool { return artists[i].CreatedAt.After(artists[j].CreatedAt) })
	return artists, nil
}
