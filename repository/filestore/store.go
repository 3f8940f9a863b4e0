// Package filestore is a JSON-file-backed implementation of the repository
// interfaces for local and demo deployments. Each collection lives in one
// JSON array file under the data directory. All mutations run under a single
// store-wide mutex and rewrite the affected collection through a temp-file
// rename, so concurrent writers serialize instead of clobbering each other.
package filestore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"musewave/model"
	"musewave/repository"
)

// The store backs every core repository interface.
var (
	_ repository.UserRepository       = (*Store)(nil)
	_ repository.TrackRepository      = (*Store)(nil)
	_ repository.EngagementRepository = (*Store)(nil)
	_ repository.AlbumRepository      = (*Store)(nil)
	_ repository.StatsRepository      = (*Store)(nil)
)

// Collection file names under the data directory.
const (
	usersFile     = "users.json"
	tracksFile    = "tracks.json"
	albumsFile    = "albums.json"
	likesFile     = "likes.json"
	followsFile   = "follows.json"
	playsFile     = "plays.json"
	downloadsFile = "downloads.json"
)

// Store holds every collection in memory and persists per-collection files.
type Store struct {
	dir string

	mu        sync.RWMutex
	users     []*model.User
	tracks    []*model.Track
	albums    []*model.Album
	likes     []*model.Like
	follows   []*model.Follow
	plays     []*model.Play
	downloads []*model.Download
}

// Open loads all collections from dir, creating it if needed. A missing file
// is an empty collection; a corrupt file is an error rather than silent data
// loss.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}

	s := &Store{dir: dir}
	var userRecords []*userRecord
	if err := loadCollection(filepath.Join(dir, usersFile), &userRecords); err != nil {
		return nil, err
	}
	for _, r := range userRecords {
		u := r.User
		u.PasswordHash = r.PasswordHash
		s.users = append(s.users, &u)
	}
	if err := loadCollection(filepath.Join(dir, tracksFile), &s.tracks); err != nil {
		return nil, err
	}
	if err := loadCollection(filepath.Join(dir, albumsFile), &s.albums); err != nil {
		return nil, err
	}
	if err := loadCollection(filepath.Join(dir, likesFile), &s.likes); err != nil {
		return nil, err
	}
	if err := loadCollection(filepath.Join(dir, followsFile), &s.follows); err != nil {
		return nil, err
	}
	if err := loadCollection(filepath.Join(dir, playsFile), &s.plays); err != nil {
		return nil, err
	}
	if err := loadCollection(filepath.Join(dir, downloadsFile), &s.downloads); err != nil {
		return nil, err
	}
	return s, nil
}

func loadCollection(path string, target interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read collection %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("collection %s is corrupt: %w", path, err)
	}
	return nil
}

// saveCollection writes the collection atomically. Callers must hold the
// write lock.
func (s *Store) saveCollection(name string, value interface{}) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode collection %s: %w", name, err)
	}
	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write collection %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace collection %s: %w", name, err)
	}
	return nil
}

// userRecord is the on-disk shape of a user. model.User hides the password
// hash from API responses, so the record carries it explicitly.
type userRecord struct {
	model.User
	PasswordHash string `json:"passwordHash"`
}

// saveUsers writes the users collection. Callers must hold the write lock.
func (s *Store) saveUsers() error {
	records := make([]*userRecord, 0, len(s.users))
	for _, u := range s.users {
		records = append(records, &userRecord{User: *u, PasswordHash: u.PasswordHash})
	}
	return s.saveCollection(usersFile, records)
}

func nextUserID(users []*model.User) int64 {
	var max int64
	for _, u := range users {
		if u.ID > max {
			max = u.ID
		}
	}
	return max + 1
}

func nextTrackID(tracks []*model.Track) int64 {
	var max int64
	for _, t := range tracks {
		if t.ID > max {
			max = t.ID
		}
	}
	return max + 1
}

func nextAlbumID(albums []*model.Album) int64 {
	var max int64
	for _, a := range albums {
		if a.ID > max {
			max = a.ID
		}
	}
	return max + 1
}
