// Package search holds the denormalized search index: a projection of
// published tracks and all users, rebuilt wholesale after every track or user
// mutation and queried with case-insensitive substring matching.
package search

import (
	"sort"
	"strings"
	"sync"
	"time"

	"musewave/model"
	"musewave/repository"
)

const (
	// DefaultLimit caps each result section when the request names none.
	DefaultLimit = 20
	// MaxLimit is the hard per-section cap.
	MaxLimit = 100
)

// Index is the in-memory search index. Safe for concurrent readers; Rebuild
// and Restore swap the document sets under the write lock.
type Index struct {
	mu      sync.RWMutex
	tracks  []model.TrackDocument
	users   []model.UserDocument
	builtAt time.Time
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{}
}

// Rebuild recomputes the whole index from the repositories: every published
// track and every user. O(n) per call; callers invoke it after each track or
// user mutation.
func (ix *Index) Rebuild(trackRepo repository.TrackRepository, userRepo repository.UserRepository) error {
	published := true
	var tracks []model.TrackDocument
	for offset := 0; ; offset += model.MaxTrackLimit {
		page, err := trackRepo.ListTracks(model.TrackFilter{
			Published: &published,
			SortBy:    "createdAt",
			SortOrder: "asc",
			Limit:     model.MaxTrackLimit,
			Offset:    offset,
		})
		if err != nil {
			return err
		}
		for _, t := range page {
			tracks = append(tracks, trackDocument(t))
		}
		if len(page) < model.MaxTrackLimit {
			break
		}
	}

	allUsers, err := userRepo.ListUsers()
	if err != nil {
		return err
	}
	users := make([]model.UserDocument, 0, len(allUsers))
	for _, u := range allUsers {
		users = append(users, userDocument(u))
	}

	ix.mu.Lock()
	ix.tracks = tracks
	ix.users = users
	ix.builtAt = time.Now()
	ix.mu.Unlock()
	return nil
}

// Restore replaces the index contents with a previously persisted snapshot.
func (ix *Index) Restore(tracks []model.TrackDocument, users []model.UserDocument) {
	ix.mu.Lock()
	ix.tracks = tracks
	ix.users = users
	ix.builtAt = time.Now()
	ix.mu.Unlock()
}

// Documents returns copies of the current document sets, for persistence.
func (ix *Index) Documents() ([]model.TrackDocument, []model.UserDocument) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	tracks := make([]model.TrackDocument, len(ix.tracks))
	copy(tracks, ix.tracks)
	users := make([]model.UserDocument, len(ix.users))
	copy(users, ix.users)
	return tracks, users
}

// BuiltAt reports when the index was last rebuilt or restored.
func (ix *Index) BuiltAt() time.Time {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.builtAt
}

// Query runs a case-insensitive substring search. typ selects "tracks",
// "users" or "all" (the default); limit caps each section independently.
// An empty query returns empty sections.
func (ix *Index) Query(q, typ string, limit int) *model.SearchResult {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	result := &model.SearchResult{
		Tracks: []model.TrackDocument{},
		Users:  []model.UserDocument{},
	}
	needle := strings.ToLower(strings.TrimSpace(q))
	if needle == "" {
		return result
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if typ == "" || typ == "all" || typ == "tracks" {
		for _, doc := range ix.tracks {
			if matchTrack(&doc, needle) {
				result.Tracks = append(result.Tracks, doc)
			}
		}
		// Popular tracks first.
		sort.SliceStable(result.Tracks, func(i, j int) bool {
			return result.Tracks[i].Plays > result.Tracks[j].Plays
		})
		if len(result.Tracks) > limit {
			result.Tracks = result.Tracks[:limit]
		}
	}

	if typ == "" || typ == "all" || typ == "users" {
		for _, doc := range ix.users {
			if matchUser(&doc, needle) {
				result.Users = append(result.Users, doc)
			}
			if len(result.Users) == limit {
				break
			}
		}
	}

	return result
}

func matchTrack(doc *model.TrackDocument, needle string) bool {
	if strings.Contains(strings.ToLower(doc.Title), needle) ||
		strings.Contains(strings.ToLower(doc.Artist), needle) ||
		strings.Contains(strings.ToLower(doc.ArtistSlug), needle) ||
		strings.Contains(strings.ToLower(doc.Genre), needle) ||
		strings.Contains(strings.ToLower(doc.Mood), needle) {
		return true
	}
	for _, tag := range doc.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

func matchUser(doc *model.UserDocument, needle string) bool {
	return strings.Contains(strings.ToLower(doc.Username), needle) ||
		strings.Contains(strings.ToLower(doc.DisplayName), needle) ||
		strings.Contains(strings.ToLower(doc.Bio), needle)
}

func trackDocument(t *model.Track) model.TrackDocument {
	return model.TrackDocument{
		TrackID:    t.ID,
		Title:      t.Title,
		Artist:     t.Artist,
		ArtistSlug: t.ArtistSlug,
		Genre:      t.Genre,
		Mood:       t.Mood,
		Tags:       t.Tags,
		CoverURL:   t.CoverURL,
		Plays:      t.Plays,
	}
}

func userDocument(u *model.User) model.UserDocument {
	return model.UserDocument{
		UserID:      u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Bio:         u.Bio,
		AvatarURL:   u.AvatarURL,
		Verified:    u.Verified,
	}
}
