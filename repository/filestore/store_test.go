package filestore

import (
	"os"
	"path/filepath"
	"testing"

	"musewave/model"
	"musewave/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	return s
}

func seedUser(t *testing.T, s *Store, username string) *model.User {
	t.Helper()
	u := &model.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "$2a$10$hash-" + username,
		DisplayName:  username,
	}
	id, err := s.CreateUser(u)
	require.NoError(t, err)
	u.ID = id
	return u
}

func seedTrack(t *testing.T, s *Store, userID int64, title string, published bool) *model.Track {
	t.Helper()
	tr := &model.Track{
		UserID:    userID,
		Title:     title,
		Artist:    "artist",
		AudioURL:  "http://cdn.local/static/audio/" + title + ".mp3",
		Published: published,
	}
	id, err := s.CreateTrack(tr)
	require.NoError(t, err)
	got, err := s.GetTrackByID(id)
	require.NoError(t, err)
	return got
}

func TestCreateUserDuplicate(t *testing.T) {
	s := openStore(t)
	seedUser(t, s, "mika")

	_, err := s.CreateUser(&model.User{Username: "mika", Email: "other@example.com"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	_, err = s.CreateUser(&model.User{Username: "other", Email: "mika@example.com"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestGetUserLookups(t *testing.T) {
	s := openStore(t)
	u := seedUser(t, s, "mika")

	byID, err := s.GetUserByID(u.ID)
	require.NoError(t, err)
	assert.Equal(t, "mika", byID.Username)

	byName, err := s.GetUserByUsername("mika")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)

	byEmail, err := s.GetUserByEmail("mika@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	_, err = s.GetUserByID(999)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUpdateUser(t *testing.T) {
	s := openStore(t)
	u := seedUser(t, s, "mika")
	seedUser(t, s, "nell")

	bio := "lo-fi beats"
	updated, err := s.UpdateUser(u.ID, model.UserUpdate{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "lo-fi beats", updated.Bio)
	assert.Equal(t, "mika", updated.DisplayName, "unset fields stay unchanged")

	taken := "nell@example.com"
	_, err = s.UpdateUser(u.ID, model.UserUpdate{Email: &taken})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestPasswordHashSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)
	u := seedUser(t, s, "mika")

	reopened, err := Open(dir)
	require.NoError(t, err)
	got, err := reopened.GetUserByID(u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.PasswordHash, got.PasswordHash)
}

func TestListTracksFilters(t *testing.T) {
	s := openStore(t)
	u := seedUser(t, s, "mika")
	other := seedUser(t, s, "nell")

	a := seedTrack(t, s, u.ID, "alpha", true)
	b := seedTrack(t, s, u.ID, "beta", false)
	c := seedTrack(t, s, other.ID, "gamma", true)

	_, err := s.UpdateTrack(a.ID, model.TrackUpdate{Genre: strPtr("ambient"), Tags: &model.Tags{"chill", "night"}})
	require.NoError(t, err)
	_, err = s.UpdateTrack(c.ID, model.TrackUpdate{Genre: strPtr("techno")})
	require.NoError(t, err)

	byUser, err := s.ListTracks(model.TrackFilter{UserID: u.ID})
	require.NoError(t, err)
	assert.Len(t, byUser, 2)

	published := true
	pub, err := s.ListTracks(model.TrackFilter{Published: &published})
	require.NoError(t, err)
	assert.Len(t, pub, 2)
	for _, tr := range pub {
		assert.True(t, tr.Published)
	}

	byGenre, err := s.ListTracks(model.TrackFilter{Genre: "ambient"})
	require.NoError(t, err)
	require.Len(t, byGenre, 1)
	assert.Equal(t, a.ID, byGenre[0].ID)

	byTag, err := s.ListTracks(model.TrackFilter{Tag: "chill"})
	require.NoError(t, err)
	require.Len(t, byTag, 1)
	assert.Equal(t, a.ID, byTag[0].ID)

	none, err := s.ListTracks(model.TrackFilter{Tag: "missing"})
	require.NoError(t, err)
	assert.Empty(t, none)

	_ = b
}

func TestListTracksSortAndPaginate(t *testing.T) {
	s := openStore(t)
	u := seedUser(t, s, "mika")

	for i, plays := range []int{3, 1, 5, 2} {
		tr := seedTrack(t, s, u.ID, string(rune('a'+i)), true)
		for j := 0; j < plays; j++ {
			_, err := s.CreatePlay(&model.Play{UserID: u.ID, TrackID: tr.ID})
			require.NoError(t, err)
		}
	}

	sorted, err := s.ListTracks(model.TrackFilter{SortBy: "plays", SortOrder: "desc"})
	require.NoError(t, err)
	require.Len(t, sorted, 4)
	for i := 1; i < len(sorted); i++ {
		assert.GreaterOrEqual(t, sorted[i-1].Plays, sorted[i].Plays)
	}

	page, err := s.ListTracks(model.TrackFilter{SortBy: "plays", SortOrder: "desc", Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, sorted[2].ID, page[0].ID)

	empty, err := s.ListTracks(model.TrackFilter{Offset: 100})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestPublishedAtSetOnce(t *testing.T) {
	s := openStore(t)
	u := seedUser(t, s, "mika")
	tr := seedTrack(t, s, u.ID, "draft", false)
	assert.Nil(t, tr.PublishedAt)

	yes, no := true, false
	published, err := s.UpdateTrack(tr.ID, model.TrackUpdate{Published: &yes})
	require.NoError(t, err)
	require.NotNil(t, published.PublishedAt)
	first := *published.PublishedAt

	unpublished, err := s.UpdateTrack(tr.ID, model.TrackUpdate{Published: &no})
	require.NoError(t, err)
	require.NotNil(t, unpublished.PublishedAt, "publishedAt survives unpublish")

	republished, err := s.UpdateTrack(tr.ID, model.TrackUpdate{Published: &yes})
	require.NoError(t, err)
	assert.True(t, republished.PublishedAt.Equal(first), "publishedAt is not reset on republish")
}

func TestDeleteTrackCascades(t *testing.T) {
	s := openStore(t)
	u := seedUser(t, s, "mika")
	fan := seedUser(t, s, "nell")
	tr := seedTrack(t, s, u.ID, "song", true)
	keep := seedTrack(t, s, u.ID, "other", true)

	_, _, err := s.CreateLike(fan.ID, tr.ID)
	require.NoError(t, err)
	_, _, err = s.CreateLike(fan.ID, keep.ID)
	require.NoError(t, err)
	_, err = s.CreatePlay(&model.Play{UserID: fan.ID, TrackID: tr.ID})
	require.NoError(t, err)
	_, err = s.CreateDownload(fan.ID, tr.ID)
	require.NoError(t, err)

	require.NoError(t, s.DeleteTrack(tr.ID))

	_, err = s.GetTrackByID(tr.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = s.GetLike(fan.ID, tr.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	plays, err := s.ListPlaysByTrack(tr.ID)
	require.NoError(t, err)
	assert.Empty(t, plays)
	downloads, err := s.ListDownloadsByTrack(tr.ID)
	require.NoError(t, err)
	assert.Empty(t, downloads)

	_, err = s.GetLike(fan.ID, keep.ID)
	assert.NoError(t, err, "other tracks keep their likes")

	assert.ErrorIs(t, s.DeleteTrack(tr.ID), repository.ErrNotFound)
}

func TestLikeIdempotent(t *testing.T) {
	s := openStore(t)
	u := seedUser(t, s, "mika")
	tr := seedTrack(t, s, u.ID, "song", true)

	like, created, err := s.CreateLike(u.ID, tr.ID)
	require.NoError(t, err)
	assert.True(t, created)

	again, created, err := s.CreateLike(u.ID, tr.ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, like.ID, again.ID)

	got, err := s.GetTrackByID(tr.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Likes, "re-like does not bump the counter")

	existed, err := s.DeleteLike(u.ID, tr.ID)
	require.NoError(t, err)
	assert.True(t, existed)

	existed, err = s.DeleteLike(u.ID, tr.ID)
	require.NoError(t, err)
	assert.False(t, existed)

	got, err = s.GetTrackByID(tr.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.Likes, "unlike of a missing like leaves the counter alone")
}

func TestListLikedTracks(t *testing.T) {
	s := openStore(t)
	u := seedUser(t, s, "mika")
	a := seedTrack(t, s, u.ID, "first", true)
	b := seedTrack(t, s, u.ID, "second", true)

	_, _, err := s.CreateLike(u.ID, a.ID)
	require.NoError(t, err)
	_, _, err = s.CreateLike(u.ID, b.ID)
	require.NoError(t, err)

	liked, err := s.ListLikedTracks(u.ID)
	require.NoError(t, err)
	require.Len(t, liked, 2)
}

func TestFollowIdempotent(t *testing.T) {
	s := openStore(t)
	a := seedUser(t, s, "mika")
	b := seedUser(t, s, "nell")

	_, created, err := s.CreateFollow(a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, created)

	_, created, err = s.CreateFollow(a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, created)

	followers, err := s.ListFollowers(b.ID)
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, a.ID, followers[0].ID)

	following, err := s.ListFollowing(a.ID)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, b.ID, following[0].ID)

	_, err = s.GetFollow(b.ID, a.ID)
	assert.NoError(t, err)

	existed, err := s.DeleteFollow(a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, existed)

	existed, err = s.DeleteFollow(a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, existed)
}

func TestPlayAndDownloadCounters(t *testing.T) {
	s := openStore(t)
	u := seedUser(t, s, "mika")
	tr := seedTrack(t, s, u.ID, "song", true)

	_, err := s.CreatePlay(&model.Play{UserID: u.ID, TrackID: tr.ID, ListenedDuration: 42, Completed: true})
	require.NoError(t, err)
	_, err = s.CreatePlay(&model.Play{UserID: u.ID, TrackID: tr.ID})
	require.NoError(t, err)
	_, err = s.CreateDownload(u.ID, tr.ID)
	require.NoError(t, err)

	got, err := s.GetTrackByID(tr.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Plays)
	assert.Equal(t, int64(1), got.Downloads)

	plays, err := s.ListPlaysByTrack(tr.ID)
	require.NoError(t, err)
	assert.Len(t, plays, 2)

	byUser, err := s.ListPlaysByUser(u.ID)
	require.NoError(t, err)
	assert.Len(t, byUser, 2)
}

func TestUserStats(t *testing.T) {
	s := openStore(t)
	artist := seedUser(t, s, "mika")
	fan1 := seedUser(t, s, "nell")
	fan2 := seedUser(t, s, "omar")
	tr := seedTrack(t, s, artist.ID, "song", true)
	seedTrack(t, s, artist.ID, "draft", false)

	_, _, err := s.CreateFollow(fan1.ID, artist.ID)
	require.NoError(t, err)
	_, _, err = s.CreateFollow(fan2.ID, artist.ID)
	require.NoError(t, err)
	_, _, err = s.CreateFollow(artist.ID, fan1.ID)
	require.NoError(t, err)

	for _, listener := range []int64{fan1.ID, fan1.ID, fan2.ID, artist.ID} {
		_, err := s.CreatePlay(&model.Play{UserID: listener, TrackID: tr.ID})
		require.NoError(t, err)
	}
	_, _, err = s.CreateLike(fan1.ID, tr.ID)
	require.NoError(t, err)

	stats, err := s.UserStats(artist.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TrackCount)
	assert.Equal(t, int64(4), stats.TotalPlays)
	assert.Equal(t, int64(1), stats.TotalLikes)
	assert.Equal(t, int64(2), stats.FollowerCount)
	assert.Equal(t, int64(1), stats.FollowingCount)
	assert.Equal(t, int64(3), stats.MonthlyListeners, "distinct listeners in the window")
}

func TestTrackStats(t *testing.T) {
	s := openStore(t)
	artist := seedUser(t, s, "mika")
	fan := seedUser(t, s, "nell")
	tr := seedTrack(t, s, artist.ID, "song", true)

	_, err := s.CreatePlay(&model.Play{UserID: fan.ID, TrackID: tr.ID, Completed: true})
	require.NoError(t, err)
	_, err = s.CreatePlay(&model.Play{UserID: fan.ID, TrackID: tr.ID})
	require.NoError(t, err)
	_, _, err = s.CreateLike(fan.ID, tr.ID)
	require.NoError(t, err)

	stats, err := s.TrackStats(tr.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Plays)
	assert.Equal(t, int64(1), stats.Likes)
	assert.Equal(t, int64(1), stats.UniqueListeners)
	assert.InDelta(t, 0.5, stats.CompletionRate, 1e-9)

	_, err = s.TrackStats(999)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAlbumLifecycle(t *testing.T) {
	s := openStore(t)
	u := seedUser(t, s, "mika")

	album := &model.Album{UserID: u.ID, Title: "Night Drives"}
	albumID, err := s.CreateAlbum(album)
	require.NoError(t, err)

	tr := seedTrack(t, s, u.ID, "song", true)
	_, err = s.UpdateTrack(tr.ID, model.TrackUpdate{AlbumID: &albumID})
	require.NoError(t, err)

	tracks, err := s.ListAlbumTracks(albumID)
	require.NoError(t, err)
	require.Len(t, tracks, 1)

	title := "Day Drives"
	updated, err := s.UpdateAlbum(albumID, model.AlbumUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Day Drives", updated.Title)

	require.NoError(t, s.DeleteAlbum(albumID))
	got, err := s.GetTrackByID(tr.ID)
	require.NoError(t, err)
	assert.Zero(t, got.AlbumID, "deleting an album detaches its tracks")
}

func TestListArtists(t *testing.T) {
	s := openStore(t)
	artist := seedUser(t, s, "mika")
	listener := seedUser(t, s, "nell")
	seedTrack(t, s, artist.ID, "song", true)
	seedTrack(t, s, artist.ID, "draft", false)
	_, _, err := s.CreateFollow(listener.ID, artist.ID)
	require.NoError(t, err)

	artists, err := s.ListArtists()
	require.NoError(t, err)
	require.Len(t, artists, 1, "users with no published tracks are not artists")
	assert.Equal(t, artist.ID, artists[0].ID)
	assert.Equal(t, 1, artists[0].PublishedCount)
	assert.Equal(t, 1, artists[0].FollowerCount)
	assert.Equal(t, "mika", artists[0].ArtistSlug)
}

func TestPersistenceAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)

	u := seedUser(t, s, "mika")
	tr := seedTrack(t, s, u.ID, "song", true)
	_, _, err = s.CreateLike(u.ID, tr.ID)
	require.NoError(t, err)

	reopened, err := Open(dir)
	require.NoError(t, err)

	got, err := reopened.GetTrackByID(tr.ID)
	require.NoError(t, err)
	assert.Equal(t, "song", got.Title)
	assert.Equal(t, int64(1), got.Likes)

	_, err = reopened.GetLike(u.ID, tr.ID)
	assert.NoError(t, err)
}

func TestOpenRejectsCorruptCollection(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, tracksFile), []byte("{not json"), 0644))

	_, err := Open(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corrupt")
}

func TestOpenTreatsEmptyFileAsEmptyCollection(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, tracksFile), nil, 0644))

	s, err := Open(dir)
	require.NoError(t, err)
	tracks, err := s.ListTracks(model.TrackFilter{})
	require.NoError(t, err)
	assert.Empty(t, tracks)
}

func TestIDsAdvancePastDeletes(t *testing.T) {
	s := openStore(t)
	u := seedUser(t, s, "mika")
	a := seedTrack(t, s, u.ID, "a", true)
	b := seedTrack(t, s, u.ID, "b", true)
	require.NoError(t, s.DeleteTrack(a.ID))

	c := seedTrack(t, s, u.ID, "c", true)
	assert.Greater(t, c.ID, b.ID)
}

func strPtr(s string) *string { return &s }
