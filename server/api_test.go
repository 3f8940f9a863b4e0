package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"musewave/cache"
	"musewave/config"
	"musewave/core/activity"
	"musewave/core/auth"
	"musewave/core/search"
	"musewave/repository/filestore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testServer runs the full router over a file-backed store with caching and
// the activity hub disabled, the same shape as a local file-mode deployment.
func testServer(t *testing.T) *httptest.Server {
	t.Helper()

	store, err := filestore.Open(t.TempDir())
	require.NoError(t, err)

	repos := Repositories{
		Users:      store,
		Tracks:     store,
		Albums:     store,
		Engagement: store,
		Stats:      store,
	}
	tokens := auth.NewManager("test-secret", time.Hour, 24*time.Hour)

	hub := activity.NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	cfg := &config.Config{PublicBaseURL: "http://localhost:8080"}
	h := NewAPIHandler(repos, tokens, cache.NewStatsCache(nil), cache.NewSearchCache(nil), search.NewIndex(), hub, cfg)

	srv := httptest.NewServer(NewRouter(h, cfg))
	t.Cleanup(srv.Close)
	return srv
}

type account struct {
	ID          int64
	Username    string
	AccessToken string
}

func doJSON(t *testing.T, srv *httptest.Server, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, srv.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var decoded map[string]interface{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			// Some endpoints return arrays; callers decode those themselves.
			decoded = map[string]interface{}{"_raw": string(raw)}
		}
	}
	return resp, decoded
}

func doJSONList(t *testing.T, srv *httptest.Server, path string) (*http.Response, []map[string]interface{}) {
	t.Helper()
	resp, err := srv.Client().Get(srv.URL + path)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var list []map[string]interface{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &list), "expected a JSON array, got %s", raw)
	}
	return resp, list
}

func register(t *testing.T, srv *httptest.Server, username string) account {
	t.Helper()
	resp, body := doJSON(t, srv, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "hunter2-" + username,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "register failed: %v", body)

	user := body["user"].(map[string]interface{})
	tokens := body["tokens"].(map[string]interface{})
	return account{
		ID:          int64(user["id"].(float64)),
		Username:    username,
		AccessToken: tokens["accessToken"].(string),
	}
}

func createTrack(t *testing.T, srv *httptest.Server, owner account, title string, published bool) int64 {
	t.Helper()
	resp, body := doJSON(t, srv, http.MethodPost, "/api/tracks", owner.AccessToken, map[string]interface{}{
		"title":     title,
		"audioUrl":  "http://localhost:8080/static/audio/" + title + ".mp3",
		"published": published,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "create track failed: %v", body)
	return int64(body["id"].(float64))
}

func TestRegisterLoginAndRefresh(t *testing.T) {
	srv := testServer(t)

	resp, body := doJSON(t, srv, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "mika", "email": "mika@example.com", "password": "hunter2",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "mika", user["username"])
	assert.NotContains(t, user, "passwordHash", "hashes never leave the server")
	tokens := body["tokens"].(map[string]interface{})
	assert.NotEmpty(t, tokens["accessToken"])
	refreshToken := tokens["refreshToken"].(string)

	// Duplicate username.
	resp, body = doJSON(t, srv, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "mika", "email": "else@example.com", "password": "hunter2",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "username or email already exists", body["error"])

	// Login by username.
	resp, _ = doJSON(t, srv, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "mika", "password": "hunter2",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Login by email.
	resp, _ = doJSON(t, srv, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "mika@example.com", "password": "hunter2",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Wrong password.
	resp, _ = doJSON(t, srv, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "mika", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Refresh.
	resp, body = doJSON(t, srv, http.MethodPost, "/api/auth/refresh", "", map[string]string{
		"refreshToken": refreshToken,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["tokens"].(map[string]interface{})["accessToken"])

	// An access token is not a refresh token.
	resp, _ = doJSON(t, srv, http.MethodPost, "/api/auth/refresh", "", map[string]string{
		"refreshToken": tokens["accessToken"].(string),
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRegisterValidation(t *testing.T) {
	srv := testServer(t)

	resp, _ := doJSON(t, srv, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "mika", "email": "not-an-email", "password": "x",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, srv, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "", "email": "a@b.c", "password": "x",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdateUserOwnership(t *testing.T) {
	srv := testServer(t)
	mika := register(t, srv, "mika")
	nell := register(t, srv, "nell")

	resp, body := doJSON(t, srv, http.MethodPatch, fmt.Sprintf("/api/users/%d", mika.ID), mika.AccessToken, map[string]string{
		"bio": "lo-fi beats",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "lo-fi beats", body["bio"])

	resp, _ = doJSON(t, srv, http.MethodPatch, fmt.Sprintf("/api/users/%d", mika.ID), nell.AccessToken, map[string]string{
		"bio": "hijacked",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = doJSON(t, srv, http.MethodPatch, fmt.Sprintf("/api/users/%d", mika.ID), "", map[string]string{
		"bio": "anonymous",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Claiming another account's email is a conflict, not a server error.
	resp, _ = doJSON(t, srv, http.MethodPatch, fmt.Sprintf("/api/users/%d", mika.ID), mika.AccessToken, map[string]string{
		"email": "nell@example.com",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestTrackLifecycle(t *testing.T) {
	srv := testServer(t)
	mika := register(t, srv, "mika")
	nell := register(t, srv, "nell")

	// Creation requires auth.
	resp, _ := doJSON(t, srv, http.MethodPost, "/api/tracks", "", map[string]string{
		"title": "x", "audioUrl": "y",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// And a title plus audio URL.
	resp, _ = doJSON(t, srv, http.MethodPost, "/api/tracks", mika.AccessToken, map[string]string{
		"title": "no audio",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	trackID := createTrack(t, srv, mika, "Night Drive", false)

	resp, body := doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/tracks/%d", trackID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Night Drive", body["title"])
	assert.Equal(t, "mika", body["artist"], "artist falls back to the owner")
	assert.Equal(t, false, body["published"])
	assert.NotContains(t, body, "publishedAt")

	// Publish.
	resp, body = doJSON(t, srv, http.MethodPatch, fmt.Sprintf("/api/tracks/%d", trackID), mika.AccessToken, map[string]bool{
		"published": true,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["published"])
	assert.NotEmpty(t, body["publishedAt"])

	// Non-owner cannot mutate.
	resp, _ = doJSON(t, srv, http.MethodPatch, fmt.Sprintf("/api/tracks/%d", trackID), nell.AccessToken, map[string]string{
		"title": "stolen",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = doJSON(t, srv, http.MethodDelete, fmt.Sprintf("/api/tracks/%d", trackID), nell.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Owner deletes.
	resp, _ = doJSON(t, srv, http.MethodDelete, fmt.Sprintf("/api/tracks/%d", trackID), mika.AccessToken, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/tracks/%d", trackID), "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestObjectKeyFromURL(t *testing.T) {
	assert.Equal(t, "audio/night_drive.mp3", objectKeyFromURL("http://localhost:8080/static/audio/night_drive.mp3"))
	assert.Equal(t, "covers/art.png", objectKeyFromURL("https://cdn.example.com/static/covers/art.png"))
	assert.Equal(t, "", objectKeyFromURL("https://elsewhere.example.com/audio/x.mp3"), "foreign URLs are not bucket objects")
	assert.Equal(t, "", objectKeyFromURL(""))
}

func TestListTracksPublishedFilter(t *testing.T) {
	srv := testServer(t)
	mika := register(t, srv, "mika")
	createTrack(t, srv, mika, "released", true)
	createTrack(t, srv, mika, "draft", false)

	resp, list := doJSONList(t, srv, "/api/tracks?published=true")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, list, 1)
	assert.Equal(t, "released", list[0]["title"])

	resp, list = doJSONList(t, srv, "/api/tracks")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, list, 2)
}

func TestLikeFlow(t *testing.T) {
	srv := testServer(t)
	mika := register(t, srv, "mika")
	nell := register(t, srv, "nell")
	trackID := createTrack(t, srv, mika, "song", true)

	likePath := fmt.Sprintf("/api/tracks/%d/like", trackID)

	resp, _ := doJSON(t, srv, http.MethodPost, likePath, nell.AccessToken, nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	// Idempotent re-like.
	resp, _ = doJSON(t, srv, http.MethodPost, likePath, nell.AccessToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/tracks/%d", trackID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["likes"], "double like counts once")

	resp, body = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/tracks/%d/like/%d", trackID, nell.ID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["liked"])

	resp, list := doJSONList(t, srv, fmt.Sprintf("/api/users/%d/likes", nell.ID))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, list, 1)
	assert.Equal(t, "song", list[0]["title"])

	resp, _ = doJSON(t, srv, http.MethodDelete, likePath, nell.AccessToken, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	// Unliking again is a 404, and the counter is untouched.
	resp, _ = doJSON(t, srv, http.MethodDelete, likePath, nell.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/tracks/%d", trackID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), body["likes"])

	resp, body = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/tracks/%d/like/%d", trackID, nell.ID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["liked"])
}

func TestPlayAndDownloadFlow(t *testing.T) {
	srv := testServer(t)
	mika := register(t, srv, "mika")
	nell := register(t, srv, "nell")
	trackID := createTrack(t, srv, mika, "song", true)

	resp, _ := doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/tracks/%d/play", trackID), nell.AccessToken, map[string]interface{}{
		"listenedDuration": 95.5, "completed": true,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	// A bare POST with no body still counts.
	resp, _ = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/tracks/%d/play", trackID), nell.AccessToken, nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/tracks/%d/download", trackID), nell.AccessToken, nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/tracks/%d/stats", trackID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), body["plays"])
	assert.Equal(t, float64(1), body["downloads"])
	assert.Equal(t, float64(1), body["uniqueListeners"])
	assert.InDelta(t, 0.5, body["completionRate"].(float64), 1e-9)

	resp, list := doJSONList(t, srv, fmt.Sprintf("/api/tracks/%d/plays", trackID))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, list, 2)

	resp, list = doJSONList(t, srv, fmt.Sprintf("/api/users/%d/plays", nell.ID))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, list, 2)
}

func TestFollowFlow(t *testing.T) {
	srv := testServer(t)
	mika := register(t, srv, "mika")
	nell := register(t, srv, "nell")

	followPath := fmt.Sprintf("/api/users/%d/follow", mika.ID)

	// Self-follow is rejected.
	resp, _ := doJSON(t, srv, http.MethodPost, followPath, mika.AccessToken, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Following a ghost is a 404.
	resp, _ = doJSON(t, srv, http.MethodPost, "/api/users/999/follow", nell.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, srv, http.MethodPost, followPath, nell.AccessToken, nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = doJSON(t, srv, http.MethodPost, followPath, nell.AccessToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "re-follow is idempotent")

	resp, body := doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/users/%d/follow/%d", mika.ID, nell.ID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["following"])

	resp, list := doJSONList(t, srv, fmt.Sprintf("/api/users/%d/followers", mika.ID))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, list, 1)
	assert.Equal(t, "nell", list[0]["username"])

	resp, list = doJSONList(t, srv, fmt.Sprintf("/api/users/%d/following", nell.ID))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, list, 1)

	resp, _ = doJSON(t, srv, http.MethodDelete, followPath, nell.AccessToken, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, srv, http.MethodDelete, followPath, nell.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUserStatsEndpoint(t *testing.T) {
	srv := testServer(t)
	mika := register(t, srv, "mika")
	nell := register(t, srv, "nell")
	trackID := createTrack(t, srv, mika, "song", true)

	doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/users/%d/follow", mika.ID), nell.AccessToken, nil)
	doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/tracks/%d/like", trackID), nell.AccessToken, nil)
	doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/tracks/%d/play", trackID), nell.AccessToken, nil)

	resp, body := doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/users/%d/stats", mika.ID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["trackCount"])
	assert.Equal(t, float64(1), body["totalPlays"])
	assert.Equal(t, float64(1), body["totalLikes"])
	assert.Equal(t, float64(1), body["followerCount"])
	assert.Equal(t, float64(1), body["monthlyListeners"])

	resp, _ = doJSON(t, srv, http.MethodGet, "/api/users/999/stats", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSearchEndpoint(t *testing.T) {
	srv := testServer(t)
	mika := register(t, srv, "mika")
	createTrack(t, srv, mika, "Night Drive", true)
	createTrack(t, srv, mika, "Secret Demo", false)

	resp, body := doJSON(t, srv, http.MethodGet, "/api/search?q=night", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	tracks := body["tracks"].([]interface{})
	require.Len(t, tracks, 1)
	assert.Equal(t, "Night Drive", tracks[0].(map[string]interface{})["title"])

	// Drafts are not searchable.
	resp, body = doJSON(t, srv, http.MethodGet, "/api/search?q=secret", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, body["tracks"])

	// Users are indexed on registration.
	resp, body = doJSON(t, srv, http.MethodGet, "/api/search?q=mika&type=users", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["users"], 1)

	// Unknown type is rejected.
	resp, _ = doJSON(t, srv, http.MethodGet, "/api/search?q=x&type=albums", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Rebuild reports document counts.
	resp, body = doJSON(t, srv, http.MethodPost, "/api/search/rebuild", mika.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["tracks"])
	assert.Equal(t, float64(1), body["users"])
}

func TestAlbumEndpoints(t *testing.T) {
	srv := testServer(t)
	mika := register(t, srv, "mika")
	nell := register(t, srv, "nell")

	resp, body := doJSON(t, srv, http.MethodPost, "/api/albums", mika.AccessToken, map[string]string{
		"title": "Night Drives",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	albumID := int64(body["id"].(float64))

	trackID := createTrack(t, srv, mika, "song", true)
	resp, _ = doJSON(t, srv, http.MethodPatch, fmt.Sprintf("/api/tracks/%d", trackID), mika.AccessToken, map[string]int64{
		"albumId": albumID,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/albums/%d", albumID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Night Drives", body["album"].(map[string]interface{})["title"])
	assert.Len(t, body["tracks"], 1)

	resp, list := doJSONList(t, srv, fmt.Sprintf("/api/albums?userId=%d", mika.ID))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, list, 1)

	// Listing without a user is a 400.
	resp, _ = doJSON(t, srv, http.MethodGet, "/api/albums", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, srv, http.MethodPatch, fmt.Sprintf("/api/albums/%d", albumID), nell.AccessToken, map[string]string{
		"title": "stolen",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = doJSON(t, srv, http.MethodDelete, fmt.Sprintf("/api/albums/%d", albumID), mika.AccessToken, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestArtistsEndpoint(t *testing.T) {
	srv := testServer(t)
	mika := register(t, srv, "mika")
	register(t, srv, "nell")
	createTrack(t, srv, mika, "song", true)

	resp, list := doJSONList(t, srv, "/api/artists")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, list, 1)
	assert.Equal(t, "mika", list[0]["username"])
	assert.Equal(t, float64(1), list[0]["publishedCount"])
}

func TestPlaylistsAndCommentsUnavailableInFileMode(t *testing.T) {
	srv := testServer(t)
	mika := register(t, srv, "mika")
	trackID := createTrack(t, srv, mika, "song", true)

	resp, _ := doJSON(t, srv, http.MethodPost, "/api/playlists", mika.AccessToken, map[string]string{
		"title": "Favorites",
	})
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)

	resp, _ = doJSON(t, srv, http.MethodGet, "/api/playlists?userId=1", "", nil)
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)

	resp, _ = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/tracks/%d/comments", trackID), mika.AccessToken, map[string]string{
		"body": "great track",
	})
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)
}

func TestAuthMiddlewareRejectsBadTokens(t *testing.T) {
	srv := testServer(t)
	register(t, srv, "mika")

	resp, _ := doJSON(t, srv, http.MethodPost, "/api/tracks", "garbage-token", map[string]string{
		"title": "x", "audioUrl": "y",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/tracks", bytes.NewReader([]byte(`{}`)))
	require.NoError(t, err)
	req.Header.Set("Authorization", "NotBearer xyz")
	resp2, err := srv.Client().Do(req)
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp2.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	srv := testServer(t)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/tracks", nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), "PATCH")
}
