package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"musewave/logger"
	"musewave/model"
)

// requirePlaylists guards the playlist endpoints on backends without GORM.
func (h *APIHandler) requirePlaylists(w http.ResponseWriter) bool {
	if h.repos.Playlists == nil {
		respondError(w, http.StatusNotImplemented, "playlists are not available with this storage driver")
		return false
	}
	return true
}

// CreatePlaylistHandler creates a playlist owned by the authenticated user.
func (h *APIHandler) CreatePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	if !h.requirePlaylists(w) {
		return
	}

	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var playlist model.Playlist
	if err := json.NewDecoder(r.Body).Decode(&playlist); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if playlist.Title == "" {
		respondError(w, http.StatusBadRequest, "title is required")
		return
	}
	playlist.UserID = userID
	playlist.Entries = nil

	id, err := h.repos.Playlists.CreatePlaylist(&playlist)
	if err != nil {
		logger.Error("failed to create playlist", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "failed to create playlist")
		return
	}
	playlist.ID = id

	logger.Info("playlist created", logger.Int64("playlistId", id), logger.Int64("userId", userID))
	respondJSON(w, http.StatusCreated, playlist)
}

// ListPlaylistsHandler returns one user's playlists.
func (h *APIHandler) ListPlaylistsHandler(w http.ResponseWriter, r *http.Request) {
	if !h.requirePlaylists(w) {
		return
	}

	userID, err := strconv.ParseInt(r.URL.Query().Get("userId"), 10, 64)
	if err != nil || userID <= 0 {
		respondError(w, http.StatusBadRequest, "userId query parameter is required")
		return
	}

	playlists, err := h.repos.Playlists.ListPlaylistsByUser(userID)
	if err != nil {
		logger.Error("failed to list playlists", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "failed to list playlists")
		return
	}
	respondJSON(w, http.StatusOK, playlists)
}

// GetPlaylistHandler returns one playlist with its ordered entries.
func (h *APIHandler) GetPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	if !h.requirePlaylists(w) {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	playlist, err := h.repos.Playlists.GetPlaylistByID(id)
	if err != nil {
		repoError(w, err, "playlist not found")
		return
	}
	respondJSON(w, http.StatusOK, playlist)
}

// UpdatePlaylistHandler patches title, description or visibility. Owner only.
func (h *APIHandler) UpdatePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	if !h.requirePlaylists(w) {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	playlist, ok := h.ownedPlaylist(w, r, id)
	if !ok {
		return
	}

	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Public      *bool   `json:"public"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.repos.Playlists.UpdatePlaylist(playlist.ID, req.Title, req.Description, req.Public)
	if err != nil {
		repoError(w, err, "playlist not found")
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// DeletePlaylistHandler removes a playlist and its entries. Owner only.
func (h *APIHandler) DeletePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	if !h.requirePlaylists(w) {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, ok := h.ownedPlaylist(w, r, id); !ok {
		return
	}

	if err := h.repos.Playlists.DeletePlaylist(id); err != nil {
		repoError(w, err, "playlist not found")
		return
	}

	logger.Info("playlist deleted", logger.Int64("playlistId", id))
	w.WriteHeader(http.StatusNoContent)
}

// AddPlaylistTrackHandler appends a track to the playlist. Owner only;
// re-adding an existing track is a no-op.
func (h *APIHandler) AddPlaylistTrackHandler(w http.ResponseWriter, r *http.Request) {
	if !h.requirePlaylists(w) {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	trackID, err := pathID(r, "trackId")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, ok := h.ownedPlaylist(w, r, id); !ok {
		return
	}
	if _, err := h.repos.Tracks.GetTrackByID(trackID); err != nil {
		repoError(w, err, "track not found")
		return
	}

	if err := h.repos.Playlists.AddTrack(id, trackID); err != nil {
		logger.Error("failed to add playlist track", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "failed to add track to playlist")
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// RemovePlaylistTrackHandler removes a track from the playlist. Owner only.
func (h *APIHandler) RemovePlaylistTrackHandler(w http.ResponseWriter, r *http.Request) {
	if !h.requirePlaylists(w) {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	trackID, err := pathID(r, "trackId")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, ok := h.ownedPlaylist(w, r, id); !ok {
		return
	}

	if err := h.repos.Playlists.RemoveTrack(id, trackID); err != nil {
		repoError(w, err, "playlist entry not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ownedPlaylist loads the playlist and enforces ownership.
func (h *APIHandler) ownedPlaylist(w http.ResponseWriter, r *http.Request, id int64) (*model.Playlist, bool) {
	playlist, err := h.repos.Playlists.GetPlaylistByID(id)
	if err != nil {
		repoError(w, err, "playlist not found")
		return nil, false
	}

	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}
	if playlist.UserID != userID {
		respondError(w, http.StatusForbidden, "cannot modify another user's playlist")
		return nil, false
	}
	return playlist, true
}
