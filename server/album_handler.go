package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"musewave/logger"
	"musewave/model"
)

// CreateAlbumHandler creates an album owned by the authenticated user.
func (h *APIHandler) CreateAlbumHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var album model.Album
	if err := json.NewDecoder(r.Body).Decode(&album); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if album.Title == "" {
		respondError(w, http.StatusBadRequest, "title is required")
		return
	}
	album.UserID = userID

	id, err := h.repos.Albums.CreateAlbum(&album)
	if err != nil {
		logger.Error("failed to create album", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "failed to create album")
		return
	}
	album.ID = id

	logger.Info("album created", logger.Int64("albumId", id), logger.Int64("userId", userID))
	respondJSON(w, http.StatusCreated, album)
}

// ListAlbumsHandler returns albums, filtered by userId when given.
func (h *APIHandler) ListAlbumsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("userId"), 10, 64)
	if err != nil || userID <= 0 {
		respondError(w, http.StatusBadRequest, "userId query parameter is required")
		return
	}

	albums, err := h.repos.Albums.ListAlbumsByUser(userID)
	if err != nil {
		logger.Error("failed to list albums", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "failed to list albums")
		return
	}
	respondJSON(w, http.StatusOK, albums)
}

// GetAlbumHandler returns one album with its tracks.
func (h *APIHandler) GetAlbumHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	album, err := h.repos.Albums.GetAlbumByID(id)
	if err != nil {
		repoError(w, err, "album not found")
		return
	}

	tracks, err := h.repos.Albums.ListAlbumTracks(id)
	if err != nil {
		logger.Error("failed to list album tracks", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "failed to list album tracks")
		return
	}

	respondJSON(w, http.StatusOK, model.AlbumWithTracks{Album: *album, Tracks: tracks})
}

// UpdateAlbumHandler patches album fields. Owner only.
func (h *APIHandler) UpdateAlbumHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	album, err := h.repos.Albums.GetAlbumByID(id)
	if err != nil {
		repoError(w, err, "album not found")
		return
	}

	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if album.UserID != userID {
		respondError(w, http.StatusForbidden, "cannot modify another user's album")
		return
	}

	var update model.AlbumUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.repos.Albums.UpdateAlbum(id, update)
	if err != nil {
		repoError(w, err, "album not found")
		return
	}

	logger.Info("album updated", logger.Int64("albumId", id))
	respondJSON(w, http.StatusOK, updated)
}

// DeleteAlbumHandler removes an album, detaching its tracks.
func (h *APIHandler) DeleteAlbumHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	album, err := h.repos.Albums.GetAlbumByID(id)
	if err != nil {
		repoError(w, err, "album not found")
		return
	}

	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if album.UserID != userID {
		respondError(w, http.StatusForbidden, "cannot delete another user's album")
		return
	}

	if err := h.repos.Albums.DeleteAlbum(id); err != nil {
		repoError(w, err, "album not found")
		return
	}

	logger.Info("album deleted", logger.Int64("albumId", id))
	w.WriteHeader(http.StatusNoContent)
}

// ListAlbumTracksHandler returns the member tracks of one album.
func (h *APIHandler) ListAlbumTracksHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.repos.Albums.GetAlbumByID(id); err != nil {
		repoError(w, err, "album not found")
		return
	}

	tracks, err := h.repos.Albums.ListAlbumTracks(id)
	if err != nil {
		logger.Error("failed to list album tracks", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "failed to list album tracks")
		return
	}
	respondJSON(w, http.StatusOK, tracks)
}
