package server

import (
	"encoding/json"
	"net/http"

	"musewave/logger"
	"musewave/model"

	"github.com/gorilla/mux"
)

// ListUsersHandler returns every account. Password hashes never serialize.
func (h *APIHandler) ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := h.repos.Users.ListUsers()
	if err != nil {
		logger.Error("failed to list users", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	respondJSON(w, http.StatusOK, users)
}

// GetUserHandler returns one user by id.
func (h *APIHandler) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.repos.Users.GetUserByID(id)
	if err != nil {
		repoError(w, err, "user not found")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// GetUserByUsernameHandler returns one user by username.
func (h *APIHandler) GetUserByUsernameHandler(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	if username == "" {
		respondError(w, http.StatusBadRequest, "username is required")
		return
	}

	user, err := h.repos.Users.GetUserByUsername(username)
	if err != nil {
		repoError(w, err, "user not found")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// UpdateUserHandler patches profile fields. Users can only update themselves.
func (h *APIHandler) UpdateUserHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	authedID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if authedID != id {
		respondError(w, http.StatusForbidden, "cannot update another user's profile")
		return
	}

	var update model.UserUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.repos.Users.UpdateUser(id, update)
	if err != nil {
		repoError(w, err, "user not found")
		return
	}

	logger.Info("user updated", logger.Int64("userId", id))
	h.statsCache.InvalidateUser(r.Context(), id)
	h.rebuildSearchIndex()
	respondJSON(w, http.StatusOK, user)
}

// GetUserStatsHandler returns the derived aggregates for one user.
func (h *APIHandler) GetUserStatsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if stats, ok := h.statsCache.GetUserStats(r.Context(), id); ok {
		respondJSON(w, http.StatusOK, stats)
		return
	}

	// The aggregate queries tolerate unknown ids (all zero counts), so check
	// existence first.
	if _, err := h.repos.Users.GetUserByID(id); err != nil {
		repoError(w, err, "user not found")
		return
	}

	stats, err := h.repos.Stats.UserStats(id)
	if err != nil {
		logger.Error("failed to compute user stats", logger.Int64("userId", id), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}

	h.statsCache.SetUserStats(r.Context(), stats)
	respondJSON(w, http.StatusOK, stats)
}

// ListArtistsHandler returns users with at least one published track.
func (h *APIHandler) ListArtistsHandler(w http.ResponseWriter, r *http.Request) {
	artists, err := h.repos.Users.ListArtists()
	if err != nil {
		logger.Error("failed to list artists", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "failed to list artists")
		return
	}
	respondJSON(w, http.StatusOK, artists)
}
