package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"musewave/logger"
	"musewave/model"
)

func (h *APIHandler) requireComments(w http.ResponseWriter) bool {
	if h.repos.Comments == nil {
		respondError(w, http.StatusNotImplemented, "comments are not available with this storage driver")
		return false
	}
	return true
}

// CreateCommentHandler posts a comment on a track.
func (h *APIHandler) CreateCommentHandler(w http.ResponseWriter, r *http.Request) {
	if !h.requireComments(w) {
		return
	}

	trackID, err := pathID(r, "trackId")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := h.repos.Tracks.GetTrackByID(trackID); err != nil {
		repoError(w, err, "track not found")
		return
	}

	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req struct {
		Body string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Body = strings.TrimSpace(req.Body)
	if req.Body == "" {
		respondError(w, http.StatusBadRequest, "comment body is required")
		return
	}

	comment := &model.Comment{
		UserID:  userID,
		TrackID: trackID,
		Body:    req.Body,
	}
	id, err := h.repos.Comments.CreateComment(comment)
	if err != nil {
		logger.Error("failed to create comment", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "failed to create comment")
		return
	}
	comment.ID = id

	respondJSON(w, http.StatusCreated, comment)
}

// ListCommentsHandler returns a track's comments, oldest first.
func (h *APIHandler) ListCommentsHandler(w http.ResponseWriter, r *http.Request) {
	if !h.requireComments(w) {
		return
	}

	trackID, err := pathID(r, "trackId")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	comments, err := h.repos.Comments.ListCommentsByTrack(trackID)
	if err != nil {
		logger.Error("failed to list comments", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "failed to list comments")
		return
	}
	respondJSON(w, http.StatusOK, comments)
}

// DeleteCommentHandler removes a comment. Author only.
func (h *APIHandler) DeleteCommentHandler(w http.ResponseWriter, r *http.Request) {
	if !h.requireComments(w) {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	comment, err := h.repos.Comments.GetCommentByID(id)
	if err != nil {
		repoError(w, err, "comment not found")
		return
	}

	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if comment.UserID != userID {
		respondError(w, http.StatusForbidden, "cannot delete another user's comment")
		return
	}

	if err := h.repos.Comments.DeleteComment(id); err != nil {
		repoError(w, err, "comment not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
