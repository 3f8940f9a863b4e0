package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"musewave/core/activity"
	"musewave/logger"
	"musewave/model"
	"musewave/repository"
)

// trackForEngagement loads the track an event targets, or writes the error.
func (h *APIHandler) trackForEngagement(w http.ResponseWriter, r *http.Request) (*model.Track, bool) {
	trackID, err := pathID(r, "trackId")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	track, err := h.repos.Tracks.GetTrackByID(trackID)
	if err != nil {
		repoError(w, err, "track not found")
		return nil, false
	}
	return track, true
}

// LikeTrackHandler likes a track for the authenticated user. Idempotent: a
// repeat like returns the existing record with 200 instead of 201.
func (h *APIHandler) LikeTrackHandler(w http.ResponseWriter, r *http.Request) {
	track, ok := h.trackForEngagement(w, r)
	if !ok {
		return
	}

	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	like, created, err := h.repos.Engagement.CreateLike(userID, track.ID)
	if err != nil {
		logger.Error("failed to create like", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "failed to like track")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		username, _ := GetUsernameFromContext(r.Context())
		h.publishActivity(&activity.Event{
			Type:       activity.EventLike,
			UserID:     userID,
			Username:   username,
			TrackID:    track.ID,
			TrackTitle: track.Title,
		})
		h.statsCache.InvalidateTrack(r.Context(), track.ID, track.UserID)
	}
	respondJSON(w, status, like)
}

// UnlikeTrackHandler removes a like. Missing likes return 404 and leave the
// counter untouched.
func (h *APIHandler) UnlikeTrackHandler(w http.ResponseWriter, r *http.Request) {
	track, ok := h.trackForEngagement(w, r)
	if !ok {
		return
	}

	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	existed, err := h.repos.Engagement.DeleteLike(userID, track.ID)
	if err != nil {
		logger.Error("failed to delete like", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "failed to unlike track")
		return
	}
	if !existed {
		respondError(w, http.StatusNotFound, "like not found")
		return
	}

	h.statsCache.InvalidateTrack(r.Context(), track.ID, track.UserID)
	w.WriteHeader(http.StatusNoContent)
}

// GetLikeHandler reports whether a user liked a track.
func (h *APIHandler) GetLikeHandler(w http.ResponseWriter, r *http.Request) {
	trackID, err := pathID(r, "trackId")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	userID, err := pathID(r, "userId")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	like, err := h.repos.Engagement.GetLike(userID, trackID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondJSON(w, http.StatusOK, map[string]bool{"liked": false})
			return
		}
		logger.Error("failed to get like", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"liked": true, "like": like})
}

// ListLikedTracksHandler returns the tracks a user has liked.
func (h *APIHandler) ListLikedTracksHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	tracks, err := h.repos.Engagement.ListLikedTracks(userID)
	if err != nil {
		logger.Error("failed to list liked tracks", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "failed to list liked tracks")
		return
	}
	respondJSON(w, http.StatusOK, tracks)
}

// RecordPlayHandler appends a play event and bumps the counter.
type recordPlayRequest struct {
	ListenedDuration float64 `json:"listenedDuration"`
	Completed        bool    `json:"completed"`
}

func (h *APIHandler) RecordPlayHandler(w http.ResponseWriter, r *http.Request) {
	track, ok := h.trackForEngagement(w, r)
	if !ok {
		return
	}

	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req recordPlayRequest
	if r.Body != nil {
		// Body is optional; a bare POST still counts as a play.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	play := &model.Play{
		UserID:           userID,
		TrackID:          track.ID,
		ListenedDuration: req.ListenedDuration,
		Completed:        req.Completed,
	}
	id, err := h.repos.Engagement.CreatePlay(play)
	if err != nil {
		logger.Error("failed to record play", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "failed to record play")
		return
	}
	play.ID = id

	username, _ := GetUsernameFromContext(r.Context())
	h.publishActivity(&activity.Event{
		Type:       activity.EventPlay,
		UserID:     userID,
		Username:   username,
		TrackID:    track.ID,
		TrackTitle: track.Title,
	})
	h.statsCache.InvalidateTrack(r.Context(), track.ID, track.UserID)
	respondJSON(w, http.StatusCreated, play)
}

// ListTrackPlaysHandler returns the play log of one track.
func (h *APIHandler) ListTrackPlaysHandler(w http.ResponseWriter, r *http.Request) {
	trackID, err := pathID(r, "trackId")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	plays, err := h.repos.Engagement.ListPlaysByTrack(trackID)
	if err != nil {
		logger.Error("failed to list plays", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "failed to list plays")
		return
	}
	respondJSON(w, http.StatusOK, plays)
}

// ListUserPlaysHandler returns a user's listening history.
func (h *APIHandler) ListUserPlaysHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	plays, err := h.repos.Engagement.ListPlaysByUser(userID)
	if err != nil {
		logger.Error("failed to list plays", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "failed to list plays")
		return
	}
	respondJSON(w, http.StatusOK, plays)
}

// RecordDownloadHandler appends a download event and bumps the counter.
func (h *APIHandler) RecordDownloadHandler(w http.ResponseWriter, r *http.Request) {
	track, ok := h.trackForEngagement(w, r)
	if !ok {
		return
	}

	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	download, err := h.repos.Engagement.CreateDownload(userID, track.ID)
	if err != nil {
		logger.Error("failed to record download", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "failed to record download")
		return
	}

	h.statsCache.InvalidateTrack(r.Context(), track.ID, track.UserID)
	respondJSON(w, http.StatusCreated, download)
}

// ListTrackDownloadsHandler returns the download log of one track.
func (h *APIHandler) ListTrackDownloadsHandler(w http.ResponseWriter, r *http.Request) {
	trackID, err := pathID(r, "trackId")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	downloads, err := h.repos.Engagement.ListDownloadsByTrack(trackID)
	if err != nil {
		logger.Error("failed to list downloads", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "failed to list downloads")
		return
	}
	respondJSON(w, http.StatusOK, downloads)
}

// FollowUserHandler follows a user. Idempotent like LikeTrackHandler.
func (h *APIHandler) FollowUserHandler(w http.ResponseWriter, r *http.Request) {
	followingID, err := pathID(r, "userId")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	followerID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if followerID == followingID {
		respondError(w, http.StatusBadRequest, "cannot follow yourself")
		return
	}

	if _, err := h.repos.Users.GetUserByID(followingID); err != nil {
		repoError(w, err, "user not found")
		return
	}

	follow, created, err := h.repos.Engagement.CreateFollow(followerID, followingID)
	if err != nil {
		logger.Error("failed to create follow", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "failed to follow user")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		username, _ := GetUsernameFromContext(r.Context())
		h.publishActivity(&activity.Event{
			Type:         activity.EventFollow,
			UserID:       followerID,
			Username:     username,
			TargetUserID: followingID,
		})
		h.statsCache.InvalidateUser(r.Context(), followingID)
		h.statsCache.InvalidateUser(r.Context(), followerID)
	}
	respondJSON(w, status, follow)
}

// UnfollowUserHandler removes a follow edge.
func (h *APIHandler) UnfollowUserHandler(w http.ResponseWriter, r *http.Request) {
	followingID, err := pathID(r, "userId")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	followerID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	existed, err := h.repos.Engagement.DeleteFollow(followerID, followingID)
	if err != nil {
		logger.Error("failed to delete follow", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "failed to unfollow user")
		return
	}
	if !existed {
		respondError(w, http.StatusNotFound, "follow not found")
		return
	}

	h.statsCache.InvalidateUser(r.Context(), followingID)
	h.statsCache.InvalidateUser(r.Context(), followerID)
	w.WriteHeader(http.StatusNoContent)
}

// GetFollowHandler reports whether followerId follows userId.
func (h *APIHandler) GetFollowHandler(w http.ResponseWriter, r *http.Request) {
	followingID, err := pathID(r, "userId")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	followerID, err := pathID(r, "followerId")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	follow, err := h.repos.Engagement.GetFollow(followingID, followerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondJSON(w, http.StatusOK, map[string]bool{"following": false})
			return
		}
		logger.Error("failed to get follow", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"following": true, "follow": follow})
}

// ListFollowersHandler returns the users following userId.
func (h *APIHandler) ListFollowersHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	users, err := h.repos.Engagement.ListFollowers(userID)
	if err != nil {
		logger.Error("failed to list followers", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "failed to list followers")
		return
	}
	respondJSON(w, http.StatusOK, users)
}

// ListFollowingHandler returns the users userId follows.
func (h *APIHandler) ListFollowingHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	users, err := h.repos.Engagement.ListFollowing(userID)
	if err != nil {
		logger.Error("failed to list following", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "failed to list following")
		return
	}
	respondJSON(w, http.StatusOK, users)
}
