package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"musewave/core/utils"
	"musewave/logger"
	"musewave/model"
	"musewave/storage"
)

// parseTrackFilter builds a listing filter from query parameters. Unknown
// sort columns fall back to createdAt; limits clamp to the maximum.
func parseTrackFilter(r *http.Request) model.TrackFilter {
	q := r.URL.Query()
	filter := model.TrackFilter{
		Genre:     q.Get("genre"),
		Mood:      q.Get("mood"),
		Tag:       q.Get("tag"),
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
		Limit:     model.DefaultTrackLimit,
	}

	if v, err := strconv.ParseInt(q.Get("userId"), 10, 64); err == nil && v > 0 {
		filter.UserID = v
	}
	if v, err := strconv.ParseInt(q.Get("albumId"), 10, 64); err == nil && v > 0 {
		filter.AlbumID = v
	}
	if raw := q.Get("published"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			filter.Published = &v
		}
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 {
		filter.Limit = v
	}
	if filter.Limit > model.MaxTrackLimit {
		filter.Limit = model.MaxTrackLimit
	}
	if v, err := strconv.Atoi(q.Get("offset")); err == nil && v > 0 {
		filter.Offset = v
	}
	return filter
}

// ListTracksHandler returns tracks matching the query filters.
func (h *APIHandler) ListTracksHandler(w http.ResponseWriter, r *http.Request) {
	tracks, err := h.repos.Tracks.ListTracks(parseTrackFilter(r))
	if err != nil {
		logger.Error("failed to list tracks", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "failed to list tracks")
		return
	}
	respondJSON(w, http.StatusOK, tracks)
}

// CreateTrackRequest is the track creation body.
type CreateTrackRequest struct {
	Title     string     `json:"title"`
	Artist    string     `json:"artist"`
	AlbumID   int64      `json:"albumId"`
	Genre     string     `json:"genre"`
	Mood      string     `json:"mood"`
	Tags      model.Tags `json:"tags"`
	AudioURL  string     `json:"audioUrl"`
	AudioSize int64      `json:"audioSize"`
	Duration  float64    `json:"duration"`
	Format    string     `json:"format"`
	CoverURL  string     `json:"coverUrl"`
	Published bool       `json:"published"`
}

// CreateTrackHandler creates a track owned by the authenticated user.
func (h *APIHandler) CreateTrackHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateTrackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" || req.AudioURL == "" {
		respondError(w, http.StatusBadRequest, "title and audioUrl are required")
		return
	}

	artist := req.Artist
	if artist == "" {
		// Fall back to the owner's display identity.
		if owner, err := h.repos.Users.GetUserByID(userID); err == nil {
			artist = owner.DisplayName
			if artist == "" {
				artist = owner.Username
			}
		}
	}

	track := &model.Track{
		UserID:     userID,
		AlbumID:    req.AlbumID,
		Title:      req.Title,
		Artist:     artist,
		ArtistSlug: utils.ArtistSlug(artist),
		Genre:      req.Genre,
		Mood:       req.Mood,
		Tags:       req.Tags,
		AudioURL:   req.AudioURL,
		AudioSize:  req.AudioSize,
		Duration:   req.Duration,
		Format:     req.Format,
		CoverURL:   req.CoverURL,
		Published:  req.Published,
	}

	id, err := h.repos.Tracks.CreateTrack(track)
	if err != nil {
		logger.Error("failed to create track", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "failed to create track")
		return
	}
	track.ID = id

	logger.Info("track created",
		logger.Int64("trackId", id),
		logger.Int64("userId", userID),
		logger.String("title", track.Title))

	h.rebuildSearchIndex()
	respondJSON(w, http.StatusCreated, track)
}

// GetTrackHandler returns one track by id.
func (h *APIHandler) GetTrackHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	track, err := h.repos.Tracks.GetTrackByID(id)
	if err != nil {
		repoError(w, err, "track not found")
		return
	}
	respondJSON(w, http.StatusOK, track)
}

// UpdateTrackHandler patches a track. Only the owner may mutate it; the
// publish transition stamps publishedAt exactly once.
func (h *APIHandler) UpdateTrackHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	track, err := h.repos.Tracks.GetTrackByID(id)
	if err != nil {
		repoError(w, err, "track not found")
		return
	}

	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if track.UserID != userID {
		respondError(w, http.StatusForbidden, "cannot modify another user's track")
		return
	}

	var update model.TrackUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.repos.Tracks.UpdateTrack(id, update)
	if err != nil {
		repoError(w, err, "track not found")
		return
	}

	logger.Info("track updated", logger.Int64("trackId", id))
	h.statsCache.InvalidateTrack(r.Context(), id, track.UserID)
	h.rebuildSearchIndex()
	respondJSON(w, http.StatusOK, updated)
}

// DeleteTrackHandler removes a track and its engagement records.
func (h *APIHandler) DeleteTrackHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	track, err := h.repos.Tracks.GetTrackByID(id)
	if err != nil {
		repoError(w, err, "track not found")
		return
	}

	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if track.UserID != userID {
		respondError(w, http.StatusForbidden, "cannot delete another user's track")
		return
	}

	if err := h.repos.Tracks.DeleteTrack(id); err != nil {
		repoError(w, err, "track not found")
		return
	}
	h.removeTrackObjects(r.Context(), track)

	logger.Info("track deleted", logger.Int64("trackId", id), logger.Int64("userId", userID))
	h.statsCache.InvalidateTrack(r.Context(), id, track.UserID)
	h.rebuildSearchIndex()
	w.WriteHeader(http.StatusNoContent)
}

// objectKeyFromURL extracts the bucket key from a URL served through the
// /static/ proxy. URLs hosted elsewhere yield "".
func objectKeyFromURL(url string) string {
	if i := strings.Index(url, "/static/"); i >= 0 {
		return url[i+len("/static/"):]
	}
	return ""
}

// removeTrackObjects deletes a track's audio and cover objects from the
// bucket. Best effort: the row is already gone, so failures are only logged.
func (h *APIHandler) removeTrackObjects(ctx context.Context, track *model.Track) {
	if storage.GetMinioClient() == nil {
		return
	}
	for _, url := range []string{track.AudioURL, track.CoverURL} {
		key := objectKeyFromURL(url)
		if key == "" {
			continue
		}
		if err := storage.RemoveObject(ctx, h.cfg.MinioBucket, key); err != nil {
			logger.Warn("failed to remove track object",
				logger.Int64("trackId", track.ID),
				logger.String("key", key),
				logger.ErrorField(err))
		}
	}
}

// GetTrackStatsHandler returns the derived aggregates for one track.
func (h *APIHandler) GetTrackStatsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if stats, ok := h.statsCache.GetTrackStats(r.Context(), id); ok {
		respondJSON(w, http.StatusOK, stats)
		return
	}

	if _, err := h.repos.Tracks.GetTrackByID(id); err != nil {
		repoError(w, err, "track not found")
		return
	}

	stats, err := h.repos.Stats.TrackStats(id)
	if err != nil {
		logger.Error("failed to compute track stats", logger.Int64("trackId", id), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}

	h.statsCache.SetTrackStats(r.Context(), stats)
	respondJSON(w, http.StatusOK, stats)
}
