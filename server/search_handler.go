package server

import (
	"net/http"
	"strconv"

	"musewave/cache"
	"musewave/logger"
)

// SearchHandler serves queries from the in-memory index.
func (h *APIHandler) SearchHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	typ := q.Get("type")
	switch typ {
	case "", "all", "tracks", "users":
	default:
		respondError(w, http.StatusBadRequest, "type must be tracks, users or all")
		return
	}

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = v
	}

	result := h.index.Query(q.Get("q"), typ, limit)
	respondJSON(w, http.StatusOK, result)
}

// RebuildSearchIndexHandler forces a full index rebuild.
func (h *APIHandler) RebuildSearchIndexHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.index.Rebuild(h.repos.Tracks, h.repos.Users); err != nil {
		logger.Error("failed to rebuild search index", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "failed to rebuild search index")
		return
	}

	tracks, users := h.index.Documents()
	h.searchCache.SaveSnapshot(r.Context(), &cache.IndexSnapshot{Tracks: tracks, Users: users})
	logger.Info("search index rebuilt",
		logger.Int("tracks", len(tracks)),
		logger.Int("users", len(users)))

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"tracks":  len(tracks),
		"users":   len(users),
		"builtAt": h.index.BuiltAt(),
	})
}
