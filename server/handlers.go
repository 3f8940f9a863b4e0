package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"musewave/cache"
	"musewave/config"
	"musewave/core/activity"
	"musewave/core/auth"
	"musewave/core/search"
	"musewave/logger"
	"musewave/repository"

	"github.com/gorilla/mux"
)

// Repositories bundles the data-access interfaces the handlers depend on.
// Playlists and Comments may be nil when the storage driver cannot back them.
type Repositories struct {
	Users      repository.UserRepository
	Tracks     repository.TrackRepository
	Albums     repository.AlbumRepository
	Engagement repository.EngagementRepository
	Stats      repository.StatsRepository
	Playlists  repository.PlaylistRepository
	Comments   repository.CommentRepository
}

// APIHandler handles all API requests.
type APIHandler struct {
	repos       Repositories
	tokens      *auth.Manager
	statsCache  *cache.StatsCache
	searchCache *cache.SearchCache
	index       *search.Index
	hub         *activity.Hub
	cfg         *config.Config
}

// NewAPIHandler creates a new API handler.
func NewAPIHandler(
	repos Repositories,
	tokens *auth.Manager,
	statsCache *cache.StatsCache,
	searchCache *cache.SearchCache,
	index *search.Index,
	hub *activity.Hub,
	cfg *config.Config,
) *APIHandler {
	return &APIHandler{
		repos:       repos,
		tokens:      tokens,
		statsCache:  statsCache,
		searchCache: searchCache,
		index:       index,
		hub:         hub,
		cfg:         cfg,
	}
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			logger.Error("failed to encode response", logger.ErrorField(err))
		}
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// repoError maps repository sentinels onto HTTP statuses.
func repoError(w http.ResponseWriter, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		respondError(w, http.StatusNotFound, notFoundMsg)
	case errors.Is(err, repository.ErrDuplicate):
		respondError(w, http.StatusConflict, "record already exists")
	default:
		logger.Error("repository operation failed", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

func pathID(r *http.Request, name string) (int64, error) {
	vars := mux.Vars(r)
	id, err := strconv.ParseInt(vars[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}

type contextKey string

const (
	ctxUserID   contextKey = "userID"
	ctxUsername contextKey = "username"
)

// AuthMiddleware checks for a valid bearer access token and stores the
// authenticated identity in the request context.
func (h *APIHandler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			respondError(w, http.StatusUnauthorized, "authorization header is required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			respondError(w, http.StatusUnauthorized, "invalid authorization header format")
			return
		}

		claims, err := h.tokens.ParseAccess(parts[1])
		if err != nil {
			respondError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), ctxUserID, claims.UserID)
		ctx = context.WithValue(ctx, ctxUsername, claims.Username)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// GetUserIDFromContext extracts the authenticated user ID from the request context.
func GetUserIDFromContext(ctx context.Context) (int64, error) {
	userID, ok := ctx.Value(ctxUserID).(int64)
	if !ok {
		return 0, fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

// GetUsernameFromContext extracts the authenticated username from the request context.
func GetUsernameFromContext(ctx context.Context) (string, error) {
	username, ok := ctx.Value(ctxUsername).(string)
	if !ok {
		return "", fmt.Errorf("username not found in context")
	}
	return username, nil
}

// rebuildSearchIndex recomputes the index after a track or user mutation and
// persists the fresh snapshot. Failures are logged, never surfaced to the
// request that triggered the rebuild.
func (h *APIHandler) rebuildSearchIndex() {
	if h.index == nil {
		return
	}
	if err := h.index.Rebuild(h.repos.Tracks, h.repos.Users); err != nil {
		logger.Error("failed to rebuild search index", logger.ErrorField(err))
		return
	}
	tracks, users := h.index.Documents()
	h.searchCache.SaveSnapshot(context.Background(), &cache.IndexSnapshot{Tracks: tracks, Users: users})
}

// publishActivity pushes an event onto the live feed, if the hub is running.
func (h *APIHandler) publishActivity(event *activity.Event) {
	if h.hub != nil {
		h.hub.Publish(event)
	}
}
