package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"musewave/cache"
	"musewave/config"
	"musewave/core/activity"
	"musewave/core/auth"
	"musewave/core/search"
	"musewave/db"
	"musewave/logger"
	"musewave/repository"
	"musewave/repository/filestore"
	"musewave/storage"

	"github.com/gorilla/mux"
)

// Start initializes dependencies per the configured storage driver and runs
// the HTTP server until interrupted.
func Start() {
	cfg := config.Load()
	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogPath,
		MaxSize:    100,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	})

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	var repos Repositories
	switch cfg.StorageDriver {
	case "file":
		store, err := filestore.Open(cfg.DataDir)
		if err != nil {
			logger.Fatal("failed to open file store", logger.String("dir", cfg.DataDir), logger.ErrorField(err))
		}
		repos = Repositories{
			Users:      store,
			Tracks:     store,
			Albums:     store,
			Engagement: store,
			Stats:      store,
			// Playlists and comments live in GORM-managed tables and have
			// no file-backed implementation.
		}
		logger.Info("using file storage driver", logger.String("dir", cfg.DataDir))

	default:
		if err := db.ConnectDB(cfg); err != nil {
			logger.Fatal("failed to connect to database", logger.ErrorField(err))
		}
		defer db.DB.Close()

		if err := db.InitDB(); err != nil {
			logger.Fatal("failed to initialize database schema", logger.ErrorField(err))
		}

		if err := db.ConnectGormDB(cfg); err != nil {
			logger.Fatal("failed to connect to database with GORM", logger.ErrorField(err))
		}
		defer db.CloseGormDB()

		if err := db.MigrateGormModels(); err != nil {
			logger.Fatal("failed to migrate GORM models", logger.ErrorField(err))
		}

		repos = Repositories{
			Users:      repository.NewMySQLUserRepository(db.DB),
			Tracks:     repository.NewMySQLTrackRepository(db.DB),
			Albums:     repository.NewMySQLAlbumRepository(db.DB),
			Engagement: repository.NewMySQLEngagementRepository(db.DB),
			Stats:      repository.NewMySQLStatsRepository(db.DB),
			Playlists:  repository.NewGormPlaylistRepository(db.GormDB),
			Comments:   repository.NewGormCommentRepository(db.GormDB),
		}
	}

	// Redis and MinIO are required in mysql mode, best effort in file mode
	// so a local instance runs with nothing but a data directory.
	if err := db.ConnectRedis(cfg); err != nil {
		if cfg.StorageDriver != "file" {
			logger.Fatal("failed to connect to Redis", logger.ErrorField(err))
		}
		logger.Warn("Redis unavailable, caching disabled", logger.ErrorField(err))
	}
	defer db.CloseRedis()

	if err := storage.InitMinio(cfg); err != nil {
		if cfg.StorageDriver != "file" {
			logger.Fatal("failed to initialize MinIO", logger.ErrorField(err))
		}
		logger.Warn("MinIO unavailable, uploads disabled", logger.ErrorField(err))
	}

	tokens := auth.NewManager(cfg.JWTSecret,
		time.Duration(cfg.AccessTokenHours)*time.Hour,
		time.Duration(cfg.RefreshTokenHours)*time.Hour)

	statsCache := cache.NewStatsCache(db.RedisClient)
	searchCache := cache.NewSearchCache(db.RedisClient)

	hub := activity.NewHub()
	go hub.Run()
	defer hub.Stop()

	index := search.NewIndex()
	warmSearchIndex(index, searchCache, repos)

	apiHandler := NewAPIHandler(repos, tokens, statsCache, searchCache, index, hub, cfg)

	server.Handler = NewRouter(apiHandler, cfg)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", logger.String("addr", cfg.ServerAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", logger.ErrorField(err))
		}
	}()

	<-stop
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", logger.ErrorField(err))
	}
	logger.Info("server stopped")
}

// warmSearchIndex restores the persisted snapshot when present, otherwise
// rebuilds from the repositories.
func warmSearchIndex(index *search.Index, searchCache *cache.SearchCache, repos Repositories) {
	snapshot, err := searchCache.LoadSnapshot(context.Background())
	if err != nil {
		logger.Warn("failed to load search snapshot", logger.ErrorField(err))
	}
	if snapshot != nil {
		index.Restore(snapshot.Tracks, snapshot.Users)
		logger.Info("search index restored from snapshot",
			logger.Int("tracks", len(snapshot.Tracks)),
			logger.Int("users", len(snapshot.Users)))
		return
	}

	if err := index.Rebuild(repos.Tracks, repos.Users); err != nil {
		logger.Warn("initial search index build failed", logger.ErrorField(err))
	}
}

// corsMiddleware sets CORS headers and short-circuits preflight requests. It
// wraps the router from the outside so preflights for method-restricted
// routes get their headers instead of mux's 405.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, PUT, DELETE, OPTIONS, HEAD")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// NewRouter wires every route onto a gorilla/mux router with CORS applied.
func NewRouter(h *APIHandler, cfg *config.Config) http.Handler {
	router := mux.NewRouter()

	// Auth
	router.HandleFunc("/api/auth/register", h.RegisterHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/login", h.LoginHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/refresh", h.RefreshHandler).Methods(http.MethodPost)

	// Users
	router.HandleFunc("/api/users", h.ListUsersHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/users", h.RegisterHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/users/username/{username}", h.GetUserByUsernameHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/users/{id}", h.GetUserHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/users/{id}", h.AuthMiddleware(h.UpdateUserHandler)).Methods(http.MethodPatch)
	router.HandleFunc("/api/users/{id}/stats", h.GetUserStatsHandler).Methods(http.MethodGet)

	// Tracks
	router.HandleFunc("/api/tracks", h.ListTracksHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/tracks", h.AuthMiddleware(h.CreateTrackHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/tracks/{id}", h.GetTrackHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/tracks/{id}", h.AuthMiddleware(h.UpdateTrackHandler)).Methods(http.MethodPatch)
	router.HandleFunc("/api/tracks/{id}", h.AuthMiddleware(h.DeleteTrackHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/tracks/{id}/stats", h.GetTrackStatsHandler).Methods(http.MethodGet)

	// Likes
	router.HandleFunc("/api/tracks/{trackId}/like", h.AuthMiddleware(h.LikeTrackHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/tracks/{trackId}/like", h.AuthMiddleware(h.UnlikeTrackHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/tracks/{trackId}/like/{userId}", h.GetLikeHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/users/{userId}/likes", h.ListLikedTracksHandler).Methods(http.MethodGet)

	// Plays and downloads
	router.HandleFunc("/api/tracks/{trackId}/play", h.AuthMiddleware(h.RecordPlayHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/tracks/{trackId}/plays", h.ListTrackPlaysHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/users/{userId}/plays", h.ListUserPlaysHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/tracks/{trackId}/download", h.AuthMiddleware(h.RecordDownloadHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/tracks/{trackId}/downloads", h.ListTrackDownloadsHandler).Methods(http.MethodGet)

	// Follows
	router.HandleFunc("/api/users/{userId}/follow", h.AuthMiddleware(h.FollowUserHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/users/{userId}/follow", h.AuthMiddleware(h.UnfollowUserHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/users/{userId}/follow/{followerId}", h.GetFollowHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/users/{userId}/followers", h.ListFollowersHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/users/{userId}/following", h.ListFollowingHandler).Methods(http.MethodGet)

	// Albums
	router.HandleFunc("/api/albums", h.ListAlbumsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/albums", h.AuthMiddleware(h.CreateAlbumHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/albums/{id}", h.GetAlbumHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/albums/{id}", h.AuthMiddleware(h.UpdateAlbumHandler)).Methods(http.MethodPatch)
	router.HandleFunc("/api/albums/{id}", h.AuthMiddleware(h.DeleteAlbumHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/albums/{id}/tracks", h.ListAlbumTracksHandler).Methods(http.MethodGet)

	// Search and artists
	router.HandleFunc("/api/search", h.SearchHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/search/rebuild", h.AuthMiddleware(h.RebuildSearchIndexHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/artists", h.ListArtistsHandler).Methods(http.MethodGet)

	// Playlists
	router.HandleFunc("/api/playlists", h.ListPlaylistsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/playlists", h.AuthMiddleware(h.CreatePlaylistHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/playlists/{id}", h.GetPlaylistHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/playlists/{id}", h.AuthMiddleware(h.UpdatePlaylistHandler)).Methods(http.MethodPatch)
	router.HandleFunc("/api/playlists/{id}", h.AuthMiddleware(h.DeletePlaylistHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/playlists/{id}/tracks/{trackId}", h.AuthMiddleware(h.AddPlaylistTrackHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/playlists/{id}/tracks/{trackId}", h.AuthMiddleware(h.RemovePlaylistTrackHandler)).Methods(http.MethodDelete)

	// Comments
	router.HandleFunc("/api/tracks/{trackId}/comments", h.ListCommentsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/tracks/{trackId}/comments", h.AuthMiddleware(h.CreateCommentHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/comments/{id}", h.AuthMiddleware(h.DeleteCommentHandler)).Methods(http.MethodDelete)

	// Uploads
	router.HandleFunc("/api/upload/audio", h.AuthMiddleware(h.UploadAudioHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/upload/cover", h.AuthMiddleware(h.UploadCoverHandler)).Methods(http.MethodPost)

	// Live activity feed
	router.HandleFunc("/ws/activity", h.ActivityFeedHandler)

	// Object storage proxy
	router.PathPrefix("/static/").Handler(NewStaticHandler(cfg))

	return corsMiddleware(router)
}
