package cmd

import (
	"context"
	"fmt"
	"log"

	"musewave/cache"
	"musewave/config"
	"musewave/core/search"
	"musewave/db"
	"musewave/repository"
	"musewave/repository/filestore"

	"github.com/spf13/cobra"
)

// reindexCmd rebuilds the search index offline and stores the snapshot, so a
// fleet restart can warm-start without hammering the database.
var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the search index and persist its snapshot",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()

		var userRepo repository.UserRepository
		var trackRepo repository.TrackRepository

		if cfg.StorageDriver == "file" {
			store, err := filestore.Open(cfg.DataDir)
			if err != nil {
				log.Fatalf("Failed to open file store: %v", err)
			}
			userRepo, trackRepo = store, store
		} else {
			if err := db.ConnectDB(cfg); err != nil {
				log.Fatalf("Failed to connect to database: %v", err)
			}
			defer db.DB.Close()
			userRepo = repository.NewMySQLUserRepository(db.DB)
			trackRepo = repository.NewMySQLTrackRepository(db.DB)
		}

		if err := db.ConnectRedis(cfg); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer db.CloseRedis()

		index := search.NewIndex()
		if err := index.Rebuild(trackRepo, userRepo); err != nil {
			log.Fatalf("Failed to rebuild search index: %v", err)
		}

		tracks, users := index.Documents()
		searchCache := cache.NewSearchCache(db.RedisClient)
		searchCache.SaveSnapshot(context.Background(), &cache.IndexSnapshot{Tracks: tracks, Users: users})

		fmt.Printf("Search index rebuilt: %d tracks, %d users\n", len(tracks), len(users))
	},
}

func init() {
	rootCmd.AddCommand(reindexCmd)
}
