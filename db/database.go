package db

import (
	"database/sql"
	"fmt"

	"musewave/config"
	"musewave/logger"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

var DB *sql.DB

// ConnectDB establishes a connection to the database.
func ConnectDB(cfg *config.Config) error {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	var err error
	DB, err = sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	if err = DB.Ping(); err != nil {
		DB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("connected to database", logger.String("host", cfg.DBHost), logger.String("db", cfg.DBName))
	return nil
}

// InitDB initializes the database schema, creating tables if they don't exist.
func InitDB() error {
	statements := []struct {
		name  string
		query string
	}{
		{"users", `
		CREATE TABLE IF NOT EXISTS users (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			username VARCHAR(100) NOT NULL UNIQUE,
			email VARCHAR(255) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			display_name VARCHAR(255) NOT NULL DEFAULT '',
			bio TEXT,
			avatar_url VARCHAR(767) NOT NULL DEFAULT '',
			verified TINYINT(1) NOT NULL DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		);`},
		{"albums", `
		CREATE TABLE IF NOT EXISTS albums (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			user_id BIGINT NOT NULL,
			title VARCHAR(255) NOT NULL,
			description TEXT,
			cover_url VARCHAR(767) NOT NULL DEFAULT '',
			release_date TIMESTAMP NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			CONSTRAINT fk_user_albums FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		);`},
		{"tracks", `
		CREATE TABLE IF NOT EXISTS tracks (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			user_id BIGINT NOT NULL,
			album_id BIGINT NULL,
			title VARCHAR(255) NOT NULL,
			artist VARCHAR(255) NOT NULL DEFAULT '',
			artist_slug VARCHAR(255) NOT NULL DEFAULT '',
			genre VARCHAR(100) NOT NULL DEFAULT '',
			mood VARCHAR(100) NOT NULL DEFAULT '',
			tags JSON,
			audio_url VARCHAR(767) NOT NULL,
			audio_size BIGINT NOT NULL DEFAULT 0,
			duration DOUBLE NOT NULL DEFAULT 0,
			format VARCHAR(20) NOT NULL DEFAULT '',
			cover_url VARCHAR(767) NOT NULL DEFAULT '',
			plays BIGINT NOT NULL DEFAULT 0,
			likes BIGINT NOT NULL DEFAULT 0,
			downloads BIGINT NOT NULL DEFAULT 0,
			shares BIGINT NOT NULL DEFAULT 0,
			published TINYINT(1) NOT NULL DEFAULT 0,
			published_at TIMESTAMP NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			CONSTRAINT fk_user_tracks FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
			CONSTRAINT fk_album_tracks FOREIGN KEY (album_id) REFERENCES albums(id) ON DELETE SET NULL,
			INDEX idx_tracks_published (published, created_at),
			INDEX idx_tracks_genre (genre),
			INDEX idx_tracks_artist_slug (artist_slug)
		);`},
		{"likes", `
		CREATE TABLE IF NOT EXISTS likes (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			user_id BIGINT NOT NULL,
			track_id BIGINT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT uq_like UNIQUE (user_id, track_id),
			INDEX idx_likes_track (track_id)
		);`},
		{"follows", `
		CREATE TABLE IF NOT EXISTS follows (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			follower_id BIGINT NOT NULL,
			following_id BIGINT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT uq_follow UNIQUE (follower_id, following_id),
			INDEX idx_follows_following (following_id)
		);`},
		{"plays", `
		CREATE TABLE IF NOT EXISTS plays (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			user_id BIGINT NOT NULL,
			track_id BIGINT NOT NULL,
			listened_duration DOUBLE NOT NULL DEFAULT 0,
			completed TINYINT(1) NOT NULL DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			INDEX idx_plays_track (track_id, created_at),
			INDEX idx_plays_user (user_id, created_at)
		);`},
		{"downloads", `
		CREATE TABLE IF NOT EXISTS downloads (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			user_id BIGINT NOT NULL,
			track_id BIGINT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			INDEX idx_downloads_track (track_id)
		);`},
	}

	for _, stmt := range statements {
		if _, err := DB.Exec(stmt.query); err != nil {
			return fmt.Errorf("failed to create %s table: %w", stmt.name, err)
		}
	}

	logger.Info("database schema initialized")
	return nil
}
