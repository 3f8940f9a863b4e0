package model

import "time"

// User represents an artist or listener account.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Not exposed in API responses
	DisplayName  string    `json:"displayName,omitempty"`
	Bio          string    `json:"bio,omitempty"`
	AvatarURL    string    `json:"avatarUrl,omitempty"`
	Verified     bool      `json:"verified"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserUpdate carries the mutable profile fields for PATCH requests.
// Nil pointers mean "leave unchanged".
type UserUpdate struct {
	DisplayName *string `json:"displayName"`
	Bio         *string `json:"bio"`
	AvatarURL   *string `json:"avatarUrl"`
	Email       *string `json:"email"`
}

// Artist is a user projection for the public artist directory.
type Artist struct {
	User
	ArtistSlug     string `json:"artistSlug"`
	PublishedCount int    `json:"publishedCount"`
	FollowerCount  int    `json:"followerCount"`
}
