package model

// TrackDocument is the denormalized search projection of a published track.
type TrackDocument struct {
	TrackID    int64    `json:"trackId"`
	Title      string   `json:"title"`
	Artist     string   `json:"artist"`
	ArtistSlug string   `json:"artistSlug"`
	Genre      string   `json:"genre,omitempty"`
	Mood       string   `json:"mood,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	CoverURL   string   `json:"coverUrl,omitempty"`
	Plays      int64    `json:"plays"`
}

// UserDocument is the denormalized search projection of a user.
type UserDocument struct {
	UserID      int64  `json:"userId"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName,omitempty"`
	Bio         string `json:"bio,omitempty"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
	Verified    bool   `json:"verified"`
}

// SearchResult is the response shape of the search endpoint.
type SearchResult struct {
	Tracks []TrackDocument `json:"tracks"`
	Users  []UserDocument  `json:"users"`
}
