package model

import "time"

// Comment is a listener comment on a track. Stored through GORM.
type Comment struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	UserID    int64     `json:"userId" gorm:"index;not null"`
	TrackID   int64     `json:"trackId" gorm:"index;not null"`
	Body      string    `json:"body" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"createdAt"`
}
