package types

import "time"

// Favorite is a user's saved reference to a media item.
// The media fields are a snapshot taken when the favorite was added.
type Favorite struct {
	// ID is the unique identifier of the favorite.
	ID int `json:"id" db:"id"`

	// UserID is the owner of the favorite.
	UserID int `json:"-" db:"user_id"`

	// MediaType is either "movie" or "tv".
	MediaType MediaType `json:"mediaType" db:"media_type"`

	// MediaID is the upstream identifier of the media item.
	MediaID string `json:"mediaId" db:"media_id"`

	MediaTitle  string  `json:"mediaTitle" db:"media_title"`
	MediaPoster string  `json:"mediaPoster" db:"media_poster"`
	MediaRate   float64 `json:"mediaRate" db:"media_rate"`

	// CreatedAt is the timestamp when the favorite was added.
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
