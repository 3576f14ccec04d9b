package types

import "time"

// Review is a user-authored comment about one media item.
type Review struct {
	// ID is the unique identifier of the review.
	ID int `json:"id" db:"id"`

	// UserID is the author of the review.
	UserID int `json:"-" db:"user_id"`

	// User carries the author's public identity when loaded alongside the review.
	User ReviewAuthor `json:"user"`

	MediaType   MediaType `json:"mediaType" db:"media_type"`
	MediaID     string    `json:"mediaId" db:"media_id"`
	MediaTitle  string    `json:"mediaTitle" db:"media_title"`
	MediaPoster string    `json:"mediaPoster" db:"media_poster"`

	// Content is the free-text body of the review.
	Content string `json:"content" db:"content"`

	// CreatedAt is assigned by the server when the review is stored.
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// ReviewAuthor is the public part of a user embedded in a review.
type ReviewAuthor struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
