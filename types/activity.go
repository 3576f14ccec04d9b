package types

import "time"

// ActivityType names a user action recorded in the activity stream.
type ActivityType string

const (
	ActivityUserCreated     ActivityType = "user.created"
	ActivityPasswordUpdated ActivityType = "user.password_updated"
	ActivityFavoriteAdded   ActivityType = "favorite.added"
	ActivityFavoriteRemoved ActivityType = "favorite.removed"
	ActivityReviewCreated   ActivityType = "review.created"
	ActivityReviewDeleted   ActivityType = "review.deleted"
)

// ActivityEvent is published after a successful mutation.
type ActivityEvent struct {
	ID         string       `json:"id"`
	Type       ActivityType `json:"type"`
	UserID     int          `json:"userId"`
	ResourceID int          `json:"resourceId,omitempty"`
	MediaType  MediaType    `json:"mediaType,omitempty"`
	MediaID    string       `json:"mediaId,omitempty"`
	OccurredAt time.Time    `json:"occurredAt"`
}
