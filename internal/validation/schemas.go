package validation

import (
	"strconv"

	"github.com/cinedex/apiserver/types"
)

type SignupRequest struct {
	Username        Text `json:"username" validate:"required,min=8,max=180"`
	Password        Text `json:"password" validate:"required,min=8"`
	ConfirmPassword Text `json:"confirmPassword" validate:"required,eqfield=Password"`
	DisplayName     Text `json:"displayName" validate:"required,min=8,max=255"`
}

type SigninRequest struct {
	Username Text `json:"username" validate:"required,min=8"`
	Password Text `json:"password" validate:"required,min=8"`
}

// UpdatePasswordRequest carries the current password and its replacement.
type UpdatePasswordRequest struct {
	Password           Text `json:"password" validate:"required"`
	NewPassword        Text `json:"newPassword" validate:"required,min=8"`
	ConfirmNewPassword Text `json:"confirmNewPassword" validate:"required,eqfield=NewPassword"`
}

type AddFavoriteRequest struct {
	MediaType   Text `json:"mediaType" validate:"required,oneof=movie tv"`
	MediaID     Text `json:"mediaId" validate:"required,notblank,max=64"`
	MediaTitle  Text `json:"mediaTitle" validate:"required,notblank,max=255"`
	MediaPoster Text `json:"mediaPoster" validate:"required,notblank,max=255"`
	MediaRate   Text `json:"mediaRate" validate:"required,numeric,finite"`
}

// Favorite converts a validated request into an unsaved favorite for userID.
func (r AddFavoriteRequest) Favorite(userID int) types.Favorite {
	rate, _ := strconv.ParseFloat(r.MediaRate.String(), 64)
	return types.Favorite{
		UserID:      userID,
		MediaType:   types.MediaType(r.MediaType),
		MediaID:     r.MediaID.String(),
		MediaTitle:  r.MediaTitle.String(),
		MediaPoster: r.MediaPoster.String(),
		MediaRate:   rate,
	}
}

type CreateReviewRequest struct {
	MediaID     Text `json:"mediaId" validate:"required,notblank,max=64"`
	Content     Text `json:"content" validate:"required,notblank"`
	MediaType   Text `json:"mediaType" validate:"required,oneof=movie tv"`
	MediaTitle  Text `json:"mediaTitle" validate:"required,notblank,max=255"`
	MediaPoster Text `json:"mediaPoster" validate:"required,notblank,max=255"`
}

// Review converts a validated request into an unsaved review authored by userID.
func (r CreateReviewRequest) Review(userID int) types.Review {
	return types.Review{
		UserID:      userID,
		MediaType:   types.MediaType(r.MediaType),
		MediaID:     r.MediaID.String(),
		MediaTitle:  r.MediaTitle.String(),
		MediaPoster: r.MediaPoster.String(),
		Content:     r.Content.String(),
	}
}
