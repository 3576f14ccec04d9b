package services

import "errors"

var (
	// ErrUsernameTaken is returned when signing up with an existing username.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrAuthenticationFailed covers both an unknown username and a wrong password.
	ErrAuthenticationFailed = errors.New("invalid credentials")
	// ErrInvalidCurrentPassword is returned by UpdatePassword when the current password is wrong.
	ErrInvalidCurrentPassword = errors.New("invalid current password")
	ErrUserNotFound           = errors.New("user not found")

	ErrFavoriteExists   = errors.New("favorite already exists")
	ErrFavoriteNotFound = errors.New("favorite not found")

	// ErrReviewForbidden is returned when the principal is not the author of the review.
	ErrReviewForbidden = errors.New("review belongs to another user")

	ErrInvalidMediaType = errors.New("invalid media type")
	// ErrUpstreamUnavailable wraps every media gateway failure.
	ErrUpstreamUnavailable = errors.New("media upstream unavailable")
)
