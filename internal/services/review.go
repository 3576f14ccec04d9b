package services

import (
	"context"
	"errors"

	"github.com/cinedex/apiserver/internal/store"
	"github.com/cinedex/apiserver/types"
)

// ReviewRepository defines persistence operations for reviews.
type ReviewRepository interface {
	Create(ctx context.Context, review types.Review) (types.Review, error)
	ListByUser(ctx context.Context, userID int) ([]types.Review, error)
	ListByMedia(ctx context.Context, mediaType types.MediaType, mediaID string) ([]types.Review, error)
	DeleteByIDAndUser(ctx context.Context, id, userID int) (types.Review, error)
}

// ReviewService encapsulates review use-cases.
type ReviewService struct {
	repo   ReviewRepository
	users  UserRepository
	events ActivityPublisher
}

func NewReviewService(repo ReviewRepository, users UserRepository, events ActivityPublisher) *ReviewService {
	return &ReviewService{repo: repo, users: users, events: publisherOrNoop(events)}
}

// Create stores review with review.UserID as its author.
func (s *ReviewService) Create(ctx context.Context, review types.Review) (types.Review, error) {
	if !review.MediaType.Valid() {
		return types.Review{}, ErrInvalidMediaType
	}

	author, err := s.users.GetByID(ctx, review.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Review{}, ErrUserNotFound
		}
		return types.Review{}, err
	}

	created, err := s.repo.Create(ctx, review)
	if err != nil {
		return types.Review{}, err
	}
	created.User = types.ReviewAuthor{ID: author.ID, Name: author.DisplayName}

	s.events.Publish(ctx, types.ActivityEvent{
		Type:       types.ActivityReviewCreated,
		UserID:     created.UserID,
		ResourceID: created.ID,
		MediaType:  created.MediaType,
		MediaID:    created.MediaID,
	})
	return created, nil
}

// Remove deletes the review when userID is its author. Any other outcome,
// including an unknown id, is ErrReviewForbidden.
func (s *ReviewService) Remove(ctx context.Context, id, userID int) error {
	removed, err := s.repo.DeleteByIDAndUser(ctx, id, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrReviewForbidden
		}
		return err
	}

	s.events.Publish(ctx, types.ActivityEvent{
		Type:       types.ActivityReviewDeleted,
		UserID:     userID,
		ResourceID: removed.ID,
		MediaType:  removed.MediaType,
		MediaID:    removed.MediaID,
	})
	return nil
}

func (s *ReviewService) ListByUser(ctx context.Context, userID int) ([]types.Review, error) {
	return s.repo.ListByUser(ctx, userID)
}

// ListByMedia returns the reviews of one media item, newest first.
func (s *ReviewService) ListByMedia(ctx context.Context, mediaType types.MediaType, mediaID string) ([]types.Review, error) {
	return s.repo.ListByMedia(ctx, mediaType, mediaID)
}
