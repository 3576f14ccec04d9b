package services

import (
	"context"
	"errors"

	"github.com/cinedex/apiserver/internal/store"
	"github.com/cinedex/apiserver/types"
)

// FavoriteRepository defines persistence operations for favorites.
type FavoriteRepository interface {
	Create(ctx context.Context, fav types.Favorite) (types.Favorite, error)
	GetByIDAndUser(ctx context.Context, id, userID int) (types.Favorite, error)
	ListByUser(ctx context.Context, userID int) ([]types.Favorite, error)
	Exists(ctx context.Context, userID int, mediaType types.MediaType, mediaID string) (bool, error)
	DeleteByIDAndUser(ctx context.Context, id, userID int) (types.Favorite, error)
}

// FavoriteService encapsulates favorite use-cases. Every lookup is scoped to
// the owning user.
type FavoriteService struct {
	repo   FavoriteRepository
	events ActivityPublisher
}

func NewFavoriteService(repo FavoriteRepository, events ActivityPublisher) *FavoriteService {
	return &FavoriteService{repo: repo, events: publisherOrNoop(events)}
}

// AddFavorite stores fav for fav.UserID. A second favorite for the same
// media item fails with ErrFavoriteExists.
func (s *FavoriteService) AddFavorite(ctx context.Context, fav types.Favorite) (types.Favorite, error) {
	if !fav.MediaType.Valid() {
		return types.Favorite{}, ErrInvalidMediaType
	}

	created, err := s.repo.Create(ctx, fav)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return types.Favorite{}, ErrFavoriteExists
		}
		return types.Favorite{}, err
	}

	s.events.Publish(ctx, types.ActivityEvent{
		Type:       types.ActivityFavoriteAdded,
		UserID:     created.UserID,
		ResourceID: created.ID,
		MediaType:  created.MediaType,
		MediaID:    created.MediaID,
	})
	return created, nil
}

// RemoveFavoriteByID deletes the favorite only if userID owns it.
func (s *FavoriteService) RemoveFavoriteByID(ctx context.Context, id, userID int) error {
	removed, err := s.repo.DeleteByIDAndUser(ctx, id, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrFavoriteNotFound
		}
		return err
	}

	s.events.Publish(ctx, types.ActivityEvent{
		Type:       types.ActivityFavoriteRemoved,
		UserID:     userID,
		ResourceID: removed.ID,
		MediaType:  removed.MediaType,
		MediaID:    removed.MediaID,
	})
	return nil
}

func (s *FavoriteService) FindFavoriteByIDAndUser(ctx context.Context, id, userID int) (types.Favorite, error) {
	fav, err := s.repo.GetByIDAndUser(ctx, id, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Favorite{}, ErrFavoriteNotFound
		}
		return types.Favorite{}, err
	}
	return fav, nil
}

// GetFavoritesOfUser returns the user's favorites, newest first.
func (s *FavoriteService) GetFavoritesOfUser(ctx context.Context, userID int) ([]types.Favorite, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *FavoriteService) IsFavorite(ctx context.Context, userID int, mediaType types.MediaType, mediaID string) (bool, error) {
	return s.repo.Exists(ctx, userID, mediaType, mediaID)
}
