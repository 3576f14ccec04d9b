package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/cinedex/apiserver/types"
)

// FavoriteRepository handles persistence for favorites.
type FavoriteRepository struct {
	db *sql.DB
}

func NewFavoriteRepository(db *sql.DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

const favoriteColumns = `id, user_id, media_type, media_id, media_title, media_poster, media_rate, created_at`

// Create inserts a favorite. The (user, media type, media id) unique key
// turns a duplicate into ErrConflict.
func (r *FavoriteRepository) Create(ctx context.Context, fav types.Favorite) (types.Favorite, error) {
	fav.CreatedAt = time.Now().UTC()

	const query = `
		INSERT INTO favorites (user_id, media_type, media_id, media_title, media_poster, media_rate, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		fav.UserID,
		fav.MediaType,
		fav.MediaID,
		fav.MediaTitle,
		fav.MediaPoster,
		fav.MediaRate,
		fav.CreatedAt,
	).Scan(&fav.ID); err != nil {
		return types.Favorite{}, mapWriteError(err)
	}
	return fav, nil
}

// GetByIDAndUser loads a favorite only if it belongs to userID.
func (r *FavoriteRepository) GetByIDAndUser(ctx context.Context, id, userID int) (types.Favorite, error) {
	const query = `SELECT ` + favoriteColumns + ` FROM favorites WHERE id = $1 AND user_id = $2`
	var fav types.Favorite
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(
		&fav.ID,
		&fav.UserID,
		&fav.MediaType,
		&fav.MediaID,
		&fav.MediaTitle,
		&fav.MediaPoster,
		&fav.MediaRate,
		&fav.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Favorite{}, ErrNotFound
		}
		return types.Favorite{}, err
	}
	return fav, nil
}

// ListByUser returns the user's favorites, newest first.
func (r *FavoriteRepository) ListByUser(ctx context.Context, userID int) ([]types.Favorite, error) {
	const query = `
		SELECT ` + favoriteColumns + `
		FROM favorites
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	favorites := []types.Favorite{}
	for rows.Next() {
		var fav types.Favorite
		if err := rows.Scan(
			&fav.ID,
			&fav.UserID,
			&fav.MediaType,
			&fav.MediaID,
			&fav.MediaTitle,
			&fav.MediaPoster,
			&fav.MediaRate,
			&fav.CreatedAt,
		); err != nil {
			return nil, err
		}
		favorites = append(favorites, fav)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return favorites, nil
}

func (r *FavoriteRepository) Exists(ctx context.Context, userID int, mediaType types.MediaType, mediaID string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM favorites
			WHERE user_id = $1 AND media_type = $2 AND media_id = $3
		)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, userID, mediaType, mediaID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// DeleteByIDAndUser removes the favorite in a single statement scoped to its owner
// and returns the deleted row. ErrNotFound covers both a missing id and another owner.
func (r *FavoriteRepository) DeleteByIDAndUser(ctx context.Context, id, userID int) (types.Favorite, error) {
	const query = `
		DELETE FROM favorites
		WHERE id = $1 AND user_id = $2
		RETURNING ` + favoriteColumns
	var fav types.Favorite
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(
		&fav.ID,
		&fav.UserID,
		&fav.MediaType,
		&fav.MediaID,
		&fav.MediaTitle,
		&fav.MediaPoster,
		&fav.MediaRate,
		&fav.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Favorite{}, ErrNotFound
		}
		return types.Favorite{}, err
	}
	return fav, nil
}
