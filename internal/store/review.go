package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/cinedex/apiserver/types"
)

// ReviewRepository handles persistence for reviews.
type ReviewRepository struct {
	db *sql.DB
}

func NewReviewRepository(db *sql.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

const reviewSelect = `
	SELECT r.id, r.user_id, u.display_name, r.media_type, r.media_id,
		r.media_title, r.media_poster, r.content, r.created_at
	FROM reviews r
	JOIN users u ON u.id = r.user_id`

func (r *ReviewRepository) Create(ctx context.Context, review types.Review) (types.Review, error) {
	review.CreatedAt = time.Now().UTC()

	const query = `
		INSERT INTO reviews (user_id, media_type, media_id, media_title, media_poster, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		review.UserID,
		review.MediaType,
		review.MediaID,
		review.MediaTitle,
		review.MediaPoster,
		review.Content,
		review.CreatedAt,
	).Scan(&review.ID); err != nil {
		return types.Review{}, mapWriteError(err)
	}
	review.User.ID = review.UserID
	return review, nil
}

// ListByUser returns the reviews written by userID, newest first.
func (r *ReviewRepository) ListByUser(ctx context.Context, userID int) ([]types.Review, error) {
	const query = reviewSelect + `
		WHERE r.user_id = $1
		ORDER BY r.created_at DESC, r.id DESC`
	return r.list(ctx, query, userID)
}

// ListByMedia returns the reviews of one media item, newest first.
func (r *ReviewRepository) ListByMedia(ctx context.Context, mediaType types.MediaType, mediaID string) ([]types.Review, error) {
	const query = reviewSelect + `
		WHERE r.media_type = $1 AND r.media_id = $2
		ORDER BY r.created_at DESC, r.id DESC`
	return r.list(ctx, query, mediaType, mediaID)
}

// DeleteByIDAndUser removes a review only when userID is its author.
// ErrNotFound is returned when no row matched.
func (r *ReviewRepository) DeleteByIDAndUser(ctx context.Context, id, userID int) (types.Review, error) {
	const query = `
		DELETE FROM reviews
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, media_type, media_id, media_title, media_poster, content, created_at`
	var review types.Review
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(
		&review.ID,
		&review.UserID,
		&review.MediaType,
		&review.MediaID,
		&review.MediaTitle,
		&review.MediaPoster,
		&review.Content,
		&review.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Review{}, ErrNotFound
		}
		return types.Review{}, err
	}
	review.User.ID = review.UserID
	return review, nil
}

func (r *ReviewRepository) list(ctx context.Context, query string, args ...any) ([]types.Review, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := []types.Review{}
	for rows.Next() {
		var review types.Review
		if err := rows.Scan(
			&review.ID,
			&review.UserID,
			&review.User.Name,
			&review.MediaType,
			&review.MediaID,
			&review.MediaTitle,
			&review.MediaPoster,
			&review.Content,
			&review.CreatedAt,
		); err != nil {
			return nil, err
		}
		review.User.ID = review.UserID
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return reviews, nil
}
