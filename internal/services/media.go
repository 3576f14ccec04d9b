package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/cinedex/apiserver/types"
)

// ReviewTimeLayout is the createdAt format used in media detail reviews.
const ReviewTimeLayout = "2006-01-02 15:04:05"

// MediaGateway is the upstream metadata API. Bodies are returned undecoded.
type MediaGateway interface {
	MediaList(ctx context.Context, mediaType, category string, page int) (json.RawMessage, error)
	MediaDetail(ctx context.Context, mediaType, mediaID string) (json.RawMessage, error)
	MediaGenres(ctx context.Context, mediaType string) (json.RawMessage, error)
	MediaCredits(ctx context.Context, mediaType, mediaID string) (json.RawMessage, error)
	MediaVideos(ctx context.Context, mediaType, mediaID string) (json.RawMessage, error)
	MediaImages(ctx context.Context, mediaType, mediaID string) (json.RawMessage, error)
	MediaRecommendations(ctx context.Context, mediaType, mediaID string) (json.RawMessage, error)
	MediaSearch(ctx context.Context, mediaType, query string, page int) (json.RawMessage, error)
	PersonDetail(ctx context.Context, personID string) (json.RawMessage, error)
	PersonMedias(ctx context.Context, personID string) (json.RawMessage, error)
}

// MediaService forwards catalog queries upstream and composes the detail view.
type MediaService struct {
	gateway   MediaGateway
	favorites *FavoriteService
	reviews   *ReviewService
}

func NewMediaService(gateway MediaGateway, favorites *FavoriteService, reviews *ReviewService) *MediaService {
	return &MediaService{gateway: gateway, favorites: favorites, reviews: reviews}
}

// DetailReview is the review shape embedded in a media detail.
type DetailReview struct {
	ID        int                `json:"id"`
	Content   string             `json:"content"`
	User      types.ReviewAuthor `json:"user"`
	CreatedAt string             `json:"createdAt"`
}

func (s *MediaService) List(ctx context.Context, mediaType, category string, page int) (json.RawMessage, error) {
	if !types.MediaType(mediaType).Valid() {
		return nil, ErrInvalidMediaType
	}
	return upstream(s.gateway.MediaList(ctx, mediaType, category, page))
}

func (s *MediaService) Genres(ctx context.Context, mediaType string) (json.RawMessage, error) {
	if !types.MediaType(mediaType).Valid() {
		return nil, ErrInvalidMediaType
	}
	return upstream(s.gateway.MediaGenres(ctx, mediaType))
}

// Search accepts movie, tv and people (or person) as the search target.
func (s *MediaService) Search(ctx context.Context, mediaType, query string, page int) (json.RawMessage, error) {
	target, err := searchTarget(mediaType)
	if err != nil {
		return nil, err
	}
	return upstream(s.gateway.MediaSearch(ctx, target, query, page))
}

func searchTarget(mediaType string) (string, error) {
	switch strings.ToLower(mediaType) {
	case "movie", "tv":
		return strings.ToLower(mediaType), nil
	case "people", "person":
		return "person", nil
	default:
		return "", ErrInvalidMediaType
	}
}

// Detail returns the upstream detail object extended with credits, videos,
// recommendations, images and local reviews. isFavorite is set only when
// userID is non-nil.
func (s *MediaService) Detail(ctx context.Context, mediaType, mediaID string, userID *int) (map[string]any, error) {
	if !types.MediaType(mediaType).Valid() {
		return nil, ErrInvalidMediaType
	}

	raw, err := upstream(s.gateway.MediaDetail(ctx, mediaType, mediaID))
	if err != nil {
		return nil, err
	}
	media := map[string]any{}
	if err := json.Unmarshal(raw, &media); err != nil {
		return nil, fmt.Errorf("%w: decode detail: %w", ErrUpstreamUnavailable, err)
	}

	if media["credits"], err = upstream(s.gateway.MediaCredits(ctx, mediaType, mediaID)); err != nil {
		return nil, err
	}
	if media["videos"], err = upstream(s.gateway.MediaVideos(ctx, mediaType, mediaID)); err != nil {
		return nil, err
	}

	recommend, err := upstream(s.gateway.MediaRecommendations(ctx, mediaType, mediaID))
	if err != nil {
		return nil, err
	}
	var page struct {
		Results json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(recommend, &page); err != nil {
		return nil, fmt.Errorf("%w: decode recommendations: %w", ErrUpstreamUnavailable, err)
	}
	if page.Results == nil {
		page.Results = json.RawMessage("[]")
	}
	media["recommend"] = page.Results

	if media["images"], err = upstream(s.gateway.MediaImages(ctx, mediaType, mediaID)); err != nil {
		return nil, err
	}

	if userID != nil {
		isFavorite, err := s.favorites.IsFavorite(ctx, *userID, types.MediaType(mediaType), mediaID)
		if err != nil {
			return nil, err
		}
		media["isFavorite"] = isFavorite
	}

	reviews, err := s.reviews.ListByMedia(ctx, types.MediaType(mediaType), mediaID)
	if err != nil {
		return nil, err
	}
	detailReviews := make([]DetailReview, 0, len(reviews))
	for _, r := range reviews {
		detailReviews = append(detailReviews, DetailReview{
			ID:        r.ID,
			Content:   r.Content,
			User:      r.User,
			CreatedAt: r.CreatedAt.Format(ReviewTimeLayout),
		})
	}
	media["reviews"] = detailReviews

	return media, nil
}

func (s *MediaService) Person(ctx context.Context, personID string) (json.RawMessage, error) {
	return upstream(s.gateway.PersonDetail(ctx, personID))
}

// PersonMedias returns the combined movie and tv credits of a person.
func (s *MediaService) PersonMedias(ctx context.Context, personID string) (json.RawMessage, error) {
	return upstream(s.gateway.PersonMedias(ctx, personID))
}

func upstream(body json.RawMessage, err error) (json.RawMessage, error) {
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}
	return body, nil
}
