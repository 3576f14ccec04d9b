package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cinedex/apiserver/internal/services"
	"github.com/cinedex/apiserver/internal/validation"
)

// ReviewHandler provides review endpoints.
type ReviewHandler struct {
	reviewService *services.ReviewService
}

func NewReviewHandler(reviewService *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// ReviewRouter registers review routes. Every route requires a principal.
func ReviewRouter(r chi.Router, reviewService *services.ReviewService, auth *Authenticator) {
	handler := NewReviewHandler(reviewService)

	r.Use(auth.RequireAuth)
	r.Get("/", handler.ListReviews)
	r.Post("/", handler.CreateReview)
	r.Delete("/{id}", handler.DeleteReview)
}

// ListReviews returns the principal's reviews, newest first.
func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	userID, ok := principal(w, r)
	if !ok {
		return
	}

	reviews, err := h.reviewService.ListByUser(r.Context(), userID)
	if err != nil {
		writeInternalError(w, r, err, "failed to list reviews")
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := principal(w, r)
	if !ok {
		return
	}

	var req validation.CreateReviewRequest
	if !bind(w, r, &req) {
		return
	}

	review, err := h.reviewService.Create(r.Context(), req.Review(userID))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidMediaType):
			writeJSON(w, http.StatusBadRequest, ValidationErrorResponse{Errors: []string{"mediaType invalid"}})
		case errors.Is(err, services.ErrUserNotFound):
			writeError(w, http.StatusUnauthorized, msgUnauthorized)
		default:
			writeInternalError(w, r, err, "failed to create review")
		}
		return
	}
	writeJSON(w, http.StatusCreated, review)
}

// DeleteReview removes a review written by the principal. Any id the
// principal did not author answers 403, whether or not it exists.
func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := principal(w, r)
	if !ok {
		return
	}

	reviewID, ok := parseIDParam(r, "id")
	if !ok {
		writeError(w, http.StatusForbidden, msgForbidden)
		return
	}

	if err := h.reviewService.Remove(r.Context(), reviewID, userID); err != nil {
		if errors.Is(err, services.ErrReviewForbidden) {
			writeError(w, http.StatusForbidden, msgForbidden)
			return
		}
		writeInternalError(w, r, err, "failed to delete review")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
