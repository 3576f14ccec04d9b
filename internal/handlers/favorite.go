package handlers

import (
	"errors"
	"net/http"

	"github.com/cinedex/apiserver/internal/services"
	"github.com/cinedex/apiserver/internal/validation"
)

const msgFavoriteNotFound = "Favorite not found"

// FavoriteHandler serves the authenticated user's favorites.
type FavoriteHandler struct {
	favoriteService *services.FavoriteService
}

func NewFavoriteHandler(favoriteService *services.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{favoriteService: favoriteService}
}

// ListFavorites returns the principal's favorites, newest first.
func (h *FavoriteHandler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	userID, ok := principal(w, r)
	if !ok {
		return
	}

	favorites, err := h.favoriteService.GetFavoritesOfUser(r.Context(), userID)
	if err != nil {
		writeInternalError(w, r, err, "failed to list favorites")
		return
	}
	writeJSON(w, http.StatusOK, favorites)
}

func (h *FavoriteHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	userID, ok := principal(w, r)
	if !ok {
		return
	}

	var req validation.AddFavoriteRequest
	if !bind(w, r, &req) {
		return
	}

	favorite, err := h.favoriteService.AddFavorite(r.Context(), req.Favorite(userID))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrFavoriteExists):
			writeError(w, http.StatusBadRequest, "Favorite already exists")
		case errors.Is(err, services.ErrInvalidMediaType):
			writeJSON(w, http.StatusBadRequest, ValidationErrorResponse{Errors: []string{"mediaType invalid"}})
		default:
			writeInternalError(w, r, err, "failed to add favorite")
		}
		return
	}
	writeJSON(w, http.StatusCreated, favorite)
}

// GetFavorite returns one favorite owned by the principal.
func (h *FavoriteHandler) GetFavorite(w http.ResponseWriter, r *http.Request) {
	userID, ok := principal(w, r)
	if !ok {
		return
	}

	favoriteID, ok := parseIDParam(r, "id")
	if !ok {
		writeError(w, http.StatusNotFound, msgFavoriteNotFound)
		return
	}

	favorite, err := h.favoriteService.FindFavoriteByIDAndUser(r.Context(), favoriteID, userID)
	if err != nil {
		if errors.Is(err, services.ErrFavoriteNotFound) {
			writeError(w, http.StatusNotFound, msgFavoriteNotFound)
			return
		}
		writeInternalError(w, r, err, "failed to load favorite")
		return
	}
	writeJSON(w, http.StatusOK, favorite)
}

// RemoveFavorite deletes a favorite owned by the principal. Ids that do not
// exist and ids owned by someone else both answer 404.
func (h *FavoriteHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	userID, ok := principal(w, r)
	if !ok {
		return
	}

	favoriteID, ok := parseIDParam(r, "id")
	if !ok {
		writeError(w, http.StatusNotFound, msgFavoriteNotFound)
		return
	}

	if err := h.favoriteService.RemoveFavoriteByID(r.Context(), favoriteID, userID); err != nil {
		if errors.Is(err, services.ErrFavoriteNotFound) {
			writeError(w, http.StatusNotFound, msgFavoriteNotFound)
			return
		}
		writeInternalError(w, r, err, "failed to remove favorite")
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Favorite removed successfully"})
}
