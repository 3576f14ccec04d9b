package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/cinedex/apiserver/internal/logging"
	"github.com/cinedex/apiserver/internal/services"
)

const (
	defaultPage          = 1
	msgSomethingWrong    = "Something went wrong"
	msgInvalidMediaType  = "invalid media type"
	msgInvalidPageNumber = "invalid page"
)

// MediaHandler proxies catalog queries to the upstream media API.
type MediaHandler struct {
	mediaService *services.MediaService
}

func NewMediaHandler(mediaService *services.MediaService) *MediaHandler {
	return &MediaHandler{mediaService: mediaService}
}

// MediaRouter registers routes below /{mediaType}. Static segments are
// matched before the category catch-all.
func MediaRouter(r chi.Router, mediaService *services.MediaService, auth *Authenticator) {
	handler := NewMediaHandler(mediaService)

	r.Get("/search", handler.Search)
	r.Get("/genres", handler.Genres)
	r.With(auth.OptionalAuth).Get("/detail/{mediaId}", handler.Detail)
	r.Get("/{mediaCategory}", handler.List)
}

func (h *MediaHandler) Search(w http.ResponseWriter, r *http.Request) {
	page, ok := parsePage(w, r)
	if !ok {
		return
	}
	query := strings.TrimSpace(r.URL.Query().Get("query"))

	body, err := h.mediaService.Search(r.Context(), chi.URLParam(r, "mediaType"), query, page)
	if err != nil {
		writeMediaError(w, r, err, msgSomethingWrong)
		return
	}
	writeRaw(w, body)
}

func (h *MediaHandler) Genres(w http.ResponseWriter, r *http.Request) {
	body, err := h.mediaService.Genres(r.Context(), chi.URLParam(r, "mediaType"))
	if err != nil {
		writeMediaError(w, r, err, msgSomethingWrong)
		return
	}
	writeRaw(w, body)
}

// Detail returns the aggregated media detail. isFavorite is present only
// for authenticated requests.
func (h *MediaHandler) Detail(w http.ResponseWriter, r *http.Request) {
	var userID *int
	if id, err := userIDFromContext(r.Context()); err == nil {
		userID = &id
	}

	media, err := h.mediaService.Detail(r.Context(), chi.URLParam(r, "mediaType"), chi.URLParam(r, "mediaId"), userID)
	if err != nil {
		writeMediaError(w, r, err, msgSomethingWrong)
		return
	}
	writeJSON(w, http.StatusOK, media)
}

func (h *MediaHandler) List(w http.ResponseWriter, r *http.Request) {
	page, ok := parsePage(w, r)
	if !ok {
		return
	}

	body, err := h.mediaService.List(r.Context(), chi.URLParam(r, "mediaType"), chi.URLParam(r, "mediaCategory"), page)
	if err != nil {
		writeMediaError(w, r, err, msgSomethingWrong)
		return
	}
	writeRaw(w, body)
}

func parsePage(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("page"))
	if raw == "" {
		return defaultPage, true
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		writeError(w, http.StatusBadRequest, msgInvalidPageNumber)
		return 0, false
	}
	return page, true
}

// writeMediaError hides upstream detail from the client behind message.
func writeMediaError(w http.ResponseWriter, r *http.Request, err error, message string) {
	if errors.Is(err, services.ErrInvalidMediaType) {
		writeError(w, http.StatusBadRequest, msgInvalidMediaType)
		return
	}
	logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("media request failed")
	writeError(w, http.StatusInternalServerError, message)
}

// writeRaw forwards an upstream JSON body unchanged.
func writeRaw(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
