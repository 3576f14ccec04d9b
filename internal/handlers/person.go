package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cinedex/apiserver/internal/services"
)

const msgAnErrorOccurred = "An error occurred"

type PersonHandler struct {
	mediaService *services.MediaService
}

func NewPersonHandler(mediaService *services.MediaService) *PersonHandler {
	return &PersonHandler{mediaService: mediaService}
}

func PersonRouter(r chi.Router, mediaService *services.MediaService) {
	handler := NewPersonHandler(mediaService)

	r.Get("/{personId}", handler.Detail)
	r.Get("/{personId}/medias", handler.Medias)
}

func (h *PersonHandler) Detail(w http.ResponseWriter, r *http.Request) {
	personID, ok := personParam(w, r)
	if !ok {
		return
	}
	body, err := h.mediaService.Person(r.Context(), personID)
	if err != nil {
		writeMediaError(w, r, err, msgAnErrorOccurred)
		return
	}
	writeRaw(w, body)
}

// Medias returns the person's combined movie and tv credits.
func (h *PersonHandler) Medias(w http.ResponseWriter, r *http.Request) {
	personID, ok := personParam(w, r)
	if !ok {
		return
	}
	body, err := h.mediaService.PersonMedias(r.Context(), personID)
	if err != nil {
		writeMediaError(w, r, err, msgAnErrorOccurred)
		return
	}
	writeRaw(w, body)
}

func personParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	if _, ok := parseIDParam(r, "personId"); !ok {
		writeError(w, http.StatusBadRequest, "invalid person id")
		return "", false
	}
	return chi.URLParam(r, "personId"), true
}
