package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/cinedex/apiserver/internal/logging"
	"github.com/cinedex/apiserver/internal/validation"
)

type contextKey string

const contextSubjectKey contextKey = "sub"

const (
	msgUnauthorized = "Unauthorized"
	msgForbidden    = "Forbidden"
)

// maxBodyBytes caps every JSON request body.
const maxBodyBytes = 1 << 20

// ErrorResponse is the body of every single-message failure.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ValidationErrorResponse lists every field violation of a request.
type ValidationErrorResponse struct {
	Errors []string `json:"errors"`
}

// MessageResponse is returned by mutations that have no resource to show.
type MessageResponse struct {
	Message string `json:"message"`
}

func userIDFromContext(ctx context.Context) (int, error) {
	subject, ok := ctx.Value(contextSubjectKey).(string)
	if !ok {
		return 0, errors.New("missing subject")
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(subject))
	if err != nil || parsed < 1 {
		return 0, errors.New("invalid subject")
	}
	return parsed, nil
}

// principal returns the authenticated user id, writing 401 when there is none.
func principal(w http.ResponseWriter, r *http.Request) (int, bool) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, msgUnauthorized)
		return 0, false
	}
	return userID, true
}

func parseIDParam(r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// bind decodes and validates the request body, writing 400 on failure.
func bind(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := validation.Bind(http.MaxBytesReader(w, r.Body, maxBodyBytes), dst)
	if err == nil {
		return true
	}
	var verr *validation.Errors
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, ValidationErrorResponse{Errors: verr.Messages})
		return false
	}
	writeError(w, http.StatusBadRequest, validation.MsgInvalidBody)
	return false
}

// writeJSON encodes value before touching the response so that a value which
// cannot be encoded turns into a 500 instead of a truncated body.
func writeJSON(w http.ResponseWriter, status int, value any) {
	body, err := json.Marshal(value)
	if err != nil {
		logging.Error().Err(err).Int("status", status).Msg("failed to encode response")
		status = http.StatusInternalServerError
		body = []byte(`{"error":"` + msgSomethingWrong + `"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeInternalError logs err and answers 500 with message.
func writeInternalError(w http.ResponseWriter, r *http.Request, err error, message string) {
	logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg(message)
	writeError(w, http.StatusInternalServerError, message)
}

// Healthz reports that the process is serving requests.
func Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
