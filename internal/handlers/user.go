package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cinedex/apiserver/internal/services"
	"github.com/cinedex/apiserver/internal/validation"
	"github.com/cinedex/apiserver/types"
)

// UserHandler provides account endpoints.
type UserHandler struct {
	userService *services.UserService
	auth        *Authenticator
}

func NewUserHandler(userService *services.UserService, auth *Authenticator) *UserHandler {
	return &UserHandler{userService: userService, auth: auth}
}

// UserRouter registers account and favorite routes. credentialLimiter, when
// set, guards signup and signin.
func UserRouter(
	r chi.Router,
	userService *services.UserService,
	favoriteService *services.FavoriteService,
	auth *Authenticator,
	credentialLimiter func(http.Handler) http.Handler,
) {
	handler := NewUserHandler(userService, auth)
	favorites := NewFavoriteHandler(favoriteService)

	r.Group(func(r chi.Router) {
		if credentialLimiter != nil {
			r.Use(credentialLimiter)
		}
		r.Post("/signup", handler.Signup)
		r.Post("/signin", handler.Signin)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth)
		r.Put("/update-password", handler.UpdatePassword)
		r.Get("/info", handler.Info)

		r.Get("/favorites", favorites.ListFavorites)
		r.Post("/favorites", favorites.AddFavorite)
		r.Get("/favorites/{id}", favorites.GetFavorite)
		r.Delete("/favorites/{id}", favorites.RemoveFavorite)
	})
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID          int    `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
}

func newUserResponse(user types.User) UserResponse {
	return UserResponse{ID: user.ID, Username: user.Username, DisplayName: user.DisplayName}
}

type AuthResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    UserResponse `json:"user"`
}

// Signup creates an account and returns it with a bearer token.
func (h *UserHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req validation.SignupRequest
	if !bind(w, r, &req) {
		return
	}

	user, err := h.userService.CreateUser(r.Context(), req.Username.String(), req.Password.String(), req.DisplayName.String())
	if err != nil {
		if errors.Is(err, services.ErrUsernameTaken) {
			writeError(w, http.StatusBadRequest, "Username already exists")
			return
		}
		writeInternalError(w, r, err, "failed to create user")
		return
	}

	token, err := h.auth.IssueToken(user.ID)
	if err != nil {
		writeInternalError(w, r, err, "failed to create token")
		return
	}

	writeJSON(w, http.StatusCreated, AuthResponse{
		Message: "User created successfully",
		Token:   token,
		User:    newUserResponse(user),
	})
}

// Signin verifies credentials and returns a bearer token.
func (h *UserHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req validation.SigninRequest
	if !bind(w, r, &req) {
		return
	}

	user, err := h.userService.Authenticate(r.Context(), req.Username.String(), req.Password.String())
	if err != nil {
		if errors.Is(err, services.ErrAuthenticationFailed) {
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		writeInternalError(w, r, err, "failed to authenticate")
		return
	}

	token, err := h.auth.IssueToken(user.ID)
	if err != nil {
		writeInternalError(w, r, err, "failed to create token")
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{
		Message: "Login successful",
		Token:   token,
		User:    newUserResponse(user),
	})
}

func (h *UserHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := principal(w, r)
	if !ok {
		return
	}

	var req validation.UpdatePasswordRequest
	if !bind(w, r, &req) {
		return
	}

	err := h.userService.UpdatePassword(r.Context(), userID, req.Password.String(), req.NewPassword.String())
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, MessageResponse{Message: "Password updated successfully"})
	case errors.Is(err, services.ErrInvalidCurrentPassword):
		writeError(w, http.StatusBadRequest, "Invalid current password")
	case errors.Is(err, services.ErrUserNotFound):
		writeError(w, http.StatusUnauthorized, msgUnauthorized)
	default:
		writeInternalError(w, r, err, "failed to update password")
	}
}

// Info returns the authenticated account.
func (h *UserHandler) Info(w http.ResponseWriter, r *http.Request) {
	userID, ok := principal(w, r)
	if !ok {
		return
	}

	user, err := h.userService.GetUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			writeError(w, http.StatusUnauthorized, msgUnauthorized)
			return
		}
		writeInternalError(w, r, err, "failed to load user")
		return
	}

	writeJSON(w, http.StatusOK, newUserResponse(user))
}
