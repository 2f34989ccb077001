package auth

import (
	"log/slog"
	"net/http"

	"github.com/stockers-dev/stockers-api/internal/api"
)

type AuthHandler struct {
	authService AuthService
	logger      *slog.Logger
}

func NewAuthHandler(authService AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Signup registers a new account and returns a fresh access token.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if req.Email == "" || req.Password == "" || req.PasswordCheck == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "KEY_ERROR")
		return
	}

	token, err := h.authService.Signup(r.Context(), req.Email, req.Password, req.PasswordCheck)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Signup failed", slog.Any("error", err))
		api.HandleError(w, r, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, TokenResponse{AccessToken: token})
}

// Signin authenticates an existing account and returns an access token.
func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req SigninRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if req.Email == "" || req.Password == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "KEY_ERROR")
		return
	}

	token, err := h.authService.Signin(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Signin failed", slog.Any("error", err))
		api.HandleError(w, r, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, TokenResponse{AccessToken: token})
}
