package user

import (
	"log/slog"
	"net/http"

	"github.com/stockers-dev/stockers-api/internal/api"
	"github.com/stockers-dev/stockers-api/internal/api/auth"
)

type UserHandler struct {
	userService UserService
	logger      *slog.Logger
}

func NewUserHandler(userService UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

// GetMyPage returns the authenticated user's profile.
func (h *UserHandler) GetMyPage(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "INVALID_TOKEN")
		return
	}

	profile, err := h.userService.MyPage(r.Context(), userID)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{"result": profile})
}

// PatchMyPage changes the authenticated user's password.
func (h *UserHandler) PatchMyPage(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "INVALID_TOKEN")
		return
	}

	var req ChangePasswordRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.NewPassword == "" || req.NewPasswordCheck == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "KEY_ERROR")
		return
	}

	if err := h.userService.ChangePassword(r.Context(), userID, req.NewPassword, req.NewPasswordCheck); err != nil {
		api.HandleError(w, r, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, map[string]string{"message": "SUCCESS"})
}

// PostVerification issues a password-reset code to the given email.
func (h *UserHandler) PostVerification(w http.ResponseWriter, r *http.Request) {
	var req IssueVerificationRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Email == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "KEY_ERROR")
		return
	}

	if err := h.userService.IssueVerification(r.Context(), req.Email); err != nil {
		h.logger.WarnContext(r.Context(), "Verification issue failed", slog.Any("error", err))
		api.HandleError(w, r, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, map[string]string{"message": "SUCCESS"})
}

// PatchVerification consumes a code and sets a new password.
func (h *UserHandler) PatchVerification(w http.ResponseWriter, r *http.Request) {
	var req ConfirmVerificationRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Email == "" || req.Code == "" || req.NewPassword == "" || req.NewPasswordCheck == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "KEY_ERROR")
		return
	}

	if err := h.userService.ConfirmVerification(r.Context(), req.Email, req.Code, req.NewPassword, req.NewPasswordCheck); err != nil {
		h.logger.WarnContext(r.Context(), "Verification confirm failed", slog.Any("error", err))
		api.HandleError(w, r, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, map[string]string{"message": "SUCCESS"})
}
