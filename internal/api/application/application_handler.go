package application

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stockers-dev/stockers-api/internal/api"
	"github.com/stockers-dev/stockers-api/internal/api/auth"
)

// Multipart bodies are capped well above any realistic portfolio size.
const maxUploadMemory = 32 << 20

type ApplicationHandler struct {
	applicationService ApplicationService
	logger             *slog.Logger
}

func NewApplicationHandler(applicationService ApplicationService, logger *slog.Logger) *ApplicationHandler {
	return &ApplicationHandler{
		applicationService: applicationService,
		logger:             logger,
	}
}

// GetApplication returns the caller's own application for the recruit.
func (h *ApplicationHandler) GetApplication(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "INVALID_TOKEN")
		return
	}
	recruitID := chi.URLParam(r, "recruitID")

	content, err := h.applicationService.Get(r.Context(), recruitID, userID)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{
		"result": map[string]interface{}{"content": content},
	})
}

// SubmitApplication accepts a multipart form with a JSON content field and
// an optional portfolio file.
func (h *ApplicationHandler) SubmitApplication(w http.ResponseWriter, r *http.Request) {
	h.mutateApplication(w, r, h.applicationService.Submit, http.StatusCreated)
}

// UpdateApplication replaces the caller's application with the same form
// shape as submission.
func (h *ApplicationHandler) UpdateApplication(w http.ResponseWriter, r *http.Request) {
	h.mutateApplication(w, r, h.applicationService.Update, http.StatusOK)
}

func (h *ApplicationHandler) mutateApplication(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, recruitID, userID, rawContent string, upload *Upload) error,
	successStatus int,
) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "INVALID_TOKEN")
		return
	}
	recruitID := chi.URLParam(r, "recruitID")

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "INVALID_FORM")
		return
	}

	rawContent := r.FormValue("content")
	if rawContent == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "KEY_ERROR")
		return
	}

	var upload *Upload
	file, header, err := r.FormFile("portfolio")
	switch {
	case err == nil:
		defer file.Close()
		upload = &Upload{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Body:        file,
		}
	case errors.Is(err, http.ErrMissingFile):
		// No file attached; the URL comes from the content payload.
	default:
		api.ErrorResponse(w, r, http.StatusBadRequest, "INVALID_FORM")
		return
	}

	if err := op(r.Context(), recruitID, userID, rawContent, upload); err != nil {
		api.HandleError(w, r, err)
		return
	}

	api.WriteJSONResponse(w, r, successStatus, map[string]string{"message": "SUCCESS"})
}

// DeleteApplication removes the caller's application for the recruit.
func (h *ApplicationHandler) DeleteApplication(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "INVALID_TOKEN")
		return
	}
	recruitID := chi.URLParam(r, "recruitID")

	if err := h.applicationService.Delete(r.Context(), recruitID, userID); err != nil {
		api.HandleError(w, r, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, map[string]string{"message": "SUCCESS"})
}

// AdminListApplications serves the filtered review listing.
func (h *ApplicationHandler) AdminListApplications(w http.ResponseWriter, r *http.Request) {
	filter := AdminListFilter{
		CareerType: r.URL.Query().Get("career_type"),
		Position:   r.URL.Query().Get("position"),
		Status:     r.URL.Query().Get("status"),
	}

	results, err := h.applicationService.AdminList(r.Context(), filter)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{"results": results})
}

// AdminGetApplication serves the detail view with applicant identity.
func (h *ApplicationHandler) AdminGetApplication(w http.ResponseWriter, r *http.Request) {
	applicationID := chi.URLParam(r, "applicationID")

	detail, err := h.applicationService.AdminGet(r.Context(), applicationID)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{"result": detail})
}

// AdminUpdateStatus moves an application to a new workflow state.
func (h *ApplicationHandler) AdminUpdateStatus(w http.ResponseWriter, r *http.Request) {
	applicationID := chi.URLParam(r, "applicationID")

	var req UpdateStatusRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Status == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "KEY_ERROR")
		return
	}

	if err := h.applicationService.UpdateStatus(r.Context(), applicationID, req.Status); err != nil {
		api.HandleError(w, r, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, map[string]string{"message": "SUCCESS"})
}
