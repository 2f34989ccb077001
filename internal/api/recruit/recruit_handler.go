package recruit

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stockers-dev/stockers-api/internal/api"
	"github.com/stockers-dev/stockers-api/internal/api/auth"
)

type RecruitHandler struct {
	recruitService RecruitService
	logger         *slog.Logger
}

func NewRecruitHandler(recruitService RecruitService, logger *slog.Logger) *RecruitHandler {
	return &RecruitHandler{
		recruitService: recruitService,
		logger:         logger,
	}
}

// ListRecruits serves the public listing with optional position and sort
// query parameters.
func (h *RecruitHandler) ListRecruits(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{
		Position: r.URL.Query().Get("position"),
		Sort:     r.URL.Query().Get("sort"),
	}

	recruits, err := h.recruitService.List(r.Context(), filter)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{"results": recruits})
}

// GetRecruit serves the public detail view.
func (h *RecruitHandler) GetRecruit(w http.ResponseWriter, r *http.Request) {
	recruitID := chi.URLParam(r, "recruitID")

	rec, err := h.recruitService.Get(r.Context(), recruitID)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{"result": rec})
}

// CreateRecruit is admin only; the authenticated user becomes the author.
func (h *RecruitHandler) CreateRecruit(w http.ResponseWriter, r *http.Request) {
	var req CreateRecruitRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Position == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "KEY_ERROR")
		return
	}

	author, _ := auth.GetUserIDFromContext(r.Context())
	rec, err := h.recruitService.Create(r.Context(), req, author)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, map[string]interface{}{"result": rec})
}

// UpdateRecruit applies a partial update, reconciling stacks when present.
func (h *RecruitHandler) UpdateRecruit(w http.ResponseWriter, r *http.Request) {
	recruitID := chi.URLParam(r, "recruitID")

	var req UpdateRecruitRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := h.recruitService.Update(r.Context(), recruitID, req)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{"result": rec})
}

func (h *RecruitHandler) DeleteRecruit(w http.ResponseWriter, r *http.Request) {
	recruitID := chi.URLParam(r, "recruitID")

	if err := h.recruitService.Delete(r.Context(), recruitID); err != nil {
		api.HandleError(w, r, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, map[string]string{"message": "SUCCESS"})
}
