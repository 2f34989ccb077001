package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// Domain error sentinels. Services wrap these with fmt.Errorf("...: %w", ...)
// and HandleError translates whatever bubbles up into a response.
var (
	ErrNotFound        = errors.New("requested item not found")
	ErrConflict        = errors.New("item already exists or conflict")
	ErrUnauthenticated = errors.New("authentication required or invalid credentials")
	ErrForbidden       = errors.New("action forbidden")
	ErrBadRequest      = errors.New("malformed request")
	ErrValidation      = errors.New("invalid field value")
)

// HandleError is the single translation layer from domain errors to HTTP
// responses. Unanticipated errors become a generic 500 and are logged, never
// swallowed.
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrBadRequest):
		ErrorResponse(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrConflict):
		// Duplicate email / duplicate application are reported as 400 to
		// match the original wire contract.
		ErrorResponse(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrUnauthenticated), errors.Is(err, ErrForbidden):
		// Authorization failures are indistinguishable from authentication
		// failures at the wire level.
		ErrorResponse(w, r, http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrNotFound):
		ErrorResponse(w, r, http.StatusNotFound, err.Error())
	default:
		slog.ErrorContext(r.Context(), "Unhandled error",
			slog.Any("error", err),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
		ErrorResponse(w, r, http.StatusInternalServerError, "internal server error")
	}
}
