package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"task-planner/internal/service"
)

// errBadRequest marks malformed input detected by the transport itself.
var errBadRequest = errors.New("bad request")

type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps engine errors onto HTTP status codes.
func statusFor(err error) int {
	var verrs validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrForbiddenReference):
		return http.StatusForbidden
	case errors.Is(err, service.ErrDuplicateItem):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidDurationUnit), errors.Is(err, service.ErrNegativeDuration):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrInvalidPageRequest),
		errors.Is(err, service.ErrInvalidSortField),
		errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, service.ErrUnknownKind),
		errors.Is(err, service.ErrInvalidItem),
		errors.Is(err, errBadRequest),
		errors.As(err, &verrs):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.log.Error("request failed",
			zap.String("request_id", RequestID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
