package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"letsassist/internal/delivery/http/helpers"
	"letsassist/internal/domain"
)

// writeDomainError maps domain sentinel errors onto the API envelope. Errors
// with no mapping are logged and reported as internal.
func writeDomainError(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrUserNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "not found")
	case errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "forbidden")
	case errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrInvalidEventType):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrProjectLocked):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeLocked, err.Error())
	case errors.Is(err, domain.ErrSlotFull) || errors.Is(err, domain.ErrAlreadySignedUp) ||
		errors.Is(err, domain.ErrAlreadyMember) || errors.Is(err, domain.ErrDuplicateEmail):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, err.Error())
	case errors.Is(err, domain.ErrUnknownSlot):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, err.Error())
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
	}
}
