package handlers

import (
	"errors"
	"net/http"

	recordsRepo "estately/database/repository/records"
	"estately/services/booking"
	"estately/services/notification"
	"estately/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps a service error onto an HTTP status and error code.
func respondError(c *gin.Context, err error) {
	var verr *booking.ValidationError
	if errors.As(err, &verr) {
		utils.JSONError(c, http.StatusBadRequest, "validation", verr.Error(), verr.FieldErrors)
		return
	}

	status, code := http.StatusInternalServerError, "internal"
	switch {
	case errors.Is(err, booking.ErrForbidden), errors.Is(err, notification.ErrForbidden):
		status, code = http.StatusForbidden, "forbidden"
	case errors.Is(err, booking.ErrNotFound), errors.Is(err, notification.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, booking.ErrSlotConflict):
		status, code = http.StatusConflict, "slot_conflict"
	case errors.Is(err, booking.ErrConflict):
		status, code = http.StatusConflict, "conflict"
	case errors.Is(err, booking.ErrInvalidTransition):
		status, code = http.StatusUnprocessableEntity, "invalid_transition"
	case errors.Is(err, booking.ErrPersistence),
		errors.Is(err, booking.ErrUnavailable),
		errors.Is(err, recordsRepo.ErrUnavailable):
		status, code = http.StatusServiceUnavailable, "unavailable"
	}

	message := err.Error()
	if status >= http.StatusInternalServerError {
		getLogger(c).Error("request failed", zap.Error(err))
		message = http.StatusText(status)
	}
	utils.JSONError(c, status, code, message, nil)
}

func badRequest(c *gin.Context, field, msg string) {
	utils.JSONError(c, http.StatusBadRequest, "validation", "invalid request", map[string]string{field: msg})
}
