package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/commerce-admin/services"
)

// statusFor maps domain errors to HTTP status codes in one place so
// every controller reports them the same way.
func statusFor(err error) int {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrIncompletePick),
		errors.Is(err, services.ErrAlreadyQueued),
		errors.Is(err, services.ErrAlreadyReturned):
		return http.StatusConflict
	case errors.Is(err, services.ErrNotInQueue),
		errors.Is(err, services.ErrUnknownItem),
		errors.Is(err, services.ErrItemNotInOrder):
		return http.StatusNotFound
	case errors.Is(err, services.ErrFeeExceedsRefund),
		errors.Is(err, services.ErrNonPositiveRefund),
		errors.Is(err, services.ErrReasonRequired),
		errors.Is(err, services.ErrShipmentRequired):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrExternalService):
		return http.StatusBadGateway
	}
	return http.StatusBadRequest
}

// uintParam parses a numeric path parameter.
func uintParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}
