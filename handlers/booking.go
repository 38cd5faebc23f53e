package handlers

import (
	"net/http"
	"strconv"

	"estately/middleware"
	"estately/models"
	"estately/services/booking"
	"estately/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler exposes the booking engine over HTTP.
type BookingHandler struct {
	Service booking.BookingService
}

func NewBookingHandler(svc booking.BookingService) *BookingHandler {
	return &BookingHandler{Service: svc}
}

func actorOrAbort(c *gin.Context) (models.Actor, bool) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "unauthorized", "Authentication required", nil)
	}
	return actor, ok
}

// GetBookedSlotsHandler returns the taken slots of a property on a date,
// plus the full grid for the request form.
func (h *BookingHandler) GetBookedSlotsHandler(c *gin.Context) {
	propertyID := c.Param("propertyId")
	date := c.Query("date")

	taken, err := h.Service.GetBookedSlots(c.Request.Context(), propertyID, date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"propertyId":   propertyID,
		"date":         date,
		"bookedSlots":  taken.Sorted(),
		"availability": taken.Availability(),
	})
}

// CreateBookingHandler submits a new viewing request.
func (h *BookingHandler) CreateBookingHandler(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var input models.BookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "body", err.Error())
		return
	}

	b, err := h.Service.CreateBooking(c.Request.Context(), actor, input)
	if err != nil {
		respondError(c, err)
		return
	}
	getLogger(c).Info("booking requested", zap.String("bookingId", b.ID), zap.String("propertyId", b.PropertyID))
	c.JSON(http.StatusCreated, newBookingResponse(b))
}

// QueryBookingsHandler lists bookings in a scope. Without a scope the caller
// sees their natural view: everything for admins, their properties for
// owners, their own requests for buyers.
func (h *BookingHandler) QueryBookingsHandler(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	scope := models.Scope{Kind: models.ScopeKind(c.Query("scope")), ID: c.Query("scopeId")}
	if scope.Kind == "" {
		switch actor.Role {
		case models.RoleAdmin:
			scope.Kind = models.ScopeAll
		case models.RoleOwner:
			scope.Kind = models.ScopeByOwner
		default:
			scope.Kind = models.ScopeByUser
		}
	}
	if scope.Kind != models.ScopeAll && scope.ID == "" && scope.Kind != models.ScopeByProperty {
		scope.ID = actor.UserID
	}

	filters := models.BookingFilters{
		Status:    models.BookingStatus(c.Query("status")),
		VisitType: models.VisitType(c.Query("visitType")),
		Search:    c.Query("search"),
	}
	if filters.Status != "" && !filters.Status.IsValid() {
		badRequest(c, "status", "unknown status")
		return
	}
	if filters.VisitType != "" && !filters.VisitType.IsValid() {
		badRequest(c, "visitType", "unknown visit type")
		return
	}

	page, ok := intQuery(c, "page", 1)
	if !ok {
		return
	}
	size, ok := intQuery(c, "pageSize", 0)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if err := h.Service.AuthorizeScope(ctx, actor, scope); err != nil {
		respondError(c, err)
		return
	}
	result, err := h.Service.QueryBookings(ctx, scope, filters, models.PageRequest{Page: page, Size: size})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBookingPageResponse(result))
}

// GetBookingHandler returns a single booking.
func (h *BookingHandler) GetBookingHandler(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	b, err := h.Service.GetBooking(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBookingResponse(b))
}

// UpdateStatusHandler approves, rejects, cancels or completes a booking.
func (h *BookingHandler) UpdateStatusHandler(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var input struct {
		Status models.BookingStatus `json:"status"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "body", err.Error())
		return
	}

	b, err := h.Service.UpdateStatus(c.Request.Context(), actor, c.Param("id"), input.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBookingResponse(b))
}

// DeleteBookingHandler removes a booking (admin only).
func (h *BookingHandler) DeleteBookingHandler(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	if err := h.Service.DeleteBooking(c.Request.Context(), actor, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func intQuery(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		badRequest(c, name, "must be a non-negative integer")
		return 0, false
	}
	return n, true
}
