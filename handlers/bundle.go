package handlers

import (
	userRepoPkg "estately/database/repository/user"

	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	UserRepo userRepoPkg.UserRepository

	// Booking endpoints
	GetBookedSlots gin.HandlerFunc
	CreateBooking  gin.HandlerFunc
	QueryBookings  gin.HandlerFunc
	GetBooking     gin.HandlerFunc
	UpdateStatus   gin.HandlerFunc
	DeleteBooking  gin.HandlerFunc

	// Notification endpoints
	ListNotifications gin.HandlerFunc
	MarkNotification  gin.HandlerFunc
}

// NewHandlerBundle wires the booking and notification handlers into a bundle.
func NewHandlerBundle(users userRepoPkg.UserRepository, bh *BookingHandler, nh *NotificationHandler) *HandlerBundle {
	return &HandlerBundle{
		UserRepo: users,

		GetBookedSlots: bh.GetBookedSlotsHandler,
		CreateBooking:  bh.CreateBookingHandler,
		QueryBookings:  bh.QueryBookingsHandler,
		GetBooking:     bh.GetBookingHandler,
		UpdateStatus:   bh.UpdateStatusHandler,
		DeleteBooking:  bh.DeleteBookingHandler,

		ListNotifications: nh.ListNotificationsHandler,
		MarkNotification:  nh.MarkReadHandler,
	}
}
