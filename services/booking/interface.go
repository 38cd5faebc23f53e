package booking

import (
	"context"
	"time"

	bookingRepo "estately/database/repository/booking"
	propertyRepo "estately/database/repository/property"
	userRepo "estately/database/repository/user"
	"estately/models"
	"estately/services/notification"

	"go.uber.org/zap"
)

// BookingService drives viewing requests from submission to completion.
type BookingService interface {
	GetBookedSlots(ctx context.Context, propertyID, date string) (models.SlotSet, error)
	GetSlotAvailability(ctx context.Context, propertyID, date string) ([]models.SlotAvailability, error)
	CreateBooking(ctx context.Context, actor models.Actor, input models.BookingInput) (*models.Booking, error)
	UpdateStatus(ctx context.Context, actor models.Actor, bookingID string, status models.BookingStatus) (*models.Booking, error)
	DeleteBooking(ctx context.Context, actor models.Actor, bookingID string) error
	GetBooking(ctx context.Context, actor models.Actor, bookingID string) (*models.Booking, error)
	AuthorizeScope(ctx context.Context, actor models.Actor, scope models.Scope) error
	QueryBookings(ctx context.Context, scope models.Scope, filters models.BookingFilters, page models.PageRequest) (*models.BookingPage, error)
}

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	Bookings   bookingRepo.BookingRepository
	Properties propertyRepo.PropertyRepository
	// Owners serves ownership checks and must not be cached. Defaults to Properties.
	Owners     propertyRepo.PropertyRepository
	Users      userRepo.UserRepository
	Notifier   notification.Dispatcher
	PageSizes  models.PageSizes
	Logger     *zap.Logger
	Now        func() time.Time
}

var _ BookingService = (*DefaultBookingService)(nil)

func (s *DefaultBookingService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *DefaultBookingService) owners() propertyRepo.PropertyRepository {
	if s.Owners != nil {
		return s.Owners
	}
	return s.Properties
}

func (s *DefaultBookingService) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return zap.L()
}
