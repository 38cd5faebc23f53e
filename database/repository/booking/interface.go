package bookingRepo

import (
	"context"
	"errors"
	"time"

	"estately/models"
)

var (
	// ErrSlotTaken is returned by Create when another active booking holds the slot.
	ErrSlotTaken = errors.New("time slot already booked")
	// ErrStatusChanged is returned by UpdateStatus when the stored status no
	// longer matches the status the caller read.
	ErrStatusChanged = errors.New("booking status changed concurrently")
)

// BookingRepository defines data access for bookings.
type BookingRepository interface {
	// Create reserves the booking's slot and inserts it, filling in its ID.
	Create(ctx context.Context, b *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	// ListForPropertyDate returns every booking of a property on a date, whatever its status.
	ListForPropertyDate(ctx context.Context, propertyID, date string) ([]models.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]models.Booking, error)
	ListByProperty(ctx context.Context, propertyID string) ([]models.Booking, error)
	// ListByProperties fetches the bookings of all given properties in one call.
	ListByProperties(ctx context.Context, propertyIDs []string) ([]models.Booking, error)
	ListAll(ctx context.Context) ([]models.Booking, error)
	// UpdateStatus moves a booking from one status to another, releasing the
	// slot when the new status no longer holds it.
	UpdateStatus(ctx context.Context, id string, from, to models.BookingStatus, at time.Time) error
	Delete(ctx context.Context, id string) error
}
