package booking

import (
	"context"
	"fmt"
	"strings"

	"estately/models"
)

// GetBookedSlots returns the time slots of a property already taken on date.
// Pending, approved and completed bookings all hold their slot.
func (s *DefaultBookingService) GetBookedSlots(ctx context.Context, propertyID, date string) (models.SlotSet, error) {
	verr := &ValidationError{}
	if strings.TrimSpace(propertyID) == "" {
		verr.add("propertyId", "required")
	}
	if strings.TrimSpace(date) == "" {
		verr.add("date", "required")
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	bookings, err := s.Bookings.ListForPropertyDate(ctx, propertyID, date)
	if err != nil {
		return nil, fmt.Errorf("%s on %s: %w: %w", propertyID, date, ErrUnavailable, err)
	}

	taken := make(models.SlotSet)
	for _, b := range bookings {
		if b.Status.HoldsSlot() {
			taken[b.TimeSlot] = struct{}{}
		}
	}
	return taken, nil
}

// GetSlotAvailability lists every bookable slot with whether it is taken.
func (s *DefaultBookingService) GetSlotAvailability(ctx context.Context, propertyID, date string) ([]models.SlotAvailability, error) {
	taken, err := s.GetBookedSlots(ctx, propertyID, date)
	if err != nil {
		return nil, err
	}
	return taken.Availability(), nil
}
