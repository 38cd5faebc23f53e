package booking

import (
	"context"
	"errors"
	"fmt"

	bookingRepo "estately/database/repository/booking"
	recordsRepo "estately/database/repository/records"
	"estately/models"

	"go.uber.org/zap"
)

const (
	ownerBookingsLink = "/owner/bookings"
	buyerBookingsLink = "/buyer/bookings"
)

// CreateBooking validates input, reserves the slot and stores a pending
// booking, then notifies the property owner.
func (s *DefaultBookingService) CreateBooking(ctx context.Context, actor models.Actor, input models.BookingInput) (*models.Booking, error) {
	b, err := newBookingFromInput(input)
	if err != nil {
		return nil, err
	}
	if actor.Role == models.RoleBuyer {
		b.UserID = actor.UserID
	}
	log := s.logger().With(zap.String("propertyId", b.PropertyID), zap.String("date", b.Date), zap.String("timeSlot", b.TimeSlot))
	if b.PropertyID == "" || b.UserID == "" {
		log.Warn("booking without property or user", zap.String("userId", b.UserID))
	}

	var prop *models.Property
	if b.PropertyID != "" {
		if prop, err = s.lookupProperty(ctx, b.PropertyID); err != nil {
			return nil, err
		}
		if prop == nil {
			return nil, fmt.Errorf("property %s: %w", b.PropertyID, ErrNotFound)
		}
		taken, err := s.GetBookedSlots(ctx, b.PropertyID, b.Date)
		if err != nil {
			return nil, fmt.Errorf("check slot: %w: %w", ErrPersistence, err)
		}
		if taken.Has(b.TimeSlot) {
			return nil, fmt.Errorf("%s on %s: %w", b.TimeSlot, b.Date, ErrSlotConflict)
		}
	}

	now := s.now()
	b.Status = models.StatusPending
	b.CreatedAt = now
	b.UpdatedAt = now

	if err := s.Bookings.Create(ctx, b); err != nil {
		if errors.Is(err, bookingRepo.ErrSlotTaken) {
			return nil, fmt.Errorf("%s on %s: %w", b.TimeSlot, b.Date, ErrSlotConflict)
		}
		return nil, fmt.Errorf("create booking: %w: %w", ErrPersistence, err)
	}
	log.Info("booking created", zap.String("bookingId", b.ID))

	if prop != nil {
		s.notify(ctx, b, prop.OwnerID, "New Booking Request",
			fmt.Sprintf("New %s visit request for %s on %s at %s.", b.VisitType, prop.Title, b.Date, b.TimeSlot),
			ownerBookingsLink)
	}
	return b, nil
}

// UpdateStatus applies a status change after checking who asks and whether
// the current status allows it. The counterparty gets one notification.
func (s *DefaultBookingService) UpdateStatus(ctx context.Context, actor models.Actor, bookingID string, status models.BookingStatus) (*models.Booking, error) {
	switch status {
	case models.StatusApproved, models.StatusRejected, models.StatusCompleted:
	default:
		return nil, newValidationError("status", "must be approved, rejected or completed")
	}

	b, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	prop, err := s.lookupProperty(ctx, b.PropertyID)
	if err != nil {
		return nil, err
	}

	isOwner := prop != nil && actor.UserID != "" && prop.OwnerID == actor.UserID
	cancellation := false
	switch status {
	case models.StatusCompleted:
		if !actor.IsAdmin() {
			return nil, fmt.Errorf("complete booking %s: %w", bookingID, ErrForbidden)
		}
	case models.StatusApproved:
		if !actor.IsAdmin() && !isOwner {
			return nil, fmt.Errorf("approve booking %s: %w", bookingID, ErrForbidden)
		}
	case models.StatusRejected:
		if !actor.IsAdmin() && !isOwner {
			if actor.UserID == "" || actor.UserID != b.UserID {
				return nil, fmt.Errorf("reject booking %s: %w", bookingID, ErrForbidden)
			}
			cancellation = true
		}
	}

	if !CanTransition(b.Status, status) {
		return nil, fmt.Errorf("booking %s from %s to %s: %w", bookingID, b.Status, status, ErrInvalidTransition)
	}

	now := s.now()
	if err := s.Bookings.UpdateStatus(ctx, b.ID, b.Status, status, now); err != nil {
		switch {
		case errors.Is(err, bookingRepo.ErrStatusChanged):
			return nil, fmt.Errorf("booking %s: %w", bookingID, ErrConflict)
		case errors.Is(err, recordsRepo.ErrNotFound):
			return nil, fmt.Errorf("booking %s: %w", bookingID, ErrNotFound)
		default:
			return nil, fmt.Errorf("update booking %s: %w: %w", bookingID, ErrPersistence, err)
		}
	}
	b.Status = status
	b.UpdatedAt = now
	if !status.HoldsSlot() {
		b.SlotKey = nil
	}
	s.logger().Info("booking status changed",
		zap.String("bookingId", b.ID),
		zap.String("status", string(status)),
		zap.String("actorId", actor.UserID),
		zap.Bool("cancellation", cancellation))

	when := fmt.Sprintf("%s at %s", b.Date, b.TimeSlot)
	title := "your property"
	if prop != nil {
		title = prop.Title
	}
	switch {
	case cancellation:
		if prop != nil {
			s.notify(ctx, b, prop.OwnerID, "Booking Cancelled",
				fmt.Sprintf("The visit to %s on %s was cancelled by the buyer.", title, when), ownerBookingsLink)
		}
	case status == models.StatusApproved:
		s.notify(ctx, b, b.UserID, "Booking Approved",
			fmt.Sprintf("Your visit to %s on %s has been approved.", title, when), buyerBookingsLink)
	case status == models.StatusRejected:
		s.notify(ctx, b, b.UserID, "Booking Rejected",
			fmt.Sprintf("Your visit to %s on %s has been declined.", title, when), buyerBookingsLink)
	case status == models.StatusCompleted:
		s.notify(ctx, b, b.UserID, "Visit Completed",
			fmt.Sprintf("Your visit to %s on %s is marked as completed.", title, when), buyerBookingsLink)
	}
	return b, nil
}

// DeleteBooking removes a booking outright. Admins only; nobody is notified.
func (s *DefaultBookingService) DeleteBooking(ctx context.Context, actor models.Actor, bookingID string) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("delete booking %s: %w", bookingID, ErrForbidden)
	}
	if err := s.Bookings.Delete(ctx, bookingID); err != nil {
		if errors.Is(err, recordsRepo.ErrNotFound) {
			return fmt.Errorf("booking %s: %w", bookingID, ErrNotFound)
		}
		return fmt.Errorf("delete booking %s: %w: %w", bookingID, ErrPersistence, err)
	}
	s.logger().Info("booking deleted", zap.String("bookingId", bookingID), zap.String("actorId", actor.UserID))
	return nil
}

// GetBooking returns a booking to an admin, its buyer or the property owner.
func (s *DefaultBookingService) GetBooking(ctx context.Context, actor models.Actor, bookingID string) (*models.Booking, error) {
	b, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if actor.IsAdmin() || (actor.UserID != "" && actor.UserID == b.UserID) {
		return b, nil
	}
	prop, err := s.lookupProperty(ctx, b.PropertyID)
	if err != nil {
		return nil, err
	}
	if prop != nil && actor.UserID != "" && prop.OwnerID == actor.UserID {
		return b, nil
	}
	return nil, fmt.Errorf("booking %s: %w", bookingID, ErrForbidden)
}

func (s *DefaultBookingService) load(ctx context.Context, bookingID string) (*models.Booking, error) {
	b, err := s.Bookings.GetByID(ctx, bookingID)
	if errors.Is(err, recordsRepo.ErrNotFound) {
		return nil, fmt.Errorf("booking %s: %w", bookingID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load booking %s: %w: %w", bookingID, ErrPersistence, err)
	}
	return b, nil
}

// lookupProperty reads the property from the uncached owner source. It returns
// nil without error when the property does not resolve.
func (s *DefaultBookingService) lookupProperty(ctx context.Context, propertyID string) (*models.Property, error) {
	if propertyID == "" {
		return nil, nil
	}
	prop, err := s.owners().GetByID(ctx, propertyID)
	if errors.Is(err, recordsRepo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load property %s: %w: %w", propertyID, ErrPersistence, err)
	}
	return prop, nil
}

// notify sends a booking notification. Failures are logged and never
// returned to the caller.
func (s *DefaultBookingService) notify(ctx context.Context, b *models.Booking, userID, title, message, link string) {
	log := s.logger().With(zap.String("bookingId", b.ID), zap.String("userId", userID), zap.String("title", title))
	if s.Notifier == nil {
		return
	}
	if userID == "" {
		log.Warn("notification skipped, no recipient")
		return
	}
	if _, err := s.Notifier.Notify(ctx, userID, models.NotificationBooking, title, message, link); err != nil {
		log.Warn("notification dispatch failed", zap.Error(err))
	}
}
