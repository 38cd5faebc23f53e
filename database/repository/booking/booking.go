package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	recordsRepo "estately/database/repository/records"
	"estately/models"

	"go.uber.org/zap"
)

// StoreBookingRepo implements BookingRepository on a records store.
type StoreBookingRepo struct {
	store  recordsRepo.Store
	logger *zap.Logger
	// uniqueSlots is set when the store enforces the slotKey index itself.
	uniqueSlots bool
}

// NewStoreBookingRepo prepares the bookings collection. Stores that cannot
// enforce a unique slotKey fall back to verifying the slot after insert.
func NewStoreBookingRepo(ctx context.Context, store recordsRepo.Store, logger *zap.Logger) (*StoreBookingRepo, error) {
	repo := &StoreBookingRepo{store: store, logger: logger}

	err := store.EnsureUniqueIndex(ctx, recordsRepo.Bookings, "slotKey")
	switch {
	case err == nil:
		repo.uniqueSlots = true
	case errors.Is(err, recordsRepo.ErrUniqueUnsupported):
		logger.Info("store has no unique indexes, verifying slots after insert")
	default:
		return nil, fmt.Errorf("failed to create booking indexes: %w", err)
	}
	return repo, nil
}

// Create stores b with its slotKey set. Bookings without a property hold no slot.
func (r *StoreBookingRepo) Create(ctx context.Context, b *models.Booking) error {
	reserves := b.Status.HoldsSlot() && b.PropertyID != ""
	if reserves {
		key := models.SlotKey(b.PropertyID, b.Date, b.TimeSlot)
		b.SlotKey = &key
	} else {
		b.SlotKey = nil
	}

	id, err := r.store.Create(ctx, recordsRepo.Bookings, b)
	if errors.Is(err, recordsRepo.ErrDuplicate) {
		return fmt.Errorf("%s %s %s: %w", b.PropertyID, b.Date, b.TimeSlot, ErrSlotTaken)
	}
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	b.ID = id

	if r.uniqueSlots || !reserves {
		return nil
	}
	return r.verifySlot(ctx, b)
}

// verifySlot re-reads the slot after insert and withdraws b when any other
// active booking is present. Two concurrent writers may both withdraw, but
// never both keep the slot.
func (r *StoreBookingRepo) verifySlot(ctx context.Context, b *models.Booking) error {
	existing, err := r.ListForPropertyDate(ctx, b.PropertyID, b.Date)
	if err != nil {
		r.withdraw(ctx, b.ID)
		return fmt.Errorf("failed to verify slot: %w", err)
	}
	for _, other := range existing {
		if other.ID == b.ID || other.TimeSlot != b.TimeSlot || !other.Status.HoldsSlot() {
			continue
		}
		r.withdraw(ctx, b.ID)
		b.ID = ""
		return fmt.Errorf("%s %s %s held by %s: %w", b.PropertyID, b.Date, b.TimeSlot, other.ID, ErrSlotTaken)
	}
	return nil
}

func (r *StoreBookingRepo) withdraw(ctx context.Context, id string) {
	if err := r.store.Delete(context.WithoutCancel(ctx), recordsRepo.Bookings, id); err != nil {
		r.logger.Error("failed to withdraw booking", zap.String("bookingId", id), zap.Error(err))
	}
}

func (r *StoreBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	var b models.Booking
	if err := r.store.Get(ctx, recordsRepo.Bookings, id, &b); err != nil {
		return nil, fmt.Errorf("failed to fetch booking %s: %w", id, err)
	}
	return &b, nil
}

func (r *StoreBookingRepo) ListForPropertyDate(ctx context.Context, propertyID, date string) ([]models.Booking, error) {
	filter := recordsRepo.Eq("propertyId", propertyID).And(recordsRepo.Eq("date", date))
	return r.list(ctx, filter)
}

func (r *StoreBookingRepo) ListByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	return r.list(ctx, recordsRepo.Eq("userId", userID))
}

func (r *StoreBookingRepo) ListByProperty(ctx context.Context, propertyID string) ([]models.Booking, error) {
	return r.list(ctx, recordsRepo.Eq("propertyId", propertyID))
}

func (r *StoreBookingRepo) ListByProperties(ctx context.Context, propertyIDs []string) ([]models.Booking, error) {
	if len(propertyIDs) == 0 {
		return []models.Booking{}, nil
	}
	return r.list(ctx, recordsRepo.In("propertyId", propertyIDs...))
}

func (r *StoreBookingRepo) ListAll(ctx context.Context) ([]models.Booking, error) {
	return r.list(ctx, nil)
}

func (r *StoreBookingRepo) list(ctx context.Context, filter recordsRepo.Filter) ([]models.Booking, error) {
	var bookings []models.Booking
	if err := r.store.List(ctx, recordsRepo.Bookings, filter, &bookings); err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	return bookings, nil
}

func (r *StoreBookingRepo) UpdateStatus(ctx context.Context, id string, from, to models.BookingStatus, at time.Time) error {
	patch := recordsRepo.Patch{
		"status":    to,
		"updatedAt": at,
	}
	if !to.HoldsSlot() {
		patch["slotKey"] = nil
	}

	err := r.store.PatchIf(ctx, recordsRepo.Bookings, id, "status", string(from), patch)
	if errors.Is(err, recordsRepo.ErrPreconditionFailed) {
		return fmt.Errorf("booking %s no longer %s: %w", id, from, ErrStatusChanged)
	}
	if err != nil {
		return fmt.Errorf("failed to update booking %s: %w", id, err)
	}
	return nil
}

func (r *StoreBookingRepo) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, recordsRepo.Bookings, id); err != nil {
		return fmt.Errorf("failed to delete booking %s: %w", id, err)
	}
	return nil
}
