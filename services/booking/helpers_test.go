package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	bookingRepo "estately/database/repository/booking"
	notificationRepo "estately/database/repository/notification"
	propertyRepo "estately/database/repository/property"
	recordsRepo "estately/database/repository/records"
	userRepo "estately/database/repository/user"
	"estately/models"
	"estately/services/notification"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	admin  = models.Actor{UserID: "a1", Role: models.RoleAdmin}
	owner1 = models.Actor{UserID: "o1", Role: models.RoleOwner}
	owner2 = models.Actor{UserID: "o2", Role: models.RoleOwner}
	buyer1 = models.Actor{UserID: "u1", Role: models.RoleBuyer}
	buyer2 = models.Actor{UserID: "u2", Role: models.RoleBuyer}
)

type fixture struct {
	svc    *DefaultBookingService
	store  *recordsRepo.MemoryStore
	notifs *notificationRepo.StoreNotificationRepo
}

// stepClock advances one minute per call so creation order is observable.
func stepClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2024, 11, 20, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Minute)
		return t
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := recordsRepo.NewMemoryStore()

	for _, p := range []models.Property{
		{ID: "p1", Title: "Sunny Loft", OwnerID: "o1"},
		{ID: "p2", Title: "Garden House", OwnerID: "o1"},
		{ID: "p3", Title: "City Studio", OwnerID: "o2"},
	} {
		_, err := store.Create(ctx, recordsRepo.Properties, p)
		require.NoError(t, err)
	}
	for _, u := range []models.User{
		{ID: "u1", Name: "Alice", Role: models.RoleBuyer},
		{ID: "u2", Name: "Bob", Role: models.RoleBuyer},
		{ID: "o1", Name: "Olga", Role: models.RoleOwner},
		{ID: "o2", Name: "Omar", Role: models.RoleOwner},
		{ID: "a1", Name: "Ada", Role: models.RoleAdmin},
	} {
		_, err := store.Create(ctx, recordsRepo.Users, u)
		require.NoError(t, err)
	}

	bookings, err := bookingRepo.NewStoreBookingRepo(ctx, store, zap.NewNop())
	require.NoError(t, err)
	notifs, err := notificationRepo.NewStoreNotificationRepo(ctx, store)
	require.NoError(t, err)

	clock := stepClock()
	svc := &DefaultBookingService{
		Bookings:   bookings,
		Properties: propertyRepo.NewStorePropertyRepo(store),
		Users:      userRepo.NewStoreUserRepo(store),
		Notifier:   &notification.StoreDispatcher{Repo: notifs, Now: clock},
		PageSizes:  models.PageSizes{Owner: 5, Buyer: 6, Admin: 6},
		Logger:     zap.NewNop(),
		Now:        clock,
	}
	return &fixture{svc: svc, store: store, notifs: notifs}
}

func (f *fixture) notificationsFor(t *testing.T, userID string) []models.Notification {
	t.Helper()
	list, err := f.notifs.ListForUsers(context.Background(), userID)
	require.NoError(t, err)
	return list
}

func (f *fixture) book(t *testing.T, actor models.Actor, propertyID, slot string) *models.Booking {
	t.Helper()
	b, err := f.svc.CreateBooking(context.Background(), actor, visitInput(propertyID, slot))
	require.NoError(t, err)
	return b
}

func visitInput(propertyID, slot string) models.BookingInput {
	return models.BookingInput{
		PropertyID: propertyID,
		VisitType:  models.VisitInPerson,
		Date:       "2024-12-01",
		TimeSlot:   slot,
	}
}

type failingNotifier struct{ calls int }

func (f *failingNotifier) Notify(context.Context, string, models.NotificationType, string, string, string) (*models.Notification, error) {
	f.calls++
	return nil, errors.New("notification store down")
}

// racingRepo lets another writer change the booking just before the status update.
type racingRepo struct {
	bookingRepo.BookingRepository
	raceTo models.BookingStatus
}

func (r *racingRepo) UpdateStatus(ctx context.Context, id string, from, to models.BookingStatus, at time.Time) error {
	if err := r.BookingRepository.UpdateStatus(ctx, id, from, r.raceTo, at); err != nil {
		return err
	}
	return r.BookingRepository.UpdateStatus(ctx, id, from, to, at)
}
