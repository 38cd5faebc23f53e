package bookingRepo

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	recordsRepo "estately/database/repository/records"
	"estately/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// noUniqueStore behaves like a persistence service without unique indexes.
type noUniqueStore struct {
	*recordsRepo.MemoryStore
}

func (noUniqueStore) EnsureUniqueIndex(context.Context, string, string) error {
	return recordsRepo.ErrUniqueUnsupported
}

func newBooking(slot string) *models.Booking {
	now := time.Date(2024, 11, 20, 9, 0, 0, 0, time.UTC)
	return &models.Booking{
		PropertyID: "p1",
		UserID:     "u1",
		VisitType:  models.VisitInPerson,
		Date:       "2024-12-01",
		TimeSlot:   slot,
		Status:     models.StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func repos(t *testing.T) map[string]*StoreBookingRepo {
	t.Helper()
	ctx := context.Background()
	unique, err := NewStoreBookingRepo(ctx, recordsRepo.NewMemoryStore(), zap.NewNop())
	require.NoError(t, err)
	verified, err := NewStoreBookingRepo(ctx, noUniqueStore{recordsRepo.NewMemoryStore()}, zap.NewNop())
	require.NoError(t, err)
	require.True(t, unique.uniqueSlots)
	require.False(t, verified.uniqueSlots)
	return map[string]*StoreBookingRepo{"unique index": unique, "verify after insert": verified}
}

func TestCreate_SecondBookingForSlotIsRejected(t *testing.T) {
	for name, repo := range repos(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			first := newBooking("10:00 - 10:30")
			require.NoError(t, repo.Create(ctx, first))
			require.NotEmpty(t, first.ID)
			require.NotNil(t, first.SlotKey)
			assert.Equal(t, "p1|2024-12-01|10:00 - 10:30", *first.SlotKey)

			second := newBooking("10:00 - 10:30")
			second.UserID = "u2"
			err := repo.Create(ctx, second)
			assert.ErrorIs(t, err, ErrSlotTaken)

			other := newBooking("10:30 - 11:00")
			require.NoError(t, repo.Create(ctx, other))

			all, err := repo.ListForPropertyDate(ctx, "p1", "2024-12-01")
			require.NoError(t, err)
			assert.Len(t, all, 2)
		})
	}
}

func TestUpdateStatus_RejectReleasesSlot(t *testing.T) {
	for name, repo := range repos(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			at := time.Date(2024, 11, 21, 9, 0, 0, 0, time.UTC)

			first := newBooking("10:00 - 10:30")
			require.NoError(t, repo.Create(ctx, first))
			require.NoError(t, repo.UpdateStatus(ctx, first.ID, models.StatusPending, models.StatusRejected, at))

			got, err := repo.GetByID(ctx, first.ID)
			require.NoError(t, err)
			assert.Equal(t, models.StatusRejected, got.Status)
			assert.Nil(t, got.SlotKey)
			assert.True(t, got.UpdatedAt.Equal(at))

			second := newBooking("10:00 - 10:30")
			require.NoError(t, repo.Create(ctx, second))
		})
	}
}

func TestUpdateStatus_StaleStatus(t *testing.T) {
	for name, repo := range repos(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			b := newBooking("11:00 - 11:30")
			require.NoError(t, repo.Create(ctx, b))

			require.NoError(t, repo.UpdateStatus(ctx, b.ID, models.StatusPending, models.StatusApproved, time.Now()))
			err := repo.UpdateStatus(ctx, b.ID, models.StatusPending, models.StatusRejected, time.Now())
			assert.ErrorIs(t, err, ErrStatusChanged)

			err = repo.UpdateStatus(ctx, "missing", models.StatusPending, models.StatusApproved, time.Now())
			assert.ErrorIs(t, err, recordsRepo.ErrNotFound)
		})
	}
}

func TestListByProperties_SingleBatch(t *testing.T) {
	ctx := context.Background()
	repo := repos(t)["unique index"]

	for _, p := range []string{"p1", "p2", "p3"} {
		b := newBooking("09:00 - 09:30")
		b.PropertyID = p
		require.NoError(t, repo.Create(ctx, b))
	}

	got, err := repo.ListByProperties(ctx, []string{"p1", "p3"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, b := range got {
		assert.Contains(t, []string{"p1", "p3"}, b.PropertyID)
	}

	none, err := repo.ListByProperties(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	repo := repos(t)["unique index"]
	b := newBooking("12:00 - 12:30")
	require.NoError(t, repo.Create(ctx, b))

	require.NoError(t, repo.Delete(ctx, b.ID))
	_, err := repo.GetByID(ctx, b.ID)
	assert.ErrorIs(t, err, recordsRepo.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, b.ID), recordsRepo.ErrNotFound)
}

func TestCreate_ConcurrentRequestsForOneSlot(t *testing.T) {
	const racers = 20
	for name, repo := range repos(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			var (
				wg      sync.WaitGroup
				mu      sync.Mutex
				winners []string
				errs    []error
			)
			for i := 0; i < racers; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					b := newBooking("10:00 - 10:30")
					b.UserID = fmt.Sprintf("u%d", i)
					err := repo.Create(ctx, b)

					mu.Lock()
					defer mu.Unlock()
					if err != nil {
						errs = append(errs, err)
						return
					}
					winners = append(winners, b.ID)
				}(i)
			}
			wg.Wait()

			assert.LessOrEqual(t, len(winners), 1)
			if repo.uniqueSlots {
				assert.Len(t, winners, 1)
			}
			for _, err := range errs {
				assert.ErrorIs(t, err, ErrSlotTaken)
			}

			stored, err := repo.ListForPropertyDate(ctx, "p1", "2024-12-01")
			require.NoError(t, err)
			var active []string
			for _, b := range stored {
				if b.TimeSlot == "10:00 - 10:30" && b.Status.HoldsSlot() {
					active = append(active, b.ID)
				}
			}
			assert.ElementsMatch(t, winners, active)
		})
	}
}
