package booking

import (
	"errors"
	"testing"

	"estately/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBookingFromInput(t *testing.T) {
	base := models.BookingInput{PropertyID: "p1", UserID: "u1", Date: "2024-12-01", TimeSlot: "10:00 - 10:30"}

	tests := []struct {
		name      string
		mutate    func(in *models.BookingInput)
		badFields []string
		check     func(t *testing.T, b *models.Booking)
	}{
		{
			name: "defaults visit type",
			check: func(t *testing.T, b *models.Booking) {
				assert.Equal(t, models.VisitInPerson, b.VisitType)
				assert.Nil(t, b.Payment)
			},
		},
		{
			name:      "missing date and slot",
			mutate:    func(in *models.BookingInput) { in.Date = ""; in.TimeSlot = " " },
			badFields: []string{"date", "timeSlot"},
		},
		{
			name:      "unknown slot",
			mutate:    func(in *models.BookingInput) { in.TimeSlot = "18:00 - 18:30" },
			badFields: []string{"timeSlot"},
		},
		{
			name:      "unknown visit type",
			mutate:    func(in *models.BookingInput) { in.VisitType = "drive-by" },
			badFields: []string{"visitType"},
		},
		{
			name: "deposit keeps last four digits",
			mutate: func(in *models.BookingInput) {
				in.PayDeposit = true
				in.Payment = &models.PaymentInput{Amount: 250, CardName: "A Buyer", CardNumber: "4242 4242 4242 1234"}
			},
			check: func(t *testing.T, b *models.Booking) {
				require.NotNil(t, b.Payment)
				assert.Equal(t, "1234", b.Payment.CardNumberLast4)
				assert.Equal(t, 250.0, b.Payment.Amount)
			},
		},
		{
			name: "deposit needs amount and card",
			mutate: func(in *models.BookingInput) {
				in.PayDeposit = true
				in.Payment = &models.PaymentInput{Amount: 0, CardNumber: "12"}
			},
			badFields: []string{"payment.amount", "payment.cardNumber"},
		},
		{
			name:      "deposit without payment",
			mutate:    func(in *models.BookingInput) { in.PayDeposit = true },
			badFields: []string{"payment"},
		},
		{
			name: "payment dropped without deposit",
			mutate: func(in *models.BookingInput) {
				in.Payment = &models.PaymentInput{Amount: 10, CardNumber: "4242424242424242"}
			},
			check: func(t *testing.T, b *models.Booking) { assert.Nil(t, b.Payment) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base
			if tt.mutate != nil {
				tt.mutate(&in)
			}
			b, err := newBookingFromInput(in)
			if len(tt.badFields) > 0 {
				var verr *ValidationError
				require.True(t, errors.As(err, &verr), "expected validation error, got %v", err)
				for _, f := range tt.badFields {
					assert.Contains(t, verr.FieldErrors, f)
				}
				assert.Len(t, verr.FieldErrors, len(tt.badFields))
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, b)
			}
		})
	}
}
