package booking

import (
	"strings"

	"estately/models"
)

// newBookingFromInput validates input and builds the booking to store.
// Only the last four card digits survive.
func newBookingFromInput(input models.BookingInput) (*models.Booking, error) {
	verr := &ValidationError{}

	date := strings.TrimSpace(input.Date)
	if date == "" {
		verr.add("date", "required")
	}
	slot := strings.TrimSpace(input.TimeSlot)
	switch {
	case slot == "":
		verr.add("timeSlot", "required")
	case !models.IsTimeSlot(slot):
		verr.add("timeSlot", "unknown time slot")
	}

	visit := input.VisitType
	if visit == "" {
		visit = models.VisitInPerson
	}
	if !visit.IsValid() {
		verr.add("visitType", "must be in-person, virtual or open-house")
	}

	var payment *models.Payment
	if input.PayDeposit {
		payment = depositPayment(input.Payment, verr)
	}

	if err := verr.orNil(); err != nil {
		return nil, err
	}
	return &models.Booking{
		PropertyID: strings.TrimSpace(input.PropertyID),
		UserID:     strings.TrimSpace(input.UserID),
		VisitType:  visit,
		Date:       date,
		TimeSlot:   slot,
		Message:    strings.TrimSpace(input.Message),
		WantCall:   input.WantCall,
		PayDeposit: input.PayDeposit,
		Payment:    payment,
	}, nil
}

func depositPayment(p *models.PaymentInput, verr *ValidationError) *models.Payment {
	if p == nil {
		verr.add("payment", "required when paying a deposit")
		return nil
	}
	if p.Amount <= 0 {
		verr.add("payment.amount", "must be greater than zero")
	}
	digits := cardDigits(p.CardNumber)
	if len(digits) < 4 {
		verr.add("payment.cardNumber", "must contain at least 4 digits")
		return nil
	}
	return &models.Payment{
		Amount:          p.Amount,
		CardName:        strings.TrimSpace(p.CardName),
		CardNumberLast4: digits[len(digits)-4:],
	}
}

func cardDigits(number string) string {
	var b strings.Builder
	for _, r := range number {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
