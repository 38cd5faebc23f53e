package models

import "time"

// BookingStatus is the lifecycle state of a viewing request. The literals are
// shared with stored data and must not change.
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusApproved  BookingStatus = "approved"
	StatusRejected  BookingStatus = "rejected"
	StatusCompleted BookingStatus = "completed"
)

// IsValid reports whether s is one of the known statuses.
func (s BookingStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCompleted:
		return true
	}
	return false
}

// HoldsSlot reports whether a booking in this status keeps its time slot taken.
func (s BookingStatus) HoldsSlot() bool {
	return s != StatusRejected
}

// VisitType is the kind of viewing a buyer asks for.
type VisitType string

const (
	VisitInPerson  VisitType = "in-person"
	VisitVirtual   VisitType = "virtual"
	VisitOpenHouse VisitType = "open-house"
)

// IsValid reports whether v is one of the known visit types.
func (v VisitType) IsValid() bool {
	switch v {
	case VisitInPerson, VisitVirtual, VisitOpenHouse:
		return true
	}
	return false
}

// Booking represents a viewing request for a property.
type Booking struct {
	ID         string        `bson:"id" json:"id,omitempty"`                     // Assigned by the store on creation
	PropertyID string        `bson:"propertyId" json:"propertyId"`               // Weak reference to the listed property
	UserID     string        `bson:"userId" json:"userId"`                       // Requesting buyer; empty for guest requests
	VisitType  VisitType     `bson:"visitType" json:"visitType"`                 // in-person | virtual | open-house
	Date       string        `bson:"date" json:"date"`                           // Opaque calendar date, e.g. "2024-12-01"
	TimeSlot   string        `bson:"timeSlot" json:"timeSlot"`                   // One of TimeSlots
	Message    string        `bson:"message,omitempty" json:"message,omitempty"` // Optional note from the requester
	WantCall   bool          `bson:"wantCall" json:"wantCall"`
	PayDeposit bool          `bson:"payDeposit" json:"payDeposit"`
	Payment    *Payment      `bson:"payment,omitempty" json:"payment,omitempty"` // Present only when PayDeposit is set
	Status     BookingStatus `bson:"status" json:"status"`
	SlotKey    *string       `bson:"slotKey" json:"slotKey"` // Set while the booking holds its slot, nil once rejected
	CreatedAt  time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// Payment is the deposit metadata recorded with a booking. No card data
// beyond the last four digits is kept.
type Payment struct {
	Amount          float64 `bson:"amount" json:"amount"`
	CardName        string  `bson:"cardName" json:"cardName"`
	CardNumberLast4 string  `bson:"cardNumberLast4" json:"cardNumberLast4"`
}

// BookingInput holds the fields a requester submits for a new booking.
type BookingInput struct {
	PropertyID string        `json:"propertyId"`
	UserID     string        `json:"userId"`
	VisitType  VisitType     `json:"visitType"`
	Date       string        `json:"date"`
	TimeSlot   string        `json:"timeSlot"`
	Message    string        `json:"message"`
	WantCall   bool          `json:"wantCall"`
	PayDeposit bool          `json:"payDeposit"`
	Payment    *PaymentInput `json:"payment,omitempty"`
}

// PaymentInput is the deposit form as submitted. CardNumber is reduced to
// its last four digits before anything is stored.
type PaymentInput struct {
	Amount     float64 `json:"amount"`
	CardName   string  `json:"cardName"`
	CardNumber string  `json:"cardNumber"`
}

// SlotKey identifies a bookable slot of a property on a date.
func SlotKey(propertyID, date, timeSlot string) string {
	return propertyID + "|" + date + "|" + timeSlot
}
