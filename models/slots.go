package models

import "sort"

// TimeSlots lists the half-hour labels a visit can be booked into, in display order.
var TimeSlots = []string{
	"09:00 - 09:30",
	"09:30 - 10:00",
	"10:00 - 10:30",
	"10:30 - 11:00",
	"11:00 - 11:30",
	"11:30 - 12:00",
	"12:00 - 12:30",
	"12:30 - 13:00",
	"13:00 - 13:30",
	"13:30 - 14:00",
	"14:00 - 14:30",
	"14:30 - 15:00",
	"15:00 - 15:30",
	"15:30 - 16:00",
	"16:00 - 16:30",
	"16:30 - 17:00",
	"17:00 - 17:30",
	"17:30 - 18:00",
}

var knownSlots = func() map[string]bool {
	m := make(map[string]bool, len(TimeSlots))
	for _, s := range TimeSlots {
		m[s] = true
	}
	return m
}()

// IsTimeSlot reports whether label is one of TimeSlots.
func IsTimeSlot(label string) bool {
	return knownSlots[label]
}

// SlotSet is the set of time slot labels already committed for a property and date.
type SlotSet map[string]struct{}

// Has reports whether label is in the set.
func (s SlotSet) Has(label string) bool {
	_, ok := s[label]
	return ok
}

// Sorted returns the labels in display order.
func (s SlotSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for label := range s {
		out = append(out, label)
	}
	sort.Strings(out)
	return out
}

// SlotAvailability is one row of the availability grid shown on the request form.
type SlotAvailability struct {
	TimeSlot string `json:"timeSlot"`
	Booked   bool   `json:"booked"`
}

// Availability marks each of TimeSlots as booked or free.
func (s SlotSet) Availability() []SlotAvailability {
	out := make([]SlotAvailability, len(TimeSlots))
	for i, label := range TimeSlots {
		out[i] = SlotAvailability{TimeSlot: label, Booked: s.Has(label)}
	}
	return out
}
