package booking

import "estately/models"

// transitions lists the statuses each status may move to. Rejected and
// completed bookings are final.
var transitions = map[models.BookingStatus][]models.BookingStatus{
	models.StatusPending:  {models.StatusApproved, models.StatusRejected, models.StatusCompleted},
	models.StatusApproved: {models.StatusCompleted},
}

// CanTransition reports whether a booking may move from one status to another.
func CanTransition(from, to models.BookingStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
