package booking

import (
	"testing"

	"estately/models"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	all := []models.BookingStatus{models.StatusPending, models.StatusApproved, models.StatusRejected, models.StatusCompleted}
	allowed := map[[2]models.BookingStatus]bool{
		{models.StatusPending, models.StatusApproved}:   true,
		{models.StatusPending, models.StatusRejected}:   true,
		{models.StatusPending, models.StatusCompleted}:  true,
		{models.StatusApproved, models.StatusCompleted}: true,
	}
	for _, from := range all {
		for _, to := range all {
			assert.Equal(t, allowed[[2]models.BookingStatus{from, to}], CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}
