package handlers

import "estately/models"

// bookingResponse is a booking as clients see it. The outer SlotKey shadows
// the stored reservation key and is never set.
type bookingResponse struct {
	models.Booking
	SlotKey *string `json:"slotKey,omitempty"`
}

type bookingViewResponse struct {
	models.BookingView
	SlotKey *string `json:"slotKey,omitempty"`
}

type bookingPageResponse struct {
	Items      []bookingViewResponse `json:"items"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"pageSize"`
	Total      int                   `json:"total"`
	TotalPages int                   `json:"totalPages"`
}

func newBookingResponse(b *models.Booking) bookingResponse {
	return bookingResponse{Booking: *b}
}

func newBookingPageResponse(p *models.BookingPage) bookingPageResponse {
	items := make([]bookingViewResponse, len(p.Items))
	for i, v := range p.Items {
		items[i] = bookingViewResponse{BookingView: v}
	}
	return bookingPageResponse{
		Items:      items,
		Page:       p.Page,
		PageSize:   p.PageSize,
		Total:      p.Total,
		TotalPages: p.TotalPages,
	}
}
