package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	recordsRepo "estately/database/repository/records"
	"estately/middleware"
	"estately/models"
	"estately/services/booking"
	"estately/services/notification"
	"estately/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	utils.Logger = zap.NewNop()
	gin.SetMode(gin.TestMode)
	m.Run()
}

// stubBookingService records what the handlers pass down. Methods not
// overridden panic through the nil embedded interface.
type stubBookingService struct {
	booking.BookingService

	slots     models.SlotSet
	err       error
	scope     models.Scope
	filters   models.BookingFilters
	page      models.PageRequest
	created   models.BookingInput
	status    models.BookingStatus
	authorize error
}

func (s *stubBookingService) GetBookedSlots(ctx context.Context, propertyID, date string) (models.SlotSet, error) {
	return s.slots, s.err
}

func (s *stubBookingService) CreateBooking(ctx context.Context, actor models.Actor, input models.BookingInput) (*models.Booking, error) {
	s.created = input
	if s.err != nil {
		return nil, s.err
	}
	key := models.SlotKey(input.PropertyID, input.Date, input.TimeSlot)
	return &models.Booking{ID: "b1", PropertyID: input.PropertyID, Status: models.StatusPending, SlotKey: &key}, nil
}

func (s *stubBookingService) AuthorizeScope(ctx context.Context, actor models.Actor, scope models.Scope) error {
	return s.authorize
}

func (s *stubBookingService) QueryBookings(ctx context.Context, scope models.Scope, filters models.BookingFilters, page models.PageRequest) (*models.BookingPage, error) {
	s.scope, s.filters, s.page = scope, filters, page
	key := models.SlotKey("p1", "2024-12-01", "10:00 - 10:30")
	items := []models.BookingView{{
		Booking:       models.Booking{ID: "b1", PropertyID: "p1", Status: models.StatusPending, SlotKey: &key},
		PropertyTitle: "Sunny Loft",
	}}
	return &models.BookingPage{Items: items, Page: page.Page, PageSize: 6, Total: 1, TotalPages: 1}, s.err
}

func (s *stubBookingService) UpdateStatus(ctx context.Context, actor models.Actor, bookingID string, status models.BookingStatus) (*models.Booking, error) {
	s.status = status
	if s.err != nil {
		return nil, s.err
	}
	key := models.SlotKey("p1", "2024-12-01", "10:00 - 10:30")
	return &models.Booking{ID: bookingID, PropertyID: "p1", Status: status, SlotKey: &key}, nil
}

func withActor(actor models.Actor) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ActorKey, actor)
		c.Next()
	}
}

func newRouter(svc booking.BookingService, actor *models.Actor) *gin.Engine {
	h := NewBookingHandler(svc)
	r := gin.New()
	if actor != nil {
		r.Use(withActor(*actor))
	}
	r.GET("/properties/:propertyId/booked-slots", h.GetBookedSlotsHandler)
	r.POST("/bookings", h.CreateBookingHandler)
	r.GET("/bookings", h.QueryBookingsHandler)
	r.PATCH("/bookings/:id/status", h.UpdateStatusHandler)
	return r
}

func do(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRespondError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{&booking.ValidationError{FieldErrors: map[string]string{"date": "required"}}, http.StatusBadRequest, "validation"},
		{fmt.Errorf("x: %w", booking.ErrForbidden), http.StatusForbidden, "forbidden"},
		{notification.ErrForbidden, http.StatusForbidden, "forbidden"},
		{fmt.Errorf("x: %w", booking.ErrNotFound), http.StatusNotFound, "not_found"},
		{notification.ErrNotFound, http.StatusNotFound, "not_found"},
		{booking.ErrSlotConflict, http.StatusConflict, "slot_conflict"},
		{booking.ErrConflict, http.StatusConflict, "conflict"},
		{booking.ErrInvalidTransition, http.StatusUnprocessableEntity, "invalid_transition"},
		{fmt.Errorf("x: %w: %w", booking.ErrPersistence, recordsRepo.ErrUnavailable), http.StatusServiceUnavailable, "unavailable"},
		{booking.ErrUnavailable, http.StatusServiceUnavailable, "unavailable"},
		{recordsRepo.ErrUnavailable, http.StatusServiceUnavailable, "unavailable"},
		{errors.New("boom"), http.StatusInternalServerError, "internal"},
	}
	for _, tc := range cases {
		t.Run(tc.code+"/"+tc.err.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			respondError(c, tc.err)

			assert.Equal(t, tc.status, w.Code)
			var body utils.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tc.code, body.Error)
		})
	}
}

func TestRespondError_HidesInternalDetail(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	respondError(c, errors.New("dial tcp 10.0.0.5:27017: refused"))
	assert.NotContains(t, w.Body.String(), "10.0.0.5")
}

func TestGetBookedSlotsHandler(t *testing.T) {
	svc := &stubBookingService{slots: models.SlotSet{"10:00 - 10:30": {}}}
	w := do(newRouter(svc, nil), http.MethodGet, "/properties/p1/booked-slots?date=2024-12-01", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		BookedSlots  []string                  `json:"bookedSlots"`
		Availability []models.SlotAvailability `json:"availability"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []string{"10:00 - 10:30"}, body.BookedSlots)
	require.Len(t, body.Availability, len(models.TimeSlots))
	assert.True(t, body.Availability[2].Booked)
	assert.False(t, body.Availability[0].Booked)

	svc.err = fmt.Errorf("p1: %w", booking.ErrUnavailable)
	w = do(newRouter(svc, nil), http.MethodGet, "/properties/p1/booked-slots?date=2024-12-01", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestCreateBookingHandler(t *testing.T) {
	buyer := models.Actor{UserID: "u1", Role: models.RoleBuyer}
	svc := &stubBookingService{}
	r := newRouter(svc, &buyer)

	w := do(r, http.MethodPost, "/bookings", `{"propertyId":"p1","date":"2024-12-01","timeSlot":"10:00 - 10:30","visitType":"in-person"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "p1", svc.created.PropertyID)
	assert.Equal(t, models.VisitInPerson, svc.created.VisitType)

	w = do(r, http.MethodPost, "/bookings", `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.err = booking.ErrSlotConflict
	w = do(r, http.MethodPost, "/bookings", `{"propertyId":"p1"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	// no actor on the context
	w = do(newRouter(svc, nil), http.MethodPost, "/bookings", `{}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestQueryBookingsHandler_DefaultScopes(t *testing.T) {
	cases := []struct {
		actor models.Actor
		want  models.Scope
	}{
		{models.Actor{UserID: "a1", Role: models.RoleAdmin}, models.Scope{Kind: models.ScopeAll}},
		{models.Actor{UserID: "o1", Role: models.RoleOwner}, models.Scope{Kind: models.ScopeByOwner, ID: "o1"}},
		{models.Actor{UserID: "u1", Role: models.RoleBuyer}, models.Scope{Kind: models.ScopeByUser, ID: "u1"}},
	}
	for _, tc := range cases {
		t.Run(string(tc.actor.Role), func(t *testing.T) {
			svc := &stubBookingService{}
			w := do(newRouter(svc, &tc.actor), http.MethodGet, "/bookings", "")
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tc.want, svc.scope)
			assert.Equal(t, 1, svc.page.Page)
		})
	}
}

func TestQueryBookingsHandler_Params(t *testing.T) {
	owner := models.Actor{UserID: "o1", Role: models.RoleOwner}
	svc := &stubBookingService{}
	r := newRouter(svc, &owner)

	w := do(r, http.MethodGet, "/bookings?scope=byPropertyId&scopeId=p1&status=pending&visitType=virtual&search=Loft&page=2&pageSize=5", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.Scope{Kind: models.ScopeByProperty, ID: "p1"}, svc.scope)
	assert.Equal(t, models.BookingFilters{Status: models.StatusPending, VisitType: models.VisitVirtual, Search: "Loft"}, svc.filters)
	assert.Equal(t, models.PageRequest{Page: 2, Size: 5}, svc.page)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/bookings?status=lost", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/bookings?visitType=drive-by", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/bookings?page=abc", "").Code)

	svc.authorize = booking.ErrForbidden
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "/bookings?scope=byUserId&scopeId=u2", "").Code)
}

func TestUpdateStatusHandler(t *testing.T) {
	owner := models.Actor{UserID: "o1", Role: models.RoleOwner}
	svc := &stubBookingService{}
	r := newRouter(svc, &owner)

	w := do(r, http.MethodPatch, "/bookings/b1/status", `{"status":"approved"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.StatusApproved, svc.status)

	svc.err = booking.ErrInvalidTransition
	w = do(r, http.MethodPatch, "/bookings/b1/status", `{"status":"approved"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestBookingResponsesOmitSlotKey(t *testing.T) {
	owner := models.Actor{UserID: "o1", Role: models.RoleOwner}
	r := newRouter(&stubBookingService{}, &owner)

	created := do(r, http.MethodPost, "/bookings", `{"propertyId":"p1","date":"2024-12-01","timeSlot":"10:00 - 10:30","visitType":"in-person"}`)
	require.Equal(t, http.StatusCreated, created.Code)
	updated := do(r, http.MethodPatch, "/bookings/b1/status", `{"status":"approved"}`)
	require.Equal(t, http.StatusOK, updated.Code)
	listed := do(r, http.MethodGet, "/bookings", "")
	require.Equal(t, http.StatusOK, listed.Code)

	for _, w := range []*httptest.ResponseRecorder{created, updated, listed} {
		assert.NotContains(t, w.Body.String(), "slotKey")
		assert.NotContains(t, w.Body.String(), "p1|2024-12-01")
	}

	var one models.Booking
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &one))
	assert.Equal(t, "b1", one.ID)
	assert.Equal(t, "p1", one.PropertyID)

	var page models.BookingPage
	require.NoError(t, json.Unmarshal(listed.Body.Bytes(), &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Sunny Loft", page.Items[0].PropertyTitle)
	assert.Equal(t, models.StatusPending, page.Items[0].Status)
	assert.Equal(t, 1, page.Total)
}
