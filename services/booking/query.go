package booking

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"estately/models"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultPageSize = 6
	maxPageSize     = 100
)

// AuthorizeScope checks that actor may read the bookings in scope. Admins may
// read any scope; others only their own bookings or their own properties.
func (s *DefaultBookingService) AuthorizeScope(ctx context.Context, actor models.Actor, scope models.Scope) error {
	if actor.IsAdmin() {
		return nil
	}
	if actor.UserID == "" {
		return fmt.Errorf("scope %s: %w", scope.Kind, ErrForbidden)
	}
	switch scope.Kind {
	case models.ScopeByUser:
		if scope.ID == actor.UserID {
			return nil
		}
	case models.ScopeByOwner:
		if actor.Role == models.RoleOwner && scope.ID == actor.UserID {
			return nil
		}
	case models.ScopeByProperty:
		if actor.Role != models.RoleOwner {
			break
		}
		prop, err := s.lookupProperty(ctx, scope.ID)
		if err != nil {
			return err
		}
		if prop != nil && prop.OwnerID == actor.UserID {
			return nil
		}
	}
	return fmt.Errorf("scope %s=%s: %w", scope.Kind, scope.ID, ErrForbidden)
}

// QueryBookings returns one page of the bookings visible in scope, newest
// first, joined with property titles and buyer names.
func (s *DefaultBookingService) QueryBookings(ctx context.Context, scope models.Scope, filters models.BookingFilters, page models.PageRequest) (*models.BookingPage, error) {
	bookings, props, err := s.scoped(ctx, scope)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(bookings))
	matched := make([]models.Booking, 0, len(bookings))
	for _, b := range bookings {
		if seen[b.ID] {
			continue
		}
		seen[b.ID] = true
		if filters.Status != "" && b.Status != filters.Status {
			continue
		}
		if filters.VisitType != "" && b.VisitType != filters.VisitType {
			continue
		}
		matched = append(matched, b)
	}

	search := strings.ToLower(strings.TrimSpace(filters.Search))
	props, buyers, err := s.joinDetails(ctx, matched, props, search != "")
	if err != nil {
		return nil, err
	}

	views := make([]models.BookingView, 0, len(matched))
	for _, b := range matched {
		title := props[b.PropertyID].Title
		if search != "" && !strings.Contains(strings.ToLower(title), search) {
			continue
		}
		views = append(views, models.BookingView{
			Booking:       b,
			PropertyTitle: title,
			BuyerName:     buyers[b.UserID].Name,
		})
	}
	sort.SliceStable(views, func(i, j int) bool {
		a, b := views[i], views[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	return paginate(views, page, s.pageSize(scope.Kind, page.Size)), nil
}

// scoped loads the bookings of scope. For owner scopes it also returns the
// owner's properties, which were needed to find the bookings.
func (s *DefaultBookingService) scoped(ctx context.Context, scope models.Scope) ([]models.Booking, map[string]models.Property, error) {
	if scope.Kind != models.ScopeAll && strings.TrimSpace(scope.ID) == "" {
		return nil, nil, newValidationError("scopeId", "required")
	}

	var (
		bookings []models.Booking
		props    map[string]models.Property
		err      error
	)
	switch scope.Kind {
	case models.ScopeAll:
		bookings, err = s.Bookings.ListAll(ctx)
	case models.ScopeByUser:
		bookings, err = s.Bookings.ListByUser(ctx, scope.ID)
	case models.ScopeByProperty:
		bookings, err = s.Bookings.ListByProperty(ctx, scope.ID)
	case models.ScopeByOwner:
		var owned []models.Property
		owned, err = s.Properties.ListByOwner(ctx, scope.ID)
		if err != nil {
			break
		}
		props = make(map[string]models.Property, len(owned))
		ids := make([]string, 0, len(owned))
		for _, p := range owned {
			props[p.ID] = p
			ids = append(ids, p.ID)
		}
		bookings, err = s.Bookings.ListByProperties(ctx, ids)
	default:
		return nil, nil, newValidationError("scope", "must be all, byOwnerId, byUserId or byPropertyId")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("query bookings %s: %w: %w", scope.Kind, ErrPersistence, err)
	}
	return bookings, props, nil
}

// joinDetails looks up property titles and buyer names concurrently. A failed
// title lookup is fatal only when titles are needed for searching.
func (s *DefaultBookingService) joinDetails(ctx context.Context, bookings []models.Booking, known map[string]models.Property, needTitles bool) (map[string]models.Property, map[string]models.User, error) {
	props := make(map[string]models.Property, len(known))
	for id, p := range known {
		props[id] = p
	}

	var propIDs, userIDs []string
	seenProp, seenUser := map[string]bool{}, map[string]bool{}
	for _, b := range bookings {
		if _, ok := props[b.PropertyID]; !ok && b.PropertyID != "" && !seenProp[b.PropertyID] {
			seenProp[b.PropertyID] = true
			propIDs = append(propIDs, b.PropertyID)
		}
		if b.UserID != "" && !seenUser[b.UserID] {
			seenUser[b.UserID] = true
			userIDs = append(userIDs, b.UserID)
		}
	}

	var (
		fetchedProps map[string]models.Property
		buyers       map[string]models.User
		propErr      error
	)
	g, gctx := errgroup.WithContext(ctx)
	if len(propIDs) > 0 {
		g.Go(func() error {
			fetchedProps, propErr = s.Properties.GetByIDs(gctx, propIDs)
			if propErr != nil && needTitles {
				return propErr
			}
			return nil
		})
	}
	if len(userIDs) > 0 && s.Users != nil {
		g.Go(func() error {
			var err error
			buyers, err = s.Users.GetByIDs(gctx, userIDs)
			if err != nil {
				s.logger().Warn("buyer name lookup failed", zap.Error(err))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("resolve property titles: %w: %w", ErrPersistence, err)
	}
	if propErr != nil {
		s.logger().Warn("property title lookup failed", zap.Error(propErr))
	}

	for id, p := range fetchedProps {
		props[id] = p
	}
	if buyers == nil {
		buyers = map[string]models.User{}
	}
	return props, buyers, nil
}

func (s *DefaultBookingService) pageSize(kind models.ScopeKind, explicit int) int {
	if explicit > 0 {
		if explicit > maxPageSize {
			return maxPageSize
		}
		return explicit
	}
	var size int
	switch kind {
	case models.ScopeByOwner, models.ScopeByProperty:
		size = s.PageSizes.Owner
	case models.ScopeByUser:
		size = s.PageSizes.Buyer
	default:
		size = s.PageSizes.Admin
	}
	if size <= 0 {
		return defaultPageSize
	}
	return size
}

func paginate(views []models.BookingView, req models.PageRequest, size int) *models.BookingPage {
	page := req.Page
	if page < 1 {
		page = 1
	}
	total := len(views)
	out := &models.BookingPage{
		Items:      []models.BookingView{},
		Page:       page,
		PageSize:   size,
		Total:      total,
		TotalPages: (total + size - 1) / size,
	}
	// Compare page numbers before multiplying so huge pages cannot overflow.
	if page > out.TotalPages {
		return out
	}
	start := (page - 1) * size
	end := start + size
	if end > total {
		end = total
	}
	out.Items = views[start:end]
	return out
}
