package models

// ScopeKind selects which bookings a query may see.
type ScopeKind string

const (
	ScopeAll        ScopeKind = "all"
	ScopeByOwner    ScopeKind = "byOwnerId"
	ScopeByUser     ScopeKind = "byUserId"
	ScopeByProperty ScopeKind = "byPropertyId"
)

// Scope is a ScopeKind with the id it applies to. ID is ignored for ScopeAll.
type Scope struct {
	Kind ScopeKind
	ID   string
}

// BookingFilters narrow a scoped query. Empty fields match everything.
type BookingFilters struct {
	Status    BookingStatus
	VisitType VisitType
	Search    string // case-insensitive substring of the property title
}

// PageRequest is a 1-based page number and an optional explicit page size.
type PageRequest struct {
	Page int
	Size int
}

// PageSizes holds the default page size for each audience.
type PageSizes struct {
	Owner int `mapstructure:"PAGE_SIZE_OWNER"`
	Buyer int `mapstructure:"PAGE_SIZE_BUYER"`
	Admin int `mapstructure:"PAGE_SIZE_ADMIN"`
}

// BookingView is a booking joined with the display fields of its property.
type BookingView struct {
	Booking
	PropertyTitle string `json:"propertyTitle"`
	BuyerName     string `json:"buyerName,omitempty"`
}

// BookingPage is one page of a booking query.
type BookingPage struct {
	Items      []BookingView `json:"items"`
	Page       int           `json:"page"`
	PageSize   int           `json:"pageSize"`
	Total      int           `json:"total"`
	TotalPages int           `json:"totalPages"`
}
