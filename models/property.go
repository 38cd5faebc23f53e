package models

// Property is the subset of a listing the booking engine reads. Listings are
// managed elsewhere; bookings only hold a weak reference to them.
type Property struct {
	ID      string `bson:"id" json:"id"`
	Title   string `bson:"title" json:"title"`
	OwnerID string `bson:"ownerId" json:"ownerId"`
}
