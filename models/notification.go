package models

import "time"

// BroadcastUserID addresses a notification to every view watching the feed.
const BroadcastUserID = "all"

// NotificationType groups notifications by the area that produced them.
type NotificationType string

const (
	NotificationBooking  NotificationType = "booking"
	NotificationProperty NotificationType = "property"
	NotificationUser     NotificationType = "user"
	NotificationContact  NotificationType = "contact"
	NotificationSystem   NotificationType = "system"
)

type Notification struct {
	ID        string           `bson:"id" json:"id,omitempty"`
	UserID    string           `bson:"userId" json:"userId"` // user id or BroadcastUserID
	Type      NotificationType `bson:"type" json:"type"`
	Title     string           `bson:"title" json:"title"`
	Message   string           `bson:"message" json:"message"`
	Link      string           `bson:"link" json:"link"`
	Read      bool             `bson:"read" json:"read"`
	CreatedAt time.Time        `bson:"createdAt" json:"createdAt"`
}
