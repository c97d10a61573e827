package entity

import "github.com/google/uuid"

type NotificationType string

const (
	NotificationOrder  NotificationType = "order"
	NotificationSystem NotificationType = "system"
	NotificationOffers NotificationType = "offers"
	NotificationOther  NotificationType = "other"
)

type Notification struct {
	BaseSimple
	UserID   uuid.UUID        `db:"user_id"`
	Type     NotificationType `db:"type"`
	Title    string           `db:"title"`
	Message  string           `db:"message"`
	IsRead   bool             `db:"is_read"`
	Metadata map[string]any   `db:"metadata"`
}
