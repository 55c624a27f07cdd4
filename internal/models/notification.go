package models

import "time"

// Notification categories.
const (
	NotificationTypeInvites   = "Invites"
	NotificationTypeReminders = "Reminders"
	NotificationTypeUpdates   = "Updates"
)

// ValidNotificationType reports whether the category is one of the closed set.
func ValidNotificationType(notificationType string) bool {
	switch notificationType {
	case NotificationTypeInvites, NotificationTypeReminders, NotificationTypeUpdates:
		return true
	}
	return false
}

// Notification is owned exclusively by UserID; every mutation re-derives the
// caller from the authenticated context and must match that owner.
type Notification struct {
	ID                int       `db:"id" json:"id"`
	UserID            int       `db:"user_id" json:"user_id"`
	Title             *string   `db:"title" json:"title,omitempty"`
	Message           string    `db:"message" json:"message"`
	Type              string    `db:"type" json:"type"`
	IsRead            bool      `db:"is_read" json:"is_read"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	RelatedEntityID   *int      `db:"related_entity_id" json:"related_entity_id,omitempty"`
	RelatedEntityType *string   `db:"related_entity_type" json:"related_entity_type,omitempty"`
}
