package notify

import (
	"context"

	"studygroup-chat-service/internal/models"
	"studygroup-chat-service/internal/repositories"
	"studygroup-chat-service/internal/ws"
)

// Notifier persists a notification and pushes it to the owner's live channel.
// The push is fire-and-forget: a disconnected subscriber misses it and pulls
// from history later.
type Notifier struct {
	repo repositories.NotificationRepository
	hub  *ws.Hub
}

// NewNotifier constructs a Notifier.
func NewNotifier(repo repositories.NotificationRepository, hub *ws.Hub) *Notifier {
	return &Notifier{repo: repo, hub: hub}
}

// Create stores an unread notification and pushes the persisted DTO.
func (n *Notifier) Create(ctx context.Context, userID int, title *string, message, notificationType string, relatedEntityID *int, relatedEntityType *string) (models.Notification, error) {
	saved, err := n.repo.Create(ctx, models.Notification{
		UserID:            userID,
		Title:             title,
		Message:           message,
		Type:              notificationType,
		RelatedEntityID:   relatedEntityID,
		RelatedEntityType: relatedEntityType,
	})
	if err != nil {
		return models.Notification{}, err
	}

	if n.hub != nil {
		n.hub.PushNotification(userID, saved)
	}
	return saved, nil
}

// CreateUpdate stores an Updates notification.
func (n *Notifier) CreateUpdate(ctx context.Context, userID int, title, message string, relatedEntityID *int, relatedEntityType *string) (models.Notification, error) {
	return n.Create(ctx, userID, &title, message, models.NotificationTypeUpdates, relatedEntityID, relatedEntityType)
}

// CreateReminder stores a Reminders notification.
func (n *Notifier) CreateReminder(ctx context.Context, userID int, title, message string, relatedEntityID *int, relatedEntityType *string) (models.Notification, error) {
	return n.Create(ctx, userID, &title, message, models.NotificationTypeReminders, relatedEntityID, relatedEntityType)
}
