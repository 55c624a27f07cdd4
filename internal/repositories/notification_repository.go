package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"studygroup-chat-service/internal/models"
)

var ErrNotificationNotFound = errors.New("notification not found")

// NotificationRepository persists per-user notifications.
type NotificationRepository interface {
	Create(ctx context.Context, notification models.Notification) (models.Notification, error)
	Get(ctx context.Context, notificationID int) (models.Notification, error)
	ListForUser(ctx context.Context, userID int) ([]models.Notification, error)
	ListUnreadForUser(ctx context.Context, userID int) ([]models.Notification, error)
	MarkRead(ctx context.Context, notificationID int) error
	MarkAllRead(ctx context.Context, userID int) error
	DeleteRead(ctx context.Context, userID int) error
	GetByIDs(ctx context.Context, notificationIDs []int) ([]models.Notification, error)
	DeleteByIDs(ctx context.Context, notificationIDs []int) error
}

// NotificationRepo is a sqlx-backed implementation.
type NotificationRepo struct {
	db *sqlx.DB
}

// NewNotificationRepo constructs a NotificationRepo.
func NewNotificationRepo(db *sqlx.DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

// Create persists an unread notification.
func (r *NotificationRepo) Create(ctx context.Context, notification models.Notification) (models.Notification, error) {
	var saved models.Notification
	err := r.db.QueryRowxContext(ctx, `INSERT INTO notifications (user_id, title, message, type, related_entity_id, related_entity_type) VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, user_id, title, message, type, is_read, created_at, related_entity_id, related_entity_type`,
		notification.UserID, notification.Title, notification.Message, notification.Type, notification.RelatedEntityID, notification.RelatedEntityType).
		Scan(&saved.ID, &saved.UserID, &saved.Title, &saved.Message, &saved.Type, &saved.IsRead, &saved.CreatedAt, &saved.RelatedEntityID, &saved.RelatedEntityType)
	return saved, err
}

// Get fetches a single notification.
func (r *NotificationRepo) Get(ctx context.Context, notificationID int) (models.Notification, error) {
	var notification models.Notification
	err := r.db.GetContext(ctx, &notification, `SELECT id, user_id, title, message, type, is_read, created_at, related_entity_id, related_entity_type FROM notifications WHERE id=$1`, notificationID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Notification{}, ErrNotificationNotFound
	}
	return notification, err
}

// ListForUser returns the user's notifications, newest first.
func (r *NotificationRepo) ListForUser(ctx context.Context, userID int) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.SelectContext(ctx, &notifications, `SELECT id, user_id, title, message, type, is_read, created_at, related_entity_id, related_entity_type FROM notifications WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	return notifications, err
}

// ListUnreadForUser returns the user's unread notifications, newest first.
func (r *NotificationRepo) ListUnreadForUser(ctx context.Context, userID int) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.SelectContext(ctx, &notifications, `SELECT id, user_id, title, message, type, is_read, created_at, related_entity_id, related_entity_type FROM notifications WHERE user_id=$1 AND is_read = FALSE ORDER BY created_at DESC`, userID)
	return notifications, err
}

// MarkRead flips one notification's read flag.
func (r *NotificationRepo) MarkRead(ctx context.Context, notificationID int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = TRUE WHERE id=$1`, notificationID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead flips every unread notification owned by the user.
func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID int) error {
	_, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = TRUE WHERE user_id=$1 AND is_read = FALSE`, userID)
	return err
}

// DeleteRead removes the user's read notifications.
func (r *NotificationRepo) DeleteRead(ctx context.Context, userID int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE user_id=$1 AND is_read = TRUE`, userID)
	return err
}

// GetByIDs fetches the rows matching the given ids; missing ids are simply
// absent from the result.
func (r *NotificationRepo) GetByIDs(ctx context.Context, notificationIDs []int) ([]models.Notification, error) {
	if len(notificationIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT id, user_id, title, message, type, is_read, created_at, related_entity_id, related_entity_type FROM notifications WHERE id IN (?)`, notificationIDs)
	if err != nil {
		return nil, err
	}
	query = r.db.Rebind(query)
	var notifications []models.Notification
	err = r.db.SelectContext(ctx, &notifications, query, args...)
	return notifications, err
}

// DeleteByIDs removes the rows matching the given ids.
func (r *NotificationRepo) DeleteByIDs(ctx context.Context, notificationIDs []int) error {
	if len(notificationIDs) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM notifications WHERE id IN (?)`, notificationIDs)
	if err != nil {
		return err
	}
	query = r.db.Rebind(query)
	_, err = r.db.ExecContext(ctx, query, args...)
	return err
}
