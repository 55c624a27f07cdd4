package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"studygroup-chat-service/internal/models"
)

var ErrMessageNotFound = errors.New("message not found")

// MessageRepository defines interactions for group messages.
type MessageRepository interface {
	CreateMessage(ctx context.Context, groupID int, senderID int, content string, messageType string, pollID *int) (models.GroupMessage, error)
	ListMessages(ctx context.Context, groupID int) ([]models.GroupMessage, error)
	GetMessage(ctx context.Context, messageID int) (models.GroupMessage, error)
	DeleteMessage(ctx context.Context, messageID int, senderID int) error
}

// MessageRepo is a sqlx-backed implementation.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs a MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// CreateMessage persists a group message.
func (r *MessageRepo) CreateMessage(ctx context.Context, groupID int, senderID int, content string, messageType string, pollID *int) (models.GroupMessage, error) {
	var msg models.GroupMessage
	err := r.db.QueryRowxContext(ctx, `INSERT INTO group_messages (group_id, sender_id, content, message_type, poll_id) VALUES ($1, $2, $3, $4, $5) RETURNING id, group_id, sender_id, content, message_type, poll_id, created_at`, groupID, senderID, content, messageType, pollID).
		Scan(&msg.ID, &msg.GroupID, &msg.SenderID, &msg.Content, &msg.MessageType, &msg.PollID, &msg.CreatedAt)
	return msg, err
}

// ListMessages returns the group's messages in chronological order.
func (r *MessageRepo) ListMessages(ctx context.Context, groupID int) ([]models.GroupMessage, error) {
	var msgs []models.GroupMessage
	err := r.db.SelectContext(ctx, &msgs, `SELECT id, group_id, sender_id, content, message_type, poll_id, created_at FROM group_messages WHERE group_id=$1 ORDER BY created_at ASC`, groupID)
	return msgs, err
}

// GetMessage fetches a single message.
func (r *MessageRepo) GetMessage(ctx context.Context, messageID int) (models.GroupMessage, error) {
	var msg models.GroupMessage
	err := r.db.GetContext(ctx, &msg, `SELECT id, group_id, sender_id, content, message_type, poll_id, created_at FROM group_messages WHERE id=$1`, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.GroupMessage{}, ErrMessageNotFound
	}
	return msg, err
}

// DeleteMessage hard-deletes a message. Only the sender's row matches, so a
// foreign requester falls through to ErrMessageNotFound.
func (r *MessageRepo) DeleteMessage(ctx context.Context, messageID int, senderID int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM group_messages WHERE id=$1 AND sender_id=$2`, messageID, senderID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrMessageNotFound
	}
	return nil
}
