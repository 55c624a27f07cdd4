package repositories

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"studygroup-chat-service/internal/models"
)

var (
	ErrAlreadyPinned = errors.New("message already pinned")
	ErrNotPinned     = errors.New("message not pinned")
)

// PinRepository persists pinned-message bookkeeping.
type PinRepository interface {
	Pin(ctx context.Context, groupID int, messageID int, userID int) (models.PinnedMessage, error)
	Unpin(ctx context.Context, groupID int, messageID int) error
	ListPinned(ctx context.Context, groupID int) ([]models.PinnedMessage, error)
}

// PinRepo is a sqlx-backed implementation.
type PinRepo struct {
	db *sqlx.DB
}

// NewPinRepo constructs a PinRepo.
func NewPinRepo(db *sqlx.DB) *PinRepo {
	return &PinRepo{db: db}
}

// Pin inserts a pin row. The unique index on (group_id, message_id) makes the
// check-then-act atomic; a duplicate surfaces as ErrAlreadyPinned.
func (r *PinRepo) Pin(ctx context.Context, groupID int, messageID int, userID int) (models.PinnedMessage, error) {
	var pin models.PinnedMessage
	err := r.db.QueryRowxContext(ctx, `INSERT INTO pinned_messages (group_id, message_id, pinned_by) VALUES ($1, $2, $3) RETURNING id, group_id, message_id, pinned_by, pinned_at`, groupID, messageID, userID).
		Scan(&pin.ID, &pin.GroupID, &pin.MessageID, &pin.PinnedBy, &pin.PinnedAt)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return models.PinnedMessage{}, ErrAlreadyPinned
	}
	return pin, err
}

// Unpin deletes the pin row for the pair.
func (r *PinRepo) Unpin(ctx context.Context, groupID int, messageID int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM pinned_messages WHERE group_id=$1 AND message_id=$2`, groupID, messageID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNotPinned
	}
	return nil
}

// ListPinned returns the group's pins in insertion order.
func (r *PinRepo) ListPinned(ctx context.Context, groupID int) ([]models.PinnedMessage, error) {
	var pins []models.PinnedMessage
	err := r.db.SelectContext(ctx, &pins, `SELECT id, group_id, message_id, pinned_by, pinned_at FROM pinned_messages WHERE group_id=$1 ORDER BY id ASC`, groupID)
	return pins, err
}
