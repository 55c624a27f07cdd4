package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"studygroup-chat-service/internal/models"
)

var ErrReplyNotFound = errors.New("reply not found")

// ReplyRepository persists reply links between messages.
type ReplyRepository interface {
	CreateReply(ctx context.Context, replyMessageID int, originalMessageID int, replierID int) (models.MessageReply, error)
	GetReplyInfo(ctx context.Context, replyMessageID int) (models.ReplyInfo, error)
	ListReplyInfoForGroup(ctx context.Context, groupID int) ([]models.ReplyInfo, error)
	DeleteRepliesForMessage(ctx context.Context, messageID int) error
}

// ReplyRepo is a sqlx-backed implementation.
type ReplyRepo struct {
	db *sqlx.DB
}

// NewReplyRepo constructs a ReplyRepo.
func NewReplyRepo(db *sqlx.DB) *ReplyRepo {
	return &ReplyRepo{db: db}
}

// CreateReply inserts one reply link. The unique constraint on
// reply_message_id enforces at most one original per reply.
func (r *ReplyRepo) CreateReply(ctx context.Context, replyMessageID int, originalMessageID int, replierID int) (models.MessageReply, error) {
	var reply models.MessageReply
	err := r.db.QueryRowxContext(ctx, `INSERT INTO message_replies (reply_message_id, original_message_id, replier_id) VALUES ($1, $2, $3) RETURNING id, reply_message_id, original_message_id, replier_id`, replyMessageID, originalMessageID, replierID).
		Scan(&reply.ID, &reply.ReplyMessageID, &reply.OriginalMessageID, &reply.ReplierID)
	return reply, err
}

// GetReplyInfo resolves the original message's id, content and sender name
// for a reply message.
func (r *ReplyRepo) GetReplyInfo(ctx context.Context, replyMessageID int) (models.ReplyInfo, error) {
	var info models.ReplyInfo
	err := r.db.GetContext(ctx, &info, `SELECT mr.reply_message_id, mr.original_message_id, om.content AS original_content, u.name AS original_sender_name
        FROM message_replies mr
        INNER JOIN group_messages om ON om.id = mr.original_message_id
        INNER JOIN users u ON u.id = om.sender_id
        WHERE mr.reply_message_id=$1`, replyMessageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ReplyInfo{}, ErrReplyNotFound
	}
	return info, err
}

// ListReplyInfoForGroup resolves reply decorations for a whole group in one
// query, keyed by reply message id on the caller side.
func (r *ReplyRepo) ListReplyInfoForGroup(ctx context.Context, groupID int) ([]models.ReplyInfo, error) {
	var infos []models.ReplyInfo
	err := r.db.SelectContext(ctx, &infos, `SELECT mr.reply_message_id, mr.original_message_id, om.content AS original_content, u.name AS original_sender_name
        FROM message_replies mr
        INNER JOIN group_messages rm ON rm.id = mr.reply_message_id
        INNER JOIN group_messages om ON om.id = mr.original_message_id
        INNER JOIN users u ON u.id = om.sender_id
        WHERE rm.group_id=$1`, groupID)
	return infos, err
}

// DeleteRepliesForMessage removes links where the message is the reply or the
// original, so deleting a message never leaves orphaned links.
func (r *ReplyRepo) DeleteRepliesForMessage(ctx context.Context, messageID int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM message_replies WHERE reply_message_id=$1 OR original_message_id=$1`, messageID)
	return err
}
