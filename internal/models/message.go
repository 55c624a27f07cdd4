package models

import "time"

// Message types carried by group messages and broadcast events. The set is
// closed; anything else is rejected at the transport boundary.
const (
	MessageTypeText     = "TEXT"
	MessageTypePoll     = "POLL"
	MessageTypeDocument = "DOCUMENT"

	// Event-only types, never persisted as message rows.
	MessageTypePollVote = "POLL_VOTE"
	MessageTypeDeleted  = "MESSAGE_DELETED"
)

// ValidSendType reports whether a client may submit a message of this type
// directly. POLL rows are synthesized by the poll engine only.
func ValidSendType(messageType string) bool {
	return messageType == MessageTypeText || messageType == MessageTypeDocument
}

// GroupMessage represents a persisted message in a group.
type GroupMessage struct {
	ID          int       `db:"id" json:"id"`
	GroupID     int       `db:"group_id" json:"group_id"`
	SenderID    int       `db:"sender_id" json:"sender_id"`
	Content     string    `db:"content" json:"content"`
	MessageType string    `db:"message_type" json:"message_type"`
	PollID      *int      `db:"poll_id" json:"poll_id,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// MessageReply links a message to the one it replies to. At most one row may
// exist per reply message; a message may be the original of many replies.
type MessageReply struct {
	ID                int `db:"id" json:"id"`
	ReplyMessageID    int `db:"reply_message_id" json:"reply_message_id"`
	OriginalMessageID int `db:"original_message_id" json:"original_message_id"`
	ReplierID         int `db:"replier_id" json:"replier_id"`
}

// ReplyInfo is the read-side projection used to decorate outgoing DTOs.
type ReplyInfo struct {
	ReplyMessageID     int    `db:"reply_message_id" json:"reply_message_id"`
	OriginalMessageID  int    `db:"original_message_id" json:"original_message_id"`
	OriginalContent    string `db:"original_content" json:"original_content"`
	OriginalSenderName string `db:"original_sender_name" json:"original_sender_name"`
}

// ChatMessageDTO is the wire shape pushed to group subscribers and returned
// from the message endpoints. Server-confirmed state only; clients never echo.
type ChatMessageDTO struct {
	GroupID          int          `json:"group_id"`
	MessageID        int          `json:"message_id"`
	SenderID         int          `json:"sender_id"`
	SenderName       string       `json:"sender_name"`
	Content          string       `json:"content"`
	Timestamp        time.Time    `json:"timestamp"`
	MessageType      string       `json:"message_type"`
	ReplyToMessageID *int         `json:"reply_to_message_id,omitempty"`
	ReplyToContent   string       `json:"reply_to_content,omitempty"`
	ReplyToSender    string       `json:"reply_to_sender_name,omitempty"`
	PollID           *int         `json:"poll_id,omitempty"`
	PollOptions      []PollOption `json:"poll_options,omitempty"`
}

// MessageDeletedDTO notifies subscribers that a message was removed.
type MessageDeletedDTO struct {
	MessageType string `json:"message_type"`
	GroupID     int    `json:"group_id"`
	MessageID   int    `json:"message_id"`
}
