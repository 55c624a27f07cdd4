package models

import "time"

// PinnedMessage marks a message as pinned in its group. At most one row may
// exist per (group_id, message_id).
type PinnedMessage struct {
	ID        int       `db:"id" json:"id"`
	GroupID   int       `db:"group_id" json:"group_id"`
	MessageID int       `db:"message_id" json:"message_id"`
	PinnedBy  int       `db:"pinned_by" json:"pinned_by"`
	PinnedAt  time.Time `db:"pinned_at" json:"pinned_at"`
}
