package models

import "time"

// Poll is always paired with a POLL group message carrying its id.
type Poll struct {
	ID        int       `db:"id" json:"id"`
	GroupID   int       `db:"group_id" json:"group_id"`
	CreatorID int       `db:"creator_id" json:"creator_id"`
	Question  string    `db:"question" json:"question"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// PollOption carries a monotonically non-decreasing vote counter.
type PollOption struct {
	ID         int    `db:"id" json:"id"`
	PollID     int    `db:"poll_id" json:"poll_id"`
	OptionText string `db:"option_text" json:"option_text"`
	VoteCount  int64  `db:"vote_count" json:"vote_count"`
}

// PollVoteDTO is the minimal live update broadcast after a vote.
type PollVoteDTO struct {
	MessageType string `json:"message_type"`
	PollID      int    `json:"poll_id"`
	OptionID    int    `json:"option_id"`
	VoteCount   int64  `json:"vote_count"`
}
