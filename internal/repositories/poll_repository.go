package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"studygroup-chat-service/internal/models"
)

var (
	ErrPollNotFound   = errors.New("poll not found")
	ErrOptionNotFound = errors.New("poll option not found")
)

// PollRepository persists polls and their options.
type PollRepository interface {
	CreatePoll(ctx context.Context, groupID int, creatorID int, question string, options []string) (models.Poll, []models.PollOption, error)
	GetPoll(ctx context.Context, pollID int) (models.Poll, error)
	ListOptions(ctx context.Context, pollID int) ([]models.PollOption, error)
	IncrementVote(ctx context.Context, pollID int, optionID int) (models.PollOption, error)
	DeletePoll(ctx context.Context, pollID int) error
}

// PollRepo is a sqlx-backed implementation.
type PollRepo struct {
	db *sqlx.DB
}

// NewPollRepo constructs a PollRepo.
func NewPollRepo(db *sqlx.DB) *PollRepo {
	return &PollRepo{db: db}
}

// CreatePoll inserts the poll and its options atomically, options in input
// order with zero votes.
func (r *PollRepo) CreatePoll(ctx context.Context, groupID int, creatorID int, question string, options []string) (models.Poll, []models.PollOption, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Poll{}, nil, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var poll models.Poll
	if err = tx.QueryRowxContext(ctx, `INSERT INTO polls (group_id, creator_id, question) VALUES ($1, $2, $3) RETURNING id, group_id, creator_id, question, created_at`, groupID, creatorID, question).
		Scan(&poll.ID, &poll.GroupID, &poll.CreatorID, &poll.Question, &poll.CreatedAt); err != nil {
		return models.Poll{}, nil, err
	}

	saved := make([]models.PollOption, 0, len(options))
	for _, text := range options {
		var opt models.PollOption
		if err = tx.QueryRowxContext(ctx, `INSERT INTO poll_options (poll_id, option_text) VALUES ($1, $2) RETURNING id, poll_id, option_text, vote_count`, poll.ID, text).
			Scan(&opt.ID, &opt.PollID, &opt.OptionText, &opt.VoteCount); err != nil {
			return models.Poll{}, nil, err
		}
		saved = append(saved, opt)
	}

	if err = tx.Commit(); err != nil {
		return models.Poll{}, nil, err
	}
	return poll, saved, nil
}

// GetPoll fetches a single poll.
func (r *PollRepo) GetPoll(ctx context.Context, pollID int) (models.Poll, error) {
	var poll models.Poll
	err := r.db.GetContext(ctx, &poll, `SELECT id, group_id, creator_id, question, created_at FROM polls WHERE id=$1`, pollID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Poll{}, ErrPollNotFound
	}
	return poll, err
}

// ListOptions returns a poll's options in insertion order.
func (r *PollRepo) ListOptions(ctx context.Context, pollID int) ([]models.PollOption, error) {
	var opts []models.PollOption
	err := r.db.SelectContext(ctx, &opts, `SELECT id, poll_id, option_text, vote_count FROM poll_options WHERE poll_id=$1 ORDER BY id ASC`, pollID)
	return opts, err
}

// DeletePoll removes a poll and its options. Used to back out a poll whose
// companion chat message could not be stored, so a poll never exists without
// its message.
func (r *PollRepo) DeletePoll(ctx context.Context, pollID int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM poll_options WHERE poll_id=$1`, pollID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM polls WHERE id=$1`, pollID); err != nil {
		return err
	}
	return tx.Commit()
}

// IncrementVote bumps the counter atomically at the store so concurrent votes
// never lose an increment. The option must belong to the given poll.
func (r *PollRepo) IncrementVote(ctx context.Context, pollID int, optionID int) (models.PollOption, error) {
	var opt models.PollOption
	err := r.db.QueryRowxContext(ctx, `UPDATE poll_options SET vote_count = vote_count + 1 WHERE id=$1 AND poll_id=$2 RETURNING id, poll_id, option_text, vote_count`, optionID, pollID).
		Scan(&opt.ID, &opt.PollID, &opt.OptionText, &opt.VoteCount)
	if errors.Is(err, sql.ErrNoRows) {
		return models.PollOption{}, ErrOptionNotFound
	}
	return opt, err
}
