package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"studygroup-chat-service/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepository reads user profiles for sender names and reminder emails.
type UserRepository interface {
	Get(ctx context.Context, userID int) (models.User, error)
	BulkUsers(ctx context.Context, userIDs []int) ([]models.User, error)
}

// UserRepo is a sqlx-backed implementation.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

// Get fetches a single user.
func (r *UserRepo) Get(ctx context.Context, userID int) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT id, name, email FROM users WHERE id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// BulkUsers fetches the users matching the given ids.
func (r *UserRepo) BulkUsers(ctx context.Context, userIDs []int) ([]models.User, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT id, name, email FROM users WHERE id IN (?)`, userIDs)
	if err != nil {
		return nil, err
	}
	query = r.db.Rebind(query)
	var users []models.User
	err = r.db.SelectContext(ctx, &users, query, args...)
	return users, err
}
