package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"devhub/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepository resolves public user profiles. Accounts are managed elsewhere.
type UserRepository interface {
	GetPublicUser(ctx context.Context, userID int) (models.PublicUser, error)
	GetPublicUsers(ctx context.Context, ids []int) ([]models.PublicUser, error)
}

// UserRepo is a sqlx implementation of UserRepository.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

// GetPublicUser fetches one user's display fields.
func (r *UserRepo) GetPublicUser(ctx context.Context, userID int) (models.PublicUser, error) {
	var user models.PublicUser
	err := r.db.GetContext(ctx, &user, `SELECT id, username, name, avatar FROM users WHERE id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.PublicUser{}, ErrUserNotFound
	}
	return user, err
}

// GetPublicUsers fetches display fields for every id that exists. Order is unspecified.
func (r *UserRepo) GetPublicUsers(ctx context.Context, ids []int) ([]models.PublicUser, error) {
	if len(ids) == 0 {
		return []models.PublicUser{}, nil
	}
	var users []models.PublicUser
	err := r.db.SelectContext(ctx, &users, `SELECT id, username, name, avatar FROM users WHERE id = ANY($1)`, pq.Array(ids))
	return users, err
}
