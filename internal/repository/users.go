package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Yogeshkumarverma761/lumina-analytics/internal/model"
)

const userColumns = `id, username, email, hashed_password, created_at`

// CreateUser inserts a user and fills in its ID. A duplicate username or
// email returns ErrConflict.
func (r *Repository) CreateUser(ctx context.Context, user *model.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	query := r.rebind(`
		INSERT INTO users (username, email, hashed_password, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`)
	err := r.db.QueryRowxContext(ctx, query, user.Username, user.Email, user.HashedPassword, user.CreatedAt).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %v", ErrConflict, err)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByUsername returns nil, nil when no user matches
func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.getUser(ctx, "username", username)
}

// GetUserByEmail returns nil, nil when no user matches
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getUser(ctx, "email", email)
}

// GetUserByID returns nil, nil when no user matches
func (r *Repository) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	return r.getUser(ctx, "id", id)
}

// getUser is only called with fixed column names
func (r *Repository) getUser(ctx context.Context, column string, value interface{}) (*model.User, error) {
	var user model.User
	query := r.rebind(fmt.Sprintf(`SELECT %s FROM users WHERE %s = ?`, userColumns, column))
	err := r.db.GetContext(ctx, &user, query, value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}
