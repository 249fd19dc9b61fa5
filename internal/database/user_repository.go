package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// UserRepository handles database operations for users.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Ensure creates the user row on first verified access. Existing rows are
// left untouched.
func (r *UserRepository) Ensure(ctx context.Context, netID string) error {
	query := `INSERT INTO users (net_id) VALUES ($1) ON CONFLICT (net_id) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, netID); err != nil {
		return fmt.Errorf("failed to ensure user: %w", err)
	}

	return nil
}
