package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/tigerfoodies/gofoodies/internal/domain"
)

// commentSelectColumns lists columns for SELECT queries on comments.
const commentSelectColumns = `comment_id, card_id, net_id, comment, posted_at`

// CommentRepository handles database operations for comments.
type CommentRepository struct {
	db *sqlx.DB
}

// NewCommentRepository creates a new comment repository.
func NewCommentRepository(db *sqlx.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// ListByCard returns a card's comments, newest first.
func (r *CommentRepository) ListByCard(ctx context.Context, cardID int64) ([]*domain.Comment, error) {
	query := `SELECT ` + commentSelectColumns + `
		FROM comments WHERE card_id = $1 ORDER BY posted_at DESC`

	var comments []*domain.Comment
	if err := r.db.SelectContext(ctx, &comments, query, cardID); err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	if comments == nil {
		comments = []*domain.Comment{}
	}

	return comments, nil
}

// Insert stores a new comment and returns its assigned ID.
func (r *CommentRepository) Insert(ctx context.Context, comment *domain.Comment) (int64, error) {
	query := `INSERT INTO comments (card_id, net_id, comment, posted_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING comment_id`

	var commentID int64
	err := r.db.QueryRowContext(ctx, query,
		comment.CardID, comment.NetID, comment.Comment,
	).Scan(&commentID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert comment: %w", err)
	}

	return commentID, nil
}
