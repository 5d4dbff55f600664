package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"blog/app/models"
	"blog/app/repositories"

	"github.com/lib/pq"
)

const foreignKeyViolation = "23503"

// CommentRepository stores comments in the comments table.
type CommentRepository struct {
	db *sql.DB
}

// NewCommentRepository creates a CommentRepository.
func NewCommentRepository(db *sql.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// Insert stores a comment. A missing owning post yields repositories.ErrNotFound.
func (r *CommentRepository) Insert(ctx context.Context, comment *models.Comment) error {
	comment.BeforeCreate()
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO comments (post_id, name, email, body, created, updated, active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		comment.PostID, comment.Name, comment.Email, comment.Body,
		comment.CreatedAt, comment.UpdatedAt, comment.Active,
	).Scan(&comment.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation {
			return repositories.ErrNotFound
		}
		return fmt.Errorf("failed to insert comment: %w", err)
	}
	return nil
}

// ListByPost returns the comments of a post, oldest first.
func (r *CommentRepository) ListByPost(ctx context.Context, postID int, activeOnly bool) ([]*models.Comment, error) {
	query := `SELECT id, post_id, name, email, body, created, updated, active
		FROM comments WHERE post_id = $1`
	if activeOnly {
		query += ` AND active`
	}
	query += ` ORDER BY created ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer rows.Close()

	comments := []*models.Comment{}
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.Name, &c.Email, &c.Body, &c.CreatedAt, &c.UpdatedAt, &c.Active); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate comments: %w", err)
	}
	return comments, nil
}

// Clear removes every post and comment.
func Clear(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `TRUNCATE comments, posts RESTART IDENTITY`); err != nil {
		return fmt.Errorf("failed to clear tables: %w", err)
	}
	return nil
}

var _ repositories.CommentRepository = (*CommentRepository)(nil)
