package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tapline/brewlog/internal/domain"
	"github.com/tapline/brewlog/internal/repository"
)

// commentRepository implements repository.CommentRepository for SQLite.
type commentRepository struct {
	db *DB
}

// NewCommentRepository creates a new SQLite comment repository.
func NewCommentRepository(db *DB) repository.CommentRepository {
	return &commentRepository{db: db}
}

// Create creates a new comment.
func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	query := `
		INSERT INTO comments (text, author_id, author_name, created_at)
		VALUES (?, ?, ?, ?)
	`

	var authorID sql.NullInt64
	if comment.AuthorID != nil {
		authorID = sql.NullInt64{Int64: *comment.AuthorID, Valid: true}
	}

	result, err := r.db.ExecContext(ctx, query,
		comment.Text,
		authorID,
		comment.AuthorName,
		comment.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}
	comment.ID = id

	return nil
}

// GetByID retrieves a comment by ID.
func (r *commentRepository) GetByID(ctx context.Context, id int64) (*domain.Comment, error) {
	query := `
		SELECT id, text, author_id, author_name, created_at
		FROM comments
		WHERE id = ?
	`

	comment, err := scanComment(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}

	return comment, nil
}

// GetByIDs retrieves comments for the given IDs, preserving input order.
func (r *commentRepository) GetByIDs(ctx context.Context, ids []int64) ([]*domain.Comment, error) {
	comments := make([]*domain.Comment, 0, len(ids))

	// The sequences here are short (comments on one beer); per-id point
	// lookups keep the input order without a dynamic IN clause.
	for _, id := range ids {
		comment, err := r.GetByID(ctx, id)
		if err != nil {
			if err == domain.ErrCommentNotFound {
				continue
			}
			return nil, err
		}
		comments = append(comments, comment)
	}

	return comments, nil
}

// scanComment scans a single comment row.
func scanComment(rw row) (*domain.Comment, error) {
	comment := &domain.Comment{}
	var authorID sql.NullInt64
	var createdAt string

	err := rw.Scan(
		&comment.ID,
		&comment.Text,
		&authorID,
		&comment.AuthorName,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	if authorID.Valid {
		comment.AuthorID = &authorID.Int64
	}
	comment.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

	return comment, nil
}
