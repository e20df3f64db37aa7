package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tapline/brewlog/internal/domain"
	"github.com/tapline/brewlog/internal/repository"
)

// commentRepository implements repository.CommentRepository for PostgreSQL.
type commentRepository struct {
	db *DB
}

// NewCommentRepository creates a new PostgreSQL comment repository.
func NewCommentRepository(db *DB) repository.CommentRepository {
	return &commentRepository{db: db}
}

// Create creates a new comment.
func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	query := `
		INSERT INTO comments (text, author_id, author_name, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	var authorID sql.NullInt64
	if comment.AuthorID != nil {
		authorID = sql.NullInt64{Int64: *comment.AuthorID, Valid: true}
	}

	err := r.db.Pool.QueryRow(ctx, query,
		comment.Text,
		authorID,
		comment.AuthorName,
		comment.CreatedAt,
	).Scan(&comment.ID)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}

	return nil
}

// GetByID retrieves a comment by ID.
func (r *commentRepository) GetByID(ctx context.Context, id int64) (*domain.Comment, error) {
	query := `
		SELECT id, text, author_id, author_name, created_at
		FROM comments
		WHERE id = $1
	`

	comment := &domain.Comment{}
	var authorID sql.NullInt64

	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&comment.ID,
		&comment.Text,
		&authorID,
		&comment.AuthorName,
		&comment.CreatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}

	if authorID.Valid {
		comment.AuthorID = &authorID.Int64
	}

	return comment, nil
}

// GetByIDs retrieves comments for the given IDs, preserving input order.
func (r *commentRepository) GetByIDs(ctx context.Context, ids []int64) ([]*domain.Comment, error) {
	if len(ids) == 0 {
		return []*domain.Comment{}, nil
	}

	query := `
		SELECT id, text, author_id, author_name, created_at
		FROM comments
		WHERE id = ANY($1)
	`

	rows, err := r.db.Pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get comments: %w", err)
	}
	defer rows.Close()

	byID := make(map[int64]*domain.Comment, len(ids))
	for rows.Next() {
		comment := &domain.Comment{}
		var authorID sql.NullInt64
		if err := rows.Scan(
			&comment.ID,
			&comment.Text,
			&authorID,
			&comment.AuthorName,
			&comment.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		if authorID.Valid {
			comment.AuthorID = &authorID.Int64
		}
		byID[comment.ID] = comment
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate comments: %w", err)
	}

	// Re-assemble in the caller's (attachment) order.
	comments := make([]*domain.Comment, 0, len(ids))
	for _, id := range ids {
		if comment, ok := byID[id]; ok {
			comments = append(comments, comment)
		}
	}

	return comments, nil
}
