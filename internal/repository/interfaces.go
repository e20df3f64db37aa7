// Package repository defines data access interfaces for Brewlog.
// These interfaces abstract database operations, allowing for different
// implementations (SQLite, PostgreSQL, in-memory for testing) while keeping
// the service layer clean.
package repository

import (
	"context"
	"time"

	"github.com/tapline/brewlog/internal/domain"
)

// =============================================================================
// User Repository
// =============================================================================

// UserRepository defines the interface for user data access.
type UserRepository interface {
	// Create creates a new user. Returns domain.ErrUserAlreadyExists when
	// the username is taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// GetByUsername retrieves a user by username (case-sensitive exact match).
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// Delete deletes a user by ID.
	Delete(ctx context.Context, id int64) error

	// List returns all users with pagination.
	List(ctx context.Context, opts ListOptions) (*ListResult[domain.User], error)

	// ExistsByUsername checks if a user with the given username exists.
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}

// =============================================================================
// Session Repository
// =============================================================================

// SessionRepository defines the interface for session data access.
// Sessions are addressed by token; expiry filtering is the caller's concern
// except for DeleteExpired.
type SessionRepository interface {
	// Create persists a new session binding.
	Create(ctx context.Context, session *domain.Session) error

	// GetByToken retrieves a session by its token, expired or not.
	GetByToken(ctx context.Context, token string) (*domain.Session, error)

	// Delete removes a session by token. Returns ErrNotFound when the
	// token is unknown; callers that need idempotency ignore it.
	Delete(ctx context.Context, token string) error

	// DeleteExpired removes all sessions past their expiry at the given
	// time. Returns the number of sessions removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// =============================================================================
// Beer Repository
// =============================================================================

// BeerRepository defines the interface for beer data access.
type BeerRepository interface {
	// Create creates a new beer with an empty comment sequence.
	Create(ctx context.Context, beer *domain.Beer) error

	// GetByID retrieves a beer by ID with its ordered comment ID sequence.
	GetByID(ctx context.Context, id int64) (*domain.Beer, error)

	// List returns all beers in creation order, without comment sequences.
	List(ctx context.Context) ([]*domain.Beer, error)

	// AppendComment atomically appends a comment ID to the beer's sequence.
	// The append must be safe under concurrent writers: two concurrent
	// appends to the same beer both land, in some order. Returns
	// domain.ErrBeerNotFound when the beer does not exist.
	AppendComment(ctx context.Context, beerID, commentID int64) error
}

// =============================================================================
// Comment Repository
// =============================================================================

// CommentRepository defines the interface for comment data access.
type CommentRepository interface {
	// Create creates a new comment. The comment exists standalone until a
	// beer references it.
	Create(ctx context.Context, comment *domain.Comment) error

	// GetByID retrieves a comment by ID.
	GetByID(ctx context.Context, id int64) (*domain.Comment, error)

	// GetByIDs retrieves comments for the given IDs, preserving the input
	// order. Missing IDs are skipped rather than reported.
	GetByIDs(ctx context.Context, ids []int64) ([]*domain.Comment, error)
}

// =============================================================================
// Common Types
// =============================================================================

// ListOptions contains common pagination options.
type ListOptions struct {
	// Offset is the number of records to skip.
	Offset int

	// Limit is the maximum number of records to return.
	Limit int
}

// ListResult is a generic paginated list result.
type ListResult[T any] struct {
	// Items is the list of items.
	Items []*T

	// Total is the total number of items (without pagination).
	Total int64

	// Offset is the current offset.
	Offset int

	// Limit is the current limit.
	Limit int
}
