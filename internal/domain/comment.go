// Package domain contains the core business entities for Brewlog.
package domain

import (
	"time"
)

// Comment represents a single comment. A comment is created standalone and
// then attached to exactly one beer; a comment whose attachment failed may
// exist without a referencing beer (accepted garbage, never the reverse).
type Comment struct {
	// ID is the unique identifier for the comment (auto-generated).
	ID int64 `json:"id"`

	// Text is the comment body.
	Text string `json:"text"`

	// AuthorID is the user who wrote the comment, nil for comments whose
	// author account was removed.
	AuthorID *int64 `json:"author_id,omitempty"`

	// AuthorName is the author's username at the time of writing.
	AuthorName string `json:"author_name"`

	// CreatedAt is the timestamp when the comment was created.
	CreatedAt time.Time `json:"created_at"`
}

// NewComment creates a new Comment by the given author.
func NewComment(text string, authorID int64, authorName string) *Comment {
	return &Comment{
		Text:       text,
		AuthorID:   &authorID,
		AuthorName: authorName,
		CreatedAt:  time.Now().UTC(),
	}
}
