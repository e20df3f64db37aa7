// Package domain contains the core business entities for Brewlog.
package domain

import (
	"time"
)

// Beer represents a tasting entry. A beer owns an ordered, append-only
// sequence of comment IDs; comments themselves are separate entities.
type Beer struct {
	// ID is the unique identifier for the beer (auto-generated).
	ID int64 `json:"id"`

	// Name is the display name of the beer.
	Name string `json:"name"`

	// ImageURL is a URI pointing at an image of the beer.
	ImageURL string `json:"image_url"`

	// Description is the free-form tasting description.
	Description string `json:"description"`

	// CommentIDs is the ordered sequence of comments attached to this beer.
	// The sequence grows monotonically via attachment and is never
	// reordered or pruned.
	CommentIDs []int64 `json:"comment_ids"`

	// CreatedAt is the timestamp when the beer was created.
	CreatedAt time.Time `json:"created_at"`
}

// NewBeer creates a new Beer with an empty comment sequence.
func NewBeer(name, imageURL, description string) *Beer {
	return &Beer{
		Name:        name,
		ImageURL:    imageURL,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
}
