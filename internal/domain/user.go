// Package domain contains the core business entities for Brewlog.
// These are pure Go structs with no external dependencies, representing
// the fundamental concepts of the beer diary.
package domain

import (
	"time"
)

// User represents a registered user in the system.
// Users authenticate with a username and password and can comment on beers.
type User struct {
	// ID is the unique identifier for the user (auto-generated).
	ID int64 `json:"id"`

	// Username is the unique username for login and display.
	// Matching is case-sensitive.
	Username string `json:"username"`

	// PasswordHash is the argon2id hash of the user's password.
	// This must never be exposed in any client-facing structure.
	PasswordHash []byte `json:"-"`

	// PasswordSalt is the random salt the hash was derived with.
	// This must never be exposed in any client-facing structure.
	PasswordSalt []byte `json:"-"`

	// CreatedAt is the timestamp when the user was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the timestamp when the user was last updated.
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUser creates a new User with the given credentials.
func NewUser(username string, passwordHash, passwordSalt []byte) *User {
	now := time.Now().UTC()
	return &User{
		Username:     username,
		PasswordHash: passwordHash,
		PasswordSalt: passwordSalt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
