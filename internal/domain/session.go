// Package domain contains the core business entities for Brewlog.
package domain

import (
	"time"
)

// Session represents a live login bound to a user.
// The token is the addressable key; a user may hold several sessions at once.
type Session struct {
	// Token is the opaque session identifier delivered to the client
	// as a cookie value. It is generated from a CSPRNG and carries at
	// least 128 bits of entropy.
	Token string `json:"token"`

	// UserID is the user this session is bound to.
	UserID int64 `json:"user_id"`

	// CreatedAt is the timestamp when the session was issued.
	CreatedAt time.Time `json:"created_at"`

	// ExpiresAt is the timestamp after which the session is treated as absent.
	ExpiresAt time.Time `json:"expires_at"`
}

// NewSession creates a session for the given user with a fixed TTL.
func NewSession(token string, userID int64, now time.Time, ttl time.Duration) *Session {
	return &Session{
		Token:     token,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// IsExpired reports whether the session has passed its expiry at the given time.
func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// TTL returns the remaining lifetime of the session at the given time.
// Returns 0 for expired sessions.
func (s *Session) TTL(now time.Time) time.Duration {
	if s.IsExpired(now) {
		return 0
	}
	return s.ExpiresAt.Sub(now)
}
