// Package auth provides session-cookie authentication middleware for Brewlog.
// Identity resolution happens exactly once per request; everything downstream
// reads the result from the request context.
package auth

import (
	"context"

	"github.com/tapline/brewlog/internal/domain"
)

// ctxKey is the private context key type for identity values.
type ctxKey struct{}

// Identity is the per-request resolution result. A zero Identity is the
// anonymous marker.
type Identity struct {
	// User is the resolved user, nil for anonymous requests.
	User *domain.User

	// Session is the live session the user was resolved from, nil for
	// anonymous requests.
	Session *domain.Session
}

// IsAnonymous reports whether no user is attached.
func (id Identity) IsAnonymous() bool {
	return id.User == nil
}

// WithIdentity returns a context carrying the identity.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// IdentityFromContext returns the identity attached to the context.
// A context that never passed through the Identify middleware yields the
// anonymous identity.
func IdentityFromContext(ctx context.Context) Identity {
	id, _ := ctx.Value(ctxKey{}).(Identity)
	return id
}
