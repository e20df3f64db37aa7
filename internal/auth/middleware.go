// Package auth provides session-cookie authentication middleware for Brewlog.
package auth

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/tapline/brewlog/internal/domain"
)

// LoginPath is where unauthenticated requests to protected routes are sent.
const LoginPath = "/login"

// SessionResolver resolves a session token to a live session.
// Implemented by service.SessionService.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*domain.Session, bool)
}

// UserLoader loads a user by ID. Implemented by service.UserService.
type UserLoader interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// Identify returns middleware that resolves the session cookie into a
// request-scoped identity. Resolution runs exactly once here and is never
// re-evaluated downstream, so a session destroyed mid-request does not
// retroactively revoke the request's authorization. The middleware itself
// never rejects: failures of any kind produce the anonymous identity.
func Identify(sessions SessionResolver, users UserLoader, cookieName string, logger zerolog.Logger) func(http.Handler) http.Handler {
	log := logger.With().Str("middleware", "identify").Logger()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := Identity{}

			if cookie, err := r.Cookie(cookieName); err == nil {
				if session, ok := sessions.Resolve(r.Context(), cookie.Value); ok {
					user, err := users.GetByID(r.Context(), session.UserID)
					if err != nil {
						// Session without a user: account removed
						// underneath it. Treat as anonymous.
						log.Debug().Err(err).Int64("user_id", session.UserID).Msg("session user not loadable")
					} else {
						identity = Identity{User: user, Session: session}
					}
				}
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// RequireUser guards protected operations. Anonymous requests are redirected
// to the login page and the wrapped handler never executes.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if IdentityFromContext(r.Context()).IsAnonymous() {
			http.Redirect(w, r, LoginPath, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}
