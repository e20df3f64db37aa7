// Package service provides business logic services for Brewlog.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tapline/brewlog/internal/domain"
	"github.com/tapline/brewlog/internal/pkg/crypto"
	"github.com/tapline/brewlog/internal/repository"
)

// sessionCachePrefix namespaces session keys in the shared cache.
const sessionCachePrefix = "session:"

// SessionService is the session manager: it issues opaque tokens bound to a
// user, resolves tokens back to sessions, and owns expiry. Sessions use a
// fixed TTL; there is no sliding renewal. The cache sits in front of the
// repository as a TTL-aligned read-through layer, so a warm resolve does not
// touch the database.
type SessionService struct {
	sessionRepo repository.SessionRepository
	cache       repository.Cache
	ttl         time.Duration
	logger      zerolog.Logger

	// now is injectable for expiry tests.
	now func() time.Time
}

// NewSessionService creates a new SessionService.
func NewSessionService(sessionRepo repository.SessionRepository, cache repository.Cache, ttl time.Duration, logger zerolog.Logger) *SessionService {
	return &SessionService{
		sessionRepo: sessionRepo,
		cache:       cache,
		ttl:         ttl,
		logger:      logger.With().Str("service", "session").Logger(),
		now:         time.Now,
	}
}

// Create issues a new session for the given user. The returned token is the
// cookie value; it is unguessable on its own, independent of any transport
// signing.
func (s *SessionService) Create(ctx context.Context, userID int64) (*domain.Session, error) {
	token, err := crypto.GenerateSessionToken()
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to generate session token")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	session := domain.NewSession(token, userID, s.now().UTC(), s.ttl)
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to persist session")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.cacheSession(ctx, session)

	s.logger.Info().
		Int64("user_id", userID).
		Time("expires_at", session.ExpiresAt).
		Msg("session created")

	return session, nil
}

// Resolve returns the session bound to the token, or ok=false when the token
// is empty, unknown, or expired. "No session" is a normal state for callers,
// never an error; store failures degrade to an anonymous result and are
// logged here.
func (s *SessionService) Resolve(ctx context.Context, token string) (*domain.Session, bool) {
	if token == "" {
		return nil, false
	}

	if session, ok := s.resolveFromCache(ctx, token); ok {
		return session, true
	}

	session, err := s.sessionRepo.GetByToken(ctx, token)
	if err != nil {
		if !errors.Is(err, domain.ErrSessionNotFound) {
			s.logger.Error().Err(err).Msg("failed to look up session")
		}
		return nil, false
	}

	if session.IsExpired(s.now()) {
		// Expired rows are garbage; collect this one on the way out.
		if err := s.sessionRepo.Delete(ctx, token); err != nil && !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn().Err(err).Msg("failed to delete expired session")
		}
		return nil, false
	}

	s.cacheSession(ctx, session)
	return session, true
}

// Destroy removes the session bound to the token. Idempotent: destroying an
// unknown token is a no-op.
func (s *SessionService) Destroy(ctx context.Context, token string) {
	if token == "" {
		return
	}

	if err := s.cache.Delete(ctx, sessionCachePrefix+token); err != nil {
		s.logger.Warn().Err(err).Msg("failed to evict session from cache")
	}

	if err := s.sessionRepo.Delete(ctx, token); err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.logger.Error().Err(err).Msg("failed to delete session")
		return
	}

	s.logger.Info().Msg("session destroyed")
}

// DeleteExpired removes all expired sessions from the store. Returns the
// number removed. Cached entries need no sweeping; their TTL already matched
// the session expiry.
func (s *SessionService) DeleteExpired(ctx context.Context) (int64, error) {
	n, err := s.sessionRepo.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if n > 0 {
		s.logger.Info().Int64("count", n).Msg("expired sessions deleted")
	}
	return n, nil
}

// resolveFromCache attempts a cache hit. Any cache failure is treated as a
// miss; the repository remains the source of truth.
func (s *SessionService) resolveFromCache(ctx context.Context, token string) (*domain.Session, bool) {
	data, err := s.cache.Get(ctx, sessionCachePrefix+token)
	if err != nil {
		if !errors.Is(err, repository.ErrCacheMiss) {
			s.logger.Warn().Err(err).Msg("session cache read failed")
		}
		return nil, false
	}

	session := &domain.Session{}
	if err := json.Unmarshal(data, session); err != nil {
		s.logger.Warn().Err(err).Msg("corrupt session cache entry")
		return nil, false
	}

	// The cache TTL normally enforces this, but the in-memory cache only
	// sweeps periodically.
	if session.IsExpired(s.now()) {
		return nil, false
	}

	return session, true
}

// cacheSession stores the session in the cache for its remaining lifetime.
// Cache failures are logged and ignored; the session still works from the
// repository.
func (s *SessionService) cacheSession(ctx context.Context, session *domain.Session) {
	ttl := session.TTL(s.now())
	if ttl <= 0 {
		return
	}

	data, err := json.Marshal(session)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to marshal session for cache")
		return
	}

	if err := s.cache.Set(ctx, sessionCachePrefix+session.Token, data, ttl); err != nil {
		s.logger.Warn().Err(err).Msg("session cache write failed")
	}
}
