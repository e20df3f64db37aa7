package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tapline/brewlog/internal/domain"
	"github.com/tapline/brewlog/internal/repository"
)

// MockSessionRepository is a mock implementation of repository.SessionRepository.
type MockSessionRepository struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
}

func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{
		sessions: make(map[string]*domain.Session),
	}
}

func (m *MockSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.Token] = session
	return nil
}

func (m *MockSessionRepository) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, exists := m.sessions[token]; exists {
		return s, nil
	}
	return nil, domain.ErrSessionNotFound
}

func (m *MockSessionRepository) Delete(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sessions[token]; !exists {
		return repository.ErrNotFound
	}
	delete(m.sessions, token)
	return nil
}

func (m *MockSessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var deleted int64
	for token, s := range m.sessions {
		if s.IsExpired(now) {
			delete(m.sessions, token)
			deleted++
		}
	}
	return deleted, nil
}

func (m *MockSessionRepository) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// MockCache is an in-memory mock of repository.Cache that ignores TTLs.
type MockCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	gets    int
}

func NewMockCache() *MockCache {
	return &MockCache{entries: make(map[string][]byte)}
}

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if v, exists := m.entries[key]; exists {
		return v, nil
	}
	return nil, repository.ErrCacheMiss
}

func (m *MockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *MockCache) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, exists := m.entries[key]
	return exists, nil
}

// =============================================================================
// Tests
// =============================================================================

func TestSessionService_CreateAndResolve(t *testing.T) {
	repo := NewMockSessionRepository()
	svc := NewSessionService(repo, NewMockCache(), 24*time.Hour, zerolog.Nop())

	session, err := svc.Create(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Token carries at least 128 bits of entropy; 32 random bytes hex-encode
	// to 64 characters.
	if len(session.Token) != 64 {
		t.Errorf("expected 64-char token, got %d chars", len(session.Token))
	}
	if session.UserID != 7 {
		t.Errorf("expected user 7, got %d", session.UserID)
	}
	if got := session.ExpiresAt.Sub(session.CreatedAt); got != 24*time.Hour {
		t.Errorf("expected 24h lifetime, got %v", got)
	}

	resolved, ok := svc.Resolve(context.Background(), session.Token)
	if !ok {
		t.Fatal("expected session to resolve")
	}
	if resolved.UserID != 7 {
		t.Errorf("expected user 7, got %d", resolved.UserID)
	}
}

func TestSessionService_Resolve_UnknownToken(t *testing.T) {
	svc := NewSessionService(NewMockSessionRepository(), NewMockCache(), 24*time.Hour, zerolog.Nop())

	if _, ok := svc.Resolve(context.Background(), "no-such-token"); ok {
		t.Error("expected unknown token to resolve to nothing")
	}
	if _, ok := svc.Resolve(context.Background(), ""); ok {
		t.Error("expected empty token to resolve to nothing")
	}
}

func TestSessionService_Resolve_Expired(t *testing.T) {
	repo := NewMockSessionRepository()
	svc := NewSessionService(repo, NewMockCache(), time.Hour, zerolog.Nop())

	session, err := svc.Create(context.Background(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Jump past expiry.
	svc.now = func() time.Time { return session.ExpiresAt.Add(time.Minute) }

	if _, ok := svc.Resolve(context.Background(), session.Token); ok {
		t.Error("expected expired session to resolve to nothing")
	}

	// Resolving an expired session deletes the row.
	if got := repo.Count(); got != 0 {
		t.Errorf("expected expired row to be deleted, %d rows remain", got)
	}
}

func TestSessionService_Resolve_ExactlyAtExpiry(t *testing.T) {
	repo := NewMockSessionRepository()
	svc := NewSessionService(repo, NewMockCache(), time.Hour, zerolog.Nop())

	session, err := svc.Create(context.Background(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	svc.now = func() time.Time { return session.ExpiresAt }

	if _, ok := svc.Resolve(context.Background(), session.Token); ok {
		t.Error("session at its exact expiry instant must not resolve")
	}
}

func TestSessionService_Resolve_CacheHitSkipsRepository(t *testing.T) {
	repo := NewMockSessionRepository()
	cache := NewMockCache()
	svc := NewSessionService(repo, cache, 24*time.Hour, zerolog.Nop())

	session, err := svc.Create(context.Background(), 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Drop the row; a warm resolve never reaches the repository.
	repo.Delete(context.Background(), session.Token)

	resolved, ok := svc.Resolve(context.Background(), session.Token)
	if !ok {
		t.Fatal("expected cached session to resolve")
	}
	if resolved.UserID != 9 {
		t.Errorf("expected user 9, got %d", resolved.UserID)
	}
}

func TestSessionService_Destroy(t *testing.T) {
	repo := NewMockSessionRepository()
	cache := NewMockCache()
	svc := NewSessionService(repo, cache, 24*time.Hour, zerolog.Nop())

	session, err := svc.Create(context.Background(), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	svc.Destroy(context.Background(), session.Token)

	if _, ok := svc.Resolve(context.Background(), session.Token); ok {
		t.Error("expected destroyed session to resolve to nothing")
	}
	if got := repo.Count(); got != 0 {
		t.Errorf("expected 0 rows after destroy, got %d", got)
	}

	// Destroy is idempotent.
	svc.Destroy(context.Background(), session.Token)
	svc.Destroy(context.Background(), "never-existed")
}

func TestSessionService_Create_TokensAreUnique(t *testing.T) {
	svc := NewSessionService(NewMockSessionRepository(), NewMockCache(), 24*time.Hour, zerolog.Nop())

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		session, err := svc.Create(context.Background(), 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if seen[session.Token] {
			t.Fatalf("duplicate token issued: %s", session.Token)
		}
		seen[session.Token] = true
	}
}

func TestSessionService_MultipleSessionsPerUser(t *testing.T) {
	svc := NewSessionService(NewMockSessionRepository(), NewMockCache(), 24*time.Hour, zerolog.Nop())

	s1, err := svc.Create(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s2, err := svc.Create(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Destroying one login leaves the other alive.
	svc.Destroy(context.Background(), s1.Token)

	if _, ok := svc.Resolve(context.Background(), s1.Token); ok {
		t.Error("destroyed session still resolves")
	}
	if _, ok := svc.Resolve(context.Background(), s2.Token); !ok {
		t.Error("sibling session was destroyed too")
	}
}

func TestSessionService_DeleteExpired(t *testing.T) {
	repo := NewMockSessionRepository()
	svc := NewSessionService(repo, NewMockCache(), time.Hour, zerolog.Nop())

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	expired, err := svc.Create(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	svc.now = func() time.Time { return base.Add(30 * time.Minute) }
	live, err := svc.Create(context.Background(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 90 minutes in: the first session is past its hour, the second is not.
	svc.now = func() time.Time { return base.Add(90 * time.Minute) }

	deleted, err := svc.DeleteExpired(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 deleted session, got %d", deleted)
	}

	if _, err := repo.GetByToken(context.Background(), expired.Token); err == nil {
		t.Error("expired session survived the purge")
	}
	if _, err := repo.GetByToken(context.Background(), live.Token); err != nil {
		t.Error("live session was purged")
	}
}
