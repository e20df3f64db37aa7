package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tapline/brewlog/internal/domain"
)

const testCookie = "brewlog_session"

// stubSessions resolves a fixed token set.
type stubSessions struct {
	sessions map[string]*domain.Session
}

func (s *stubSessions) Resolve(ctx context.Context, token string) (*domain.Session, bool) {
	session, ok := s.sessions[token]
	return session, ok
}

// stubUsers loads a fixed user set.
type stubUsers struct {
	users map[int64]*domain.User
}

func (s *stubUsers) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func fixtures() (*stubSessions, *stubUsers) {
	session := &domain.Session{
		Token:     "good-token",
		UserID:    1,
		CreatedAt: time.Now().UTC(),
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}
	user := &domain.User{ID: 1, Username: "bob"}
	return &stubSessions{sessions: map[string]*domain.Session{session.Token: session}},
		&stubUsers{users: map[int64]*domain.User{user.ID: user}}
}

func TestIdentify_ValidCookie(t *testing.T) {
	sessions, users := fixtures()

	var got Identity
	handler := Identify(sessions, users, testCookie, zerolog.Nop())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = IdentityFromContext(r.Context())
		}))

	req := httptest.NewRequest(http.MethodGet, "/beers", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: "good-token"})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got.IsAnonymous() {
		t.Fatal("expected authenticated identity")
	}
	if got.User.Username != "bob" {
		t.Errorf("expected user bob, got %s", got.User.Username)
	}
	if got.Session.Token != "good-token" {
		t.Errorf("expected session token to be carried, got %q", got.Session.Token)
	}
}

func TestIdentify_NeverRejects(t *testing.T) {
	sessions, users := fixtures()

	tests := []struct {
		name   string
		cookie *http.Cookie
	}{
		{name: "no cookie", cookie: nil},
		{name: "unknown token", cookie: &http.Cookie{Name: testCookie, Value: "bogus"}},
		{name: "wrong cookie name", cookie: &http.Cookie{Name: "other", Value: "good-token"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Identity
			handler := Identify(sessions, users, testCookie, zerolog.Nop())(
				http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					got = IdentityFromContext(r.Context())
					w.WriteHeader(http.StatusOK)
				}))

			req := httptest.NewRequest(http.MethodGet, "/beers", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			// The request always proceeds, just anonymously.
			if rec.Code != http.StatusOK {
				t.Errorf("expected 200, got %d", rec.Code)
			}
			if !got.IsAnonymous() {
				t.Error("expected anonymous identity")
			}
		})
	}
}

func TestIdentify_SessionWithoutUser(t *testing.T) {
	sessions, _ := fixtures()
	users := &stubUsers{users: map[int64]*domain.User{}} // account removed

	var got Identity
	handler := Identify(sessions, users, testCookie, zerolog.Nop())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = IdentityFromContext(r.Context())
		}))

	req := httptest.NewRequest(http.MethodGet, "/beers", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: "good-token"})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if !got.IsAnonymous() {
		t.Error("expected anonymous identity when the session's user is gone")
	}
}

func TestRequireUser_RedirectsAnonymous(t *testing.T) {
	executed := false
	handler := RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		executed = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/beers/new", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Errorf("expected 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != LoginPath {
		t.Errorf("expected redirect to %s, got %s", LoginPath, loc)
	}
	if executed {
		t.Error("protected handler executed for anonymous request")
	}
}

func TestRequireUser_PassesAuthenticated(t *testing.T) {
	identity := Identity{
		User:    &domain.User{ID: 1, Username: "bob"},
		Session: &domain.Session{Token: "t", UserID: 1},
	}

	executed := false
	handler := RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		executed = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/beers/new", nil)
	req = req.WithContext(WithIdentity(req.Context(), identity))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if !executed {
		t.Error("expected protected handler to execute")
	}
}
