package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tapline/brewlog/internal/domain"
	"github.com/tapline/brewlog/internal/pkg/crypto"
	"github.com/tapline/brewlog/internal/repository"
)

// MockUserRepository is a mock implementation of repository.UserRepository.
type MockUserRepository struct {
	mu        sync.Mutex
	users     map[string]*domain.User
	nextID    int64
	createErr error
	getErr    error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users:  make(map[string]*domain.User),
		nextID: 1,
	}
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if _, exists := m.users[user.Username]; exists {
		return domain.ErrUserAlreadyExists
	}
	user.ID = m.nextID
	m.nextID++
	m.users[user.Username] = user
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	if u, exists := m.users[username]; exists {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for name, u := range m.users {
		if u.ID == id {
			delete(m.users, name)
			return nil
		}
	}
	return domain.ErrUserNotFound
}

func (m *MockUserRepository) List(ctx context.Context, opts repository.ListOptions) (*repository.ListResult[domain.User], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var items []*domain.User
	for _, u := range m.users {
		items = append(items, u)
	}
	return &repository.ListResult[domain.User]{
		Items:  items,
		Total:  int64(len(items)),
		Offset: opts.Offset,
		Limit:  opts.Limit,
	}, nil
}

func (m *MockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, exists := m.users[username]
	return exists, nil
}

// Count returns the number of stored users.
func (m *MockUserRepository) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

// =============================================================================
// Tests
// =============================================================================

func TestUserService_Register(t *testing.T) {
	tests := []struct {
		name      string
		input     RegisterInput
		wantErr   error
		setupRepo func(*MockUserRepository)
	}{
		{
			name:    "success",
			input:   RegisterInput{Username: "bob", Password: "pw1"},
			wantErr: nil,
		},
		{
			name:    "empty username",
			input:   RegisterInput{Username: "", Password: "pw1"},
			wantErr: ErrUsernameRequired,
		},
		{
			name:    "username too long",
			input:   RegisterInput{Username: strings.Repeat("a", 65), Password: "pw1"},
			wantErr: ErrUsernameTooLong,
		},
		{
			name:    "empty password",
			input:   RegisterInput{Username: "bob", Password: ""},
			wantErr: ErrPasswordRequired,
		},
		{
			name:    "username taken",
			input:   RegisterInput{Username: "bob", Password: "pw2"},
			wantErr: ErrUserAlreadyExists,
			setupRepo: func(m *MockUserRepository) {
				m.users["bob"] = &domain.User{ID: 1, Username: "bob"}
				m.nextID = 2
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewMockUserRepository()
			if tt.setupRepo != nil {
				tt.setupRepo(repo)
			}

			svc := NewUserService(repo, zerolog.Nop())
			user, err := svc.Register(context.Background(), tt.input)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if user.ID == 0 {
				t.Error("expected assigned user ID")
			}
			if user.Username != tt.input.Username {
				t.Errorf("expected username %s, got %s", tt.input.Username, user.Username)
			}
			if len(user.PasswordHash) == 0 || len(user.PasswordSalt) == 0 {
				t.Error("expected hash and salt to be set")
			}
			if string(user.PasswordHash) == tt.input.Password {
				t.Error("password stored without hashing")
			}
		})
	}
}

func TestUserService_Register_DuplicateLeavesOneAccount(t *testing.T) {
	repo := NewMockUserRepository()
	svc := NewUserService(repo, zerolog.Nop())

	if _, err := svc.Register(context.Background(), RegisterInput{Username: "bob", Password: "pw1"}); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}

	_, err := svc.Register(context.Background(), RegisterInput{Username: "bob", Password: "pw2"})
	if !errors.Is(err, ErrUserAlreadyExists) {
		t.Fatalf("expected ErrUserAlreadyExists, got %v", err)
	}

	if got := repo.Count(); got != 1 {
		t.Errorf("expected exactly 1 user after duplicate registration, got %d", got)
	}

	// The surviving account still authenticates with the original password.
	if _, err := svc.Authenticate(context.Background(), "bob", "pw1"); err != nil {
		t.Errorf("original password rejected after duplicate attempt: %v", err)
	}
}

func TestUserService_Authenticate(t *testing.T) {
	repo := NewMockUserRepository()
	svc := NewUserService(repo, zerolog.Nop())

	registered, err := svc.Register(context.Background(), RegisterInput{Username: "alice", Password: "correct horse"})
	if err != nil {
		t.Fatalf("registration failed: %v", err)
	}

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{
			name:     "correct credentials",
			username: "alice",
			password: "correct horse",
			wantErr:  nil,
		},
		{
			name:     "wrong password",
			username: "alice",
			password: "battery staple",
			wantErr:  ErrInvalidCredentials,
		},
		{
			name:     "unknown username",
			username: "mallory",
			password: "correct horse",
			wantErr:  ErrInvalidCredentials,
		},
		{
			name:     "empty password",
			username: "alice",
			password: "",
			wantErr:  ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := svc.Authenticate(context.Background(), tt.username, tt.password)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if user.ID != registered.ID {
				t.Errorf("expected user %d, got %d", registered.ID, user.ID)
			}
		})
	}
}

func TestUserService_Authenticate_VerifiesAgainstStoredSalt(t *testing.T) {
	// Two users with the same password must not share hashes.
	repo := NewMockUserRepository()
	svc := NewUserService(repo, zerolog.Nop())

	u1, err := svc.Register(context.Background(), RegisterInput{Username: "bob", Password: "shared"})
	if err != nil {
		t.Fatalf("registration failed: %v", err)
	}
	u2, err := svc.Register(context.Background(), RegisterInput{Username: "carol", Password: "shared"})
	if err != nil {
		t.Fatalf("registration failed: %v", err)
	}

	if string(u1.PasswordHash) == string(u2.PasswordHash) {
		t.Error("same password produced identical hashes; salts are not random")
	}

	// Cross-checking one user's password against the other's salt+hash fails.
	if crypto.VerifyPassword("shared", u1.PasswordSalt, u2.PasswordHash) {
		t.Error("hash verified against the wrong salt")
	}
}
