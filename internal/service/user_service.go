// Package service provides business logic services for Brewlog.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tapline/brewlog/internal/domain"
	"github.com/tapline/brewlog/internal/pkg/crypto"
	"github.com/tapline/brewlog/internal/repository"
)

// UserService is the credential store: it owns registration and password
// verification. Plaintext passwords exist only as arguments on this boundary
// and are never persisted or logged.
type UserService struct {
	userRepo repository.UserRepository
	logger   zerolog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository, logger zerolog.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		logger:   logger.With().Str("service", "user").Logger(),
	}
}

// RegisterInput contains the data needed to register a new user.
type RegisterInput struct {
	Username string
	Password string
}

// Register creates a new user account with a salted argon2id password hash.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if err := validateRegisterInput(input); err != nil {
		return nil, err
	}

	// Username matching is case-sensitive: "Alice" and "alice" are
	// distinct accounts.
	exists, err := s.userRepo.ExistsByUsername(ctx, input.Username)
	if err != nil {
		s.logger.Error().Err(err).Str("username", input.Username).Msg("failed to check username existence")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if exists {
		return nil, fmt.Errorf("%w: username '%s'", ErrUserAlreadyExists, input.Username)
	}

	hash, salt, err := crypto.HashPassword(input.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to hash password")
		return nil, fmt.Errorf("%w: failed to hash password", ErrInternalError)
	}

	user := domain.NewUser(input.Username, hash, salt)
	if err := s.userRepo.Create(ctx, user); err != nil {
		// The existence check above races with concurrent registrations;
		// the unique constraint is the authority.
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			return nil, fmt.Errorf("%w: username '%s'", ErrUserAlreadyExists, input.Username)
		}
		s.logger.Error().Err(err).Str("username", input.Username).Msg("failed to create user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Int64("user_id", user.ID).
		Str("username", user.Username).
		Msg("user registered")

	return user, nil
}

// Authenticate verifies user credentials and returns the user. The returned
// error never distinguishes an unknown username from a wrong password.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		// Log but don't expose whether the username exists.
		s.logger.Debug().Str("username", username).Msg("user not found during authentication")
		return nil, ErrInvalidCredentials
	}

	if !crypto.VerifyPassword(password, user.PasswordSalt, user.PasswordHash) {
		s.logger.Debug().Str("username", username).Msg("invalid password during authentication")
		return nil, ErrInvalidCredentials
	}

	s.logger.Info().
		Int64("user_id", user.ID).
		Str("username", user.Username).
		Msg("user authenticated")

	return user, nil
}

// GetByID retrieves a user by ID.
func (s *UserService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error().Err(err).Int64("user_id", id).Msg("failed to get user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return user, nil
}

// Delete removes a user account. Not exposed over HTTP; this is the admin
// CLI's path.
func (s *UserService) Delete(ctx context.Context, userID int64) error {
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().Int64("user_id", userID).Msg("user deleted")
	return nil
}

// ListUsersInput contains pagination options for listing users.
type ListUsersInput struct {
	Limit  int
	Offset int
}

// ListUsersOutput contains the result of listing users.
type ListUsersOutput struct {
	Users      []*domain.User
	TotalCount int64
}

// List returns all users with pagination.
func (s *UserService) List(ctx context.Context, input ListUsersInput) (*ListUsersOutput, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}
	if input.Limit > 100 {
		input.Limit = 100
	}

	result, err := s.userRepo.List(ctx, repository.ListOptions{
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list users")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	return &ListUsersOutput{
		Users:      result.Items,
		TotalCount: result.Total,
	}, nil
}

// validateRegisterInput validates the input for registering a user.
func validateRegisterInput(input RegisterInput) error {
	if input.Username == "" {
		return ErrUsernameRequired
	}
	if len(input.Username) > 64 {
		return ErrUsernameTooLong
	}
	if input.Password == "" {
		return ErrPasswordRequired
	}
	return nil
}
