// Package service provides business logic services for Brewlog.
package service

import "errors"

// Common service errors.
var (
	// User errors
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameRequired   = errors.New("invalid username: must not be empty")
	ErrUsernameTooLong    = errors.New("invalid username: must be at most 64 characters")
	ErrPasswordRequired   = errors.New("invalid password: must not be empty")

	// Beer errors
	ErrBeerNotFound            = errors.New("beer not found")
	ErrBeerNameRequired        = errors.New("beer name is required")
	ErrBeerImageRequired       = errors.New("beer image is required")
	ErrBeerDescriptionRequired = errors.New("beer description is required")

	// Comment errors
	ErrCommentTextRequired = errors.New("comment text is required")

	// General errors
	ErrInternalError = errors.New("internal server error")
)
