// Package repository provides the data access layer for Brewlog.
// This file contains the shared types the backend packages (sqlite, postgres)
// assemble their repository sets into.
package repository

import (
	"context"
)

// Repositories holds all repository instances for one database backend.
// Constructed by sqlite.NewRepositories or postgres.NewRepositories depending
// on the configured driver.
type Repositories struct {
	User    UserRepository
	Session SessionRepository
	Beer    BeerRepository
	Comment CommentRepository
}

// DatabaseHealth is an interface for database lifecycle and health checks.
type DatabaseHealth interface {
	Ping(ctx context.Context) error
	Close() error
}
