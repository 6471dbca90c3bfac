// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"shopreg/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrUserNotFound is a domain-specific error returned when a user is not found.
var ErrUserNotFound = errors.New("user not found")

// UserRepository is the identity store: users and the shop names they own.
type UserRepository interface {
	// FindByUsername retrieves a user by exact, case-sensitive username, including shop names.
	FindByUsername(ctx context.Context, username string) (*entity.User, error)

	// FindByID retrieves a user by id, including shop names.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// FindExistingShopNames returns the subset of names already registered to any user.
	FindExistingShopNames(ctx context.Context, names []string) ([]string, error)

	// CreateWithShops persists a user and all of its shop names in one transaction.
	// A uniqueness violation returns a conflict AppError and persists nothing.
	CreateWithShops(ctx context.Context, username, passwordHash string, shopNames []string) (*entity.User, error)
}
